package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/sfxbot/model/submission"
	"github.com/viant/sfxbot/service/dao"
	"github.com/viant/sfxbot/service/dao/store"
	dsubmission "github.com/viant/sfxbot/service/dao/submission"
)

// Service implements an in-memory submission store. All operations are
// thread-safe and return copies of the stored submissions.
type Service struct {
	records *store.MemoryStore[string, submission.Submission]
}

// Compile-time check that Service implements the submission store.
var _ dsubmission.Service = (*Service)(nil)

func key(s *submission.Submission) string { return s.ID }

// New creates an in-memory submission store
func New() *Service {
	return &Service{records: store.NewMemoryStore[string, submission.Submission](key, (*submission.Submission).Clone)}
}

// Save persists (a clone of) the supplied submission.
func (s *Service) Save(ctx context.Context, sub *submission.Submission) error {
	return s.records.Save(ctx, sub)
}

// Create persists a new submission.
func (s *Service) Create(ctx context.Context, sub *submission.Submission) error {
	return s.records.Create(ctx, sub)
}

// Load retrieves a copy of the submission or dao.ErrNotFound.
func (s *Service) Load(ctx context.Context, id string) (*submission.Submission, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	return s.records.Load(ctx, id)
}

// Delete removes a submission.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	return s.records.Delete(ctx, id)
}

// List returns submissions matching all parameters (status, submitter).
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*submission.Submission, error) {
	for _, p := range parameters {
		switch p.Name {
		case dsubmission.ParamStatus, dsubmission.ParamSubmitter:
		default:
			return nil, fmt.Errorf("unsupported parameter: %v", p.Name)
		}
	}
	return s.records.List(ctx, func(sub *submission.Submission) bool {
		for _, p := range parameters {
			switch p.Name {
			case dsubmission.ParamStatus:
				if !p.Matches(string(sub.Status)) {
					return false
				}
			case dsubmission.ParamSubmitter:
				if !p.Matches(sub.SubmitterID) {
					return false
				}
			}
		}
		return true
	}), nil
}

// Update atomically mutates the submission.
func (s *Service) Update(ctx context.Context, id string, fn dao.UpdateFunc[submission.Submission]) (*submission.Submission, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	return s.records.Update(ctx, id, fn)
}

// Claim marks a pending submission as held by deciderID.
func (s *Service) Claim(ctx context.Context, id, deciderID string, at time.Time) (*submission.Submission, error) {
	return s.Update(ctx, id, func(sub *submission.Submission) error {
		if sub.Status.IsTerminal() {
			return dao.ErrAlreadyDecided
		}
		if sub.IsClaimed() {
			return dao.ErrClaimed
		}
		sub.ClaimedBy = deciderID
		sub.ClaimedAt = &at
		return nil
	})
}

// Release drops the claim held by deciderID.
func (s *Service) Release(ctx context.Context, id, deciderID string) error {
	_, err := s.Update(ctx, id, func(sub *submission.Submission) error {
		if sub.ClaimedBy != deciderID {
			return dao.ErrNotClaimed
		}
		sub.ClaimedBy = ""
		sub.ClaimedAt = nil
		return nil
	})
	return err
}

// Complete moves a claimed submission to a terminal status.
func (s *Service) Complete(ctx context.Context, id, deciderID string, status submission.Status, at time.Time) (*submission.Submission, error) {
	if !status.IsTerminal() {
		return nil, fmt.Errorf("invalid terminal status: %v", status)
	}
	return s.Update(ctx, id, func(sub *submission.Submission) error {
		if sub.Status.IsTerminal() {
			return dao.ErrAlreadyDecided
		}
		if sub.ClaimedBy != deciderID {
			return dao.ErrNotClaimed
		}
		sub.Status = status
		sub.DecidedBy = deciderID
		sub.DecidedAt = &at
		sub.ClaimedBy = ""
		sub.ClaimedAt = nil
		return nil
	})
}

// Expire moves a pending, unclaimed submission to StatusExpired.
func (s *Service) Expire(ctx context.Context, id string, at time.Time) (*submission.Submission, error) {
	return s.Update(ctx, id, func(sub *submission.Submission) error {
		if sub.Status.IsTerminal() {
			return dao.ErrAlreadyDecided
		}
		if sub.IsClaimed() {
			return dao.ErrClaimed
		}
		sub.Status = submission.StatusExpired
		sub.DecidedAt = &at
		return nil
	})
}
