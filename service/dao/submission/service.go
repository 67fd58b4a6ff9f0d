// Package submission defines the submission store used by the moderation
// workflow. Claim, Release, Complete and Expire are the only status
// transitions; each is a single atomic compare-and-set on the stored record.
package submission

import (
	"context"
	"time"

	"github.com/viant/sfxbot/model/submission"
	"github.com/viant/sfxbot/service/dao"
)

// Parameter names accepted by List
const (
	ParamStatus    = "status"
	ParamSubmitter = "submitter"
)

// Service represents a submission store
type Service interface {
	dao.Service[string, submission.Submission]

	// Create stores a new submission, dao.ErrExists if the id is taken.
	Create(ctx context.Context, s *submission.Submission) error

	// Update atomically mutates the stored submission.
	Update(ctx context.Context, id string, fn dao.UpdateFunc[submission.Submission]) (*submission.Submission, error)

	// Claim marks a pending, unclaimed submission as being decided by deciderID.
	Claim(ctx context.Context, id, deciderID string, at time.Time) (*submission.Submission, error)

	// Release drops the claim held by deciderID, leaving the submission pending.
	Release(ctx context.Context, id, deciderID string) error

	// Complete moves a submission claimed by deciderID to a terminal status.
	Complete(ctx context.Context, id, deciderID string, status submission.Status, at time.Time) (*submission.Submission, error)

	// Expire moves a pending, unclaimed submission to StatusExpired.
	Expire(ctx context.Context, id string, at time.Time) (*submission.Submission, error)
}
