// Package intake validates sound effect uploads and posts them, with Accept
// and Deny controls, to the moderation channel.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/viant/sfxbot/internal/clock"
	"github.com/viant/sfxbot/internal/idgen"
	"github.com/viant/sfxbot/model/submission"
	dsubmission "github.com/viant/sfxbot/service/dao/submission"
	"github.com/viant/sfxbot/service/platform"
	"github.com/viant/sfxbot/tracing"
)

var (
	// ErrInvalidFile is returned for a bad content type, size or name.
	ErrInvalidFile = errors.New("intake: invalid file")

	// ErrDeliveryFailed is returned when the moderation post could not be created.
	ErrDeliveryFailed = errors.New("intake: delivery failed")
)

// Request represents an upload command invocation
type Request struct {
	Attachment    *submission.Attachment
	DisplayName   string
	SubmitterID   string
	SubmitterName string
}

// Service represents submission intake
type Service struct {
	messenger platform.Messenger
	dao       dsubmission.Service
	channelID string
	rules     *Rules
}

// Submit validates the request and posts it for moderation. No state is
// retained unless the post was delivered.
func (s *Service) Submit(ctx context.Context, request *Request) (sub *submission.Submission, err error) {
	ctx, span := tracing.StartSpan(ctx, "sfx.submit")
	defer func() { tracing.EndSpan(span, err) }()

	if request == nil {
		return nil, fmt.Errorf("%w: empty request", ErrInvalidFile)
	}
	displayName := strings.TrimSpace(request.DisplayName)
	if err = s.rules.Validate(request.Attachment, displayName); err != nil {
		return nil, err
	}

	sub = &submission.Submission{
		ID:            idgen.New(),
		SubmitterID:   request.SubmitterID,
		SubmitterName: request.SubmitterName,
		DisplayName:   displayName,
		AssetRef:      request.Attachment.URL,
		Filename:      request.Attachment.Filename,
		ContentType:   request.Attachment.ContentType,
		Size:          request.Attachment.Size,
		ChannelID:     s.channelID,
		Status:        submission.StatusPending,
		CreatedAt:     clock.Now(),
	}
	span.WithAttributes(map[string]string{"submission.id": sub.ID, "submitter.id": sub.SubmitterID})

	// the record exists before the controls do, so a press can always resolve it
	if err = s.dao.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to store submission %v: %w", sub.ID, err)
	}
	msg, err := s.messenger.Send(ctx, ModerationPost(s.channelID, sub, request.Attachment))
	if err != nil {
		if deleteErr := s.dao.Delete(context.WithoutCancel(ctx), sub.ID); deleteErr != nil {
			log.Printf("intake: failed to remove undelivered submission %v: %v", sub.ID, deleteErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	if sub, err = s.dao.Update(ctx, sub.ID, func(stored *submission.Submission) error {
		stored.PostID = msg.ID
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to link post %v: %w", msg.ID, err)
	}
	return sub, nil
}

// New creates an intake service posting to channelID
func New(messenger platform.Messenger, dao dsubmission.Service, channelID string, rules *Rules) *Service {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Service{messenger: messenger, dao: dao, channelID: channelID, rules: rules}
}
