// Package notifier finalizes moderation decisions: it edits the moderation
// post, writes the audit record and queues the submitter notification.
// Nothing here returns an error to the caller; failures are logged.
package notifier

import (
	"context"
	"log"

	"github.com/viant/sfxbot/model/submission"
	"github.com/viant/sfxbot/service/messaging"
	"github.com/viant/sfxbot/service/platform"
	"github.com/viant/sfxbot/tracing"
)

// Notification represents a queued direct message to a submitter
type Notification struct {
	SubmissionID string
	UserID       string
	Content      string
}

// Service represents the outcome notifier
type Service struct {
	messenger      platform.Messenger
	auditChannelID string
	outbox         messaging.Queue[Notification]
}

// Finalize records a terminal outcome: post edit, one audit post and one queued notification.
func (s *Service) Finalize(ctx context.Context, outcome *submission.Outcome, sub *submission.Submission) {
	if !outcome.IsTerminal() || sub == nil {
		return
	}
	ctx, span := tracing.StartSpan(ctx, "sfx.finalize")
	span.WithAttributes(map[string]string{"submission.id": sub.ID, "outcome": string(outcome.Kind), "decider.id": outcome.DeciderID})
	defer tracing.EndSpan(span, nil)

	s.closePost(ctx, sub, PostContent(outcome.Kind))
	if _, err := s.messenger.Send(ctx, AuditPost(s.auditChannelID, outcome, sub)); err != nil {
		log.Printf("notifier: failed to post audit record for %v: %v", sub.ID, err)
	}
	s.notify(ctx, sub, DirectMessage(outcome.Kind, outcome.Payload, sub))
}

// Expire closes the moderation post of an expired submission and notifies the submitter.
func (s *Service) Expire(ctx context.Context, sub *submission.Submission) {
	if sub == nil {
		return
	}
	ctx, span := tracing.StartSpan(ctx, "sfx.expire")
	span.WithAttributes(map[string]string{"submission.id": sub.ID})
	defer tracing.EndSpan(span, nil)

	s.closePost(ctx, sub, PostContent(submission.OutcomeTimedOut))
	s.notify(ctx, sub, DirectMessage(submission.OutcomeTimedOut, "", sub))
}

func (s *Service) closePost(ctx context.Context, sub *submission.Submission, content string) {
	if sub.ChannelID == "" || sub.PostID == "" {
		log.Printf("notifier: submission %v has no moderation post", sub.ID)
		return
	}
	if _, err := s.messenger.Edit(ctx, sub.ChannelID, sub.PostID, &platform.Edit{Content: &content, Controls: platform.NoControls()}); err != nil {
		log.Printf("notifier: failed to update moderation post %v: %v", sub.PostID, err)
	}
}

// notify is a non-critical step: failures never reach the decision result.
func (s *Service) notify(ctx context.Context, sub *submission.Submission, content string) {
	if sub.SubmitterID == "" {
		log.Printf("notifier: submission %v has no known submitter, skipping notification", sub.ID)
		return
	}
	notification := &Notification{SubmissionID: sub.ID, UserID: sub.SubmitterID, Content: content}
	if err := s.outbox.Publish(ctx, notification); err != nil {
		log.Printf("notifier: failed to queue notification for %v: %v", sub.ID, err)
	}
}

// Dispatch delivers queued notifications until ctx is done. Each notification
// gets exactly one attempt; a failure is logged and nacked.
func (s *Service) Dispatch(ctx context.Context) error {
	for {
		msg, err := s.outbox.Consume(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		notification := msg.T()
		if err = s.messenger.DirectMessage(ctx, notification.UserID, notification.Content); err != nil {
			log.Printf("notifier: failed to notify user %v about %v: %v", notification.UserID, notification.SubmissionID, err)
			_ = msg.Nack(err)
			continue
		}
		_ = msg.Ack()
	}
}

// New creates an outcome notifier
func New(messenger platform.Messenger, auditChannelID string, outbox messaging.Queue[Notification]) *Service {
	return &Service{messenger: messenger, auditChannelID: auditChannelID, outbox: outbox}
}
