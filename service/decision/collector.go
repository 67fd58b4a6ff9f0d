// Package decision implements the moderation decision path started by an
// Accept or Deny press: authorization, claim, prompt and collection of the
// decider's follow-up message.
//
// Decision exclusivity is enforced by the submission store claim: only one
// decider may hold a pending submission at a time, and only the holder may
// complete it. A timed out decider releases the claim, so the controls stay
// usable.
package decision

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/viant/sfxbot/internal/clock"
	"github.com/viant/sfxbot/model/submission"
	"github.com/viant/sfxbot/policy"
	"github.com/viant/sfxbot/service/dao"
	dsubmission "github.com/viant/sfxbot/service/dao/submission"
	"github.com/viant/sfxbot/service/input"
	"github.com/viant/sfxbot/service/intake"
	"github.com/viant/sfxbot/service/platform"
	"github.com/viant/sfxbot/tracing"
)

// DefaultTimeout is the collection window for the decider's follow-up message
const DefaultTimeout = 60 * time.Second

var (
	// ErrPermissionDenied is returned when the presser lacks the decider role.
	ErrPermissionDenied = errors.New("decision: permission denied")

	// ErrEmptyPayload is returned when the collected message has no text.
	ErrEmptyPayload = errors.New("decision: empty payload")
)

// Finalizer records a completed decision
type Finalizer interface {
	Finalize(ctx context.Context, outcome *submission.Outcome, sub *submission.Submission)
}

// Collector represents the decision collector
type Collector struct {
	messenger platform.Messenger
	dao       dsubmission.Service
	inputs    *input.Registry
	policy    *policy.Policy
	finalizer Finalizer
	timeout   time.Duration
}

// Handle runs one decision path for press. Expected rejections (permission,
// already decided, claimed, timeout) are answered privately and returned as
// errors; the caller only needs to act on other errors.
func (c *Collector) Handle(ctx context.Context, press *platform.Press, responder platform.Responder) (outcome *submission.Outcome, err error) {
	action, submissionID, err := submission.ParseControlID(press.ControlID)
	if err != nil {
		return nil, err
	}
	if press.User == nil || press.User.ID == "" {
		return nil, fmt.Errorf("press on %v without user", press.MessageID)
	}
	ctx, span := tracing.StartSpan(ctx, "sfx.decide")
	span.WithAttributes(map[string]string{"submission.id": submissionID, "action": string(action), "decider.id": press.User.ID})
	defer func() {
		if isExpected(err) {
			tracing.EndSpan(span, nil)
			return
		}
		tracing.EndSpan(span, err)
	}()

	if !c.authorize(ctx, press) {
		return nil, c.reject(ctx, responder, ErrPermissionDenied, "You do not have permission to use this button.")
	}

	sub, err := c.resolve(ctx, submissionID, press)
	if err != nil {
		return nil, err
	}
	decision := &submission.PendingDecision{Submission: sub, Action: action, DeciderID: press.User.ID, ChannelID: press.ChannelID, Window: c.timeout}

	claimed, err := c.dao.Claim(ctx, sub.ID, decision.DeciderID, clock.Now())
	if err != nil {
		switch {
		case errors.Is(err, dao.ErrAlreadyDecided):
			return nil, c.reject(ctx, responder, err, "This SFX request has already been decided.")
		case errors.Is(err, dao.ErrClaimed):
			return nil, c.reject(ctx, responder, err, "Another moderator is already reviewing this SFX request.")
		}
		return nil, fmt.Errorf("failed to claim submission %v: %w", sub.ID, err)
	}
	decision.Submission = claimed
	span.Event("claimed")

	payload, err := c.collect(ctx, decision, responder)
	if err != nil {
		if releaseErr := c.dao.Release(context.WithoutCancel(ctx), sub.ID, decision.DeciderID); releaseErr != nil {
			log.Printf("decision: failed to release submission %v: %v", sub.ID, releaseErr)
		}
		return nil, err
	}

	completed, err := c.dao.Complete(ctx, sub.ID, decision.DeciderID, action.Status(), clock.Now())
	if err != nil {
		if errors.Is(err, dao.ErrAlreadyDecided) || errors.Is(err, dao.ErrNotClaimed) {
			return nil, c.edit(ctx, responder, err, "This SFX request has already been decided.")
		}
		return nil, fmt.Errorf("failed to complete submission %v: %w", sub.ID, err)
	}
	outcome = &submission.Outcome{
		Kind:             action.Kind(),
		Payload:          payload,
		DeciderID:        press.User.ID,
		DeciderName:      press.User.Name,
		DeciderAvatarURL: press.User.AvatarURL,
		DecidedAt:        *completed.DecidedAt,
	}
	c.finalizer.Finalize(ctx, outcome, completed)
	return outcome, c.edit(ctx, responder, nil, confirmation(action))
}

func (c *Collector) authorize(ctx context.Context, press *platform.Press) bool {
	p := policy.FromContext(ctx)
	if p == nil {
		p = c.policy
	}
	return p.IsAllowed(press.User.ID, press.User.Roles)
}

// resolve loads the submission; posts unknown to the store are rebuilt from
// the moderation post itself. A record rebuilt while the post was unreadable
// is refreshed once the post can be read again.
func (c *Collector) resolve(ctx context.Context, submissionID string, press *platform.Press) (*submission.Submission, error) {
	if submissionID == "" { // legacy controls carry no id
		submissionID = "post-" + press.MessageID
	}
	sub, err := c.dao.Load(ctx, submissionID)
	switch {
	case err == nil:
		if !sub.Degraded || sub.Status.IsTerminal() || sub.IsClaimed() {
			return sub, nil
		}
	case !errors.Is(err, dao.ErrNotFound):
		return nil, err
	}
	msg, fetchErr := c.messenger.Fetch(ctx, press.ChannelID, press.MessageID)
	if fetchErr != nil {
		log.Printf("decision: failed to read moderation post %v: %v", press.MessageID, fetchErr)
		if sub != nil {
			return sub, nil
		}
		msg = &platform.Message{ID: press.MessageID, ChannelID: press.ChannelID}
	}
	now := clock.Now()
	recovered := intake.ParseModerationPost(submissionID, msg)
	if recovered.CreatedAt.IsZero() {
		recovered.CreatedAt = now
	}
	recovered.Degraded = fetchErr != nil
	if fetchErr == nil && !msg.HasControls() {
		recovered.Status = submission.StatusExpired
		recovered.DecidedAt = &now
	}
	if sub != nil {
		return c.dao.Update(ctx, submissionID, func(stored *submission.Submission) error {
			if stored.Status.IsTerminal() || stored.IsClaimed() {
				return nil
			}
			stored.SubmitterID = recovered.SubmitterID
			stored.DisplayName = recovered.DisplayName
			stored.AssetRef = recovered.AssetRef
			stored.Filename = recovered.Filename
			stored.ContentType = recovered.ContentType
			stored.Size = recovered.Size
			stored.Status = recovered.Status
			stored.DecidedAt = recovered.DecidedAt
			stored.Degraded = false
			return nil
		})
	}
	if err = c.dao.Create(ctx, recovered); err != nil && !errors.Is(err, dao.ErrExists) {
		return nil, err
	}
	return c.dao.Load(ctx, submissionID)
}

// collect prompts the decider and waits for the payload message.
func (c *Collector) collect(ctx context.Context, decision *submission.PendingDecision, responder platform.Responder) (string, error) {
	if err := responder.Reply(ctx, prompt(decision.Action), true); err != nil {
		return "", err
	}
	key := input.Key{ChannelID: decision.ChannelID, AuthorID: decision.DeciderID}
	msg, err := c.inputs.Await(ctx, key, decision.Window)
	switch {
	case errors.Is(err, input.ErrTimeout):
		return "", c.edit(ctx, responder, err, missingPayload(decision.Action))
	case errors.Is(err, input.ErrAlreadyAwaiting):
		return "", c.edit(ctx, responder, err, "Please answer your pending request first.")
	case err != nil:
		return "", err
	}
	payload := strings.TrimSpace(msg.Content)
	if payload == "" { // e.g. an attachment-only message
		return "", c.edit(ctx, responder, ErrEmptyPayload, missingPayload(decision.Action))
	}
	return payload, nil
}

func (c *Collector) reject(ctx context.Context, responder platform.Responder, cause error, content string) error {
	if err := responder.Reply(ctx, content, true); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func (c *Collector) edit(ctx context.Context, responder platform.Responder, cause error, content string) error {
	if err := responder.EditReply(context.WithoutCancel(ctx), content); err != nil {
		if cause == nil {
			log.Printf("decision: failed to confirm decision: %v", err)
			return nil
		}
		return errors.Join(cause, err)
	}
	return cause
}

// isExpected returns true for outcomes already reported to the decider
func isExpected(err error) bool {
	return err == nil ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrEmptyPayload) ||
		errors.Is(err, dao.ErrAlreadyDecided) ||
		errors.Is(err, dao.ErrClaimed) ||
		errors.Is(err, dao.ErrNotClaimed) ||
		errors.Is(err, input.ErrTimeout) ||
		errors.Is(err, input.ErrAlreadyAwaiting)
}

// IsExpected reports whether err was already answered to the decider
func IsExpected(err error) bool {
	return err != nil && isExpected(err)
}

// New creates a decision collector
func New(messenger platform.Messenger, dao dsubmission.Service, inputs *input.Registry, p *policy.Policy, finalizer Finalizer, timeout time.Duration) *Collector {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Collector{messenger: messenger, dao: dao, inputs: inputs, policy: p, finalizer: finalizer, timeout: timeout}
}
