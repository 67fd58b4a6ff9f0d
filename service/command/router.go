// Package command routes platform events to the workflow: slash commands to
// intake, control presses to the decision collector and plain messages to the
// input registry. Every handler runs behind a boundary turning panics and
// unexpected errors into a generic user reply.
package command

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"github.com/viant/sfxbot/internal/clock"
	"github.com/viant/sfxbot/model/submission"
	"github.com/viant/sfxbot/service/decision"
	"github.com/viant/sfxbot/service/input"
	"github.com/viant/sfxbot/service/intake"
	"github.com/viant/sfxbot/service/platform"
)

const (
	// Ping is the latency command name
	Ping = "ping"
	// SFX is the upload command name
	SFX = "sfx"

	optionFile = "file"
	optionName = "name"
)

// User facing replies
const (
	MessageUploaded       = "Sound effect uploaded successfully! Please wait for moderation."
	MessageInvalidFile    = "Invalid file type or file size exceeds 4MB. Please upload a .ogg or .mp3 file under 4MB."
	MessageChannelMissing = "Failed to find the target channel. Please check the configuration."
	MessageFailure        = "An error occurred while processing your request. Please try again later."
)

// Submitter accepts uploads
type Submitter interface {
	Submit(ctx context.Context, request *intake.Request) (*submission.Submission, error)
}

// Decider handles control presses
type Decider interface {
	Handle(ctx context.Context, press *platform.Press, responder platform.Responder) (*submission.Outcome, error)
}

// Inbox receives plain messages
type Inbox interface {
	Offer(msg *input.Message) bool
}

// LatencyFunc returns gateway heartbeat latency
type LatencyFunc func() time.Duration

// Router implements platform.Handler
type Router struct {
	submitter Submitter
	decider   Decider
	inbox     Inbox
	latency   LatencyFunc
}

// Commands returns the command definitions to register
func (r *Router) Commands() []*platform.CommandSpec {
	return []*platform.CommandSpec{
		{Name: Ping, Description: "Replies with Pong!"},
		{Name: SFX, Description: "Upload a sound effect for moderation", Options: []*platform.CommandOption{
			{Name: optionFile, Description: "The sound effect file (.ogg or .mp3, max 4MB)", Type: platform.OptionAttachment, Required: true},
			{Name: optionName, Description: "The name of the sound effect", Type: platform.OptionString, Required: true},
		}},
	}
}

// OnCommand dispatches a slash command
func (r *Router) OnCommand(ctx context.Context, cmd *platform.Command, responder platform.Responder) {
	defer r.boundary(ctx, "command "+cmd.Name, responder)
	var err error
	switch cmd.Name {
	case Ping:
		err = r.ping(ctx, cmd, responder)
	case SFX:
		err = r.upload(ctx, cmd, responder)
	default:
		log.Printf("command: unknown command %q", cmd.Name)
		return
	}
	if err != nil {
		r.fail(ctx, "command "+cmd.Name, responder, err)
	}
}

// OnPress dispatches a control press
func (r *Router) OnPress(ctx context.Context, press *platform.Press, responder platform.Responder) {
	defer r.boundary(ctx, "press "+press.ControlID, responder)
	_, err := r.decider.Handle(ctx, press, responder)
	switch {
	case err == nil, decision.IsExpected(err):
	case errors.Is(err, submission.ErrInvalidControl):
		// not ours
	default:
		r.fail(ctx, "press "+press.ControlID, responder, err)
	}
}

// OnMessage offers a plain message to the input registry
func (r *Router) OnMessage(ctx context.Context, msg *platform.Message) {
	defer r.boundary(ctx, "message "+msg.ID, nil)
	r.inbox.Offer(&input.Message{ID: msg.ID, ChannelID: msg.ChannelID, AuthorID: msg.AuthorID, Content: msg.Content})
}

func (r *Router) ping(ctx context.Context, cmd *platform.Command, responder platform.Responder) error {
	if err := responder.Defer(ctx, false); err != nil {
		return err
	}
	roundTrip := clock.Now().Sub(cmd.CreatedAt)
	if err := responder.EditReply(ctx, "Pong!"); err != nil {
		return err
	}
	var api time.Duration
	if r.latency != nil {
		api = r.latency()
	}
	return responder.EditReply(ctx, fmt.Sprintf("Pong! Latency is %dms. API Latency is %dms.", roundTrip.Milliseconds(), api.Milliseconds()))
}

func (r *Router) upload(ctx context.Context, cmd *platform.Command, responder platform.Responder) error {
	if err := responder.Defer(ctx, true); err != nil {
		return err
	}
	request := &intake.Request{Attachment: cmd.Attachments[optionFile], DisplayName: cmd.Strings[optionName]}
	if cmd.User != nil {
		request.SubmitterID, request.SubmitterName = cmd.User.ID, cmd.User.Name
	}
	_, err := r.submitter.Submit(ctx, request)
	switch {
	case err == nil:
		return responder.EditReply(ctx, MessageUploaded)
	case errors.Is(err, intake.ErrInvalidFile):
		return responder.EditReply(ctx, MessageInvalidFile)
	case errors.Is(err, intake.ErrDeliveryFailed) && errors.Is(err, platform.ErrNotFound):
		log.Printf("command: moderation channel unavailable: %v", err)
		return responder.EditReply(ctx, MessageChannelMissing)
	}
	return err
}

// fail logs err and answers with the generic failure message
func (r *Router) fail(ctx context.Context, source string, responder platform.Responder, err error) {
	log.Printf("command: %v failed: %v", source, err)
	if responder == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	var replyErr error
	if responder.Responded() {
		replyErr = responder.EditReply(ctx, MessageFailure)
	} else {
		replyErr = responder.Reply(ctx, MessageFailure, true)
	}
	if replyErr != nil {
		log.Printf("command: failed to report error for %v: %v", source, replyErr)
	}
}

func (r *Router) boundary(ctx context.Context, source string, responder platform.Responder) {
	if recovered := recover(); recovered != nil {
		r.fail(ctx, source, responder, fmt.Errorf("panic: %v\n%s", recovered, debug.Stack()))
	}
}

// New creates a router
func New(submitter Submitter, decider Decider, inbox Inbox, latency LatencyFunc) *Router {
	return &Router{submitter: submitter, decider: decider, inbox: inbox, latency: latency}
}

var _ platform.Handler = (*Router)(nil)
