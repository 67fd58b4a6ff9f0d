package discord

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/viant/sfxbot/service/platform"
)

// Responder answers a single interaction
type Responder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
	mu          sync.Mutex
	responded   bool
}

func (r *Responder) Defer(ctx context.Context, private bool) error {
	return r.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: flags(private)},
	})
}

func (r *Responder) Reply(ctx context.Context, content string, private bool) error {
	return r.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content, Flags: flags(private)},
	})
}

func (r *Responder) EditReply(ctx context.Context, content string) error {
	_, err := r.session.InteractionResponseEdit(r.interaction, &discordgo.WebhookEdit{Content: &content}, discordgo.WithContext(ctx))
	return mapError(err)
}

func (r *Responder) Responded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.responded
}

func (r *Responder) respond(ctx context.Context, response *discordgo.InteractionResponse) error {
	if err := r.session.InteractionRespond(r.interaction, response, discordgo.WithContext(ctx)); err != nil {
		return mapError(err)
	}
	r.mu.Lock()
	r.responded = true
	r.mu.Unlock()
	return nil
}

func flags(private bool) discordgo.MessageFlags {
	if private {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

// NewResponder creates an interaction responder
func NewResponder(session *discordgo.Session, interaction *discordgo.Interaction) *Responder {
	return &Responder{session: session, interaction: interaction}
}

var _ platform.Responder = (*Responder)(nil)
