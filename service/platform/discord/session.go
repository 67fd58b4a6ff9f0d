// Package discord adapts the workflow to the Discord gateway and REST API
// using discordgo.
package discord

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/viant/afs"
	"github.com/viant/sfxbot/service/platform"
)

// Intents required to receive commands, presses and follow-up messages
const Intents = discordgo.IntentGuilds | discordgo.IntentGuildMessages | discordgo.IntentMessageContent

// Session represents a gateway connection
type Session struct {
	session       *discordgo.Session
	applicationID string
	guildID       string
	messenger     *Messenger
}

// Messenger returns the REST messenger bound to the session
func (s *Session) Messenger() *Messenger {
	return s.messenger
}

// Latency returns the gateway heartbeat latency
func (s *Session) Latency() time.Duration {
	return s.session.HeartbeatLatency()
}

// Run opens the gateway, registers commands and dispatches events to handler until ctx is done
func (s *Session) Run(ctx context.Context, handler platform.Handler, specs []*platform.CommandSpec) error {
	removeInteraction := s.session.AddHandler(func(session *discordgo.Session, event *discordgo.InteractionCreate) {
		s.dispatchInteraction(ctx, handler, event.Interaction)
	})
	defer removeInteraction()
	removeMessage := s.session.AddHandler(func(session *discordgo.Session, event *discordgo.MessageCreate) {
		s.dispatchMessage(ctx, handler, event.Message)
	})
	defer removeMessage()
	removeReady := s.session.AddHandler(func(session *discordgo.Session, event *discordgo.Ready) {
		log.Printf("discord: logged in as %v", event.User.Username)
	})
	defer removeReady()

	if err := s.session.Open(); err != nil {
		return fmt.Errorf("failed to open gateway: %w", err)
	}
	defer func() {
		if err := s.session.Close(); err != nil {
			log.Printf("discord: failed to close gateway: %v", err)
		}
	}()
	if err := s.RegisterCommands(ctx, specs); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

// RegisterCommands replaces the guild command set
func (s *Session) RegisterCommands(ctx context.Context, specs []*platform.CommandSpec) error {
	registered, err := s.session.ApplicationCommandBulkOverwrite(s.applicationID, s.guildID, applicationCommands(specs), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", mapError(err))
	}
	log.Printf("discord: registered %d commands", len(registered))
	return nil
}

func (s *Session) dispatchInteraction(ctx context.Context, handler platform.Handler, interaction *discordgo.Interaction) {
	responder := NewResponder(s.session, interaction)
	switch interaction.Type {
	case discordgo.InteractionApplicationCommand:
		handler.OnCommand(ctx, command(interaction), responder)
	case discordgo.InteractionMessageComponent:
		handler.OnPress(ctx, press(interaction), responder)
	}
}

func (s *Session) dispatchMessage(ctx context.Context, handler platform.Handler, msg *discordgo.Message) {
	if msg == nil || msg.Author == nil || msg.Author.Bot {
		return
	}
	handler.OnMessage(ctx, message(msg))
}

// New creates a bot session
func New(token, applicationID, guildID string, fs afs.Service) (*Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = Intents
	return &Session{session: session, applicationID: applicationID, guildID: guildID, messenger: NewMessenger(session, fs)}, nil
}
