package discord

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/viant/afs"
	"github.com/viant/sfxbot/service/platform"
)

// Messenger implements platform.Messenger on a discord session
type Messenger struct {
	session *discordgo.Session
	fs      afs.Service
}

// Send posts to a channel; attachments are downloaded and re-uploaded
func (m *Messenger) Send(ctx context.Context, post *platform.Post) (*platform.Message, error) {
	data := &discordgo.MessageSend{
		Content:         post.Content,
		Embeds:          embeds(post.Embeds),
		AllowedMentions: &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}},
	}
	if len(post.Controls) > 0 {
		data.Components = components(post.Controls)
	}
	for _, item := range post.Attachments {
		content, err := m.fs.DownloadWithURL(ctx, item.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to download attachment %v: %w", item.URL, err)
		}
		data.Files = append(data.Files, &discordgo.File{Name: item.Filename, ContentType: item.ContentType, Reader: bytes.NewReader(content)})
	}
	msg, err := m.session.ChannelMessageSendComplex(post.ChannelID, data, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	return message(msg), nil
}

// Edit changes post content or controls
func (m *Messenger) Edit(ctx context.Context, channelID, messageID string, edit *platform.Edit) (*platform.Message, error) {
	data := discordgo.NewMessageEdit(channelID, messageID)
	data.Content = edit.Content
	if edit.Controls != nil {
		rendered := components(*edit.Controls)
		data.Components = &rendered
	}
	msg, err := m.session.ChannelMessageEditComplex(data, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	return message(msg), nil
}

// Fetch reads a channel message
func (m *Messenger) Fetch(ctx context.Context, channelID, messageID string) (*platform.Message, error) {
	msg, err := m.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	return message(msg), nil
}

// DirectMessage opens a DM channel with userID and posts content
func (m *Messenger) DirectMessage(ctx context.Context, userID, content string) error {
	channel, err := m.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return mapError(err)
	}
	_, err = m.session.ChannelMessageSend(channel.ID, content, discordgo.WithContext(ctx))
	return mapError(err)
}

// NewMessenger creates a messenger
func NewMessenger(session *discordgo.Session, fs afs.Service) *Messenger {
	if fs == nil {
		fs = afs.New()
	}
	return &Messenger{session: session, fs: fs}
}

var _ platform.Messenger = (*Messenger)(nil)
