// Package platform defines the messaging capability handle passed into every
// workflow component: sending, editing and fetching channel posts, direct
// messages and private interaction replies. Adapters live in sub-packages.
package platform

import (
	"context"
	"errors"
	"time"

	"github.com/viant/sfxbot/model/submission"
)

var (
	// ErrNotFound is returned when a channel, message or user does not exist.
	ErrNotFound = errors.New("platform: not found")

	// ErrForbidden is returned when the bot may not act on the target, e.g. closed DMs.
	ErrForbidden = errors.New("platform: forbidden")
)

// ControlStyle represents control appearance
type ControlStyle int

const (
	StylePrimary ControlStyle = iota
	StyleSuccess
	StyleDanger
)

// Control represents a pressable button attached to a post
type Control struct {
	ID    string
	Label string
	Style ControlStyle
}

// Field represents a structured record field
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Embed represents a structured record
type Embed struct {
	Title         string
	Color         int
	Fields        []*Field
	Footer        string
	FooterIconURL string
}

// Post represents an outbound channel message
type Post struct {
	ChannelID   string
	Content     string
	Attachments []*submission.Attachment // attached by downloading the URL
	Controls    []*Control
	Embeds      []*Embed
}

// Edit represents a change to an existing post; nil fields are left untouched
type Edit struct {
	Content  *string
	Controls *[]*Control
}

// NoControls returns a controls value that removes all controls
func NoControls() *[]*Control {
	ret := []*Control{}
	return &ret
}

// Message represents a stored channel message
type Message struct {
	ID          string
	ChannelID   string
	AuthorID    string
	Content     string
	Attachments []*submission.Attachment
	Controls    []*Control
	CreatedAt   time.Time
}

// HasControls returns true when the message still carries controls
func (m *Message) HasControls() bool {
	return m != nil && len(m.Controls) > 0
}

// Messenger represents the channel level capabilities used by the workflow
type Messenger interface {
	Send(ctx context.Context, post *Post) (*Message, error)
	Edit(ctx context.Context, channelID, messageID string, edit *Edit) (*Message, error)
	Fetch(ctx context.Context, channelID, messageID string) (*Message, error)
	DirectMessage(ctx context.Context, userID, content string) error
}

// Responder represents the reply channel of a single interaction
type Responder interface {
	// Defer acknowledges the interaction; the final answer is sent with EditReply.
	Defer(ctx context.Context, private bool) error
	// Reply answers the interaction.
	Reply(ctx context.Context, content string, private bool) error
	// EditReply replaces the interaction answer.
	EditReply(ctx context.Context, content string) error
	// Responded returns true once Defer or Reply succeeded.
	Responded() bool
}

// User represents the identity behind an event
type User struct {
	ID        string
	Name      string
	AvatarURL string
	Roles     []string
}

// Command represents a slash command invocation
type Command struct {
	Name        string
	User        *User
	ChannelID   string
	GuildID     string
	Strings     map[string]string
	Attachments map[string]*submission.Attachment
	CreatedAt   time.Time
}

// Press represents a control press
type Press struct {
	ControlID string
	User      *User
	ChannelID string
	MessageID string
	GuildID   string
}

// OptionType represents command option type
type OptionType int

const (
	OptionString OptionType = iota
	OptionAttachment
)

// CommandOption represents a command argument definition
type CommandOption struct {
	Name        string
	Description string
	Type        OptionType
	Required    bool
}

// CommandSpec represents a command definition registered with the platform
type CommandSpec struct {
	Name        string
	Description string
	Options     []*CommandOption
}

// Handler receives platform events
type Handler interface {
	OnCommand(ctx context.Context, cmd *Command, responder Responder)
	OnPress(ctx context.Context, press *Press, responder Responder)
	OnMessage(ctx context.Context, msg *Message)
}
