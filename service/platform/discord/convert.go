package discord

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/viant/sfxbot/model/submission"
	"github.com/viant/sfxbot/service/platform"
)

// mapError translates REST failures into the platform error taxonomy
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", platform.ErrNotFound, err)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %w", platform.ErrForbidden, err)
		}
	}
	return err
}

func buttonStyle(style platform.ControlStyle) discordgo.ButtonStyle {
	switch style {
	case platform.StyleSuccess:
		return discordgo.SuccessButton
	case platform.StyleDanger:
		return discordgo.DangerButton
	}
	return discordgo.PrimaryButton
}

func controlStyle(style discordgo.ButtonStyle) platform.ControlStyle {
	switch style {
	case discordgo.SuccessButton:
		return platform.StyleSuccess
	case discordgo.DangerButton:
		return platform.StyleDanger
	}
	return platform.StylePrimary
}

// components renders controls as a single actions row
func components(controls []*platform.Control) []discordgo.MessageComponent {
	if len(controls) == 0 {
		return []discordgo.MessageComponent{}
	}
	row := discordgo.ActionsRow{}
	for _, control := range controls {
		row.Components = append(row.Components, discordgo.Button{
			CustomID: control.ID,
			Label:    control.Label,
			Style:    buttonStyle(control.Style),
		})
	}
	return []discordgo.MessageComponent{row}
}

// controls flattens buttons found in message components
func controls(items []discordgo.MessageComponent) []*platform.Control {
	var ret []*platform.Control
	for _, item := range items {
		switch actual := item.(type) {
		case *discordgo.ActionsRow:
			ret = append(ret, controls(actual.Components)...)
		case discordgo.ActionsRow:
			ret = append(ret, controls(actual.Components)...)
		case *discordgo.Button:
			ret = append(ret, &platform.Control{ID: actual.CustomID, Label: actual.Label, Style: controlStyle(actual.Style)})
		case discordgo.Button:
			ret = append(ret, &platform.Control{ID: actual.CustomID, Label: actual.Label, Style: controlStyle(actual.Style)})
		}
	}
	return ret
}

func embeds(items []*platform.Embed) []*discordgo.MessageEmbed {
	var ret []*discordgo.MessageEmbed
	for _, item := range items {
		embed := &discordgo.MessageEmbed{Title: item.Title, Color: item.Color}
		for _, field := range item.Fields {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: field.Name, Value: field.Value, Inline: field.Inline})
		}
		if item.Footer != "" {
			embed.Footer = &discordgo.MessageEmbedFooter{Text: item.Footer, IconURL: item.FooterIconURL}
		}
		ret = append(ret, embed)
	}
	return ret
}

func attachment(item *discordgo.MessageAttachment) *submission.Attachment {
	if item == nil {
		return nil
	}
	return &submission.Attachment{URL: item.URL, Filename: item.Filename, ContentType: item.ContentType, Size: item.Size}
}

func message(msg *discordgo.Message) *platform.Message {
	if msg == nil {
		return nil
	}
	ret := &platform.Message{
		ID:        msg.ID,
		ChannelID: msg.ChannelID,
		Content:   msg.Content,
		Controls:  controls(msg.Components),
		CreatedAt: msg.Timestamp,
	}
	if msg.Author != nil {
		ret.AuthorID = msg.Author.ID
	}
	for _, item := range msg.Attachments {
		ret.Attachments = append(ret.Attachments, attachment(item))
	}
	return ret
}

// user resolves the invoking identity; Member is set in guilds, User in DMs
func user(i *discordgo.Interaction) *platform.User {
	var u *discordgo.User
	var roles []string
	if i.Member != nil {
		u, roles = i.Member.User, i.Member.Roles
	}
	if u == nil {
		u = i.User
	}
	if u == nil {
		return nil
	}
	name := u.GlobalName
	if name == "" {
		name = u.Username
	}
	return &platform.User{ID: u.ID, Name: name, AvatarURL: u.AvatarURL(""), Roles: roles}
}

func command(i *discordgo.Interaction) *platform.Command {
	data := i.ApplicationCommandData()
	ret := &platform.Command{
		Name:        data.Name,
		User:        user(i),
		ChannelID:   i.ChannelID,
		GuildID:     i.GuildID,
		Strings:     map[string]string{},
		Attachments: map[string]*submission.Attachment{},
	}
	if created, err := discordgo.SnowflakeTimestamp(i.ID); err == nil {
		ret.CreatedAt = created
	}
	for _, option := range data.Options {
		switch option.Type {
		case discordgo.ApplicationCommandOptionString:
			ret.Strings[option.Name] = option.StringValue()
		case discordgo.ApplicationCommandOptionAttachment:
			id, _ := option.Value.(string)
			if data.Resolved != nil {
				if item := attachment(data.Resolved.Attachments[id]); item != nil {
					ret.Attachments[option.Name] = item
				}
			}
		}
	}
	return ret
}

func press(i *discordgo.Interaction) *platform.Press {
	ret := &platform.Press{
		ControlID: i.MessageComponentData().CustomID,
		User:      user(i),
		ChannelID: i.ChannelID,
		GuildID:   i.GuildID,
	}
	if i.Message != nil {
		ret.MessageID = i.Message.ID
	}
	return ret
}

func applicationCommands(specs []*platform.CommandSpec) []*discordgo.ApplicationCommand {
	var ret []*discordgo.ApplicationCommand
	for _, spec := range specs {
		cmd := &discordgo.ApplicationCommand{Name: spec.Name, Description: spec.Description}
		for _, option := range spec.Options {
			optionType := discordgo.ApplicationCommandOptionString
			if option.Type == platform.OptionAttachment {
				optionType = discordgo.ApplicationCommandOptionAttachment
			}
			cmd.Options = append(cmd.Options, &discordgo.ApplicationCommandOption{
				Type:        optionType,
				Name:        option.Name,
				Description: option.Description,
				Required:    option.Required,
			})
		}
		ret = append(ret, cmd)
	}
	return ret
}
