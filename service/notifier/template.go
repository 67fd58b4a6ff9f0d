package notifier

import (
	"fmt"

	"github.com/viant/sfxbot/model/submission"
	"github.com/viant/sfxbot/service/platform"
)

const (
	colorAccepted = 0x00FF00
	colorDenied   = 0xFF0000

	unknownName = "Unknown"
)

// PostContent returns moderation post text after a decision
func PostContent(kind submission.OutcomeKind) string {
	switch kind {
	case submission.OutcomeAccepted:
		return "Accepted! The sound effect has been forwarded."
	case submission.OutcomeDenied:
		return "Denied. The submitter has been informed."
	}
	return "This SFX request expired without a decision."
}

// AuditPost composes the audit record of a decision
func AuditPost(channelID string, outcome *submission.Outcome, sub *submission.Submission) *platform.Post {
	asset := sub.AssetRef
	if asset == "" {
		asset = "unknown"
	}
	embed := &platform.Embed{FooterIconURL: outcome.DeciderAvatarURL}
	decider := outcome.DeciderName
	if decider == "" {
		decider = outcome.DeciderID
	}
	var verb string
	switch outcome.Kind {
	case submission.OutcomeAccepted:
		verb = "Accepted"
		embed.Title = "SFX Accepted"
		embed.Color = colorAccepted
		embed.Fields = []*platform.Field{
			{Name: "SFX Name", Value: sub.NameOrDefault(orDefault(outcome.Payload, unknownName)), Inline: true},
			{Name: "File", Value: fileLink(asset), Inline: true},
		}
	default:
		verb = "Denied"
		embed.Title = "SFX Denied"
		embed.Color = colorDenied
		embed.Fields = []*platform.Field{
			{Name: "SFX Name", Value: sub.NameOrDefault(unknownName), Inline: true},
			{Name: "File", Value: fileLink(asset), Inline: true},
			{Name: "Reason", Value: orDefault(outcome.Payload, "No reason given")},
		}
	}
	embed.Footer = fmt.Sprintf("%s by %s", verb, decider)
	return &platform.Post{
		ChannelID: channelID,
		Content:   fmt.Sprintf("%s SFX Request from %s", verb, mention(sub.SubmitterID)),
		Embeds:    []*platform.Embed{embed},
	}
}

// DirectMessage returns the submitter notification text
func DirectMessage(kind submission.OutcomeKind, payload string, sub *submission.Submission) string {
	switch kind {
	case submission.OutcomeAccepted:
		return "Your SFX request has been accepted! Thank you for your submission."
	case submission.OutcomeDenied:
		return "Your SFX request has been denied for the following reason: " + payload
	}
	return fmt.Sprintf("Your SFX request %q expired before a moderator reviewed it. Feel free to submit it again.", sub.NameOrDefault(unknownName))
}

func fileLink(asset string) string {
	if asset == "unknown" {
		return asset
	}
	return "[Download here](" + asset + ")"
}

func mention(userID string) string {
	if userID == "" {
		return "an unknown user"
	}
	return "<@" + userID + ">"
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
