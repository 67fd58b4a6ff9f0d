package intake

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/viant/sfxbot/model/submission"
	"github.com/viant/sfxbot/service/platform"
)

var (
	nameExpr      = regexp.MustCompile(`(?m)Name:\**\s(.+)$`)
	submitterExpr = regexp.MustCompile(`<@!?(\d+)>`)
)

// ModerationPost composes the moderation channel post for a submission
func ModerationPost(channelID string, sub *submission.Submission, attachment *submission.Attachment) *platform.Post {
	post := &platform.Post{
		ChannelID: channelID,
		Content:   fmt.Sprintf("New SFX Request from <@%s>:\nName: %s", sub.SubmitterID, sub.DisplayName),
		Controls: []*platform.Control{
			{ID: submission.ActionAccept.ControlID(sub.ID), Label: submission.ActionAccept.Label(), Style: platform.StyleSuccess},
			{ID: submission.ActionDeny.ControlID(sub.ID), Label: submission.ActionDeny.Label(), Style: platform.StyleDanger},
		},
	}
	if attachment != nil {
		post.Attachments = []*submission.Attachment{attachment}
	}
	return post
}

// ParseModerationPost rebuilds a pending submission from a moderation post.
// It is used only for posts whose submission is not in the store, e.g. posts
// created before a restart; fields missing from the post stay empty.
func ParseModerationPost(id string, msg *platform.Message) *submission.Submission {
	ret := &submission.Submission{ID: id, Status: submission.StatusPending, Recovered: true}
	if msg == nil {
		return ret
	}
	ret.ChannelID = msg.ChannelID
	ret.PostID = msg.ID
	ret.CreatedAt = msg.CreatedAt
	if match := nameExpr.FindStringSubmatch(msg.Content); len(match) == 2 {
		ret.DisplayName = strings.TrimSpace(strings.TrimSuffix(match[1], "**"))
	}
	if match := submitterExpr.FindStringSubmatch(msg.Content); len(match) == 2 {
		ret.SubmitterID = match[1]
	}
	if len(msg.Attachments) > 0 && msg.Attachments[0] != nil {
		asset := msg.Attachments[0]
		ret.AssetRef = asset.URL
		ret.Filename = asset.Filename
		ret.ContentType = asset.ContentType
		ret.Size = asset.Size
	}
	return ret
}
