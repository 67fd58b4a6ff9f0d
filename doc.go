// Package sfxbot provides a Discord bot relaying sound effect submissions to
// a moderation channel.
//
// A user uploads a file with the sfx command; the bot posts it with Accept and
// Deny controls. A moderator holding the decider role presses one of them and
// answers the follow-up prompt with a name or a reason within the decision
// window. The outcome is recorded on the audit channel and the submitter is
// notified by direct message.
//
//	cfg, _ := sfxbot.LoadConfig(ctx, "")
//	bot, _ := sfxbot.New(cfg)
//	_ = bot.Run(ctx)
package sfxbot
