package decision

import "github.com/viant/sfxbot/model/submission"

func prompt(action submission.Action) string {
	if action == submission.ActionAccept {
		return "Please provide the name of the sound effect:"
	}
	return "Please provide a reason for denying this SFX:"
}

func missingPayload(action submission.Action) string {
	if action == submission.ActionAccept {
		return "No name was provided. Please try again."
	}
	return "No reason was provided. Please try again."
}

func confirmation(action submission.Action) string {
	if action == submission.ActionAccept {
		return "SFX request accepted. The user has been informed."
	}
	return "SFX request denied. The user has been informed."
}
