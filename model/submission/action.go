package submission

import (
	"errors"
	"fmt"
	"strings"
)

// Action represents a moderation control
type Action string

const (
	ActionAccept Action = "accept"
	ActionDeny   Action = "deny"
)

// controlPrefix namespaces control ids so that foreign components are ignored
const controlPrefix = "sfx"

// ErrInvalidControl is returned when a control id can not be decoded
var ErrInvalidControl = errors.New("submission: invalid control id")

// IsValid returns true for a known action
func (a Action) IsValid() bool {
	return a == ActionAccept || a == ActionDeny
}

// Label returns control label
func (a Action) Label() string {
	switch a {
	case ActionAccept:
		return "Accept"
	case ActionDeny:
		return "Deny"
	}
	return string(a)
}

// Status returns terminal status reached by the action
func (a Action) Status() Status {
	if a == ActionAccept {
		return StatusAccepted
	}
	return StatusDenied
}

// Kind returns outcome kind produced by the action
func (a Action) Kind() OutcomeKind {
	if a == ActionAccept {
		return OutcomeAccepted
	}
	return OutcomeDenied
}

// ControlID encodes action and submission id, i.e. sfx:accept:<id>
func (a Action) ControlID(submissionID string) string {
	return controlPrefix + ":" + string(a) + ":" + submissionID
}

// ParseControlID decodes a control id produced by ControlID.
// Legacy ids without a submission (accept_sfx, deny_sfx) decode with an empty id.
func ParseControlID(controlID string) (Action, string, error) {
	switch controlID {
	case "accept_sfx":
		return ActionAccept, "", nil
	case "deny_sfx":
		return ActionDeny, "", nil
	}
	parts := strings.SplitN(controlID, ":", 3)
	if len(parts) != 3 || parts[0] != controlPrefix {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidControl, controlID)
	}
	action := Action(parts[1])
	if !action.IsValid() || parts[2] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidControl, controlID)
	}
	return action, parts[2], nil
}
