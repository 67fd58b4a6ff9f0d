package submission

import "time"

// OutcomeKind represents how a pending decision resolved
type OutcomeKind string

const (
	OutcomeAccepted OutcomeKind = "accepted"
	OutcomeDenied   OutcomeKind = "denied"
	OutcomeTimedOut OutcomeKind = "timedOut"
)

// PendingDecision represents an open decision path started by a control press
type PendingDecision struct {
	Submission *Submission
	Action     Action
	DeciderID  string
	ChannelID  string
	Window     time.Duration
}

// Outcome represents a resolved decision
type Outcome struct {
	Kind             OutcomeKind `json:"kind"`
	Payload          string      `json:"payload,omitempty"` // name on accept, reason on deny
	DeciderID        string      `json:"deciderId"`
	DeciderName      string      `json:"deciderName,omitempty"`
	DeciderAvatarURL string      `json:"deciderAvatarUrl,omitempty"`
	DecidedAt        time.Time   `json:"decidedAt"`
}

// IsTerminal returns true for accepted and denied outcomes
func (o *Outcome) IsTerminal() bool {
	return o != nil && (o.Kind == OutcomeAccepted || o.Kind == OutcomeDenied)
}
