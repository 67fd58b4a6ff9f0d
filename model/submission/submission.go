package submission

import "time"

// Status represents a submission moderation state
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDenied   Status = "denied"
	StatusExpired  Status = "expired"
)

// IsTerminal returns true when no further transition is allowed
func (s Status) IsTerminal() bool {
	switch s {
	case StatusAccepted, StatusDenied, StatusExpired:
		return true
	}
	return false
}

// Attachment represents an uploaded file as reported by the platform
type Attachment struct {
	URL         string `json:"url"`
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Size        int    `json:"size"`
}

// Submission represents a user's request to add a sound effect. The moderation
// post only mirrors it; the store keyed by ID is the source of truth.
type Submission struct {
	ID            string `json:"id"`
	SubmitterID   string `json:"submitterId,omitempty"`
	SubmitterName string `json:"submitterName,omitempty"`
	DisplayName   string `json:"displayName,omitempty"`
	AssetRef      string `json:"assetRef,omitempty"`
	Filename      string `json:"filename,omitempty"`
	ContentType   string `json:"contentType,omitempty"`
	Size          int    `json:"size,omitempty"`

	ChannelID string `json:"channelId,omitempty"`
	PostID    string `json:"postId,omitempty"`

	Status    Status     `json:"status"`
	ClaimedBy string     `json:"claimedBy,omitempty"` // decider holding the open PendingDecision
	ClaimedAt *time.Time `json:"claimedAt,omitempty"`
	DecidedBy string     `json:"decidedBy,omitempty"`
	DecidedAt *time.Time `json:"decidedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`

	// Recovered is set when the record was rebuilt from the moderation post
	// instead of being created by intake.
	Recovered bool `json:"recovered,omitempty"`
	// Degraded is set when the moderation post could not be read during
	// recovery; the post fields are refreshed on the next press.
	Degraded bool `json:"degraded,omitempty"`
}

// Clone returns a copy safe to mutate by the caller
func (s *Submission) Clone() *Submission {
	if s == nil {
		return nil
	}
	ret := *s
	if s.ClaimedAt != nil {
		at := *s.ClaimedAt
		ret.ClaimedAt = &at
	}
	if s.DecidedAt != nil {
		at := *s.DecidedAt
		ret.DecidedAt = &at
	}
	return &ret
}

// IsClaimed returns true when a decider holds the submission
func (s *Submission) IsClaimed() bool {
	return s.ClaimedBy != ""
}

// NameOrDefault returns display name or the supplied fallback
func (s *Submission) NameOrDefault(fallback string) string {
	if s == nil || s.DisplayName == "" {
		return fallback
	}
	return s.DisplayName
}
