// Package policy decides who may press moderation controls. A decider must
// hold one of the allowed roles and must not be on the block list.
package policy

import (
	"context"
	"strings"
)

// Policy represents decider authorization settings.
//
//   - AllowRoles: role ids granting the decision capability (empty => nobody).
//   - BlockUsers: user ids refused regardless of roles.
//
// A nil *Policy refuses everyone.
type Policy struct {
	AllowRoles []string
	BlockUsers []string
}

// Config represents the declarative, serialisable part of a Policy.
type Config struct {
	AllowRoles []string `json:"allowRoles,omitempty" yaml:"allowRoles,omitempty"`
	BlockUsers []string `json:"blockUsers,omitempty" yaml:"blockUsers,omitempty"`
}

// New creates a policy granting roleIDs
func New(roleIDs ...string) *Policy {
	ret := &Policy{}
	for _, id := range roleIDs {
		if id = strings.TrimSpace(id); id != "" {
			ret.AllowRoles = append(ret.AllowRoles, id)
		}
	}
	return ret
}

// FromConfig converts a stored Config to a runtime Policy.
func FromConfig(c *Config) *Policy {
	if c == nil {
		return nil
	}
	ret := New(c.AllowRoles...)
	ret.BlockUsers = append([]string(nil), c.BlockUsers...)
	return ret
}

// IsAllowed evaluates BlockUsers then AllowRoles by exact id comparison.
func (p *Policy) IsAllowed(userID string, roles []string) bool {
	if p == nil || userID == "" {
		return false
	}

	// BlockUsers has priority.
	for _, b := range p.BlockUsers {
		if userID == b {
			return false
		}
	}

	for _, allowed := range p.AllowRoles {
		for _, role := range roles {
			if role == allowed {
				return true
			}
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx, overriding the collector default.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts policy or nil.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
