package sfxbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/viant/afs"
	"github.com/viant/scy"
	"github.com/viant/sfxbot/service/decision"
	"github.com/viant/sfxbot/service/intake"
	"github.com/viant/sfxbot/service/liveness"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the bot configuration. It is
// populated from defaults, an optional YAML document and the environment, in
// that order.
type Config struct {
	Token    string `json:"token,omitempty" yaml:"token,omitempty" env:"DISCORD_TOKEN"`
	TokenURL string `json:"tokenURL,omitempty" yaml:"tokenURL,omitempty" env:"DISCORD_TOKEN_URL"`
	TokenKey string `json:"tokenKey,omitempty" yaml:"tokenKey,omitempty" env:"DISCORD_TOKEN_KEY"`

	ApplicationID       string   `json:"applicationID" yaml:"applicationID" env:"CLIENT_ID"`
	GuildID             string   `json:"guildID" yaml:"guildID" env:"GUILD_ID"`
	DeciderRoleID       string   `json:"deciderRoleID" yaml:"deciderRoleID" env:"ACCEPT_ROLE_ID"`
	ModerationChannelID string   `json:"moderationChannelID" yaml:"moderationChannelID" env:"MODERATION_CHANNEL_ID"`
	AuditChannelID      string   `json:"auditChannelID,omitempty" yaml:"auditChannelID,omitempty" env:"AUDIT_CHANNEL_ID"`
	BlockedUsers        []string `json:"blockedUsers,omitempty" yaml:"blockedUsers,omitempty" env:"BLOCKED_USERS" envSeparator:","`

	DecisionTimeout     time.Duration `json:"decisionTimeout" yaml:"decisionTimeout" env:"DECISION_TIMEOUT"`
	MaxFileSize         int           `json:"maxFileSize" yaml:"maxFileSize" env:"MAX_FILE_SIZE"`
	AllowedContentTypes []string      `json:"allowedContentTypes" yaml:"allowedContentTypes" env:"ALLOWED_CONTENT_TYPES" envSeparator:","`

	SubmissionTTL time.Duration `json:"submissionTTL" yaml:"submissionTTL" env:"SUBMISSION_TTL"`
	Retention     time.Duration `json:"retention" yaml:"retention" env:"RETENTION"`
	SweepInterval time.Duration `json:"sweepInterval" yaml:"sweepInterval" env:"SWEEP_INTERVAL"`

	LivenessAddr string `json:"livenessAddr" yaml:"livenessAddr" env:"LIVENESS_ADDR"`
	TraceFile    string `json:"traceFile,omitempty" yaml:"traceFile,omitempty" env:"TRACE_FILE"`
}

// DefaultConfig returns a Config populated with the default limits and
// windows. Identifiers and the token have no defaults.
func DefaultConfig() *Config {
	return &Config{
		DecisionTimeout:     decision.DefaultTimeout,
		MaxFileSize:         intake.DefaultMaxFileSize,
		AllowedContentTypes: append([]string(nil), intake.DefaultContentTypes...),
		SubmissionTTL:       7 * 24 * time.Hour,
		Retention:           24 * time.Hour,
		SweepInterval:       time.Minute,
		LivenessAddr:        liveness.DefaultAddr,
	}
}

// Init fills derived settings
func (c *Config) Init() {
	if c.AuditChannelID == "" {
		c.AuditChannelID = c.ModerationChannelID
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	required := []struct{ name, value string }{
		{"token", c.Token},
		{"applicationID", c.ApplicationID},
		{"guildID", c.GuildID},
		{"deciderRoleID", c.DeciderRoleID},
		{"moderationChannelID", c.ModerationChannelID},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			errs = append(errs, fmt.Errorf("%v is required", field.name))
		}
	}
	if c.DecisionTimeout <= 0 {
		errs = append(errs, fmt.Errorf("decisionTimeout must be > 0"))
	}
	if c.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("maxFileSize must be > 0"))
	}
	if len(c.AllowedContentTypes) == 0 {
		errs = append(errs, fmt.Errorf("allowedContentTypes must not be empty"))
	}
	if c.SubmissionTTL < 0 || c.Retention < 0 {
		errs = append(errs, fmt.Errorf("submissionTTL and retention must be >= 0"))
	}
	if c.SweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("sweepInterval must be > 0"))
	}
	return errors.Join(errs...)
}

// LoadConfig layers defaults, the optional YAML document at URL and the
// environment, then reveals the token from TokenURL when no plain token is set.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	cfg := DefaultConfig()
	if URL != "" {
		data, err := afs.New().DownloadWithURL(ctx, URL)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
		}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.Token == "" && cfg.TokenURL != "" {
		secret, err := scy.New().Load(ctx, scy.NewResource(nil, cfg.TokenURL, cfg.TokenKey))
		if err != nil {
			return nil, fmt.Errorf("failed to reveal token from %v: %w", cfg.TokenURL, err)
		}
		cfg.Token = strings.TrimSpace(secret.String())
	}
	cfg.Init()
	return cfg, nil
}
