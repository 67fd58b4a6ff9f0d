package sfxbot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Token = "token"
	cfg.ApplicationID = "app"
	cfg.GuildID = "guild"
	cfg.DeciderRoleID = "mod"
	cfg.ModerationChannelID = "moderation"
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		description string
		mutate      func(c *Config)
		expectErr   string
	}{
		{description: "valid", mutate: func(c *Config) {}},
		{description: "missing token", mutate: func(c *Config) { c.Token = " " }, expectErr: "token is required"},
		{description: "missing channel", mutate: func(c *Config) { c.ModerationChannelID = "" }, expectErr: "moderationChannelID is required"},
		{description: "zero timeout", mutate: func(c *Config) { c.DecisionTimeout = 0 }, expectErr: "decisionTimeout"},
		{description: "no content types", mutate: func(c *Config) { c.AllowedContentTypes = nil }, expectErr: "allowedContentTypes"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			cfg := validConfig()
			testCase.mutate(cfg)
			err := cfg.Validate()
			if testCase.expectErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), testCase.expectErr)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	location := filepath.Join(t.TempDir(), "sfxbot.yaml")
	require.NoError(t, os.WriteFile(location, []byte(`
applicationID: app-from-yaml
guildID: guild
moderationChannelID: moderation
decisionTimeout: 30s
blockedUsers: [u1, u2]
`), 0o644))
	t.Setenv("DISCORD_TOKEN", "secret")
	t.Setenv("ACCEPT_ROLE_ID", "mod")
	t.Setenv("CLIENT_ID", "app-from-env")

	cfg, err := LoadConfig(context.Background(), location)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Token)
	assert.Equal(t, "app-from-env", cfg.ApplicationID, "environment wins over yaml")
	assert.Equal(t, "guild", cfg.GuildID)
	assert.Equal(t, "moderation", cfg.AuditChannelID, "audit channel defaults to moderation channel")
	assert.Equal(t, 30*time.Second, cfg.DecisionTimeout)
	assert.Equal(t, []string{"u1", "u2"}, cfg.BlockedUsers)
	assert.Equal(t, 4*1024*1024, cfg.MaxFileSize)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingDocument(t *testing.T) {
	_, err := LoadConfig(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
