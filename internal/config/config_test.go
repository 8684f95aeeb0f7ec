package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8089", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.PollInterval())
	assert.False(t, cfg.LiveFeedEnabled())
}

func TestLoadOverridesFromEnvironment(t *testing.T) {
	t.Setenv("TM_API_BASE_URL", "https://api.example.com")
	t.Setenv("TM_POLL_INTERVAL_SEC", "2")
	t.Setenv("TM_PN_SUBSCRIBE_KEY", "sub-c-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.PollInterval())
	assert.True(t, cfg.LiveFeedEnabled())
}

func TestLoadRejectsInvalidBaseURL(t *testing.T) {
	t.Setenv("TM_API_BASE_URL", "not a url")
	_, err := Load()
	assert.Error(t, err)
}

func TestBadIntervalFallsBackToDefault(t *testing.T) {
	t.Setenv("TM_POLL_INTERVAL_SEC", "lots")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.PollInterval())
}
