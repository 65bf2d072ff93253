package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "browser", cfg.DefaultMode)
	assert.Equal(t, 2, cfg.SearchAttempts)
	assert.Equal(t, 1500*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, 2*time.Minute, cfg.PipelineTimeout)
	assert.Equal(t, 10, cfg.MaxResults)
	assert.InDelta(t, 0.20, cfg.RelaxPercent, 1e-9)
	assert.Equal(t, 3, cfg.EnrichConcurrency)
	assert.Equal(t, 5, cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RateWindow)
	assert.Equal(t, "https://www.airbnb.com", cfg.BaseURL)
	assert.True(t, cfg.BrowserAllowLocal)
	assert.Empty(t, cfg.StealthProxyURL)
}

func TestLoadOverridesFromEnvironment(t *testing.T) {
	t.Setenv("DEFAULT_MODE", "dual")
	t.Setenv("SEARCH_ATTEMPTS", "3")
	t.Setenv("RETRY_DELAY_MS", "250")
	t.Setenv("MAX_RESULTS", "5")
	t.Setenv("BUDGET_RELAX_PERCENT", "0.5")
	t.Setenv("BROWSER_ALLOW_LOCAL", "false")
	t.Setenv("STEALTH_PROXY_URL", "http://proxy.internal:8080")

	cfg := Load()

	assert.Equal(t, "dual", cfg.DefaultMode)
	assert.Equal(t, 3, cfg.SearchAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, 5, cfg.MaxResults)
	assert.InDelta(t, 0.5, cfg.RelaxPercent, 1e-9)
	assert.False(t, cfg.BrowserAllowLocal)
	assert.Equal(t, "http://proxy.internal:8080", cfg.StealthProxyURL)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SEARCH_ATTEMPTS", "many")
	t.Setenv("BUDGET_RELAX_PERCENT", "one fifth")
	t.Setenv("BROWSER_ALLOW_LOCAL", "sure")

	cfg := Load()

	assert.Equal(t, 2, cfg.SearchAttempts)
	assert.InDelta(t, 0.20, cfg.RelaxPercent, 1e-9)
	assert.True(t, cfg.BrowserAllowLocal)
}
