package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftforge/discovery-engine/config"
)

func TestValidateServiceConfig(t *testing.T) {
	cfg := &config.AppConfig{Services: "http,poller"}
	assert.NoError(t, ValidateServiceConfig(cfg))

	cfg = &config.AppConfig{Services: "http,frontend"}
	err := ValidateServiceConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid service name")

	assert.Error(t, ValidateServiceConfig(&config.AppConfig{}))
	assert.Error(t, ValidateServiceConfig(nil))
}

func TestGetEnabledServices(t *testing.T) {
	cfg := &config.AppConfig{Services: "http, poller, reaper"}
	assert.ElementsMatch(t, []string{"http", "poller", "reaper"}, GetEnabledServices(cfg))

	cfg = &config.AppConfig{Services: "reaper"}
	assert.Equal(t, []string{"reaper"}, GetEnabledServices(cfg))

	// Invalid configurations degrade to empty; ValidateServiceConfig reports them.
	assert.Empty(t, GetEnabledServices(&config.AppConfig{Services: "bogus"}))
	assert.Empty(t, GetEnabledServices(nil))
}
