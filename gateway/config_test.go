package gateway

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Get(t *testing.T) {
	cfg := Config{"api_key": "secret"}

	assert.Equal(t, "secret", cfg.Get("api_key"))
	assert.Equal(t, "", cfg.Get("missing"))
}

func TestConfig_GetBool(t *testing.T) {
	cfg := Config{
		"flag_true":  "true",
		"flag_one":   "1",
		"flag_false": "false",
		"flag_yes":   "yes",
	}

	assert.True(t, cfg.GetBool("flag_true"))
	assert.True(t, cfg.GetBool("flag_one"))
	assert.False(t, cfg.GetBool("flag_false"))
	assert.False(t, cfg.GetBool("flag_yes"))
	assert.False(t, cfg.GetBool("missing"))
}

func TestConfig_Has(t *testing.T) {
	cfg := Config{"present": "value", "empty": ""}

	assert.True(t, cfg.Has("present"))
	assert.False(t, cfg.Has("empty"))
	assert.False(t, cfg.Has("missing"))
}

func TestConfig_ValidateRequired(t *testing.T) {
	cfg := Config{"api_key": "secret", "empty": ""}

	assert.NoError(t, cfg.ValidateRequired("mock", "api_key"))

	err := cfg.ValidateRequired("mock", "api_key", "empty", "missing")
	assert.Error(t, err)

	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "mock", cfgErr.Gateway)
	assert.Equal(t, []string{"empty", "missing"}, cfgErr.MissingKeys)
	assert.Contains(t, err.Error(), "empty, missing")
}
