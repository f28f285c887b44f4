package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:4502", cfg.BaseURL)
	assert.Equal(t, "admin", cfg.Username)
	assert.Equal(t, "admin", cfg.Password)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.MaxPollDelay)
	assert.Zero(t, cfg.ServiceTimeout)
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	merged := base.Merge(&Config{
		BaseURL:        "https://author.example.com",
		Password:       "s3cret",
		ServiceTimeout: time.Minute,
	})

	assert.Equal(t, "https://author.example.com", merged.BaseURL)
	assert.Equal(t, "admin", merged.Username)
	assert.Equal(t, "s3cret", merged.Password)
	assert.Equal(t, time.Minute, merged.ServiceTimeout)
	assert.Equal(t, "http://localhost:4502", base.BaseURL, "merge must not mutate the receiver")
	assert.Same(t, base, base.Merge(nil))
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{BaseURL: "http://localhost:4502/"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:4502", cfg.BaseURL)

	for _, bad := range []string{"localhost:4502", "ftp://host", "http://", "://x"} {
		t.Run(bad, func(t *testing.T) {
			err := (&Config{BaseURL: bad}).Validate()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"base_url":"http://aem:4503","username":"deployer","request_timeout":5000000000}`))
	require.NoError(t, err)
	assert.Equal(t, "http://aem:4503", cfg.BaseURL)
	assert.Equal(t, "deployer", cfg.Username)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)

	_, err = ParseConfig([]byte(`{`))
	assert.Error(t, err)
}
