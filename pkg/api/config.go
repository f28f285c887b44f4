package api

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/granite-tools/packmgr/internal/errx"
)

const (
	DefaultBaseURL  = "http://localhost:4502"
	DefaultUsername = "admin"
	DefaultPassword = "admin"
)

// Config holds connection settings for a package manager service.
type Config struct {
	BaseURL  string `json:"base_url,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	// RequestTimeout bounds a single request; zero disables it.
	RequestTimeout time.Duration `json:"request_timeout,omitempty"`
	// ServiceTimeout bounds WaitForService; zero waits for as long as the
	// context allows.
	ServiceTimeout time.Duration `json:"service_timeout,omitempty"`
	// PollInterval is the per-try backoff step of WaitForService.
	PollInterval time.Duration `json:"poll_interval,omitempty"`
	// MaxPollDelay caps the backoff between availability probes.
	MaxPollDelay time.Duration `json:"max_poll_delay,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:      DefaultBaseURL,
		Username:     DefaultUsername,
		Password:     DefaultPassword,
		PollInterval: time.Second,
		MaxPollDelay: 5 * time.Second,
	}
}

// Merge overlays the non-zero fields of other onto a copy of c.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c
	if other.BaseURL != "" {
		result.BaseURL = other.BaseURL
	}
	if other.Username != "" {
		result.Username = other.Username
	}
	if other.Password != "" {
		result.Password = other.Password
	}
	if other.RequestTimeout > 0 {
		result.RequestTimeout = other.RequestTimeout
	}
	if other.ServiceTimeout > 0 {
		result.ServiceTimeout = other.ServiceTimeout
	}
	if other.PollInterval > 0 {
		result.PollInterval = other.PollInterval
	}
	if other.MaxPollDelay > 0 {
		result.MaxPollDelay = other.MaxPollDelay
	}
	return &result
}

// Validate checks the base URL and normalizes it without a trailing slash.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return errx.Wrap(ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errx.With(ErrInvalidConfig, ": base url %q must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return errx.With(ErrInvalidConfig, ": base url %q has no host", c.BaseURL)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return nil
}

func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
