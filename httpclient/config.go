package httpclient

import (
	"net/url"
	"time"

	apperrors "github.com/kbukum/scoutkit/errors"
	"github.com/kbukum/scoutkit/resilience"
)

const defaultTimeout = 30 * time.Second

// Config configures the HTTP client for one upstream backend.
type Config struct {
	// Name identifies the upstream in errors and logs, typically the
	// provider name.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is prepended to relative request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds buffered requests. Streaming requests are bounded
	// by their context instead. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Proxy is an optional proxy URL (http, https, or socks5). Empty
	// falls back to the environment proxy settings.
	Proxy string `yaml:"proxy" mapstructure:"proxy"`

	// Headers are default headers applied to every request. Request
	// headers override them key by key.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Auth is the default authentication applied to every request.
	Auth *AuthConfig `yaml:"-" mapstructure:"-"`

	// Retry enables retry with backoff for buffered requests. Nil
	// disables it. Streaming requests are never retried here; the
	// caller decides whether to reconnect.
	Retry *resilience.RetryConfig `yaml:"-" mapstructure:"-"`

	// RateLimiter throttles outgoing requests. Nil disables it.
	RateLimiter *resilience.RateLimiterConfig `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "upstream"
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Proxy != "" {
		u, err := url.Parse(c.Proxy)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return apperrors.Configuration("proxy must be a valid URL with scheme and host")
		}
	}
	return nil
}

// DefaultRetryConfig returns the retry policy used for upstream calls:
// three attempts, retrying connection failures, timeouts, and rate
// limits.
func DefaultRetryConfig() *resilience.RetryConfig {
	return &resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.2,
	}
}
