package server

import (
	"github.com/kbukum/scoutkit/server/middleware"
	"github.com/kbukum/scoutkit/validation"
)

// ProviderConfig carries the per-provider settings the gateway passes
// through when constructing a provider.
type ProviderConfig struct {
	APIKey       string `yaml:"api_key" mapstructure:"api_key"`
	Proxy        string `yaml:"proxy" mapstructure:"proxy"`
	SystemPrompt string `yaml:"system_prompt" mapstructure:"system_prompt"`
	Browser      string `yaml:"browser" mapstructure:"browser"`
}

// Config holds HTTP server configuration.
type Config struct {
	Host         string                    `yaml:"host" mapstructure:"host"`
	Port         int                       `yaml:"port" mapstructure:"port" validate:"min=0,max=65535"`
	ReadTimeout  int                       `yaml:"read_timeout" mapstructure:"read_timeout" validate:"min=0"`   // seconds
	WriteTimeout int                       `yaml:"write_timeout" mapstructure:"write_timeout" validate:"min=0"` // seconds
	IdleTimeout  int                       `yaml:"idle_timeout" mapstructure:"idle_timeout" validate:"min=0"`   // seconds
	CORS         middleware.CORSConfig     `yaml:"cors" mapstructure:"cors"`
	Auth         middleware.AuthConfig     `yaml:"auth" mapstructure:"auth"`
	RateLimit    int                       `yaml:"rate_limit" mapstructure:"rate_limit" validate:"min=0"` // requests/minute per client, 0 disables
	Providers    map[string]ProviderConfig `yaml:"providers" mapstructure:"providers"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	// Streaming completions can far outlive a buffered request; the
	// write timeout must cover the whole stream.
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 300
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key"}
	}
	if c.Auth.Mode == "" {
		c.Auth.Mode = middleware.AuthModeNone
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	return c.Auth.Validate()
}
