// Command scout is the scoutkit CLI: chat against any registered
// provider from the terminal, list providers and their models, or run
// the OpenAI-compatible gateway server.
package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/scoutkit/config"
	"github.com/kbukum/scoutkit/conversation"
	"github.com/kbukum/scoutkit/logger"
	"github.com/kbukum/scoutkit/provider"
	_ "github.com/kbukum/scoutkit/provider/all"
	"github.com/kbukum/scoutkit/server"
	"github.com/kbukum/scoutkit/util"
	"github.com/kbukum/scoutkit/version"
)

const serviceName = "scout"

// appConfig is the full CLI/server configuration, loaded from
// config.yml and environment variables.
type appConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server    server.Config   `yaml:"server" mapstructure:"server"`
	Telemetry telemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// telemetryConfig enables OTLP trace and metric export for the server.
type telemetryConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

func (c *appConfig) applyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = "localhost:4318"
	}
	if c.Telemetry.SampleRate == 0 {
		c.Telemetry.SampleRate = 1.0
	}
}

func loadConfig(configFile string) (*appConfig, error) {
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}

	var cfg appConfig
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Server.Validate(); err != nil {
		return nil, err
	}
	logger.Init(cfg.Logging)
	return &cfg, nil
}

// settingsFor builds provider settings for a vendor, merging the
// config file entry with a <NAME>_API_KEY environment fallback.
func settingsFor(cfg *appConfig, name, model string) provider.Settings {
	pc := cfg.Server.Providers[name]
	envKey := util.SanitizeEnvValue(os.Getenv(strings.ToUpper(name) + "_API_KEY"))
	return provider.Settings{
		Model:        model,
		APIKey:       util.Coalesce(pc.APIKey, envKey),
		Proxy:        pc.Proxy,
		SystemPrompt: pc.SystemPrompt,
		Browser:      pc.Browser,
		Conversation: conversation.Config{Enabled: false},
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:           "scout",
		Short:         "Chat with free and keyed LLM providers through one normalized interface",
		Version:       version.Full(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config.yml")

	cmd.AddCommand(newChatCmd(&configFile))
	cmd.AddCommand(newServeCmd(&configFile))
	cmd.AddCommand(newProvidersCmd(&configFile))
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error("command failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
