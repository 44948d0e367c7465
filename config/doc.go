// Package config provides configuration loading and validation for
// scoutkit services.
//
// It uses Viper to load configuration from a config.yml file and layers
// environment variables (optionally from a .env file) on top. Services
// embed ServiceConfig in their own config struct and pass it to
// LoadConfig:
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Server server.Config `yaml:"server" mapstructure:"server"`
//	}
//
//	var cfg AppConfig
//	err := config.LoadConfig("scout", &cfg)
//
// Environment variables override file values using underscore-separated
// paths (e.g. SERVER_PORT, LOGGING_LEVEL).
package config
