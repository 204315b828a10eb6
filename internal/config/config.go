// Package config assembles the engine configuration. The listening
// addresses are the standard OTLP endpoints; STATIC_DIR, pointing at the
// built frontend bundle, is the only environment input.
package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the inspector engine.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Static StaticConfig `mapstructure:"static"`
}

// ServerConfig holds the listening addresses of both receivers.
type ServerConfig struct {
	GRPCAddr string `mapstructure:"grpc_addr"`
	HTTPAddr string `mapstructure:"http_addr"`
}

// StaticConfig holds the frontend bundle location.
type StaticConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load builds the configuration from defaults and the environment.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if err := v.BindEnv("static.dir", "STATIC_DIR"); err != nil {
		return nil, fmt.Errorf("failed to bind STATIC_DIR: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Standard OTLP receiver endpoints on all interfaces.
	v.SetDefault("server.grpc_addr", "[::]:4317")
	v.SetDefault("server.http_addr", "[::]:4318")

	// The desktop build keeps the bundle next to the binary.
	v.SetDefault("static.dir", "../dist")
}

func validate(cfg *Config) error {
	for name, addr := range map[string]string{
		"grpc": cfg.Server.GRPCAddr,
		"http": cfg.Server.HTTPAddr,
	} {
		_, port, err := net.SplitHostPort(addr)
		if err != nil {
			return fmt.Errorf("invalid %s address %q: %w", name, addr, err)
		}
		n, err := strconv.Atoi(port)
		if err != nil || n <= 0 || n > 65535 {
			return fmt.Errorf("invalid %s port: %s", name, port)
		}
	}
	if cfg.Static.Dir == "" {
		return fmt.Errorf("static dir must be configured")
	}
	return nil
}
