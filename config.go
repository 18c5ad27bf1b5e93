package main

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/pflag"
)

const (
	defaultPort            = "3000"
	defaultAIServiceURL    = "http://localhost:8000"
	defaultUpstreamTimeout = 60 * time.Second
	pingTimeout            = 2 * time.Second
)

type config struct {
	Port            string
	AIServiceURL    string
	UpstreamTimeout time.Duration
	LogLevel        string
	LogFormat       string
}

func defaultConfig() config {
	return config{
		Port:            defaultPort,
		AIServiceURL:    defaultAIServiceURL,
		UpstreamTimeout: defaultUpstreamTimeout,
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

func registerFlags(flags *pflag.FlagSet) {
	d := defaultConfig()
	flags.String("port", d.Port, "Port to listen on (env PORT)")
	flags.String("ai-service-url", d.AIServiceURL, "Base URL of the upstream AI service (env AI_SERVICE_URL)")
	flags.Duration("upstream-timeout", d.UpstreamTimeout, "Timeout for a single upstream call (env UPSTREAM_TIMEOUT)")
	flags.String("log-level", d.LogLevel, "Log level: trace, debug, info, warn, error (env LOG_LEVEL)")
	flags.String("log-format", d.LogFormat, "Log format: json or pretty (env LOG_FORMAT)")
}

// loadConfig layers defaults, then environment, then explicitly set flags.
func loadConfig(flags *pflag.FlagSet) (config, error) {
	cfg := defaultConfig()

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("AI_SERVICE_URL"); v != "" {
		cfg.AIServiceURL = v
	}
	if v := os.Getenv("UPSTREAM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid UPSTREAM_TIMEOUT %q: %w", v, err)
		}
		cfg.UpstreamTimeout = d
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	if flags != nil {
		var err error
		if flags.Changed("port") {
			if cfg.Port, err = flags.GetString("port"); err != nil {
				return cfg, fmt.Errorf("failed to get port flag: %w", err)
			}
		}
		if flags.Changed("ai-service-url") {
			if cfg.AIServiceURL, err = flags.GetString("ai-service-url"); err != nil {
				return cfg, fmt.Errorf("failed to get ai-service-url flag: %w", err)
			}
		}
		if flags.Changed("upstream-timeout") {
			if cfg.UpstreamTimeout, err = flags.GetDuration("upstream-timeout"); err != nil {
				return cfg, fmt.Errorf("failed to get upstream-timeout flag: %w", err)
			}
		}
		if flags.Changed("log-level") {
			if cfg.LogLevel, err = flags.GetString("log-level"); err != nil {
				return cfg, fmt.Errorf("failed to get log-level flag: %w", err)
			}
		}
		if flags.Changed("log-format") {
			if cfg.LogFormat, err = flags.GetString("log-format"); err != nil {
				return cfg, fmt.Errorf("failed to get log-format flag: %w", err)
			}
		}
	}

	return cfg, cfg.validate()
}

func (c config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	u, err := url.Parse(c.AIServiceURL)
	if err != nil {
		return fmt.Errorf("invalid AI service URL %q: %w", c.AIServiceURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("AI service URL %q must be absolute", c.AIServiceURL)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got %v", c.UpstreamTimeout)
	}
	switch c.LogFormat {
	case "json", "pretty":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}
