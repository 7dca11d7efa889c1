package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}
	if !strings.HasPrefix(c.Server.CallbackPath, "/") || strings.Trim(c.Server.CallbackPath, "/") == "" {
		return fmt.Errorf("server.callback_path must be an absolute path below / (got %q)", c.Server.CallbackPath)
	}

	if err := c.Analyzer.validate(); err != nil {
		return fmt.Errorf("analyzer: %w", err)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with / (got %q)", c.Metrics.Path)
	}

	return nil
}

func (a *AnalyzerConfig) validate() error {
	if strings.TrimSpace(a.Command) == "" {
		return fmt.Errorf("command is required")
	}
	if strings.TrimSpace(a.PrimaryPath) == "" {
		return fmt.Errorf("primary_path is required")
	}
	if strings.TrimSpace(a.GuesserPath) == "" {
		return fmt.Errorf("guesser_path is required")
	}
	return nil
}
