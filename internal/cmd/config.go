package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/phonescan/internal/config"
)

// loadConfig resolves the phonescan home, loads its .env, then reads the
// config file named by --config (or the default location) and applies
// environment overrides. Relative data paths are resolved under home.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	home, err := config.GetHome()
	if err != nil {
		return nil, err
	}
	if err := config.LoadEnvFile(home); err != nil {
		return nil, err
	}

	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	cfg.ApplyEnv()
	cfg.ResolvePaths(home)
	return cfg, nil
}
