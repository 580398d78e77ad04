package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// GetHome returns the phonescan data directory.
// Priority order:
//  1. PHONESCAN_HOME environment variable (if set)
//  2. .phonescan under the current working directory
//
// The directory is created if it doesn't exist.
func GetHome() (string, error) {
	if home := os.Getenv("PHONESCAN_HOME"); home != "" {
		if err := os.MkdirAll(home, 0755); err != nil {
			return "", fmt.Errorf("create phonescan home directory: %w", err)
		}
		return home, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	home := filepath.Join(cwd, ".phonescan")
	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create phonescan home directory: %w", err)
	}
	return home, nil
}

// LoadEnvFile loads <home>/.env into the process environment.
// Variables already set are left alone; a missing file is not an error.
func LoadEnvFile(home string) error {
	path := filepath.Join(home, ".env")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
