package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Leenie/ansible-universe/internal/constants"
	uerrors "github.com/Leenie/ansible-universe/internal/errors"
)

// GlobalConfigDir returns the global state directory, typically ~/.universe.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", uerrors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.UniverseHome), nil
}

// GlobalConfigPath returns the full path to the global configuration file.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.GlobalConfigName), nil
}

// UnitConfigPath returns the configuration file of the unit rooted at root.
func UnitConfigPath(root string) string {
	return filepath.Join(root, constants.ProjectConfigName)
}
