package parser

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	syncerrors "postman-sync/internal/errors"
)

// ErrRoutesNotFound is returned when a project has no config/routes.rb.
var ErrRoutesNotFound = errors.New("routes.rb not found")

// RoutesPath returns the location of the routes file of a Rails project.
func RoutesPath(projectPath string) string {
	return filepath.Join(projectPath, "config", "routes.rb")
}

// ReadRoutes returns the contents of the project's routes file.
func ReadRoutes(projectPath string) (string, error) {
	if projectPath == "" {
		return "", syncerrors.NewMissingCredentialError(
			"Set it in the environment, a .env file or the rails section of the config file", "RAILS_PROJECT_PATH")
	}

	path := RoutesPath(projectPath)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w at %s", ErrRoutesNotFound, path)
	}
	if err != nil {
		return "", fmt.Errorf("error reading routes.rb: %w", err)
	}
	return string(data), nil
}

// RoutesExist reports whether the project has a routes file.
func RoutesExist(projectPath string) bool {
	if projectPath == "" {
		return false
	}
	info, err := os.Stat(RoutesPath(projectPath))
	return err == nil && !info.IsDir()
}
