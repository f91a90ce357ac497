package plan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/greenlightd/greenlight/internal/plan"
)

// findProjectRoot walks up from the working directory to the nearest
// directory containing .greenlight/.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	for {
		info, err := os.Stat(filepath.Join(dir, plan.GreenlightDir))
		if err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("greenlight not initialized. Run `greenlight init` first")
		}
		dir = parent
	}
}

// openStore locates the project root and returns a store for it.
func openStore() (*plan.Store, string, error) {
	root, err := findProjectRoot()
	if err != nil {
		return nil, "", err
	}
	return plan.NewStore(root), root, nil
}

// parseStatuses converts --status flag values into Status values.
func parseStatuses(values []string) ([]plan.Status, error) {
	var statuses []plan.Status
	for _, v := range values {
		status := plan.Status(v)
		if !status.Known() {
			return nil, fmt.Errorf("unknown status: %s", v)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
