package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/greenlightd/greenlight/internal/config"
	"github.com/greenlightd/greenlight/internal/plan"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize greenlight in the current directory",
	Long:  "Creates a .greenlight/ folder to store plans, session logs and settings.",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	if IsInitialized(".") {
		return fmt.Errorf("greenlight is already initialized in this directory")
	}

	store := plan.NewStore(".")
	dirs := []string{
		store.PlansDir(),
		store.SessionsDir(),
		filepath.Join(store.PlansDir(), "artifacts"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if err := config.WriteDefault("."); err != nil {
		return err
	}

	fmt.Println("Initialized greenlight in", plan.GreenlightDir)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Review", config.Path("."))
	fmt.Println("  2. Run: greenlight plan create --title \"...\" --step \"...\"")
	return nil
}

// IsInitialized reports whether a .greenlight directory exists under dir.
func IsInitialized(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, plan.GreenlightDir))
	return err == nil && info.IsDir()
}
