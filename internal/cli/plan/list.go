package plan

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/greenlightd/greenlight/internal/display"
	"github.com/greenlightd/greenlight/internal/watch"
	"github.com/spf13/cobra"
)

var (
	listStatuses []string
	listWatch    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List plans",
	Long:  `List plans, optionally filtered by status. With --watch, re-renders when another process changes the plan directory.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringArrayVar(&listStatuses, "status", nil, "Filter by status (repeatable)")
	listCmd.Flags().BoolVar(&listWatch, "watch", false, "Keep watching for out-of-band changes")
}

func runList(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	statuses, err := parseStatuses(listStatuses)
	if err != nil {
		return err
	}

	render := func() error {
		plans, err := store.List(statuses...)
		if err != nil {
			return err
		}
		// Store order is filesystem order; sort for display.
		sort.Slice(plans, func(i, j int) bool {
			return plans[i].UpdatedAt.After(plans[j].UpdatedAt)
		})
		fmt.Println(display.RenderList(plans))
		return nil
	}

	if err := render(); err != nil {
		return err
	}
	if !listWatch {
		return nil
	}

	watcher, err := watch.New(500*time.Millisecond, func() {
		store.InvalidateCache()
		fmt.Println()
		if err := render(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	})
	if err != nil {
		return err
	}
	if err := watcher.Watch(store.PlansDir()); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
