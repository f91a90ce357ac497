package plan

import (
	"fmt"
	"strings"
)

// ToolInventory reports the capability names currently available to an
// executor. Implementations live with the host runtime; this core only
// consumes the yes/no availability signal.
type ToolInventory interface {
	AvailableTools() []string
}

// StaticInventory is a fixed tool inventory, handy for configuration-driven
// setups and tests.
type StaticInventory []string

// AvailableTools returns the fixed tool list.
func (s StaticInventory) AvailableTools() []string { return s }

// Preflight gates the start of an execution. It fails closed when the plan
// is not approved, when its live version no longer matches the version the
// caller fetched (stale read), or when any required tool is missing from the
// inventory. It performs no mutation.
func Preflight(store *Store, id string, expectedVersion int, inv ToolInventory) error {
	p, err := store.Get(id)
	if err != nil {
		return err
	}

	if p.Status != StatusApproved {
		return &ValidationError{
			ID:     id,
			Reason: ReasonStatus,
			Detail: fmt.Sprintf("plan is in %s status, execution requires approved", p.Status),
		}
	}

	if p.Version != expectedVersion {
		return &ValidationError{
			ID:     id,
			Reason: ReasonStaleVersion,
			Detail: fmt.Sprintf("plan was modified since it was fetched: expected version %d, found %d", expectedVersion, p.Version),
		}
	}

	available := make(map[string]bool)
	if inv != nil {
		for _, name := range inv.AvailableTools() {
			available[name] = true
		}
	}
	var missing []string
	for _, name := range p.ToolsRequired {
		if !available[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{
			ID:     id,
			Reason: ReasonMissingTool,
			Detail: fmt.Sprintf("required tools not available: %s", strings.Join(missing, ", ")),
		}
	}
	return nil
}
