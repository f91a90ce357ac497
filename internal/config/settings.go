// Package config handles the project-level settings document under
// .greenlight/. The store consumes these settings but does not own them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const settingsFile = "settings.yaml"

// Documented defaults, used when the settings file or individual keys are
// absent.
const (
	DefaultStaleAfterDays         = 14
	DefaultExecutorTimeoutMinutes = 30
)

const defaultSettingsYAML = `# greenlight project settings
version: 1

# Proposals older than this many days are considered stale (informational).
stale_after_days: 14

# An executing plan past this many minutes is flagged as stalled on restart.
executor_timeout_minutes: 30

# Command invoked to dispatch a plan step to an agent, e.g. "my-agent step".
# Leave empty to require --agent on "greenlight plan run".
agent_command: ""

# Capability names available to the executor, checked by preflight.
available_tools: []
`

// Settings models .greenlight/settings.yaml.
type Settings struct {
	Version                int      `yaml:"version"`
	StaleAfterDays         int      `yaml:"stale_after_days"`
	ExecutorTimeoutMinutes int      `yaml:"executor_timeout_minutes"`
	AgentCommand           string   `yaml:"agent_command"`
	AvailableTools         []string `yaml:"available_tools"`
}

// Default returns the documented fallback settings.
func Default() Settings {
	return Settings{
		Version:                1,
		StaleAfterDays:         DefaultStaleAfterDays,
		ExecutorTimeoutMinutes: DefaultExecutorTimeoutMinutes,
	}
}

// Path returns the settings file location for a project directory.
func Path(projectDir string) string {
	return filepath.Join(projectDir, ".greenlight", settingsFile)
}

// Load reads the project settings, falling back to defaults when the file is
// missing. Zero or negative durations also fall back, so a partially edited
// file cannot disable stalled detection.
func Load(projectDir string) (Settings, error) {
	data, err := os.ReadFile(Path(projectDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Settings{}, fmt.Errorf("config: read settings: %w", err)
	}

	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("config: parse settings: %w", err)
	}
	if s.StaleAfterDays <= 0 {
		s.StaleAfterDays = DefaultStaleAfterDays
	}
	if s.ExecutorTimeoutMinutes <= 0 {
		s.ExecutorTimeoutMinutes = DefaultExecutorTimeoutMinutes
	}
	return s, nil
}

// WriteDefault creates the settings file with commented defaults. It refuses
// to overwrite an existing file.
func WriteDefault(projectDir string) error {
	path := Path(projectDir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: create settings directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists", path)
	}
	if err := os.WriteFile(path, []byte(defaultSettingsYAML), 0644); err != nil {
		return fmt.Errorf("config: write settings: %w", err)
	}
	return nil
}

// ExecutorTimeout returns the stalled-plan timeout as a duration.
func (s Settings) ExecutorTimeout() time.Duration {
	return time.Duration(s.ExecutorTimeoutMinutes) * time.Minute
}

// StaleAfter returns the proposal staleness window as a duration.
func (s Settings) StaleAfter() time.Duration {
	return time.Duration(s.StaleAfterDays) * 24 * time.Hour
}
