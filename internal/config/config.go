package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the application configuration.
type Config struct {
	// MaxHistoryItems bounds the undo/redo history.
	MaxHistoryItems int `toml:"max_history_items"`

	// ContinueAfterError keeps executing later group members after a
	// member fails.
	ContinueAfterError bool `toml:"continue_after_error"`

	// AddToHistoryAfterError records a group in history even when some
	// members failed.
	AddToHistoryAfterError bool `toml:"add_to_history_after_error"`

	// ScriptDir is a directory of Lua command scripts loaded at startup.
	ScriptDir string `toml:"script_dir"`

	// LogLevel sets the log verbosity: trace, debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// EnableMetrics enables execution timing and statistics collection.
	EnableMetrics bool `toml:"enable_metrics"`
}

// ParseError reports a malformed configuration file.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		MaxHistoryItems:    100,
		ContinueAfterError: true,
		LogLevel:           "info",
	}
}

// Load reads a TOML configuration file, applying defaults for absent keys.
// A missing file is not an error and yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), &ParseError{
			Path:    path,
			Message: err.Error(),
			Err:     err,
		}
	}

	return cfg, nil
}
