package phpwalk

import (
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/phpwalk/phpwalk/object"
)

// Config holds the collaborators an Interp is built from. Use the Option
// helpers rather than filling it directly.
type Config struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Globals map[string]object.Object
}

// Option adjusts the configuration of an Interp under construction.
type Option func(*Config) error

func defaultConfig() Config {
	return Config{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
	}
}

// WithStdout redirects echo output.
func WithStdout(w io.Writer) Option {
	return func(c *Config) error {
		c.Stdout = w
		return nil
	}
}

// WithStderr redirects rendered diagnostics.
func WithStderr(w io.Writer) Option {
	return func(c *Config) error {
		c.Stderr = w
		return nil
	}
}

// WithLogger replaces the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// WithGlobals seeds the global environment before the first statement
// runs. Array and object payloads passed here are adopted as is.
func WithGlobals(globals map[string]object.Object) Option {
	return func(c *Config) error {
		if c.Globals == nil {
			c.Globals = map[string]object.Object{}
		}
		for name, v := range globals {
			if v == nil {
				v = &object.Null{}
			}
			c.Globals[name] = v
		}
		return nil
	}
}

func sortedNames(m map[string]object.Object) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
