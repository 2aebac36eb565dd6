// Command phpwalk evaluates php-parser JSON documents. Each file runs in
// its own interpreter; echo output goes to stdout, notices and warnings to
// stderr, and -dump appends a JSON snapshot of the final environment
// table per file.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"

	"github.com/BurntSushi/toml"
	"golang.org/x/sync/errgroup"

	"github.com/phpwalk/phpwalk"
)

// config is the optional phpwalk.toml sidecar.
type config struct {
	// Quiet suppresses rendered notices and warnings.
	Quiet bool `toml:"quiet"`
	// LogLevel is the structured log threshold: debug, info, warn, error.
	LogLevel string `toml:"log-level"`
	// Jobs caps how many files evaluate at once; 0 runs them all.
	Jobs int `toml:"jobs"`
}

func main() {
	var (
		configPath string
		dump       bool
		quiet      bool
	)
	flag.StringVar(&configPath, "config", "", "path to a phpwalk.toml")
	flag.BoolVar(&dump, "dump", false, "print a JSON snapshot of the final environment table per file")
	flag.BoolVar(&quiet, "quiet", false, "suppress notices and warnings")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("usage: phpwalk [-config phpwalk.toml] [-dump] [-quiet] file.json ...")
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatalf("!! %+v", err)
	}
	if quiet {
		cfg.Quiet = true
	}

	if err := run(cfg, dump, flag.Args()); err != nil {
		log.Fatalf("!! %+v", err)
	}
}

func loadConfig(path string) (*config, error) {
	cfg := &config{LogLevel: "error"}
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func run(cfg *config, dump bool, files []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))

	// Files evaluate concurrently in isolated interpreters; the mutex
	// keeps each file's output block contiguous.
	var mu sync.Mutex
	var g errgroup.Group
	if cfg.Jobs > 0 {
		g.SetLimit(cfg.Jobs)
	}
	for _, path := range files {
		g.Go(func() error {
			var out, diag bytes.Buffer
			diagW := io.Writer(&diag)
			if cfg.Quiet {
				diagW = io.Discard
			}
			interp, err := phpwalk.New(
				phpwalk.WithStdout(&out),
				phpwalk.WithStderr(diagW),
				phpwalk.WithLogger(logger),
			)
			if err != nil {
				return err
			}
			runErr := interp.RunFile(path)

			mu.Lock()
			defer mu.Unlock()
			if _, err := io.Copy(os.Stdout, &out); err != nil {
				return err
			}
			if _, err := io.Copy(os.Stderr, &diag); err != nil {
				return err
			}
			if dump {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(interp.Table().Snapshot()); err != nil {
					return err
				}
			}
			return runErr
		})
	}
	return g.Wait()
}
