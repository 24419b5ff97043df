package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spt/internal/events"
	"github.com/desertthunder/spt/internal/services"
	"github.com/desertthunder/spt/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	provider services.Provider
	spotify  *services.SpotifyService
	logger   *log.Logger
	output   io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Provider services.Provider
	Spotify  *services.SpotifyService
	Logger   *log.Logger
	Output   io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Provider == nil && opts.Spotify != nil {
		opts.Provider = opts.Spotify
	}

	return &Runner{
		config:   opts.Config,
		provider: opts.Provider,
		spotify:  opts.Spotify,
		logger:   opts.Logger,
		output:   opts.Output,
	}
}

// openDatabase opens the registry database from the configuration.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	return db, nil
}

// storePath returns the event log path, preferring the flag value.
func (r *Runner) storePath(flag string) string {
	if flag != "" {
		return flag
	}
	return r.config.Store.Path
}

// loadStore loads the event log, starting empty on first run.
func (r *Runner) loadStore(path string) (*events.Store, error) {
	store, err := events.LoadOrCreate(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load event log: %w", err)
	}
	return store, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
