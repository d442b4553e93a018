package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lunchroulette/lunchd/internal/models"
	"github.com/lunchroulette/lunchd/internal/repositories"
	"github.com/lunchroulette/lunchd/internal/services"
	"github.com/lunchroulette/lunchd/internal/session"
	"github.com/lunchroulette/lunchd/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	sessions   session.Store
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Sessions   session.Store
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

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		sessions:   opts.Sessions,
	}
}

// SetLogger swaps the runner's logger, e.g. for file logging under the TUI.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, accountCommand, favCommand, usersCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// reloadConfig loads the config file named by the --config flag, falling
// back to the runner's current config when it cannot be read.
func (r *Runner) reloadConfig(cmd *cli.Command) *shared.Config {
	configPath := cmd.String("config")
	if configPath == "" {
		return r.config
	}

	if _, err := os.Stat(configPath); err == nil {
		if config, err := shared.LoadConfig(configPath); err == nil {
			return config
		} else {
			r.logger.Warn("failed to load config, using defaults", "error", err)
		}
	}
	return r.config
}

// openStore builds the configured collection store. The backend is "sqlite"
// or "document"; cleanup closes the database when there is one.
func (r *Runner) openStore(config *shared.Config, backend string) (models.CollectionStore, func(), error) {
	switch backend {
	case "document":
		return repositories.NewDocumentRepository(config.Document.Path), func() {}, nil
	case "sqlite", "":
		db, err := shared.NewDatabase(config.Database.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return repositories.NewCollectionRepository(db), func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown backend %q", shared.ErrInvalidFlag, backend)
	}
}

// newCollectionAPI builds the client for the configured backend: "http"
// talks to a running lunchd server, while "sqlite"/"document" operate on
// local storage directly (the offline variant).
func (r *Runner) newCollectionAPI(config *shared.Config) (services.CollectionAPI, func(), error) {
	switch config.Client.Backend {
	case "http", "":
		client := r.httpClient
		if client == nil {
			timeout := time.Duration(config.Client.TimeoutSeconds) * time.Second
			if timeout <= 0 {
				timeout = 10 * time.Second
			}
			client = &http.Client{Timeout: timeout}
		}
		return services.NewCollectionClient(config.Client.BaseURL, client), func() {}, nil
	default:
		store, cleanup, err := r.openStore(config, config.Client.Backend)
		if err != nil {
			return nil, nil, err
		}
		return services.NewLocalCollection(store), cleanup, nil
	}
}

// newManager builds the session manager for account commands.
func (r *Runner) newManager(config *shared.Config) (*session.Manager, func(), error) {
	api, cleanup, err := r.newCollectionAPI(config)
	if err != nil {
		return nil, nil, err
	}

	sessions := r.sessions
	if sessions == nil {
		sessions = session.NewFileStore(config.Session.Path)
	}

	manager := session.NewManager(session.ManagerOpts{
		API:        api,
		Sessions:   sessions,
		Logger:     r.logger,
		MaxRetries: config.Client.MaxRetries,
	})

	if err := manager.Restore(); err != nil {
		r.logger.Warn("failed to restore session", "error", err)
	}

	return manager, cleanup, nil
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
