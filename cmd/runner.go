package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/coursedeck/internal/catalog"
	"github.com/desertthunder/coursedeck/internal/models"
	"github.com/desertthunder/coursedeck/internal/repositories"
	"github.com/desertthunder/coursedeck/internal/session"
	"github.com/desertthunder/coursedeck/internal/shared"
	"github.com/desertthunder/coursedeck/internal/sheets"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	db         *sql.DB
	gateway    catalog.Gateway
}

// RunnerOpts contains configuration options for creating a Runner.
//
// DB and Gateway are injection points for tests; when nil the runner opens
// the configured database and builds a spreadsheet client on demand.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB
	Gateway    catalog.Gateway
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
		gateway:    opts.Gateway,
	}
}

// SetLogger replaces the runner's logger, used when the TUI owns stderr.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, accountCommand, catalogCommand, progressCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig refreshes the runner config from the command's --config flag when the file exists.
func (r *Runner) loadConfig(cmd *cli.Command) *shared.Config {
	configPath := cmd.String("config")
	if configPath == "" {
		return r.config
	}

	if _, err := os.Stat(configPath); err == nil {
		if config, err := shared.LoadConfig(configPath); err == nil {
			r.config = config
		} else {
			r.logger.Warn("failed to load config, keeping current settings", "error", err)
		}
	}

	return r.config
}

// openDB opens the configured database with migrations applied, reusing the handle across commands.
func (r *Runner) openDB() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	return db, nil
}

// newGateway returns the injected gateway or a spreadsheet client for the configured sheet.
func (r *Runner) newGateway() catalog.Gateway {
	if r.gateway == nil {
		r.gateway = sheets.NewClient(r.config.Spreadsheet.ID, r.httpClient)
	}
	return r.gateway
}

// workspace bundles the per-command dependency graph for catalog operations.
//
// Requires a signed-in session; the gateway is authenticated with the stored
// credential before use.
type workspace struct {
	current  *models.Session
	manager  *session.Manager
	store    *repositories.SessionRepository
	watched  *repositories.WatchedRepository
	progress *repositories.ProgressRepository
	roster   *session.Roster
	gateway  catalog.Gateway
	loader   *catalog.Loader
	syncer   *catalog.Syncer
}

func (r *Runner) workspace(ctx context.Context) (*workspace, error) {
	db, err := r.openDB()
	if err != nil {
		return nil, err
	}

	store := repositories.NewSessionRepository(db)
	current, err := store.Current()
	if err != nil {
		return nil, fmt.Errorf("%w: run 'coursedeck auth login' first", shared.ErrNotAuthenticated)
	}

	gateway := r.newGateway()
	if auth, ok := gateway.(session.Authenticator); ok {
		if err := auth.Authenticate(ctx, map[string]string{"access_token": current.Token()}); err != nil {
			return nil, err
		}
	}

	spread := r.config.Spreadsheet
	loader := catalog.NewLoader(gateway, spread.ContentSheet, spread.ContentRange, r.logger)
	syncer := catalog.NewSyncer(gateway, spread.ContentSheet, spread.ContentRange, r.logger)
	roster := session.NewRoster(gateway, spread.RosterSheet, spread.RosterRange, r.logger)
	watched := repositories.NewWatchedRepository(db)
	progress := repositories.NewProgressRepository(db)

	manager := session.NewManager(session.ManagerOpts{
		Config:      r.config,
		Store:       store,
		Watched:     watched,
		Progress:    progress,
		Roster:      roster,
		Provisioner: syncer,
		Logger:      r.logger,
	})

	return &workspace{
		current:  current,
		manager:  manager,
		store:    store,
		watched:  watched,
		progress: progress,
		roster:   roster,
		gateway:  gateway,
		loader:   loader,
		syncer:   syncer,
	}, nil
}

// dropIfRejected clears the stored session when err marks a rejected credential, then passes err through.
func (r *Runner) dropIfRejected(manager *session.Manager, err error) error {
	if err == nil {
		return nil
	}
	if manager.Invalidate(err) {
		r.writePlainln("⚠ Stored credential was rejected. Run 'coursedeck auth login' to sign in again.")
	}
	return err
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

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
