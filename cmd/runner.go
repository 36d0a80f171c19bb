package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lfmgenre/internal/lastfm"
	"github.com/desertthunder/lfmgenre/internal/ratelimit"
	"github.com/desertthunder/lfmgenre/internal/repositories"
	"github.com/desertthunder/lfmgenre/internal/shared"
	"github.com/desertthunder/lfmgenre/internal/tagfile"
	"github.com/desertthunder/lfmgenre/internal/tagger"
	"github.com/desertthunder/lfmgenre/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database and the tag engine are built on first use so that commands
// which need neither (config, setup) work without an API key.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	files      tasks.FileIO
	logger     *log.Logger
	output     io.Writer
	db         *sql.DB
	ownsDB     bool
	engine     *tasks.TagEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Files      tasks.FileIO
	DB         *sql.DB
	Logger     *log.Logger
	Output     io.Writer
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
		opts.HTTPClient = &http.Client{Timeout: opts.Config.LastFM.Timeout()}
	}
	if opts.Files == nil {
		opts.Files = tagfile.Files{}
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		files:      opts.Files,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, tagCommand, lookupCommand, tracksCommand, runsCommand, configCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration file named by --config and applies the log level.
//
// A missing file is only an error when --config was given explicitly.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	if !cmd.IsSet("config") && r.configPath != "" {
		path = r.configPath
	}
	r.configPath = path

	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return ctx, err
		}
		r.config = config
		r.logger.Debug("loaded config", "path", path)
	} else if cmd.IsSet("config") {
		return ctx, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
	} else {
		r.config.ApplyEnv()
	}

	level := shared.ParseLogLevel(r.config.Log.Level)
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)
	return ctx, nil
}

// Close releases the database connection if the runner opened it.
func (r *Runner) Close() error {
	if r.db == nil || !r.ownsDB {
		return nil
	}
	err := r.db.Close()
	r.db, r.engine = nil, nil
	return err
}

// SetLogger replaces the logger used by the runner and anything it builds afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// database opens and migrates the configured database on first use.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db, r.ownsDB = db, true
	return db, nil
}

// tagEngine wires the Last.fm client, tag filter, tagger and run recorder together.
func (r *Runner) tagEngine() (*tasks.TagEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	limiter := ratelimit.New(r.config.LastFM.MinDelay())
	client, err := lastfm.NewClient(r.config.LastFM, r.httpClient, limiter, r.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Last.fm client: %w", err)
	}

	ignore, err := lastfm.LoadIgnoreList(r.config.Tagging.IgnoreTagsPath)
	if err != nil {
		return nil, err
	}
	filter := lastfm.NewFilter(r.config.Tagging.MinTagUsage, ignore)

	t, err := tagger.New(tagger.Options{
		Source:     tagger.NewLastFMSource(client, filter),
		JoinTags:   r.config.Tagging.JoinTags,
		GenreField: r.config.Tagging.GenreField,
		Logger:     r.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInternal, err)
	}

	db, err := r.database()
	if err != nil {
		return nil, err
	}
	recorder := repositories.NewRunRecorder(repositories.NewRunRepository(db), repositories.NewTrackRepository(db))

	r.engine = tasks.NewTagEngine(t, r.files, recorder, r.logger)
	return r.engine, nil
}

// runOptions merges the [library] settings with command flags.
func (r *Runner) runOptions(cmd *cli.Command) tasks.RunOptions {
	opts := tasks.RunOptions{
		DryRun:     r.config.Library.DryRun || cmd.Bool("dry-run"),
		Workers:    r.config.Library.Workers,
		Extensions: r.config.Library.Extensions,
	}
	if cmd.IsSet("workers") {
		opts.Workers = int(cmd.Int("workers"))
	}
	return opts
}

func (r *Runner) paths(cmd *cli.Command) ([]string, error) {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: at least one file or directory is required", shared.ErrMissingArgument)
	}
	return paths, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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

// notFound reports whether err is a missing-row error from a repository.
func notFound(err error) bool {
	return errors.Is(err, shared.ErrTrackNotFound) || errors.Is(err, shared.ErrRunNotFound)
}
