package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/text"

	"uirunner/internal/cli"
	"uirunner/internal/config"
	"uirunner/internal/pipeline"
	"uirunner/internal/process"
	"uirunner/pkg/logging"
)

// Application is a bootstrapped uirunner invocation.
type Application struct {
	config   *Config
	settings config.Config
	pipeline *pipeline.Pipeline
	progress *cli.Progress
}

// NewApplication configures logging, loads tool settings and wires the
// pipeline. It returns an error if the settings cannot be loaded.
func NewApplication(cfg *Config) (*Application, error) {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}

	terminal := cli.IsTerminal(cfg.Stderr)
	interactive := terminal && !cfg.Debug

	appLogLevel := logging.LevelInfo
	switch {
	case cfg.Debug:
		appLogLevel = logging.LevelDebug
	case interactive:
		// Stage progress is shown by the spinner instead.
		appLogLevel = logging.LevelWarn
	}
	logging.InitForCLI(appLogLevel, cfg.Stderr)

	if !terminal {
		text.DisableColors()
	}

	var settings config.Config
	if cfg.Settings != nil {
		settings = *cfg.Settings
	} else {
		path := cfg.SettingsPath
		if path == "" {
			path = config.DefaultConfigPath()
		}
		var err error
		settings, err = config.LoadConfig(path)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load settings from %s", path)
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		logging.Debug("Bootstrap", "Loaded settings from %s", path)
	}

	if cfg.Request.Configuration == "" {
		cfg.Request.Configuration = settings.Build.DefaultConfiguration
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	progress := cli.NewProgress(cfg.Stderr, interactive)
	return &Application{
		config:   cfg,
		settings: settings,
		pipeline: pipeline.NewDefault(settings, cwd, process.NewExecRunner(), progress, cfg.Stdout),
		progress: progress,
	}, nil
}

// Run executes the pipeline and prints the stage report. SIGINT and SIGTERM
// cancel the run.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := a.pipeline.Run(ctx, a.config.Request)
	a.progress.Render(a.config.Stdout)
	return err
}
