package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"uirunner/internal/build"
	"uirunner/internal/config"
	"uirunner/internal/device"
	"uirunner/internal/driver"
	"uirunner/internal/platform"
	"uirunner/internal/process"
	"uirunner/internal/uitestconfig"
	"uirunner/internal/workspace"
	"uirunner/pkg/logging"
)

const (
	pipelineSubsystem = "Pipeline"

	projectExtension = ".csproj"
	driverRuntime    = "node"
)

// Request holds the inputs of one run.
type Request struct {
	UITestProject string
	AppProject    string
	Platform      platform.Platform
	// Configuration is the build configuration name. Empty leaves the
	// project default in place.
	Configuration string
	// OverrideConfig is an optional uitest.json that takes precedence over
	// one found in the test build output.
	OverrideConfig string
}

// ProjectBuilder restores, builds and tests dotnet projects.
type ProjectBuilder interface {
	Restore(ctx context.Context, project string) error
	Build(ctx context.Context, project string, opts build.Options) error
	Test(ctx context.Context, assembly, resultsDir string) error
}

// DriverSession is a running automation driver.
type DriverSession interface {
	Release() error
}

// DriverManager installs and starts the automation driver.
type DriverManager interface {
	Install(ctx context.Context) error
	Start(ctx context.Context, workingDir string) (DriverSession, error)
}

// Dependencies are the collaborators of a Pipeline.
type Dependencies struct {
	Builder     ProjectBuilder
	Drivers     DriverManager
	Provisioner uitestconfig.Provisioner
	// LookPath resolves executables during preflight.
	LookPath func(name string) (string, error)
	Observer Observer
	// ConfigOutput receives the synthesized uitest.json. Nil disables it.
	ConfigOutput io.Writer
}

// Pipeline executes runs against a fixed set of collaborators.
type Pipeline struct {
	cfg     config.Config
	baseDir string
	deps    Dependencies
}

// New creates a pipeline whose scratch layout lives below baseDir.
func New(cfg config.Config, baseDir string, deps Dependencies) *Pipeline {
	return &Pipeline{cfg: cfg, baseDir: baseDir, deps: deps}
}

// NewDefault creates a pipeline that drives the real tools through runner.
func NewDefault(cfg config.Config, baseDir string, runner process.Runner, observer Observer, configOutput io.Writer) *Pipeline {
	drivers := driver.NewManager(runner, cfg.Appium)
	return New(cfg, baseDir, Dependencies{
		Builder:      build.NewBuilder(runner, cfg.Build.Dotnet, cfg.Build.TestLogger),
		Drivers:      driverManager{drivers},
		Provisioner:  device.NewProvisioner(runner, drivers, cfg),
		LookPath:     runner.LookPath,
		Observer:     observer,
		ConfigOutput: configOutput,
	})
}

// driverManager adapts driver.Manager to DriverManager.
type driverManager struct {
	*driver.Manager
}

func (m driverManager) Start(ctx context.Context, workingDir string) (DriverSession, error) {
	session, err := m.Manager.Start(ctx, workingDir)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Run executes every stage for req. The driver session, once started, is
// released whatever the outcome.
func (p *Pipeline) Run(ctx context.Context, req Request) (err error) {
	runID := uuid.NewString()
	logging.SetRunID(runID)
	defer logging.SetRunID("")
	logging.Info(pipelineSubsystem, "Starting %s run %s", req.Platform, runID)

	t := newTracker(p.deps.Observer)
	defer t.finish()

	if err := t.run(StagePreflight, p.preflight); err != nil {
		return err
	}
	if err := t.run(StageValidate, func() error { return validate(req) }); err != nil {
		return err
	}

	layout := workspace.New(p.baseDir, p.cfg.Workspace.Dir)
	if err := t.run(StageWorkspace, layout.Recreate); err != nil {
		return err
	}

	if err := t.run(StageBuildApp, func() error {
		return p.buildProject(ctx, req.AppProject, p.appBuildOptions(req, layout))
	}); err != nil {
		return err
	}
	if err := t.run(StageBuildTests, func() error {
		return p.buildProject(ctx, req.UITestProject, build.Options{
			OutputDir:     layout.UITestBin,
			Configuration: req.Configuration,
		})
	}); err != nil {
		return err
	}

	synth := uitestconfig.NewSynthesizer(p.deps.Provisioner, uitestconfig.Options{
		ScreenshotsDir: workspace.DirArg(layout.Screenshots),
		Output:         p.deps.ConfigOutput,
	})
	var (
		draft    *uitestconfig.Draft
		assembly string
	)
	if err := t.run(StagePrepareConfig, func() error {
		var err error
		if assembly, err = build.FindTestAssembly(layout.UITestBin, req.UITestProject); err != nil {
			return err
		}
		draft, err = synth.Prepare(req.Platform, layout.DeviceBin, layout.UITestBin, req.OverrideConfig)
		return err
	}); err != nil {
		return err
	}

	var session DriverSession
	if err := t.run(StageStartDriver, func() error {
		if err := p.deps.Drivers.Install(ctx); err != nil {
			return err
		}
		var err error
		session, err = p.deps.Drivers.Start(ctx, layout.Root)
		return err
	}); err != nil {
		return err
	}
	defer func() {
		if releaseErr := t.run(StageReleaseDriver, session.Release); releaseErr != nil && err == nil {
			err = fmt.Errorf("failed to release driver session: %w", releaseErr)
		}
	}()

	if err := t.run(StageProvisionDevice, func() error {
		_, err := synth.Finalize(ctx, draft)
		return err
	}); err != nil {
		return err
	}

	return t.run(StageRunTests, func() error {
		return p.deps.Builder.Test(ctx, assembly, layout.Results)
	})
}

// preflight checks that the tools the run depends on are installed before
// anything touches the filesystem.
func (p *Pipeline) preflight() error {
	for _, name := range []string{driverRuntime, p.dotnet()} {
		path, err := p.deps.LookPath(name)
		if err != nil {
			return &PreconditionError{Requirement: name, Err: err}
		}
		logging.Debug(pipelineSubsystem, "Found %s at %s", name, path)
	}
	return nil
}

func (p *Pipeline) dotnet() string {
	if p.cfg.Build.Dotnet != "" {
		return p.cfg.Build.Dotnet
	}
	return "dotnet"
}

func validate(req Request) error {
	if err := validateProject("uitest project path", req.UITestProject); err != nil {
		return err
	}
	if err := validateProject("app project path", req.AppProject); err != nil {
		return err
	}
	return req.Platform.Validate()
}

func validateProject(field, path string) error {
	if path == "" {
		return &ValidationError{Field: field, Value: path, Reason: "path is required"}
	}
	if !strings.EqualFold(filepath.Ext(path), projectExtension) {
		return &ValidationError{Field: field, Value: path, Reason: "expected a " + projectExtension + " project file"}
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return &ValidationError{Field: field, Value: path, Reason: "file does not exist"}
	}
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", field, err)
	}
	if info.IsDir() {
		return &ValidationError{Field: field, Value: path, Reason: "is a directory"}
	}
	return nil
}

func (p *Pipeline) appBuildOptions(req Request, layout workspace.Layout) build.Options {
	opts := build.Options{
		OutputDir:     layout.DeviceBin,
		Configuration: req.Configuration,
	}
	switch req.Platform {
	case platform.Android:
		opts.Targets = []string{"SignAndroidPackage"}
	case platform.IOS:
		opts.Properties = map[string]string{"RuntimeIdentifier": p.cfg.Build.IOSRuntimeIdentifier}
	}
	return opts
}

func (p *Pipeline) buildProject(ctx context.Context, project string, opts build.Options) error {
	if err := p.deps.Builder.Restore(ctx, project); err != nil {
		return err
	}
	return p.deps.Builder.Build(ctx, project, opts)
}
