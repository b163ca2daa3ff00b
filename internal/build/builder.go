package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"uirunner/internal/process"
	"uirunner/internal/workspace"
	"uirunner/pkg/logging"
)

const buildSubsystem = "Build"

// Options control a single project build.
type Options struct {
	// OutputDir receives the build output. It is passed to MSBuild as
	// OutputPath with a trailing separator.
	OutputDir string
	// Configuration is passed as the Configuration property when non-empty.
	Configuration string
	// Properties are additional MSBuild properties.
	Properties map[string]string
	// Targets are additional MSBuild targets, run after the default build.
	Targets []string
}

// Builder runs dotnet restore, build and test.
type Builder struct {
	runner process.Runner
	dotnet string
	logger string
}

// NewBuilder creates a builder invoking the given dotnet executable.
func NewBuilder(runner process.Runner, dotnet, testLogger string) *Builder {
	if dotnet == "" {
		dotnet = "dotnet"
	}
	return &Builder{runner: runner, dotnet: dotnet, logger: testLogger}
}

// Restore restores the NuGet dependencies of project.
func (b *Builder) Restore(ctx context.Context, project string) error {
	logging.Info(buildSubsystem, "Restoring %s", project)
	return b.run(ctx, "restore", project)
}

// Build compiles project into opts.OutputDir.
func (b *Builder) Build(ctx context.Context, project string, opts Options) error {
	if opts.OutputDir == "" {
		return fmt.Errorf("build of %s: output directory is required", project)
	}
	logging.Info(buildSubsystem, "Building %s into %s", project, opts.OutputDir)
	return b.run(ctx, buildArgs(project, opts)...)
}

// Test runs the compiled UI-test assembly, writing results into resultsDir.
func (b *Builder) Test(ctx context.Context, assembly, resultsDir string) error {
	logging.Info(buildSubsystem, "Running tests in %s", assembly)
	args := []string{"test", assembly, "--results-directory", workspace.DirArg(resultsDir)}
	if b.logger != "" {
		args = append(args, "--logger", b.logger)
	}
	return b.run(ctx, args...)
}

func buildArgs(project string, opts Options) []string {
	props := map[string]string{}
	for k, v := range opts.Properties {
		props[k] = v
	}
	props["OutputPath"] = workspace.DirArg(opts.OutputDir)
	if opts.Configuration != "" {
		props["Configuration"] = opts.Configuration
	}

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := []string{"build", project, "--no-restore"}
	if len(opts.Targets) > 0 {
		targets := append([]string{"Build"}, opts.Targets...)
		args = append(args, "-t:"+strings.Join(targets, ";"))
	}
	for _, k := range keys {
		args = append(args, fmt.Sprintf("-p:%s=%s", k, props[k]))
	}
	return args
}

func (b *Builder) run(ctx context.Context, args ...string) error {
	res, err := b.runner.Run(ctx, process.Command{
		Name:      b.dotnet,
		Args:      args,
		Subsystem: "dotnet",
	})
	if err != nil {
		return fmt.Errorf("dotnet %s: %w", args[0], err)
	}
	if res.Failed() {
		return &ToolError{
			Tool:     b.dotnet,
			Args:     args,
			ExitCode: res.ExitCode,
			Output:   res.Diagnostics(),
		}
	}
	return nil
}

// FindTestAssembly returns the compiled assembly of project inside outputDir,
// named after the project file.
func FindTestAssembly(outputDir, project string) (string, error) {
	name := strings.TrimSuffix(filepath.Base(project), filepath.Ext(project)) + ".dll"
	path := filepath.Join(outputDir, name)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path, nil
	}
	return "", &AssemblyNotFoundError{Project: project, OutputDir: outputDir}
}
