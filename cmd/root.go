package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"uirunner/internal/app"
	"uirunner/internal/cli"
	"uirunner/internal/pipeline"
	"uirunner/internal/platform"
)

// Exit codes for the CLI.
const (
	// ExitCodeSuccess indicates a passing run.
	ExitCodeSuccess = 0
	// ExitCodeError indicates any failure: invalid input, build, device or test failures.
	ExitCodeError = 1
)

const versionTemplate = `{{printf "uirunner version %s\n" .Version}}`

// version is injected by main at build time.
var version = "dev"

// rootOptions holds the values of the command line flags.
type rootOptions struct {
	uitestProjectPath   string
	appProjectPath      string
	platform            string
	configuration       string
	uitestConfiguration string
	settingsPath        string
	debug               bool
}

// singleDashAliases maps the multi-letter single-dash spellings accepted on
// the command line to their long flag names.
var singleDashAliases = map[string]string{
	"-uitest":    "--uitest-project-path",
	"-app":       "--app-project-path",
	"-ui-config": "--uitest-configuration",
}

// newRootCmd creates the uirunner command. It has no subcommands.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "uirunner",
		Short: "Build a mobile app and its UI tests, provision a device and run the tests",
		Long: `uirunner builds a .NET mobile app and its UI-test project, provisions an
Android emulator or iOS simulator, starts an Appium server and runs the
compiled tests against the device.

All build output lives in a fresh .uitest directory below the current
directory:

  .uitest/bin/device    app build output
  .uitest/bin/uitest    UI-test build output and the generated uitest.json
  .uitest/Results       test results
  .uitest/Screenshots   screenshots taken by the tests

The generated uitest.json starts from --uitest-configuration when given, or
from a uitest.json copied into the UI-test output by the build, and is
completed with the app path and the provisioned device.`,
		Example: `  uirunner -uitest tests/App.UITests.csproj -app src/App.csproj -p Android
  uirunner --uitest-project-path tests/App.UITests.csproj --app-project-path src/App.csproj \
    --platform iOS --configuration Debug -ui-config ci/uitest.json`,
		Args: cobra.NoArgs,
		// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
		SilenceUsage: true,
		// Errors are printed once, in color, by Execute.
		SilenceErrors: true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, opts)
		},
	}
	cmd.SetVersionTemplate(versionTemplate)

	flags := cmd.Flags()
	flags.SetNormalizeFunc(normalizeFlagName)
	flags.StringVar(&opts.uitestProjectPath, "uitest-project-path", "", "Path to the UI-test .csproj (alias -uitest)")
	flags.StringVar(&opts.appProjectPath, "app-project-path", "", "Path to the app .csproj (alias -app)")
	flags.StringVarP(&opts.platform, "platform", "p", "", "Target platform: Android or iOS")
	flags.StringVarP(&opts.configuration, "configuration", "c", "Release", "Build configuration name")
	flags.StringVar(&opts.uitestConfiguration, "uitest-configuration", "", "Override uitest.json (alias -ui-config)")
	flags.StringVar(&opts.settingsPath, "settings", "", "Tool settings file (default ~/.config/uirunner/config.yaml)")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging, including tool output")

	for _, name := range []string{"uitest-project-path", "app-project-path", "platform"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func runRoot(cmd *cobra.Command, opts *rootOptions) error {
	plat, err := platform.Parse(opts.platform)
	if err != nil {
		return err
	}

	req := pipeline.Request{
		UITestProject:  opts.uitestProjectPath,
		AppProject:     opts.appProjectPath,
		Platform:       plat,
		OverrideConfig: opts.uitestConfiguration,
	}
	// Without an explicit flag the settings file decides.
	if cmd.Flags().Changed("configuration") {
		req.Configuration = opts.configuration
	}

	cfg := app.NewConfig(opts.debug, opts.settingsPath, req)
	cfg.Stdout = cmd.OutOrStdout()
	cfg.Stderr = cmd.ErrOrStderr()

	application, err := app.NewApplication(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

// normalizeFlagName accepts underscores in long flag names.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// normalizeArgs rewrites the multi-letter single-dash aliases, including
// their -alias=value form, to long flags. Arguments after "--" are left alone.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}
		name, value, hasValue := strings.Cut(arg, "=")
		if long, ok := singleDashAliases[name]; ok {
			if hasValue {
				arg = long + "=" + value
			} else {
				arg = long
			}
		}
		out = append(out, arg)
	}
	return out
}

// SetVersion sets the version reported by --version.
func SetVersion(v string) {
	version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return version
}

// Execute runs the command line and exits with the resulting exit code.
// This function is called by main.main().
func Execute() {
	if !cli.IsTerminal(os.Stderr) {
		text.DisableColors()
	}

	cmd := newRootCmd()
	cmd.SetArgs(normalizeArgs(os.Args[1:]))

	if err := cmd.Execute(); err != nil {
		cli.PrintError(cmd.ErrOrStderr(), err)
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the exit code for err.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	// Every failure category shares one code; the message tells them apart.
	return ExitCodeError
}
