// Package app bootstraps and runs a single uirunner invocation.
//
// Bootstrap happens in NewApplication:
//
//  1. Logging is configured from the debug flag and whether stderr is a
//     terminal. Interactive runs show stage spinners and only log warnings;
//     non-interactive runs log every stage at info level.
//  2. Tool settings are loaded from the settings file, or defaults.
//  3. The pipeline is wired against the real process runner.
//
// Run executes the pipeline with SIGINT and SIGTERM cancelling the run
// context, then prints the stage report. A cancelled run skips the remaining
// tool invocations and still releases the driver session.
//
// Example:
//
//	cfg := app.NewConfig(false, "", req)
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to initialize application: %w", err)
//	}
//	return application.Run(ctx)
package app
