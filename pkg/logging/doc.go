// Package logging provides subsystem-tagged, leveled logging for uirunner.
//
// It is a thin layer over log/slog. Every entry carries the subsystem that
// produced it and, once SetRunID has been called, the id of the pipeline run.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//	logging.SetRunID(uuid.NewString())
//
//	logging.Info("Build", "Restoring %s", projectPath)
//	logging.Debug("Device", "adb reported %d devices", len(serials))
//	logging.Error("Pipeline", err, "Run failed")
//
// # Streaming process output
//
// NewWriter adapts the logger to an io.Writer so that the output of external
// tools can be forwarded line by line while it is also being captured:
//
//	w := logging.NewWriter("dotnet", logging.LevelDebug)
//	defer w.Close()
//	cmd.Stdout = io.MultiWriter(&captured, w)
//
// # Subsystems
//
//   - Pipeline: stage sequencing and cleanup
//   - Build: dotnet restore, build and test
//   - Device: emulator and simulator provisioning
//   - Driver: Appium install and session lifecycle
//   - Config: tool settings and uitest.json synthesis
//   - Process: external tool invocation
package logging
