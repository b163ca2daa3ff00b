// Package process runs the external command-line tools the pipeline depends
// on (dotnet, adb, avdmanager, emulator, xcrun, npm, appium).
//
// Runner.Run executes a tool to completion. Its standard output and standard
// error are drained concurrently into capture buffers and into the logging
// sink, so long builds remain visible with --debug while the full text is
// still available for error reporting.
//
// Runner.Start launches a long-lived tool (the Appium server, an Android
// emulator) in its own process group and returns a Process that can be
// watched and terminated.
//
// Cancellation is cooperative: a context that is already done suppresses the
// invocation, but an in-flight process is never killed because the context
// was cancelled. Terminating long-lived processes is the caller's job.
package process
