// Package build drives the .NET CLI: restoring and compiling the app and
// UI-test projects, and running the compiled UI-test assembly.
//
// Every operation treats a non-zero exit code or any text on standard error
// as a failure and returns a *ToolError carrying the captured diagnostics.
package build
