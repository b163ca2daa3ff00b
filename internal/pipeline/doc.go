// Package pipeline runs one UI-test execution end to end.
//
// A run is strictly sequential:
//
//  1. preflight: required executables are on PATH
//  2. validate: project paths and platform
//  3. workspace: the scratch layout is recreated
//  4. build app, build tests: dotnet restore and build into the layout
//  5. prepare config: app artifact lookup and base uitest.json load
//  6. start driver: Appium is installed if missing and started
//  7. provision device: the device is booted and uitest.json is written
//  8. run tests: dotnet test against the compiled UI-test assembly
//
// The driver session is released on every exit path once it has been
// acquired. Each stage is timed and reported to an Observer; stages that
// never ran are reported as skipped when the run ends.
package pipeline
