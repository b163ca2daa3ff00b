// Package driver manages the Appium automation server.
//
// Manager.Install makes sure the appium CLI is present (installing it with
// npm when missing) and EnsurePlatformDriver installs the Appium driver a
// platform needs (uiautomator2, xcuitest). Manager.Start launches the server
// bound to the run's working directory and only returns once it answers on
// its /status endpoint, or fails fast when the process exits during startup.
//
// The returned Session must be released exactly once by its owner; Release
// is idempotent so a deferred call after an explicit one is harmless.
package driver
