// Package config provides the tool settings for uirunner.
//
// Settings are read from a single YAML file, by default
// ~/.config/uirunner/config.yaml, which can be changed with the --settings
// flag. A missing file is not an error: the built-in defaults are used.
// Fields absent from the file keep their default values.
//
// # Example
//
//	workspace:
//	  dir: .uitest
//	build:
//	  defaultConfiguration: Release
//	appium:
//	  port: 4723
//	  startupTimeout: 60s
//	android:
//	  apiLevel: 30
//	  avdName: uitest_android_emulator
//	  bootTimeout: 5m
//	  shutdownGrace: 10s
//	ios:
//	  devicePrefix: iPhone
//
// These settings describe how the external tools are driven. They are
// unrelated to uitest.json, the per-run test configuration written by the
// uitestconfig package.
package config
