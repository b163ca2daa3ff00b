// Package device provisions the emulator, simulator or connected device a
// pipeline run targets and reports its identity.
//
// Provisioning branches once on the platform:
//
//   - Android prefers an already connected device. When none is connected it
//     installs the emulator system image, creates the uirunner AVD if needed,
//     starts the emulator and polls adb until the device has booted.
//   - iOS shuts every simulator down, picks one from the newest iOS runtime
//     (preferring iPhone models) and boots it.
//
// Both branches first make sure the matching Appium driver is installed.
// Booted emulators and simulators are left running after the run so that
// the next run can reuse them.
package device
