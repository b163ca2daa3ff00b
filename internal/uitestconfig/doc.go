// Package uitestconfig synthesizes the uitest.json run configuration that
// the compiled UI-test project reads at startup.
//
// A configuration is built from a base file and then overwritten with the
// fields that are only known once the run is underway. The base file is
// taken, in order of precedence, from an explicit override path, from a
// uitest.json already sitting in the test build output, or from defaults.
// Base files may contain comments and trailing commas, and field names are
// matched case-insensitively.
//
// The platform, app path and device fields are always recomputed. The
// screenshots path is defaulted when empty. Capabilities and settings are
// kept as supplied, and any other top-level field is written back verbatim.
//
// Synthesis runs in two phases so that cheap file checks can fail before an
// expensive device is provisioned:
//
//	draft, err := s.Prepare(platform.Android, appOut, testOut, "")
//	// start the driver session
//	cfg, err := s.Finalize(ctx, draft)
package uitestconfig
