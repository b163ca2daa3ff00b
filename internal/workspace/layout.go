// Package workspace manages the per-run scratch directory tree.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Layout is the scratch directory tree of a single pipeline run.
//
//	<root>/
//	  bin/device/   app build output
//	  bin/uitest/   UI-test build output
//	  Results/      test results
//	  Screenshots/  screenshots taken by the tests
type Layout struct {
	base string

	Root        string
	DeviceBin   string
	UITestBin   string
	Results     string
	Screenshots string
}

// New returns the layout rooted at baseDir/name. Nothing is created on disk.
func New(baseDir, name string) Layout {
	root := filepath.Join(baseDir, name)
	return Layout{
		base:        baseDir,
		Root:        root,
		DeviceBin:   filepath.Join(root, "bin", "device"),
		UITestBin:   filepath.Join(root, "bin", "uitest"),
		Results:     filepath.Join(root, "Results"),
		Screenshots: filepath.Join(root, "Screenshots"),
	}
}

// Recreate removes the root if it exists and creates every directory of the
// layout afresh.
func (l Layout) Recreate() error {
	if l.Root == "" {
		return fmt.Errorf("workspace root is empty")
	}
	if l.base != "" && !within(l.base, l.Root) {
		return fmt.Errorf("refusing to remove workspace %s: not a directory below %s", l.Root, l.base)
	}
	if err := os.RemoveAll(l.Root); err != nil {
		return fmt.Errorf("failed to remove workspace %s: %w", l.Root, err)
	}
	for _, dir := range []string{l.DeviceBin, l.UITestBin, l.Results, l.Screenshots} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// within reports whether path lies strictly below base.
func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// DirArg returns dir terminated by a path separator. MSBuild concatenates
// OutputPath with file names, and the Xamarin/.NET mobile SDK targets fail on
// an OutputPath without a trailing separator, so every directory handed to
// dotnet goes through here.
func DirArg(dir string) string {
	if strings.HasSuffix(dir, string(filepath.Separator)) || strings.HasSuffix(dir, "/") {
		return dir
	}
	return dir + string(filepath.Separator)
}
