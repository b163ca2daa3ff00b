package uitestconfig

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"uirunner/internal/platform"
)

const (
	androidArtifactSuffix = "-Signed.apk"
	iosArtifactSuffix     = ".app"
)

// FindAppArtifact locates the single installable artifact the app build
// wrote below dir: a signed APK for Android or an .app bundle for iOS.
func FindAppArtifact(plat platform.Platform, dir string) (string, error) {
	var suffix string
	var wantDir bool
	switch plat {
	case platform.Android:
		suffix = androidArtifactSuffix
	case platform.IOS:
		suffix, wantDir = iosArtifactSuffix, true
	default:
		return "", &platform.UnsupportedError{Value: string(plat)}
	}

	var matches []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir || !strings.HasSuffix(d.Name(), suffix) {
			return nil
		}
		if d.IsDir() != wantDir {
			return nil
		}
		matches = append(matches, path)
		if d.IsDir() {
			// Bundles can nest frameworks and plugins with the same suffix.
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	switch len(matches) {
	case 0:
		return "", &ArtifactNotFoundError{Platform: plat, Dir: dir, Pattern: suffix}
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		return "", &AmbiguousArtifactError{Platform: plat, Dir: dir, Matches: matches}
	}
}
