package uitestconfig

import (
	"errors"
	"fmt"
	"strings"

	"uirunner/internal/platform"
)

// NotFoundError reports a missing override configuration file.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("configuration file %s not found", e.Path)
}

// IsNotFound checks whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// ArtifactNotFoundError reports that the app build produced no installable
// artifact.
type ArtifactNotFoundError struct {
	Platform platform.Platform
	Dir      string
	Pattern  string
}

func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("no %s app artifact matching *%s found in %s", e.Platform, e.Pattern, e.Dir)
}

// AmbiguousArtifactError reports that the app build produced more than one
// candidate artifact.
type AmbiguousArtifactError struct {
	Platform platform.Platform
	Dir      string
	Matches  []string
}

func (e *AmbiguousArtifactError) Error() string {
	return fmt.Sprintf("found %d %s app artifacts in %s: %s",
		len(e.Matches), e.Platform, e.Dir, strings.Join(e.Matches, ", "))
}

// ParseError reports a configuration file that could not be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
