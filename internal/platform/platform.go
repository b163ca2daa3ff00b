// Package platform defines the closed set of target platforms a pipeline can
// run against.
package platform

import (
	"errors"
	"fmt"
	"strings"
)

// Platform identifies the device family under test.
type Platform string

const (
	Android Platform = "Android"
	IOS     Platform = "iOS"
)

// All lists every supported platform.
var All = []Platform{Android, IOS}

// Parse converts user input into a Platform. Matching is case-insensitive and
// the result is normalized to the canonical spelling.
func Parse(s string) (Platform, error) {
	for _, p := range All {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", &UnsupportedError{Value: s}
}

// Validate returns an UnsupportedError unless p is a canonical platform value.
func (p Platform) Validate() error {
	switch p {
	case Android, IOS:
		return nil
	default:
		return &UnsupportedError{Value: string(p)}
	}
}

func (p Platform) String() string {
	return string(p)
}

// UnsupportedError reports a platform value outside the supported set.
type UnsupportedError struct {
	Value string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("platform %q is not supported (valid: Android, iOS)", e.Value)
}

// IsUnsupported checks whether err is or wraps an UnsupportedError.
func IsUnsupported(err error) bool {
	var unsupported *UnsupportedError
	return errors.As(err, &unsupported)
}
