package uitestconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tailscale/hujson"

	"uirunner/internal/platform"
)

// FileName is the name of the run configuration file in the test output.
const FileName = "uitest.json"

// TestConfiguration is the persisted run descriptor.
type TestConfiguration struct {
	Platform        platform.Platform `json:"platform"`
	AppPath         string            `json:"appPath"`
	DeviceName      string            `json:"deviceName"`
	UDID            string            `json:"udid"`
	OSVersion       string            `json:"osVersion"`
	ScreenshotsPath string            `json:"screenshotsPath"`
	Capabilities    map[string]string `json:"capabilities"`
	Settings        map[string]string `json:"settings"`

	// Extra holds unrecognized top-level fields, written back unchanged.
	Extra map[string]json.RawMessage `json:"-"`
}

// knownFields lists the recognized fields in serialization order.
var knownFields = []string{
	"platform", "appPath", "deviceName", "udid", "osVersion",
	"screenshotsPath", "capabilities", "settings",
}

// known mirrors TestConfiguration without its custom marshalling.
type known TestConfiguration

// Parse decodes a run configuration. Comments and trailing commas are
// accepted.
func Parse(data []byte) (*TestConfiguration, error) {
	cfg := &TestConfiguration{}
	if err := cfg.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *TestConfiguration) UnmarshalJSON(data []byte) error {
	std, err := hujson.Standardize(data)
	if err != nil {
		return err
	}

	var k known
	if err := json.Unmarshal(std, &k); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(std, &fields); err != nil {
		return err
	}
	for name, raw := range fields {
		if isKnownField(name) {
			continue
		}
		if k.Extra == nil {
			k.Extra = make(map[string]json.RawMessage)
		}
		k.Extra[name] = raw
	}

	*c = TestConfiguration(k)
	return nil
}

// MarshalJSON implements json.Marshaler. Recognized fields come first, in
// declaration order, followed by the extra fields sorted by name.
func (c TestConfiguration) MarshalJSON() ([]byte, error) {
	values := map[string]any{
		"platform":        c.Platform,
		"appPath":         c.AppPath,
		"deviceName":      c.DeviceName,
		"udid":            c.UDID,
		"osVersion":       c.OSVersion,
		"screenshotsPath": c.ScreenshotsPath,
		"capabilities":    c.Capabilities,
		"settings":        c.Settings,
	}

	extras := make([]string, 0, len(c.Extra))
	for name := range c.Extra {
		if !isKnownField(name) {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range knownFields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeField(&buf, name, values[name]); err != nil {
			return nil, err
		}
	}
	for _, name := range extras {
		buf.WriteByte(',')
		if err := writeField(&buf, name, c.Extra[name]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Indented serializes the configuration the way it is written to disk.
func (c *TestConfiguration) Indented() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func writeField(buf *bytes.Buffer, name string, value any) error {
	key, err := json.Marshal(name)
	if err != nil {
		return err
	}
	val, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("field %s: %w", name, err)
	}
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(val)
	return nil
}

func isKnownField(name string) bool {
	for _, f := range knownFields {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}
