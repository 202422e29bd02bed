package capture

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Capture describes one image stored by the remote microscope service.
type Capture struct {
	ID      string
	Name    string
	Time    time.Time
	RawTime string
}

// wireCapture mirrors the listing payload. The id field is a number on some
// firmware versions and a string on others.
type wireCapture struct {
	ID   json.RawMessage `json:"id"`
	Name string          `json:"name"`
	Time string          `json:"time"`
}

func (w wireCapture) toCapture() (Capture, error) {
	id, err := parseID(w.ID)
	if err != nil {
		return Capture{}, err
	}
	ts, err := ParseTimestamp(w.Time)
	if err != nil {
		return Capture{}, err
	}
	return Capture{ID: id, Name: w.Name, Time: ts, RawTime: w.Time}, nil
}

func parseID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", errors.New("missing id")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", errors.Wrap(err, "id")
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", errors.Wrap(err, "id")
	}
	return n.String(), nil
}

// isoLayouts covers what the capture service emits: offset-aware RFC 3339 and
// naive local timestamps with optional fractional seconds.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp. Naive values are read as UTC so
// they compare chronologically with offset-aware ones.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("invalid ISO-8601 timestamp %q", s)
}

// Newest returns the capture with the latest timestamp. The first of several
// equal timestamps wins. ok is false for an empty slice.
func Newest(captures []Capture) (c Capture, ok bool) {
	for i, cur := range captures {
		if i == 0 || cur.Time.After(c.Time) {
			c = cur
		}
	}
	return c, len(captures) > 0
}
