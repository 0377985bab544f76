// Package fields holds the numeric coercion helpers shared by every
// extractor. All functions are pure: no I/O, no clock.
package fields

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseInt coerces a table cell to an int. A dash or empty cell means the
// metric was not reported and yields nil without error; anything else must
// be a base-10 integer.
func ParseInt(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("parse int %q: %w", s, err)
	}
	return &n, nil
}

// ParseFloat coerces a table cell to a float. Percent signs are stripped and
// a decimal comma is accepted ("12,5%" -> 12.5). A dash or empty cell yields
// nil without error.
func ParseFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil, nil
	}
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("parse float %q: %w", s, err)
	}
	return &f, nil
}

// NormalizeTransporterID fixes a known vendor quirk: 13-character IDs are
// missing their leading "A". 14-character IDs and IDs already starting with
// "A" pass through unchanged.
func NormalizeTransporterID(id string) string {
	if len(id) == 13 && !strings.HasPrefix(id, "A") {
		return "A" + id
	}
	return id
}
