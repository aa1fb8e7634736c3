// Package rules holds the roster and tournament/match lifecycle validators.
// Everything here is pure: no I/O, no clocks; callers pass "now".
package rules

import "strings"

// FieldErrors maps a field name to a user-facing message. Empty means valid.
type FieldErrors map[string]string

// Add records msg for field unless the field already has a message
func (f FieldErrors) Add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

// OK reports whether there are no errors
func (f FieldErrors) OK() bool {
	return len(f) == 0
}

// Mode selects create or edit validation. Edit skips "must be in the future" checks.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
