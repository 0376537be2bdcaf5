// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package validation checks and sanitizes values that come from config
// files and query logs.
package validation

import (
	"regexp"
	"strings"
	"unicode"

	"grimm.is/dnsadvisor/internal/errors"
)

// A TLD label: letters, digits and inner hyphens, at most 63 bytes.
var tldRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// TLD validates a top-level domain label such as "tk" or ".zip". Case and a
// single leading dot are ignored.
func TLD(label string) error {
	norm := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(label), "."))
	if norm == "" {
		return errors.New(errors.KindValidation, "TLD cannot be empty")
	}
	if strings.Contains(norm, ".") {
		return errors.Errorf(errors.KindValidation, "TLD must be a single label: %s", label)
	}
	if !tldRegex.MatchString(norm) {
		return errors.Errorf(errors.KindValidation, "invalid TLD: %s", label)
	}
	return nil
}

// Printable replaces control and other non-printable runes with '?', so
// names taken from logs cannot inject terminal escape sequences.
func Printable(s string) string {
	clean := true
	for _, r := range s {
		if !unicode.IsPrint(r) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return '?'
	}, s)
}
