// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package features

import (
	"math"
	"strings"
	"unicode/utf8"
)

// ShannonEntropy returns the base-2 entropy of the character distribution
// of s. The empty string has zero entropy.
func ShannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}

	var ascii [256]int
	var wide map[rune]int
	n := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			ascii[c]++
			i++
		} else {
			r, size := utf8.DecodeRuneInString(s[i:])
			if wide == nil {
				wide = make(map[rune]int)
			}
			wide[r]++
			i += size
		}
		n++
	}

	total := float64(n)
	entropy := 0.0
	for _, count := range ascii {
		if count > 0 {
			p := float64(count) / total
			entropy -= p * math.Log2(p)
		}
	}
	for _, count := range wide {
		p := float64(count) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// TLD returns the lower-cased label after the last dot, or "" when the name
// has no dot.
func TLD(domain string) string {
	i := strings.LastIndexByte(domain, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(domain[i+1:])
}

// Length counts characters, not bytes.
func Length(domain string) int {
	return utf8.RuneCountInString(domain)
}
