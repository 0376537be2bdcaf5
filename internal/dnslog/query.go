// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package dnslog turns resolver logs into Query records.
package dnslog

import "time"

// Query is one resolved name as seen in a resolver log.
type Query struct {
	Timestamp time.Time
	Client    string
	Domain    string
	QType     string
	Raw       string
}
