// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package feedback loads operator labels and resolves them per query.
package feedback

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"strings"

	"grimm.is/dnsadvisor/internal/errors"
)

// ReviewLabel is the placeholder written into generated templates. It
// normalizes to negative until an operator replaces it.
const ReviewLabel = "review"

var positiveWords = map[string]struct{}{
	"block":     {},
	"malicious": {},
	"deny":      {},
	"bad":       {},
	"flag":      {},
}

// Entry is one operator label. A nil Client applies to every client.
type Entry struct {
	Domain string  `json:"domain"`
	Client *string `json:"client"`
	Label  any     `json:"label"`
}

// Document is the on-disk feedback format.
type Document struct {
	Labels []Entry `json:"labels"`
}

// NormalizeLabel reports whether a raw label means "should be blocked".
//
// Integers are positive when non-zero and booleans are taken as-is. Strings
// are positive when, trimmed and lower-cased, they are one of block,
// malicious, deny, bad or flag. Everything else, including any number
// written with a fraction or exponent, is negative.
func NormalizeLabel(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case json.Number:
		n, err := v.Int64()
		return err == nil && n != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case string:
		_, ok := positiveWords[strings.ToLower(strings.TrimSpace(v))]
		return ok
	default:
		return false
	}
}

type key struct {
	domain    string
	client    string
	anyClient bool
}

// Map resolves labels for (domain, client) pairs.
type Map struct {
	labels map[key]bool
}

// Build indexes entries. Entries without a domain are skipped, and a later
// entry replaces an earlier one for the same pair.
func Build(entries []Entry) *Map {
	m := &Map{labels: make(map[key]bool, len(entries))}
	for _, e := range entries {
		if e.Domain == "" {
			continue
		}
		k := key{domain: strings.ToLower(e.Domain), anyClient: e.Client == nil}
		if e.Client != nil {
			k.client = *e.Client
		}
		m.labels[k] = NormalizeLabel(e.Label)
	}
	return m
}

// Lookup returns the label for domain as queried by client. A label bound
// to that exact client wins over a client-agnostic one.
func (m *Map) Lookup(domain, client string) (positive, ok bool) {
	if m == nil || len(m.labels) == 0 {
		return false, false
	}
	d := strings.ToLower(domain)
	if v, found := m.labels[key{domain: d, client: client}]; found {
		return v, true
	}
	v, found := m.labels[key{domain: d, anyClient: true}]
	return v, found
}

// Len is the number of indexed labels.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.labels)
}

// Decode parses a feedback document. Numbers keep their integer/fraction
// distinction.
func Decode(data []byte) (Document, error) {
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return Document{}, errors.Wrap(err, errors.KindCorrupt, "decode feedback")
	}
	return doc, nil
}

// Load reads and indexes the feedback file at path.
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		kind := errors.KindIO
		if errors.Is(err, fs.ErrNotExist) {
			kind = errors.KindNotFound
		}
		return nil, errors.Attr(errors.Wrap(err, kind, "read feedback"), "path", path)
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, errors.Attr(err, "path", path)
	}
	return Build(doc.Labels), nil
}
