// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package report renders analyzer results as JSON or text.
package report

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"grimm.is/dnsadvisor/internal/analyzer"
	"grimm.is/dnsadvisor/internal/errors"
	"grimm.is/dnsadvisor/internal/features"
	"grimm.is/dnsadvisor/internal/feedback"
)

// Item is one reported verdict.
type Item struct {
	Timestamp time.Time      `json:"timestamp"`
	Client    string         `json:"client"`
	Domain    string         `json:"domain"`
	Site      string         `json:"site,omitempty"`
	QType     string         `json:"qtype"`
	Flags     features.Flags `json:"flags"`
	Score     float64        `json:"score"`
	Decision  string         `json:"decision"`
	Label     *bool          `json:"label,omitempty"`
}

// Report is the rendered outcome of one run.
type Report struct {
	RunID       string           `json:"run_id,omitempty"`
	GeneratedAt time.Time        `json:"generated_at,omitzero"`
	ModelType   string           `json:"model_type,omitempty"`
	Summary     analyzer.Summary `json:"summary"`
	Items       []Item           `json:"items"`
	// Candidates is omitted when no policy state was used and present,
	// possibly empty, otherwise.
	Candidates []string `json:"auto_block_candidates,omitzero"`
}

// Meta describes the run a report belongs to.
type Meta struct {
	RunID       string
	GeneratedAt time.Time
	ModelType   string
}

// New builds a Report from an analyzer result.
func New(res *analyzer.Result, meta Meta) *Report {
	r := &Report{
		RunID:       meta.RunID,
		GeneratedAt: meta.GeneratedAt,
		ModelType:   meta.ModelType,
		Summary:     res.Summary,
		Items:       make([]Item, 0, len(res.Items)),
		Candidates:  res.Candidates,
	}
	for _, v := range res.Items {
		item := Item{
			Timestamp: v.Query.Timestamp,
			Client:    v.Query.Client,
			Domain:    v.Query.Domain,
			Site:      Site(v.Query.Domain),
			QType:     v.Query.QType,
			Flags:     v.Flags,
			Score:     v.Score,
			Decision:  string(v.Decision),
		}
		if v.Learned {
			label := v.Label
			item.Label = &label
		}
		r.Items = append(r.Items, item)
	}
	return r
}

// Site returns the registrable domain (eTLD+1) for domain, or the domain
// itself when it has none, e.g. a bare TLD or a single-label name.
func Site(domain string) string {
	d := strings.ToLower(strings.TrimSuffix(domain, "."))
	site, err := publicsuffix.EffectiveTLDPlusOne(d)
	if err != nil {
		return d
	}
	return site
}

// FeedbackPairs lists the (domain, client) pairs of every item.
func (r *Report) FeedbackPairs() []feedback.Pair {
	pairs := make([]feedback.Pair, 0, len(r.Items))
	for _, it := range r.Items {
		pairs = append(pairs, feedback.Pair{Domain: it.Domain, Client: it.Client})
	}
	return pairs
}

// WriteJSON writes r as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return errors.Wrap(err, errors.KindIO, "write report")
	}
	return nil
}

// Load reads a JSON report written by WriteJSON.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		kind := errors.KindIO
		if os.IsNotExist(err) {
			kind = errors.KindNotFound
		}
		return nil, errors.Attr(errors.Wrap(err, kind, "read report"), "path", path)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Attr(errors.Wrap(err, errors.KindCorrupt, "decode report"), "path", path)
	}
	return &r, nil
}
