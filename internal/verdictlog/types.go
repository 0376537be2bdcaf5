// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package verdictlog

import "time"

// Entry is one stored verdict.
type Entry struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	Client    string    `json:"client"`
	Domain    string    `json:"domain"`
	QType     string    `json:"qtype"`
	Score     float64   `json:"score"`
	Decision  string    `json:"decision"`
	Flags     []string  `json:"flags,omitempty"`
	// Label is nil when no feedback was applied.
	Label *bool `json:"label,omitempty"`
}

// Run summarizes one analyzer invocation.
type Run struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	ModelType   string    `json:"model_type"`
	Total       int       `json:"total"`
	Recommended int       `json:"recommended"`
	Learned     int       `json:"learned"`
	Candidates  int       `json:"candidates"`
}

// Stats aggregates verdicts over a time range.
type Stats struct {
	Verdicts       int64        `json:"verdicts"`
	Recommended    int64        `json:"recommended"`
	Learned        int64        `json:"learned"`
	TopRecommended []DomainStat `json:"top_recommended"`
	TopClients     []ClientStat `json:"top_clients"`
}

type DomainStat struct {
	Domain   string  `json:"domain"`
	Count    int64   `json:"count"`
	MaxScore float64 `json:"max_score"`
}

type ClientStat struct {
	Client string `json:"client"`
	Count  int64  `json:"count"`
}
