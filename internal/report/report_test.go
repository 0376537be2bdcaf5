// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/dnsadvisor/internal/analyzer"
	"grimm.is/dnsadvisor/internal/dnslog"
	"grimm.is/dnsadvisor/internal/errors"
	"grimm.is/dnsadvisor/internal/features"
	"grimm.is/dnsadvisor/internal/feedback"
)

var ts = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

func sampleResult(candidates []string) *analyzer.Result {
	return &analyzer.Result{
		Summary: analyzer.Summary{Total: 40, Recommended: 2, Learned: 1},
		Items: []analyzer.Verdict{
			{
				Query:    dnslog.Query{Timestamp: ts, Client: "10.0.0.9", Domain: "x7q2.evil.tk", QType: "A"},
				Flags:    features.Flags{RareTLD: true, NewTLD: true},
				Score:    0.93,
				Decision: analyzer.DecisionRecommend,
				Learned:  true,
				Label:    true,
			},
			{
				Query:    dnslog.Query{Timestamp: ts.Add(time.Second), Client: "10.0.0.4", Domain: "cdn.assets.example.co.uk", QType: "AAAA"},
				Flags:    features.Flags{Length: true},
				Score:    0.71,
				Decision: analyzer.DecisionRecommend,
			},
		},
		Candidates: candidates,
	}
}

func TestSite(t *testing.T) {
	assert.Equal(t, "example.co.uk", Site("cdn.assets.example.co.uk"))
	assert.Equal(t, "evil.tk", Site("X7Q2.Evil.TK."))
	assert.Equal(t, "localhost", Site("localhost"))
}

func TestNew(t *testing.T) {
	r := New(sampleResult(nil), Meta{RunID: "run-1", GeneratedAt: ts, ModelType: "statistical"})

	assert.Equal(t, 40, r.Summary.Total)
	require.Len(t, r.Items, 2)
	assert.Equal(t, "evil.tk", r.Items[0].Site)
	assert.Equal(t, "recommend", r.Items[0].Decision)
	require.NotNil(t, r.Items[0].Label)
	assert.True(t, *r.Items[0].Label)
	assert.Nil(t, r.Items[1].Label)
	assert.Nil(t, r.Candidates)

	assert.Equal(t, []feedback.Pair{
		{Domain: "x7q2.evil.tk", Client: "10.0.0.9"},
		{Domain: "cdn.assets.example.co.uk", Client: "10.0.0.4"},
	}, r.FeedbackPairs())
}

func TestWriteJSONCandidates(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		present    bool
	}{
		{name: "no policy", candidates: nil, present: false},
		{name: "policy without candidates", candidates: []string{}, present: true},
		{name: "policy with candidates", candidates: []string{"evil.tk"}, present: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, New(sampleResult(tt.candidates), Meta{}).WriteJSON(&buf))

			var doc map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
			_, ok := doc["auto_block_candidates"]
			assert.Equal(t, tt.present, ok)
			assert.Contains(t, doc, "summary")
			assert.Contains(t, doc, "items")
			assert.NotContains(t, doc, "run_id")
			assert.NotContains(t, doc, "generated_at")

			summary := doc["summary"].(map[string]any)
			assert.EqualValues(t, 40, summary["total"])
			assert.EqualValues(t, 2, summary["recommended"])
			assert.EqualValues(t, 1, summary["learned"])

			item := doc["items"].([]any)[0].(map[string]any)
			for _, key := range []string{"timestamp", "client", "domain", "qtype", "flags", "score", "decision"} {
				assert.Contains(t, item, key)
			}
			flags := item["flags"].(map[string]any)
			assert.Equal(t, true, flags["rare_tld"])
			assert.Equal(t, false, flags["burst"])
		})
	}
}

func TestEmptyItemsEncodeAsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&analyzer.Result{}, Meta{}).WriteJSON(&buf))
	assert.Contains(t, buf.String(), `"items": []`)
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, New(sampleResult([]string{"evil.tk"}), Meta{RunID: "run-2", GeneratedAt: ts}).WriteJSON(f))
	require.NoError(t, f.Close())

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "run-2", r.RunID)
	assert.True(t, r.GeneratedAt.Equal(ts))
	assert.Equal(t, []string{"evil.tk"}, r.Candidates)
	require.Len(t, r.Items, 2)
	assert.True(t, r.Items[0].Flags.RareTLD)
	assert.Equal(t, "x7q2.evil.tk", r.FeedbackPairs()[0].Domain)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Equal(t, errors.KindNotFound, errors.GetKind(err))

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
	assert.Equal(t, errors.KindCorrupt, errors.GetKind(err))
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	r := New(sampleResult([]string{"evil.tk"}), Meta{RunID: "run-3", GeneratedAt: ts, ModelType: "online_logistic"})
	require.NoError(t, r.WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, "DNS Advisor Report")
	assert.Contains(t, out, "Summary:")
	assert.Contains(t, out, "- total: 40")
	assert.Contains(t, out, "- recommended: 2")
	assert.Contains(t, out, "Findings:")
	assert.Contains(t, out, "x7q2.evil.tk")
	assert.Contains(t, out, "score=0.93")
	assert.Contains(t, out, "flags=rare_tld,new_tld")
	assert.Contains(t, out, "Auto-Block Candidates (not enforced):")
	assert.Contains(t, out, "- evil.tk")
	assert.Contains(t, out, "run-3")
}

func TestWriteTextWithoutCandidates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&analyzer.Result{Candidates: []string{}}, Meta{}).WriteText(&buf))
	out := buf.String()
	assert.Contains(t, out, "(none)")
	assert.NotContains(t, out, "Auto-Block Candidates")
}
