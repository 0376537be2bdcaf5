// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package feedback

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/dnsadvisor/internal/errors"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want bool
	}{
		{"one", json.Number("1"), true},
		{"negative int", json.Number("-3"), true},
		{"zero", json.Number("0"), false},
		{"fraction", json.Number("1.5"), false},
		{"float literal", json.Number("1.0"), false},
		{"native int", 7, true},
		{"native zero", 0, false},
		{"exponent", json.Number("1e2"), false},
		{"float64", 2.0, false},
		{"true", true, true},
		{"false", false, false},
		{"block", "block", true},
		{"padded upper", "  MALICIOUS ", true},
		{"deny", "Deny", true},
		{"bad", "bad", true},
		{"flag", "FLAG", true},
		{"allow", "allow", false},
		{"review", ReviewLabel, false},
		{"numeric string", "1", false},
		{"nil", nil, false},
		{"object", map[string]any{"x": 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLabel(tt.raw))
		})
	}
}

func TestLookupFallback(t *testing.T) {
	laptop := "10.0.0.7"
	m := Build([]Entry{
		{Domain: "Evil.Example", Client: nil, Label: "block"},
		{Domain: "evil.example", Client: &laptop, Label: json.Number("0")},
		{Domain: "", Label: "block"},
	})
	assert.Equal(t, 2, m.Len())

	positive, ok := m.Lookup("EVIL.example", laptop)
	assert.True(t, ok)
	assert.False(t, positive, "client-specific label wins")

	positive, ok = m.Lookup("evil.example", "10.0.0.8")
	assert.True(t, ok)
	assert.True(t, positive, "falls back to client-agnostic label")

	_, ok = m.Lookup("other.example", laptop)
	assert.False(t, ok)
}

func TestEmptyClientIsNotWildcard(t *testing.T) {
	empty := ""
	m := Build([]Entry{{Domain: "x.example", Client: &empty, Label: "bad"}})

	_, ok := m.Lookup("x.example", "10.0.0.1")
	assert.False(t, ok)
	positive, ok := m.Lookup("x.example", "")
	assert.True(t, ok)
	assert.True(t, positive)
}

func TestLaterEntryWins(t *testing.T) {
	m := Build([]Entry{
		{Domain: "x.example", Label: "block"},
		{Domain: "X.example", Label: "allow"},
	})
	positive, ok := m.Lookup("x.example", "any")
	assert.True(t, ok)
	assert.False(t, positive)
}

func TestNilMap(t *testing.T) {
	var m *Map
	_, ok := m.Lookup("x.example", "c")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feedback.json")
	body := `{"labels": [
		{"domain": "a.example", "client": null, "label": 1},
		{"domain": "b.example", "client": "10.0.0.2", "label": "deny"},
		{"domain": "c.example", "label": 0.9},
		{"client": "10.0.0.2", "label": "block"}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())

	positive, ok := m.Lookup("a.example", "10.0.0.9")
	assert.True(t, ok)
	assert.True(t, positive)

	positive, ok = m.Lookup("b.example", "10.0.0.2")
	assert.True(t, ok)
	assert.True(t, positive)

	positive, ok = m.Lookup("c.example", "10.0.0.2")
	assert.True(t, ok)
	assert.False(t, positive)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.Equal(t, errors.KindNotFound, errors.GetKind(err))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"labels": {"domain": "x"}}`), 0o644))
	_, err = Load(bad)
	assert.Equal(t, errors.KindCorrupt, errors.GetKind(err))
	assert.Equal(t, bad, errors.GetAttributes(err)["path"])
}

func TestTemplate(t *testing.T) {
	doc := Template([]Pair{
		{Domain: "a.example", Client: "10.0.0.1"},
		{Domain: "b.example", Client: "10.0.0.1"},
		{Domain: "a.example", Client: "10.0.0.1"},
	})
	require.Len(t, doc.Labels, 2)
	assert.Equal(t, "a.example", doc.Labels[0].Domain)
	require.NotNil(t, doc.Labels[0].Client)
	assert.Equal(t, "10.0.0.1", *doc.Labels[0].Client)
	assert.Equal(t, ReviewLabel, doc.Labels[1].Label)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.False(t, Build(decoded.Labels).labels[key{domain: "a.example", client: "10.0.0.1"}])
}
