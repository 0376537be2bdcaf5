// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/dnsadvisor/internal/feedback"
)

func TestEntries(t *testing.T) {
	pairs := []feedback.Pair{
		{Domain: "evil.tk", Client: "10.0.0.9"},
		{Domain: "www.example.com", Client: "10.0.0.1"},
		{Domain: "odd.zip", Client: "10.0.0.7"},
	}
	got := Entries(pairs, []string{ChoiceBlock, ChoiceAllow, ChoiceSkip})
	require.Len(t, got, 2)

	assert.Equal(t, "evil.tk", got[0].Domain)
	require.NotNil(t, got[0].Client)
	assert.Equal(t, "10.0.0.9", *got[0].Client)
	assert.True(t, feedback.NormalizeLabel(got[0].Label))
	assert.False(t, feedback.NormalizeLabel(got[1].Label))

	m := feedback.Build(got)
	positive, ok := m.Lookup("evil.tk", "10.0.0.9")
	assert.True(t, ok)
	assert.True(t, positive)
	_, ok = m.Lookup("evil.tk", "10.0.0.2")
	assert.False(t, ok, "labels are client scoped")

	assert.Empty(t, Entries(pairs, nil))
}

func TestLabelFormBuilds(t *testing.T) {
	pairs := []feedback.Pair{{Domain: "evil.tk", Client: "10.0.0.9"}}
	choices := []string{ChoiceSkip}
	assert.NotNil(t, LabelForm(pairs, choices))

	entries, err := Label(nil)
	require.NoError(t, err)
	assert.Nil(t, entries)
}
