// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockClock(t *testing.T) {
	mc := NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	start := mc.Now()
	assert.Equal(t, 2024, start.Year())

	mc.Advance(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), mc.Now())

	target := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mc.Set(target)
	assert.Equal(t, target, mc.Now())
}

func TestSetDefault(t *testing.T) {
	mc := NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	prev := SetDefault(mc)
	defer SetDefault(prev)

	assert.Equal(t, mc.Now(), Now())
}

func TestFuncFollowsDefault(t *testing.T) {
	mc := NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	prev := SetDefault(mc)
	defer SetDefault(prev)

	var c Clock = Func(Now)
	mc.Advance(time.Hour)
	assert.Equal(t, mc.Now(), c.Now())
}
