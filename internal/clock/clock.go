// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package clock abstracts wall-clock time so decay and timestamps can be
// driven deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Real is the system clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Func adapts a function to a Clock.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

var (
	mu      sync.RWMutex
	current Clock = Real{}
)

// Now returns the time from the package default clock.
func Now() time.Time {
	mu.RLock()
	defer mu.RUnlock()
	return current.Now()
}

// SetDefault replaces the package default clock and returns the previous one.
func SetDefault(c Clock) Clock {
	mu.Lock()
	defer mu.Unlock()
	prev := current
	current = c
	return prev
}

// MockClock is a manually driven Clock.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock returns a MockClock stopped at start.
func NewMockClock(start time.Time) *MockClock {
	return &MockClock{now: start}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to t.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}
