package testutil

import (
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
)

// NewTestRNG is a seeded source for tests that need repeatable draws
func NewTestRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func NopLogger() zerolog.Logger { return zerolog.Nop() }

// AssertPanic fails t unless f panics
func AssertPanic(t *testing.T, f func(), msgAndArgs ...any) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic: %v", msgAndArgs)
		}
	}()
	f()
}
