// Package testutil provides helpers shared by the dbg tests.
package testutil

import (
	"context"
	"testing"
	"time"
)

// ContextTimeout bounds every test context.
const ContextTimeout = 30 * time.Second

// NewTestContext returns a context that ends with the test or after
// ContextTimeout, whichever comes first.
func NewTestContext(t testing.TB) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(t.Context(), ContextTimeout)
	t.Cleanup(cancel)
	return ctx
}
