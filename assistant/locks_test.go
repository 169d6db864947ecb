package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionLocks(t *testing.T) {
	l := newSessionLocks()

	unlock, err := l.acquire(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.acquire(ctx, "a")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	other, err := l.acquire(context.Background(), "b")
	require.NoError(t, err)
	other()

	unlock()
	unlock()
	require.Empty(t, l.locks)

	again, err := l.acquire(context.Background(), "a")
	require.NoError(t, err)
	again()
	require.Empty(t, l.locks)
}
