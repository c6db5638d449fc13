package transport

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/toolmap/pkg/errors"
)

func TestPacerRetriesUntilSuccess(t *testing.T) {
	p := NewPacer(0, 3, time.Millisecond, errors.IsRetryable)

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.NewAPIError("github", http.StatusBadGateway, "bad gateway")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, p.Requests())
}

func TestPacerStopsOnPermanentError(t *testing.T) {
	p := NewPacer(0, 3, time.Millisecond, errors.IsRetryable)

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.NewAPIError("github", http.StatusNotFound, "not found")
	})

	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, 1, calls)
}

func TestPacerExhaustsRetries(t *testing.T) {
	p := NewPacer(0, 2, time.Millisecond, nil)
	boom := stderrors.New("boom")

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, p.Requests())
}

func TestPacerCountsAcrossCalls(t *testing.T) {
	p := NewPacer(0, 0, 0, nil)
	for range 2 {
		require.NoError(t, p.Do(context.Background(), func(context.Context) error { return nil }))
	}
	assert.Equal(t, 2, p.Requests())
}

func TestPacerStopsWhenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPacer(time.Hour, 3, time.Hour, nil)

	// The first request goes out immediately; the second waits for Delay.
	require.NoError(t, p.Do(ctx, func(context.Context) error { return nil }))
	cancel()

	called := false
	err := p.Do(ctx, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestSleep(t *testing.T) {
	require.NoError(t, Sleep(context.Background(), 0))
	require.NoError(t, Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}
