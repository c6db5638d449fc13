package logging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/agentstation/toolmap/pkg/logging"
	"github.com/stretchr/testify/assert"
)

func TestContextFunctions(t *testing.T) {
	t.Run("WithDataset adds dataset to context", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithDataset(ctx, "projects.json")

		logging.FromContext(ctx).Info().Msg("loaded")
		tl.AssertContains(t, `"dataset":"projects.json"`)
	})

	t.Run("WithRecord adds record id to context", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithRecord(ctx, "p1")

		logging.Ctx(ctx).Info().Msg("tagged")
		tl.AssertContains(t, `"record_id":"p1"`)
	})

	t.Run("WithFields adds custom fields to context", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithFields(ctx, map[string]any{
			"attempt": 2,
			"owner":   "octo",
		})

		logging.FromContext(ctx).Info().Msg("retry")
		assert.True(t, tl.ContainsAll(`"attempt":2`, `"owner":"octo"`))
	})

	t.Run("WithError skips nil", func(t *testing.T) {
		ctx := context.Background()
		assert.Equal(t, ctx, logging.WithError(ctx, nil))

		tl := logging.NewTestLogger(t)
		ctx = logging.WithLogger(ctx, tl.Logger)
		ctx = logging.WithError(ctx, errors.New("boom"))
		logging.FromContext(ctx).Warn().Msg("failed")
		tl.AssertContains(t, `"error":"boom"`)
	})

	t.Run("FromContext falls back to default", func(t *testing.T) {
		//nolint:staticcheck // nil context is part of the contract
		assert.Equal(t, logging.Default(), logging.FromContext(nil))
		assert.Equal(t, logging.Default(), logging.FromContext(context.Background()))
	})

	t.Run("chaining context functions", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithService(ctx, "github")
		ctx = logging.WithOperation(ctx, "enrich")
		ctx = logging.WithRequestID(ctx, "req-1")

		logging.FromContext(ctx).Info().Msg("done")
		assert.True(t, tl.ContainsAll(`"service":"github"`, `"operation":"enrich"`, `"request_id":"req-1"`))
		assert.Equal(t, "req-1", logging.RequestID(ctx))
	})
}
