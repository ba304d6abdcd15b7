package instrumentation

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderDisabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	assert.False(t, provider.Enabled())
	require.NotNil(t, provider.Metrics())

	// No-op recorder must be safe to use.
	ctx := context.Background()
	provider.Metrics().RecordMessagesProcessed(ctx, "label", 5)
	provider.Metrics().RecordBatch(ctx, "trash", nil)
	provider.Metrics().RecordRemoteCall(ctx, "list_messages", 12.5, nil)
	provider.Metrics().RecordUnsubscribe(ctx, "http_post", assert.AnError)
	provider.Metrics().RecordRuleEvaluated(ctx, "applied")

	assert.NoError(t, provider.Shutdown(ctx))
}

func TestNewProviderEnabled(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer

	provider, err := NewProvider(ctx, Config{
		Enabled:        true,
		ServiceName:    "inboxtidy-test",
		ServiceVersion: "test",
		Writer:         &buf,
	})
	require.NoError(t, err)
	assert.True(t, provider.Enabled())

	provider.Metrics().RecordMessagesProcessed(ctx, "label", 3)
	provider.Metrics().RecordBatch(ctx, "label", nil)
	provider.Metrics().RecordBatch(ctx, "label", assert.AnError)

	require.NoError(t, provider.Shutdown(ctx))

	out := buf.String()
	assert.Contains(t, out, "tidy_messages_processed_total")
	assert.Contains(t, out, "tidy_batches_total")
}

func TestZeroValueMetricsIsNoop(t *testing.T) {
	m := &Metrics{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordMessagesProcessed(ctx, "delete", 1)
		m.RecordBatch(ctx, "delete", nil)
		m.RecordRemoteCall(ctx, "batch_delete", 1, nil)
		m.RecordUnsubscribe(ctx, "mailto", nil)
		m.RecordRuleEvaluated(ctx, "empty")
	})
}
