package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency.
const (
	attrAction    = "action"
	attrOperation = "operation"
	attrResult    = "result"
	attrMethod    = "method"
)

// Result values for metric attributes.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics provides methods for recording observability metrics.
// The zero value is a no-op recorder.
type Metrics struct {
	messagesProcessed    metric.Int64Counter
	batchesTotal         metric.Int64Counter
	remoteCallsTotal     metric.Int64Counter
	unsubscribeTotal     metric.Int64Counter
	rulesEvaluatedTotal  metric.Int64Counter
	remoteCallDurationMs metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with all instruments initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.messagesProcessed, err = meter.Int64Counter(
		"tidy_messages_processed_total",
		metric.WithDescription("Total number of messages mutated, by action"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tidy_messages_processed_total counter: %w", err)
	}

	m.batchesTotal, err = meter.Int64Counter(
		"tidy_batches_total",
		metric.WithDescription("Total number of batch mutation calls, by action and result"),
		metric.WithUnit("{batch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tidy_batches_total counter: %w", err)
	}

	m.remoteCallsTotal, err = meter.Int64Counter(
		"gmail_api_operations_total",
		metric.WithDescription("Total number of Gmail API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail_api_operations_total counter: %w", err)
	}

	m.unsubscribeTotal, err = meter.Int64Counter(
		"tidy_unsubscribe_attempts_total",
		metric.WithDescription("Total number of unsubscribe attempts, by method and result"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tidy_unsubscribe_attempts_total counter: %w", err)
	}

	m.rulesEvaluatedTotal, err = meter.Int64Counter(
		"tidy_rules_evaluated_total",
		metric.WithDescription("Total number of tidy rules evaluated, by result"),
		metric.WithUnit("{rule}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tidy_rules_evaluated_total counter: %w", err)
	}

	m.remoteCallDurationMs, err = meter.Float64Histogram(
		"gmail_api_operation_duration_milliseconds",
		metric.WithDescription("Gmail API operation duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(10, 50, 100, 250, 500, 1000, 2500, 5000, 10000),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail_api_operation_duration_milliseconds histogram: %w", err)
	}

	return m, nil
}

// RecordMessagesProcessed records successfully mutated messages for an action.
func (m *Metrics) RecordMessagesProcessed(ctx context.Context, action string, count int) {
	if m.messagesProcessed == nil {
		return
	}
	m.messagesProcessed.Add(ctx, int64(count),
		metric.WithAttributes(attribute.String(attrAction, action)))
}

// RecordBatch records one batch mutation call and its outcome.
func (m *Metrics) RecordBatch(ctx context.Context, action string, err error) {
	if m.batchesTotal == nil {
		return
	}
	m.batchesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrAction, action),
		attribute.String(attrResult, resultOf(err)),
	))
}

// RecordRemoteCall records one Gmail API operation and its duration.
func (m *Metrics) RecordRemoteCall(ctx context.Context, operation string, durationMs float64, err error) {
	if m.remoteCallsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrResult, resultOf(err)),
	)
	m.remoteCallsTotal.Add(ctx, 1, attrs)
	m.remoteCallDurationMs.Record(ctx, durationMs, attrs)
}

// RecordUnsubscribe records one unsubscribe attempt for a sender.
func (m *Metrics) RecordUnsubscribe(ctx context.Context, method string, err error) {
	if m.unsubscribeTotal == nil {
		return
	}
	m.unsubscribeTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrResult, resultOf(err)),
	))
}

// RecordRuleEvaluated records one rule evaluation with its outcome
// ("applied", "skipped", "empty", "error").
func (m *Metrics) RecordRuleEvaluated(ctx context.Context, result string) {
	if m.rulesEvaluatedTotal == nil {
		return
	}
	m.rulesEvaluatedTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String(attrResult, result)))
}

func resultOf(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
