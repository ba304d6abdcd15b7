package tidy

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/teemow/inboxtidy/internal/instrumentation"
	"github.com/teemow/inboxtidy/internal/logging"
)

// DefaultBatchSize is the number of message ids mutated per remote call.
const DefaultBatchSize = 100

// Executor applies one action across a message set in fixed-size batches.
//
// The executor is best-effort: a failed batch is reported and skipped, the
// remaining batches still run. Delivery is at-least-once per successfully
// submitted batch; a batch that partially applies remotely before erroring
// is counted as fully failed here because the service offers no way to tell
// (known boundary condition, not engine-recoverable).
type Executor struct {
	mailbox   Mailbox
	batchSize int
	out       io.Writer
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
}

// NewExecutor creates an executor over the given mailbox. A batchSize of
// zero or less falls back to DefaultBatchSize.
func NewExecutor(mailbox Mailbox, batchSize int, out io.Writer, logger *slog.Logger, metrics *instrumentation.Metrics) *Executor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	return &Executor{
		mailbox:   mailbox,
		batchSize: batchSize,
		out:       out,
		logger:    logger,
		metrics:   metrics,
	}
}

// Apply partitions refs into contiguous batches and issues one bulk
// mutation per batch. It reports the running total after every batch and
// returns the number of messages in successfully submitted batches.
func (x *Executor) Apply(ctx context.Context, action Action, refs []MessageRef) int {
	total := len(refs)
	succeeded := 0

	for start := 0; start < total; start += x.batchSize {
		end := start + x.batchSize
		if end > total {
			end = total
		}
		ids := make([]string, 0, end-start)
		for _, ref := range refs[start:end] {
			ids = append(ids, ref.ID)
		}

		err := x.applyBatch(ctx, action, ids)
		x.metrics.RecordBatch(ctx, string(action.Kind), err)
		if err != nil {
			fmt.Fprintf(x.out, "  Error processing batch: %v\n", err)
			x.logger.Warn("batch failed",
				logging.Operation(string(action.Kind)),
				logging.Batch(start/x.batchSize),
				logging.Err(err))
			continue
		}

		succeeded += len(ids)
		fmt.Fprintf(x.out, "  Processed %d/%d messages...\n", succeeded, total)
	}

	x.metrics.RecordMessagesProcessed(ctx, string(action.Kind), succeeded)
	return succeeded
}

func (x *Executor) applyBatch(ctx context.Context, action Action, ids []string) error {
	switch action.Kind {
	case ActionDelete:
		return x.mailbox.BatchDelete(ctx, ids)
	case ActionTrash:
		return x.mailbox.BatchModify(ctx, ids, []string{labelIDTrash}, []string{labelIDInbox})
	case ActionLabel:
		if action.LabelID == "" {
			return fmt.Errorf("label action requires a resolved label id")
		}
		var remove []string
		if action.Archive {
			remove = []string{labelIDInbox}
		}
		return x.mailbox.BatchModify(ctx, ids, []string{action.LabelID}, remove)
	default:
		return fmt.Errorf("unknown action kind %q", action.Kind)
	}
}
