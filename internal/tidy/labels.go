package tidy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/teemow/inboxtidy/internal/logging"
)

// LabelDirectory resolves human label names to durable label ids,
// creating labels on demand.
type LabelDirectory struct {
	mailbox Mailbox
	logger  *slog.Logger
}

// NewLabelDirectory creates a label directory over the given mailbox.
func NewLabelDirectory(mailbox Mailbox, logger *slog.Logger) *LabelDirectory {
	if logger == nil {
		logger = slog.Default()
	}
	return &LabelDirectory{mailbox: mailbox, logger: logger}
}

// ResolveOrCreate returns the id of the label with the given name, matching
// case-insensitively, creating the label if it does not exist. When the
// create call reports a conflict (the label appeared concurrently or under
// a normalized name) the directory re-lists before giving up. It never
// returns an empty id without an error.
func (d *LabelDirectory) ResolveOrCreate(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("label name must not be empty")
	}

	id, err := d.lookup(ctx, name)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	created, err := d.mailbox.CreateLabel(ctx, name)
	if err == nil {
		d.logger.Info("created label", logging.Label(name))
		return created.ID, nil
	}

	if errors.Is(err, ErrLabelExists) {
		// Lost a race or the remote normalized the name differently.
		id, lerr := d.lookup(ctx, name)
		if lerr == nil && id != "" {
			return id, nil
		}
	}

	return "", fmt.Errorf("failed to resolve or create label %q: %w", name, err)
}

func (d *LabelDirectory) lookup(ctx context.Context, name string) (string, error) {
	labels, err := d.mailbox.ListLabels(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list labels: %w", err)
	}
	for _, l := range labels {
		if strings.EqualFold(l.Name, name) {
			return l.ID, nil
		}
	}
	return "", nil
}

// Resolve returns the id of an existing label, or empty when not found.
// Unlike ResolveOrCreate it never mutates the mailbox.
func (d *LabelDirectory) Resolve(ctx context.Context, name string) (string, error) {
	return d.lookup(ctx, name)
}
