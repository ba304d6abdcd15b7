package tidy

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/teemow/inboxtidy/internal/logging"
)

// maxPageSize is the remote service's hard cap on results per listing call.
const maxPageSize = 500

// Locator executes a search query and collects message refs across pages.
type Locator struct {
	mailbox Mailbox
	out     io.Writer
	logger  *slog.Logger
}

// NewLocator creates a locator over the given mailbox. Progress is printed
// to out after each page.
func NewLocator(mailbox Mailbox, out io.Writer, logger *slog.Logger) *Locator {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{mailbox: mailbox, out: out, logger: logger}
}

// Search pages through the listing endpoint until maxResults refs are
// collected or the continuation cursor is exhausted. Order follows the
// service's native order. An empty result is not an error.
func (l *Locator) Search(ctx context.Context, query string, maxResults int64) ([]MessageRef, error) {
	fmt.Fprintf(l.out, "Searching for messages matching: %s\n", query)

	var refs []MessageRef
	pageToken := ""

	for {
		remaining := maxResults - int64(len(refs))
		if remaining <= 0 {
			break
		}
		pageSize := remaining
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}

		page, err := l.mailbox.ListMessages(ctx, query, pageToken, pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}

		if len(page.Refs) > 0 {
			refs = append(refs, page.Refs...)
			fmt.Fprintf(l.out, "  Found %d messages so far...\n", len(refs))
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	if int64(len(refs)) > maxResults {
		refs = refs[:maxResults]
	}

	l.logger.Debug("search complete", logging.Query(query), logging.Count(len(refs)))
	return refs, nil
}
