package tidy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/teemow/inboxtidy/internal/instrumentation"
	"github.com/teemow/inboxtidy/internal/logging"
)

// oneClickToken is the exact List-Unsubscribe-Post token required by
// RFC 8058 for one-click unsubscription.
const oneClickToken = "List-Unsubscribe=One-Click"

// DefaultUnsubscribeTimeout bounds each outbound unsubscribe request.
const DefaultUnsubscribeTimeout = 20 * time.Second

// defaultUserAgent is sent on unsubscribe requests. Some endpoints reject
// anything that does not look like a browser.
const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// UnsubscribeInfo holds the unsubscribe affordances extracted from one
// message's headers.
type UnsubscribeInfo struct {
	HTTPURL   string
	MailtoURL string
	OneClick  bool
}

// Empty reports whether the message carried no unsubscribe affordance.
func (i UnsubscribeInfo) Empty() bool {
	return i.HTTPURL == "" && i.MailtoURL == ""
}

// ParseUnsubscribeHeaders extracts unsubscribe methods from the
// List-Unsubscribe and List-Unsubscribe-Post header values. Every
// angle-bracket-delimited URI is considered; the first HTTP(S) URI and the
// first mailto URI win, later duplicates of the same scheme are ignored.
// OneClick is set iff the Post header contains the RFC 8058 token.
func ParseUnsubscribeHeaders(listUnsubscribe, listUnsubscribePost string) UnsubscribeInfo {
	info := UnsubscribeInfo{
		OneClick: strings.Contains(listUnsubscribePost, oneClickToken),
	}

	parts := strings.Split(listUnsubscribe, "<")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		endIdx := strings.Index(part, ">")
		if endIdx == -1 {
			continue
		}
		uri := strings.TrimSpace(part[:endIdx])

		switch {
		case strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://"):
			if info.HTTPURL == "" {
				info.HTTPURL = uri
			}
		case strings.HasPrefix(uri, "mailto:"):
			if info.MailtoURL == "" {
				info.MailtoURL = uri
			}
		}
	}

	return info
}

// Unsubscriber resolves unsubscribe affordances from message headers and
// executes the best available method per sender.
type Unsubscriber struct {
	mailbox    Mailbox
	httpClient *http.Client
	userAgent  string
	out        io.Writer
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
}

// NewUnsubscriber creates an unsubscriber. A nil httpClient gets a client
// with the default per-request timeout.
func NewUnsubscriber(mailbox Mailbox, httpClient *http.Client, out io.Writer, logger *slog.Logger, metrics *instrumentation.Metrics) *Unsubscriber {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultUnsubscribeTimeout}
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
	return &Unsubscriber{
		mailbox:    mailbox,
		httpClient: httpClient,
		userAgent:  defaultUserAgent,
		out:        out,
		logger:     logger,
		metrics:    metrics,
	}
}

// Resolve reads the List-Unsubscribe and List-Unsubscribe-Post headers of
// one message (never the body) and parses them. A message without the
// headers yields an empty info, not an error.
func (u *Unsubscriber) Resolve(ctx context.Context, messageID string) (UnsubscribeInfo, error) {
	headers, err := u.mailbox.GetMessageHeaders(ctx, messageID,
		[]string{"List-Unsubscribe", "List-Unsubscribe-Post"})
	if err != nil {
		return UnsubscribeInfo{}, fmt.Errorf("failed to get headers for message %s: %w", messageID, err)
	}
	return ParseUnsubscribeHeaders(headers["List-Unsubscribe"], headers["List-Unsubscribe-Post"]), nil
}

// Execute unsubscribes from the senders of the given messages and returns
// the number of senders successfully unsubscribed.
//
// Messages are grouped by their From value; the first message per sender is
// representative and the only one whose headers are fetched. Senders with
// an HTTP method get a POST (one-click) or GET; any HTTP status counts as
// success because many endpoints answer unsubscribe requests with redirects
// or errors while still processing them. A transport-level failure demotes
// the sender to the mailto bucket when a mailto URL exists. Mailto-only
// senders are reported for manual action and never auto-emailed.
func (u *Unsubscriber) Execute(ctx context.Context, messages []MessageSummary) int {
	type sender struct {
		from string
		id   string
	}

	var senders []sender
	seen := make(map[string]bool)
	for _, m := range messages {
		if m.From == "" || seen[m.From] {
			continue
		}
		seen[m.From] = true
		senders = append(senders, sender{from: m.From, id: m.ID})
	}

	fmt.Fprintf(u.out, "\nResolving unsubscribe info for %d unique senders...\n", len(senders))

	type mailtoEntry struct {
		from   string
		mailto string
	}
	var mailtoOnly []mailtoEntry
	var noInfo []string
	succeeded := 0

	for _, s := range senders {
		info, err := u.Resolve(ctx, s.id)
		if err != nil {
			fmt.Fprintf(u.out, "  %s: error reading headers: %v\n", s.from, err)
			u.logger.Warn("unsubscribe resolve failed", logging.Sender(s.from), logging.Err(err))
			continue
		}

		switch {
		case info.HTTPURL != "":
			err := u.attemptHTTP(ctx, info)
			if err == nil {
				fmt.Fprintf(u.out, "  %s: unsubscribed\n", s.from)
				succeeded++
				continue
			}
			u.logger.Warn("unsubscribe transport failure",
				logging.Sender(s.from), logging.Err(err))
			if info.MailtoURL != "" {
				mailtoOnly = append(mailtoOnly, mailtoEntry{from: s.from, mailto: info.MailtoURL})
			} else {
				fmt.Fprintf(u.out, "  %s: failed: %v\n", s.from, err)
			}
		case info.MailtoURL != "":
			mailtoOnly = append(mailtoOnly, mailtoEntry{from: s.from, mailto: info.MailtoURL})
		default:
			noInfo = append(noInfo, s.from)
		}
	}

	if len(mailtoOnly) > 0 {
		fmt.Fprintf(u.out, "\n%d senders require a manual unsubscribe email:\n", len(mailtoOnly))
		for _, m := range mailtoOnly {
			fmt.Fprintf(u.out, "  %s -> %s\n", m.from, m.mailto)
		}
	}
	if len(noInfo) > 0 {
		fmt.Fprintf(u.out, "\n%d senders offer no unsubscribe method:\n", len(noInfo))
		for _, from := range noInfo {
			fmt.Fprintf(u.out, "  %s\n", from)
		}
	}

	fmt.Fprintf(u.out, "\nDone! Unsubscribed from %d of %d senders.\n", succeeded, len(senders))
	return succeeded
}

// attemptHTTP performs the unsubscribe call. Only a transport-level failure
// (timeout, connection error, DNS failure) is an error; any HTTP status,
// including redirects and server errors, counts as processed.
func (u *Unsubscriber) attemptHTTP(ctx context.Context, info UnsubscribeInfo) error {
	var (
		req    *http.Request
		err    error
		method string
	)

	if info.OneClick {
		method = "http_post"
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, info.HTTPURL,
			strings.NewReader(oneClickToken))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		method = "http_get"
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, info.HTTPURL, nil)
	}
	if err != nil {
		u.metrics.RecordUnsubscribe(ctx, method, err)
		return fmt.Errorf("failed to create unsubscribe request: %w", err)
	}
	req.Header.Set("User-Agent", u.userAgent)

	resp, err := u.httpClient.Do(req)
	u.metrics.RecordUnsubscribe(ctx, method, err)
	if err != nil {
		return fmt.Errorf("unsubscribe request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}
