package tidy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/teemow/inboxtidy/internal/instrumentation"
	"github.com/teemow/inboxtidy/internal/logging"
)

// Config holds the engine's runtime configuration. All knobs that used to
// be file-scoped constants in earlier iterations of this tool are explicit
// here so the engine can be exercised with injected fakes.
type Config struct {
	// RulesFile is the path of the persisted tidy rule configuration.
	RulesFile string

	// BatchSize is the number of ids per bulk mutation call.
	BatchSize int

	// MaxResults caps how many messages a single search collects.
	MaxResults int64

	// PreviewLimit is the number of messages shown before confirmation.
	PreviewLimit int

	// DryRun previews matches without confirmation or mutation.
	DryRun bool

	// NoConfirm skips confirmation prompts (auto-yes).
	NoConfirm bool
}

func (c Config) normalize() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.MaxResults <= 0 {
		c.MaxResults = 500
	}
	if c.PreviewLimit <= 0 {
		c.PreviewLimit = 10
	}
	return c
}

// Options carries the engine's collaborators. Zero fields get sensible
// defaults: stdout output, console prompting, a default-timeout HTTP client
// and no-op metrics.
type Options struct {
	Attachments AttachmentSource
	HTTPClient  *http.Client
	Prompter    Prompter
	Out         io.Writer
	Logger      *slog.Logger
	Metrics     *instrumentation.Metrics
}

// Engine orchestrates rule evaluation: load config, locate matches,
// preview, confirm, act, and optionally learn new rules from the inbox
// remainder. All I/O is synchronous and sequential; the only suspension
// points are the remote calls, each of which honors ctx cancellation.
type Engine struct {
	cfg      Config
	mailbox  Mailbox
	prompter Prompter
	out      io.Writer
	logger   *slog.Logger
	metrics  *instrumentation.Metrics

	labels     *LabelDirectory
	locator    *Locator
	executor   *Executor
	unsub      *Unsubscriber
	downloader *Downloader
}

// NewEngine wires an engine over the given mailbox.
func NewEngine(cfg Config, mailbox Mailbox, opts Options) *Engine {
	cfg = cfg.normalize()
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = &instrumentation.Metrics{}
	}
	if opts.Prompter == nil {
		opts.Prompter = NewConsolePrompter(os.Stdin, opts.Out)
	}

	e := &Engine{
		cfg:      cfg,
		mailbox:  mailbox,
		prompter: opts.Prompter,
		out:      opts.Out,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
	e.labels = NewLabelDirectory(mailbox, opts.Logger)
	e.locator = NewLocator(mailbox, opts.Out, opts.Logger)
	e.executor = NewExecutor(mailbox, cfg.BatchSize, opts.Out, opts.Logger, opts.Metrics)
	e.unsub = NewUnsubscriber(mailbox, opts.HTTPClient, opts.Out, opts.Logger, opts.Metrics)
	if opts.Attachments != nil {
		e.downloader = NewDownloader(opts.Attachments, opts.Out, opts.Logger)
	}
	return e
}

// summary fetches the preview fields of one message, degrading to error
// placeholders instead of aborting the run.
func (e *Engine) summary(ctx context.Context, id string) MessageSummary {
	headers, err := e.mailbox.GetMessageHeaders(ctx, id, []string{"Subject", "From", "Date"})
	if err != nil {
		e.logger.Warn("failed to fetch message headers", logging.Err(err))
		return MessageSummary{ID: id, Subject: "(error)", From: "(error)", Date: "(error)"}
	}
	return MessageSummary{
		ID:      id,
		Subject: truncate(orElse(headers["Subject"], "(no subject)"), subjectPreviewLen),
		From:    truncate(orElse(headers["From"], "(unknown)"), fromPreviewLen),
		Date:    truncate(orElse(headers["Date"], "(unknown date)"), datePreviewLen),
	}
}

func (e *Engine) preview(ctx context.Context, refs []MessageRef, limit int) {
	shown := limit
	if shown > len(refs) {
		shown = len(refs)
	}
	fmt.Fprintf(e.out, "\nShowing first %d of %d messages:\n\n", shown, len(refs))
	fmt.Fprintln(e.out, strings.Repeat("-", 100))

	for _, ref := range refs[:shown] {
		s := e.summary(ctx, ref.ID)
		fmt.Fprintf(e.out, "From: %s\n", s.From)
		fmt.Fprintf(e.out, "Subject: %s\n", s.Subject)
		fmt.Fprintf(e.out, "Date: %s\n", s.Date)
		fmt.Fprintln(e.out, strings.Repeat("-", 100))
	}
}

// labelAndArchive resolves the label and applies it to refs in batches.
// A label resolution failure aborts this action (reported, zero count);
// it never proceeds without a label id.
func (e *Engine) labelAndArchive(ctx context.Context, labelName string, refs []MessageRef, archive bool) int {
	labelID, err := e.labels.ResolveOrCreate(ctx, labelName)
	if err != nil {
		fmt.Fprintf(e.out, "Error: could not get or create label %q: %v\n", labelName, err)
		e.logger.Error("label resolution failed", logging.Label(labelName), logging.Err(err))
		return 0
	}

	verb := "Labeling"
	if archive {
		verb = "Labeling and archiving"
	}
	fmt.Fprintf(e.out, "\n%s %d messages with '%s'...\n", verb, len(refs), labelName)

	count := e.executor.Apply(ctx, Action{Kind: ActionLabel, LabelID: labelID, Archive: archive}, refs)
	fmt.Fprintf(e.out, "\nDone! Processed %d messages.\n", count)
	return count
}

// Tidy runs all rules from the configured rule file and then, in
// interactive runs, offers to learn new rules from the inbox remainder.
func (e *Engine) Tidy(ctx context.Context) error {
	cfg, err := LoadRules(e.cfg.RulesFile)
	if err != nil {
		return err
	}
	if len(cfg.Rules) == 0 {
		fmt.Fprintf(e.out, "No rules found in %s\n", e.cfg.RulesFile)
		return nil
	}

	totalProcessed := 0

	for _, rule := range cfg.Rules {
		if rule.Inert() {
			e.metrics.RecordRuleEvaluated(ctx, "skipped")
			continue
		}

		query := rule.BuildQuery()
		fmt.Fprintf(e.out, "\n%s\n", strings.Repeat("=", 60))
		fmt.Fprintf(e.out, "Rule: %s\n", rule.Label)
		fmt.Fprintf(e.out, "Query: %s\n", query)
		fmt.Fprintln(e.out, strings.Repeat("=", 60))

		refs, err := e.locator.Search(ctx, query, e.cfg.MaxResults)
		if err != nil {
			fmt.Fprintf(e.out, "Error searching for rule %q: %v\n", rule.Label, err)
			e.logger.Error("rule search failed", logging.Rule(rule.Label), logging.Err(err))
			e.metrics.RecordRuleEvaluated(ctx, "error")
			continue
		}
		if len(refs) == 0 {
			fmt.Fprintln(e.out, "No messages found for this rule.")
			e.metrics.RecordRuleEvaluated(ctx, "empty")
			continue
		}

		e.preview(ctx, refs, 5)

		if e.cfg.DryRun {
			fmt.Fprintf(e.out, "\n[DRY RUN] Would label and archive %d messages as '%s'\n",
				len(refs), rule.Label)
			e.metrics.RecordRuleEvaluated(ctx, "dry-run")
			continue
		}

		if !e.cfg.NoConfirm {
			ok, err := e.prompter.Confirm(fmt.Sprintf(
				"\nLabel %d messages as '%s' and archive? [y/N]: ", len(refs), rule.Label))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(e.out, "Skipped.")
				e.metrics.RecordRuleEvaluated(ctx, "skipped")
				continue
			}
		}

		count := e.labelAndArchive(ctx, rule.Label, refs, rule.ArchiveEnabled())
		totalProcessed += count
		e.metrics.RecordRuleEvaluated(ctx, "applied")
	}

	// Rule learning only makes sense when an operator is present to answer.
	if !e.cfg.DryRun && !e.cfg.NoConfirm {
		ok, err := e.prompter.Confirm("\nScan the remaining inbox for new rule suggestions? [y/N]: ")
		if err != nil {
			return err
		}
		if ok {
			processed, err := e.suggestRemainder(ctx, cfg)
			if err != nil {
				return err
			}
			totalProcessed += processed
		}
	}

	fmt.Fprintf(e.out, "\n%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(e.out, "Tidy complete! Processed %d messages total.\n", totalProcessed)
	fmt.Fprintln(e.out, strings.Repeat("=", 60))
	return nil
}

// suggestRemainder groups the un-ruled inbox by sender, proposes labels,
// and interactively applies and optionally persists accepted rules.
func (e *Engine) suggestRemainder(ctx context.Context, cfg *RuleConfig) (int, error) {
	refs, err := e.locator.Search(ctx, "in:inbox", e.cfg.MaxResults)
	if err != nil {
		return 0, fmt.Errorf("failed to scan inbox: %w", err)
	}
	if len(refs) == 0 {
		fmt.Fprintln(e.out, "Inbox is empty, nothing to suggest.")
		return 0, nil
	}

	summaries := make([]MessageSummary, 0, len(refs))
	for _, ref := range refs {
		summaries = append(summaries, e.summary(ctx, ref.ID))
	}

	groups := GroupUncovered(summaries, cfg.Rules)
	if len(groups) == 0 {
		fmt.Fprintln(e.out, "All remaining inbox senders are already covered by rules.")
		return 0, nil
	}

	fmt.Fprintf(e.out, "\nFound %d sender groups not covered by any rule.\n", len(groups))

	totalProcessed := 0
	configDirty := false

groups:
	for _, group := range groups {
		fmt.Fprintf(e.out, "\n%s\n", strings.Repeat("-", 60))
		fmt.Fprintf(e.out, "Sender group: %s (%d messages)\n", group.Key, len(group.Messages))

		samples := len(group.Messages)
		if samples > 3 {
			samples = 3
		}
		for _, m := range group.Messages[:samples] {
			fmt.Fprintf(e.out, "  From: %s  Subject: %s\n", m.From, m.Subject)
		}

		suggested := SuggestLabel(group.Domain())
		choice, err := e.prompter.Input(fmt.Sprintf(
			"Label as '%s'? [a]ccept / [s]kip / [c]ustom / [q]uit: ", suggested))
		if err != nil {
			return totalProcessed, err
		}

		label := ""
		switch strings.ToLower(choice) {
		case "a", "accept", "y":
			label = suggested
		case "c", "custom":
			label, err = e.prompter.Input("Label name: ")
			if err != nil {
				return totalProcessed, err
			}
		case "q", "quit":
			break groups
		default:
			// skip, including plain enter
			continue
		}
		if label == "" {
			continue
		}

		archive, err := e.prompter.Confirm("Archive these messages (remove from inbox)? [y/N]: ")
		if err != nil {
			return totalProcessed, err
		}

		groupRefs := make([]MessageRef, 0, len(group.Messages))
		for _, m := range group.Messages {
			groupRefs = append(groupRefs, MessageRef{ID: m.ID})
		}
		totalProcessed += e.labelAndArchive(ctx, label, groupRefs, archive)

		persist, err := e.prompter.Confirm(fmt.Sprintf(
			"Save rule (%s -> %s) to %s? [y/N]: ", group.Key, label, e.cfg.RulesFile))
		if err != nil {
			return totalProcessed, err
		}
		if persist && cfg.AddSenderPattern(label, group.Key, archive) {
			configDirty = true
		}
	}

	if configDirty {
		if err := cfg.Save(e.cfg.RulesFile); err != nil {
			return totalProcessed, err
		}
		fmt.Fprintf(e.out, "\nSaved learned rules to %s\n", e.cfg.RulesFile)
	}

	return totalProcessed, nil
}

// QueryActionKind selects what the query mode does with matched messages.
type QueryActionKind string

const (
	QueryPreview     QueryActionKind = ""
	QueryDelete      QueryActionKind = "delete"
	QueryTrash       QueryActionKind = "trash"
	QueryLabel       QueryActionKind = "label"
	QueryDownload    QueryActionKind = "download"
	QueryUnsubscribe QueryActionKind = "unsubscribe"
)

// QueryAction describes the action for a query-driven run.
type QueryAction struct {
	Kind      QueryActionKind
	Label     string
	OutputDir string
}

func (a QueryAction) describe(count int) string {
	switch a.Kind {
	case QueryDelete:
		return fmt.Sprintf("PERMANENTLY DELETE %d messages", count)
	case QueryTrash:
		return fmt.Sprintf("MOVE %d messages TO TRASH", count)
	case QueryLabel:
		return fmt.Sprintf("LABEL %d messages WITH '%s' AND ARCHIVE", count, a.Label)
	case QueryUnsubscribe:
		return fmt.Sprintf("UNSUBSCRIBE from the senders of %d messages", count)
	default:
		return fmt.Sprintf("affect %d messages", count)
	}
}

// RunQuery executes the query-driven mode: search, preview, confirm, act.
func (e *Engine) RunQuery(ctx context.Context, query string, action QueryAction) error {
	refs, err := e.locator.Search(ctx, query, e.cfg.MaxResults)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		fmt.Fprintln(e.out, "\nNo messages found matching your query.")
		return nil
	}

	if action.Kind == QueryDownload {
		if e.downloader == nil {
			return fmt.Errorf("attachment download is not available")
		}
		_, err := e.downloader.Download(ctx, refs, action.OutputDir, e.cfg.DryRun)
		return err
	}

	e.preview(ctx, refs, e.cfg.PreviewLimit)

	if e.cfg.DryRun || action.Kind == QueryPreview {
		fmt.Fprintf(e.out, "\n[DRY RUN] Would affect %d messages.\n", len(refs))
		fmt.Fprintln(e.out, "Run with --delete, --trash, --label, or --unsubscribe to actually process them.")
		return nil
	}

	if !e.cfg.NoConfirm {
		ok, err := e.prompter.Confirm(fmt.Sprintf("\n%s? [y/N]: ", action.describe(len(refs))))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(e.out, "Cancelled.")
			return nil
		}
	}

	switch action.Kind {
	case QueryDelete:
		fmt.Fprintf(e.out, "\nDeleting %d messages...\n", len(refs))
		count := e.executor.Apply(ctx, Action{Kind: ActionDelete}, refs)
		fmt.Fprintf(e.out, "\nDone! Deleted %d messages.\n", count)
	case QueryTrash:
		fmt.Fprintf(e.out, "\nMoving %d messages to trash...\n", len(refs))
		count := e.executor.Apply(ctx, Action{Kind: ActionTrash}, refs)
		fmt.Fprintf(e.out, "\nDone! Moved %d messages to trash.\n", count)
	case QueryLabel:
		e.labelAndArchive(ctx, action.Label, refs, true)
	case QueryUnsubscribe:
		summaries := make([]MessageSummary, 0, len(refs))
		for _, ref := range refs {
			summaries = append(summaries, e.summary(ctx, ref.ID))
		}
		e.unsub.Execute(ctx, summaries)
	default:
		return fmt.Errorf("unknown query action %q", action.Kind)
	}

	return nil
}

// ListLabels prints all labels with message counts, sorted by name.
func (e *Engine) ListLabels(ctx context.Context) error {
	labels, err := e.mailbox.ListLabels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list labels: %w", err)
	}
	if len(labels) == 0 {
		fmt.Fprintln(e.out, "No labels found.")
		return nil
	}

	sort.Slice(labels, func(a, b int) bool {
		return strings.ToLower(labels[a].Name) < strings.ToLower(labels[b].Name)
	})

	fmt.Fprintf(e.out, "\n%-40s %8s %8s\n", "Label", "Total", "Unread")
	fmt.Fprintln(e.out, strings.Repeat("-", 58))
	for _, l := range labels {
		fmt.Fprintf(e.out, "%-40s %8d %8d\n", l.Name, l.Total, l.Unread)
	}
	fmt.Fprintf(e.out, "\n%d labels total.\n", len(labels))
	return nil
}

// ShowLabel previews the messages filed under a label name.
func (e *Engine) ShowLabel(ctx context.Context, name string) error {
	id, err := e.labels.Resolve(ctx, name)
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("label %q not found; use 'inboxtidy labels' to see available labels", name)
	}

	// The listing endpoint takes a query, not a label id; Gmail's search
	// syntax wants spaces in label names replaced with hyphens.
	query := "label:" + strings.ReplaceAll(name, " ", "-")
	refs, err := e.locator.Search(ctx, query, e.cfg.MaxResults)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		fmt.Fprintf(e.out, "\nNo messages found under label '%s'.\n", name)
		return nil
	}

	e.preview(ctx, refs, e.cfg.PreviewLimit)
	fmt.Fprintf(e.out, "\n%d messages total under '%s'.\n", len(refs), name)
	return nil
}
