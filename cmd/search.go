package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxtidy/internal/tidy"
)

// searchActions holds the mutually exclusive action flags of the search
// command.
type searchActions struct {
	delete      bool
	trash       bool
	label       string
	download    bool
	unsubscribe bool
	output      string
}

// action validates that exactly one action (or none, with dry-run) was
// selected. Usage errors are reported here, before any network call.
func (a searchActions) action(dryRun bool) (tidy.QueryAction, error) {
	count := 0
	for _, set := range []bool{a.delete, a.trash, a.label != "", a.download, a.unsubscribe} {
		if set {
			count++
		}
	}
	if count > 1 {
		return tidy.QueryAction{}, fmt.Errorf("cannot use multiple actions (--delete, --trash, --label, --download, --unsubscribe)")
	}
	if count == 0 && !dryRun {
		return tidy.QueryAction{}, fmt.Errorf("specify --dry-run, --delete, --trash, --label <name>, --download, or --unsubscribe")
	}

	switch {
	case a.delete:
		return tidy.QueryAction{Kind: tidy.QueryDelete}, nil
	case a.trash:
		return tidy.QueryAction{Kind: tidy.QueryTrash}, nil
	case a.label != "":
		return tidy.QueryAction{Kind: tidy.QueryLabel, Label: a.label}, nil
	case a.download:
		return tidy.QueryAction{Kind: tidy.QueryDownload, OutputDir: a.output}, nil
	case a.unsubscribe:
		return tidy.QueryAction{Kind: tidy.QueryUnsubscribe}, nil
	default:
		return tidy.QueryAction{Kind: tidy.QueryPreview}, nil
	}
}

func newSearchCmd() *cobra.Command {
	flags := &engineFlags{}
	actions := &searchActions{}

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Act on messages matching a Gmail search query",
		Long: `Search for messages and apply exactly one action to them.

Gmail search operators:
  from:sender@email.com      Messages from specific sender
  to:recipient@email.com     Messages to specific recipient
  subject:word               Messages with word in subject
  older_than:1y              Older than 1 year (use d/m/y)
  newer_than:1m              Newer than 1 month
  label:promotions           Messages with specific label
  is:unread                  Unread messages
  has:attachment             Messages with attachments
  larger:5M                  Larger than 5MB`,
		Example: `  inboxtidy search "from:spam@example.com" --dry-run
  inboxtidy search "older_than:1y label:promotions" --delete
  inboxtidy search "from:newsletter@site.com" --trash
  inboxtidy search "subject:invoice has:attachment" --download -o ./invoices
  inboxtidy search "category:promotions" --unsubscribe`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := actions.action(flags.dryRun)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			engine, shutdown, err := newEngine(ctx, flags)
			if err != nil {
				return err
			}
			defer shutdown()

			return engine.RunQuery(ctx, args[0], action)
		},
	}

	flags.register(cmd)
	flags.registerAction(cmd)
	cmd.Flags().IntVarP(&flags.preview, "preview", "p", 10, "Number of messages to preview")
	cmd.Flags().BoolVarP(&actions.delete, "delete", "d", false, "Permanently delete messages")
	cmd.Flags().BoolVarP(&actions.trash, "trash", "t", false, "Move messages to trash (recoverable)")
	cmd.Flags().StringVarP(&actions.label, "label", "l", "", "Apply label and archive (remove from inbox)")
	cmd.Flags().BoolVar(&actions.download, "download", false, "Download attachments from matching messages")
	cmd.Flags().BoolVar(&actions.unsubscribe, "unsubscribe", false, "Unsubscribe from the senders of matching messages")
	cmd.Flags().StringVarP(&actions.output, "output", "o", "./gmail-downloads", "Output directory for downloads")
	return cmd
}
