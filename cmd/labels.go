package cmd

import (
	"github.com/spf13/cobra"
)

func newLabelsCmd() *cobra.Command {
	flags := &engineFlags{}

	cmd := &cobra.Command{
		Use:   "labels [NAME]",
		Short: "List labels, or preview the messages under one",
		Long: `Without an argument, list all labels with their message counts.
With a label name, show a preview of the inbox messages carrying it.`,
		Example: `  inboxtidy labels
  inboxtidy labels Newsletters -p 20`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			engine, shutdown, err := newEngine(ctx, flags)
			if err != nil {
				return err
			}
			defer shutdown()

			if len(args) == 0 {
				return engine.ListLabels(ctx)
			}
			return engine.ShowLabel(ctx, args[0])
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&flags.preview, "preview", "p", 10, "Number of messages to preview")
	return cmd
}
