package cmd

import (
	"github.com/spf13/cobra"
)

func newTidyCmd() *cobra.Command {
	flags := &engineFlags{}

	cmd := &cobra.Command{
		Use:   "tidy",
		Short: "Apply the filing rules from the rule file to the inbox",
		Long: `Run all rules from the rule file against the inbox. Each rule searches for
its senders (or raw query), previews the matches, asks for confirmation and
then labels and archives them.

After all rules have run, inboxtidy can scan the remaining inbox, group it
by sender and suggest new rules. Accepted suggestions are applied
immediately and can be saved back to the rule file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			engine, shutdown, err := newEngine(ctx, flags)
			if err != nil {
				return err
			}
			defer shutdown()

			return engine.Tidy(ctx)
		},
	}

	flags.register(cmd)
	flags.registerAction(cmd)
	cmd.Flags().StringVar(&flags.rulesFile, "rules", "tidy-rules.json", "Path of the rule file")
	return cmd
}
