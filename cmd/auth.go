package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxtidy/internal/google"
	"github.com/teemow/inboxtidy/internal/tidy"
)

func newAuthCmd() *cobra.Command {
	var tokenFile string
	var force bool

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to the Gmail account",
		Long: `Walk through the OAuth flow once: open the printed URL in a browser,
grant access and paste the authorization code back here. The token is
cached on disk and reused by all other commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := google.Config{TokenFile: tokenFile}

			if !force && google.HasToken(cfg) {
				fmt.Println("Already authorized. Use --force to re-authorize.")
				return nil
			}

			fmt.Println("Open the following URL in a browser and grant access:")
			fmt.Println()
			fmt.Println("  " + google.GetAuthURL(cfg))
			fmt.Println()

			prompter := tidy.NewConsolePrompter(os.Stdin, os.Stdout)
			code, err := prompter.Input("Authorization code: ")
			if err != nil {
				return fmt.Errorf("failed to read authorization code: %w", err)
			}

			if err := google.SaveToken(cmd.Context(), cfg, code); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Println("Authorization successful.")
			return nil
		},
	}

	cmd.Flags().StringVar(&tokenFile, "token-file", "", "Path of the cached OAuth token (default: user cache dir)")
	cmd.Flags().BoolVar(&force, "force", false, "Re-authorize even if a token already exists")
	return cmd
}
