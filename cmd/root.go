package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the inboxtidy application
var rootCmd = &cobra.Command{
	Use:   "inboxtidy",
	Short: "Files, trashes and deletes Gmail messages in bulk",
	Long: `inboxtidy keeps a Gmail inbox tidy. It applies declarative filing rules
(sender patterns or raw search queries mapped to labels), supports one-off
bulk actions on any search query, and can learn new rules from the senders
left in your inbox.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "inboxtidy version %s\n" .Version}}`)

	// If no subcommand is provided, run the tidy command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "tidy")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newTidyCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newLabelsCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}
