package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxtidy/internal/gmail"
	"github.com/teemow/inboxtidy/internal/google"
	"github.com/teemow/inboxtidy/internal/instrumentation"
	"github.com/teemow/inboxtidy/internal/tidy"
)

// engineFlags holds the flags shared by all commands that talk to Gmail.
type engineFlags struct {
	tokenFile string
	rulesFile string
	max       int64
	preview   int
	dryRun    bool
	noConfirm bool
	metrics   bool
	verbose   bool
}

func (f *engineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.tokenFile, "token-file", "", "Path of the cached OAuth token (default: user cache dir)")
	cmd.Flags().Int64VarP(&f.max, "max", "m", 500, "Maximum messages to process")
	cmd.Flags().BoolVar(&f.metrics, "metrics", false, "Print collected metrics on exit")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Enable debug logging")
}

func (f *engineFlags) registerAction(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.dryRun, "dry-run", "n", false, "Preview only, no mutation")
	cmd.Flags().BoolVarP(&f.noConfirm, "no-confirm", "y", false, "Skip confirmation prompts")
}

func (f *engineFlags) logger() *slog.Logger {
	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newEngine builds the engine with a real Gmail client behind it.
// The returned shutdown function flushes metrics and must be called before
// the process exits.
func newEngine(ctx context.Context, f *engineFlags) (*tidy.Engine, func(), error) {
	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
		Enabled:        f.metrics,
		ServiceName:    "inboxtidy",
		ServiceVersion: version,
		Writer:         os.Stderr,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up instrumentation: %w", err)
	}
	shutdown := func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush metrics: %v\n", err)
		}
	}

	client, err := gmail.NewClient(ctx, google.Config{TokenFile: f.tokenFile}, provider.Metrics())
	if err != nil {
		shutdown()
		return nil, nil, err
	}

	engine := tidy.NewEngine(tidy.Config{
		RulesFile:    f.rulesFile,
		MaxResults:   f.max,
		PreviewLimit: f.preview,
		DryRun:       f.dryRun,
		NoConfirm:    f.noConfirm,
	}, client, tidy.Options{
		Attachments: client,
		Logger:      f.logger(),
		Metrics:     provider.Metrics(),
	})

	return engine, shutdown, nil
}
