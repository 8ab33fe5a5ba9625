package cli

import (
	"github.com/spf13/cobra"

	"github.com/docent-labs/docent/internal/adapters/driving/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir...]",
	Short: "Watch directories and ingest new PDFs",
	Long: `Watches one or more directories and ingests PDF files as they are
created or modified. Rapid successive writes to the same file are
debounced so a file is ingested once, after it settles. Failures on
individual files are logged and watching continues.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		if err := initPipeline(cmd.Context(), false); err != nil {
			return err
		}
	}
	if ingestService == nil {
		return errNotConfigured("ingest")
	}

	w, err := watch.New(ingestService, watch.Config{Paths: args})
	if err != nil {
		return err
	}

	cmd.Printf("Watching %d directories for PDFs. Press Ctrl+C to stop.\n", len(args))
	return w.Run(cmd.Context())
}
