package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// ingestTitle overrides the filename-derived title. Only meaningful
// when a single file is ingested.
var ingestTitle string

var ingestCmd = &cobra.Command{
	Use:   "ingest [file.pdf...]",
	Short: "Ingest PDF documents into the index",
	Long: `Extracts text from one or more PDF files, splits it into chunks,
embeds each chunk and stores the vectors in the index. Chunks that
fail to embed or upsert are reported but do not abort the run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestTitle, "title", "t", "", "document title (default: filename)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if len(args) > 1 && ingestTitle != "" {
		return fmt.Errorf("--title only applies when ingesting a single file")
	}

	if ingestService == nil {
		if err := initPipeline(cmd.Context(), false); err != nil {
			return err
		}
	}
	if ingestService == nil {
		return errNotConfigured("ingest")
	}

	var failures int
	for _, path := range args {
		if err := ingestFile(cmd, path); err != nil {
			cmd.Printf("  %s: %v\n", filepath.Base(path), err)
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d files failed to ingest", failures, len(args))
	}
	return nil
}

func ingestFile(cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	cmd.Printf("Ingesting %s...\n", filepath.Base(path))

	result, err := ingestService.IngestStream(cmd.Context(), f, filepath.Base(path), ingestTitle)
	if err != nil {
		return err
	}

	cmd.Printf("  Pages:   %d\n", result.PagesCount)
	cmd.Printf("  Chunks:  %d indexed, %d skipped, %d failed (of %d)\n",
		result.ChunksIndexed, result.ChunksSkipped, result.ChunksFailed, result.ChunksTotal)
	if result.DocumentID != "" {
		cmd.Printf("  Registered as %s\n", result.DocumentID)
	}
	if !result.Complete() {
		cmd.Printf("  Warning: some chunks were not indexed; answers may miss parts of this document.\n")
	}
	return nil
}
