package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List ingested documents",
	Long:  `Shows the registry of ingested documents, newest first.`,
	RunE:  runDocumentsList,
}

var documentsGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show one registry entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsGet,
}

func init() {
	documentsCmd.AddCommand(documentsGetCmd)
	rootCmd.AddCommand(documentsCmd)
}

func initDocuments() error {
	if documentService != nil {
		return nil
	}
	if err := initSettings(); err != nil {
		return err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	return initRegistry(settings)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if err := initDocuments(); err != nil {
		return err
	}
	if documentService == nil {
		return errNotConfigured("document")
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested yet. Run 'docent ingest <file.pdf>' first.")
		return nil
	}

	cmd.Println("Ingested documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Title:    %s\n", docs[i].Title)
		cmd.Printf("    Pages:    %d\n", docs[i].Pages)
		cmd.Printf("    Chunks:   %d indexed of %d\n", docs[i].ChunksIndexed, docs[i].ChunksTotal)
		cmd.Printf("    Ingested: %s\n", docs[i].CreatedAt.Format("2006-01-02 15:04:05"))
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentsGet(cmd *cobra.Command, args []string) error {
	if err := initDocuments(); err != nil {
		return err
	}
	if documentService == nil {
		return errNotConfigured("document")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("getting document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Title:    %s\n", doc.Title)
	if doc.Filename != "" {
		cmd.Printf("  Filename: %s\n", doc.Filename)
	}
	cmd.Printf("  Pages:    %d\n", doc.Pages)
	cmd.Printf("  Chunks:   %d total, %d indexed, %d skipped, %d failed\n",
		doc.ChunksTotal, doc.ChunksIndexed, doc.ChunksSkipped, doc.ChunksFailed)
	cmd.Printf("  Ingested: %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}
