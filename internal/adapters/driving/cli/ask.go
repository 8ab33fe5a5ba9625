package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docent-labs/docent/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the ingested documents",
	Long: `Answers a natural-language question from the indexed documents.
The answer cites the passages it drew on as [title, p<page>] references.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		if err := initPipeline(cmd.Context(), true); err != nil {
			return err
		}
	}
	if answerService == nil {
		return errNotConfigured("answer")
	}

	answer, err := answerService.Answer(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}
	return outputAnswerText(cmd, answer)
}

func outputAnswerJSON(cmd *cobra.Command, answer domain.Answer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, answer domain.Answer) error {
	cmd.Println(answer.Text)

	if len(answer.Citations) == 0 {
		return nil
	}

	cmd.Println("\nSources:")
	for i, c := range answer.Citations {
		cmd.Printf("  [%d] %s, p%d (%.2f)\n", i+1, c.Title, c.Page, c.Score)
	}
	return nil
}
