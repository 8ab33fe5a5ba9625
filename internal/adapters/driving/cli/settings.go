package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the embedding service, vector index, generation
service and pipeline tuning. Values set here are stored in the config
file; environment variables override them at runtime.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Sets a single configuration value by dotted key, for example:

  docent settings set embedding.base_url https://router.huggingface.co/...
  docent settings set query.top_k 5

When the value is omitted for a secret key (*.api_key or
cache.password), it is read from the terminal without echo.

Run 'docent settings keys' for the full key list.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the configuration keys",
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := initSettings(); err != nil {
		return err
	}
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Base URL: %s\n", orUnset(settings.Embedding.BaseURL))
	cmd.Printf("  API Key:  %s\n", maskSecret(settings.Embedding.APIKey))
	if settings.Embedding.RPS > 0 {
		cmd.Printf("  RPS:      %.1f\n", settings.Embedding.RPS)
	}
	cmd.Printf("  Status:   %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[Vector Index]")
	cmd.Printf("  Base URL:  %s\n", orUnset(settings.Index.BaseURL))
	cmd.Printf("  API Key:   %s\n", maskSecret(settings.Index.APIKey))
	if settings.Index.Namespace != "" {
		cmd.Printf("  Namespace: %s\n", settings.Index.Namespace)
	}
	cmd.Printf("  Status:    %s\n", configuredStatus(settings.Index.IsConfigured()))
	cmd.Println()

	cmd.Println("[Generation]")
	cmd.Printf("  Model:      %s\n", settings.Generation.Model)
	cmd.Printf("  API Key:    %s\n", maskSecret(settings.Generation.APIKey))
	cmd.Printf("  Max Tokens: %d\n", settings.Generation.MaxTokens)
	cmd.Printf("  Status:     %s\n", configuredStatus(settings.Generation.IsConfigured()))
	cmd.Println()

	cmd.Println("[Pipeline]")
	cmd.Printf("  Chunk Size:    %d chars (overlap %d)\n", settings.Chunking.MaxChars, settings.Chunking.Overlap)
	cmd.Printf("  Top K:         %d\n", settings.Query.TopK)
	cmd.Printf("  Concurrency:   %d\n", settings.Ingest.Concurrency)
	cmd.Println()

	cmd.Println("[Cache]")
	if settings.Cache.IsConfigured() {
		cmd.Printf("  Redis: %s (db %d, ttl %s)\n", settings.Cache.Addr, settings.Cache.DB, settings.Cache.TTL)
	} else {
		cmd.Println("  Disabled")
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'docent settings set' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := initSettings(); err != nil {
		return err
	}
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	key := args[0]

	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case isSecretKey(key):
		cmd.Printf("Enter value for %s: ", key)
		value = readPassword()
		cmd.Println()
		if value == "" {
			return errors.New("empty value")
		}
	default:
		return errors.New("a value is required for this key")
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}

	if isSecretKey(key) {
		cmd.Printf("Set %s to %s\n", key, maskSecret(value))
	} else {
		cmd.Printf("Set %s to %s\n", key, value)
	}
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if err := initSettings(); err != nil {
		return err
	}
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

// Helper functions.

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, ".api_key") || key == "cache.password"
}

func orUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func maskSecret(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read without echo first
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
