// Package cli implements the docent command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/docent-labs/docent/internal/adapters/driven/ai"
	"github.com/docent-labs/docent/internal/adapters/driven/cache/redis"
	"github.com/docent-labs/docent/internal/adapters/driven/config/file"
	"github.com/docent-labs/docent/internal/adapters/driven/extractor/pdf"
	"github.com/docent-labs/docent/internal/adapters/driven/storage/memory"
	"github.com/docent-labs/docent/internal/adapters/driven/storage/sqlite"
	"github.com/docent-labs/docent/internal/chunker"
	"github.com/docent-labs/docent/internal/core/domain"
	"github.com/docent-labs/docent/internal/core/ports/driven"
	"github.com/docent-labs/docent/internal/core/ports/driving"
	"github.com/docent-labs/docent/internal/core/services"
	"github.com/docent-labs/docent/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verboseFlag bool
	configDir   string
	memoryFlag  bool
)

// Services used by the commands. Populated lazily by the init helpers
// below; tests inject mocks directly.
var (
	settingsService driving.SettingsService
	ingestService   driving.IngestService
	answerService   driving.AnswerService
	documentService driving.DocumentService
)

// closers holds resources to release when the process exits.
var closers []func()

var rootCmd = &cobra.Command{
	Use:   "docent",
	Short: "Ask questions about your documents",
	Long: `Docent ingests PDF documents into a vector index and answers
natural-language questions about them, citing the passages each
answer drew on.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
		_ = godotenv.Load() //nolint:errcheck // A missing .env file is fine
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.docent)")
	rootCmd.PersistentFlags().BoolVar(&memoryFlag, "memory", false, "keep the document registry in memory instead of on disk")
}

// Execute runs the root command and releases any resources the
// commands opened.
func Execute() error {
	defer closeResources()
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context, so
// long-running commands stop on SIGINT/SIGTERM.
func ExecuteContext(ctx context.Context) error {
	defer closeResources()
	return rootCmd.ExecuteContext(ctx)
}

func closeResources() {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	closers = nil
}

// initSettings builds the settings service over the TOML config file.
func initSettings() error {
	if settingsService != nil {
		return nil
	}

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}

	settingsService = services.NewSettingsService(store, ai.NewConfigValidator())
	return nil
}

// registryDocStore is kept so initPipeline can hand the same registry
// that backs the document service to the ingest service.
var registryDocStore driven.DocumentStore

// initRegistry builds the document registry service: SQLite under the
// data dir, or an in-memory registry for --memory runs.
func initRegistry(settings *domain.AppSettings) error {
	if documentService != nil {
		return nil
	}

	if memoryFlag {
		registryDocStore = memory.NewDocumentStore()
		documentService = services.NewDocumentService(registryDocStore)
		return nil
	}

	store, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening registry: %w", err)
	}
	closers = append(closers, func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing registry: %v", err)
		}
	})

	registryDocStore = store.DocumentStore()
	documentService = services.NewDocumentService(registryDocStore)
	return nil
}

// initPipeline wires the ingestion and answer services from settings:
// remote services are created and pinged, the chunker and extractor
// attached, the registry opened, and the optional embedding cache
// connected. needGeneration makes an unconfigured generation service
// an error instead of a deferred one.
func initPipeline(ctx context.Context, needGeneration bool) error {
	if ingestService != nil && answerService != nil {
		return nil
	}

	if err := initSettings(); err != nil {
		return err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	logger.Section("Bootstrap")

	// One InitResult collects the remote services as they come up, so
	// a bootstrap failure after this point still closes whatever was
	// already connected.
	remote := &ai.InitResult{}
	closers = append(closers, remote.Close)

	remote.Embedding, err = ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return err
	}
	if remote.Embedding == nil {
		return fmt.Errorf("%w: set embedding.base_url and embedding.api_key via 'docent settings set'",
			domain.ErrEmbeddingUnavailable)
	}
	logger.Debug("embedding service ready (model %s)", remote.Embedding.ModelName())

	remote.Index, err = ai.CreateAndValidateVectorIndex(&settings.Index)
	if err != nil {
		return err
	}
	if remote.Index == nil {
		return fmt.Errorf("%w: set index.base_url and index.api_key via 'docent settings set'",
			domain.ErrVectorIndexUnavailable)
	}
	logger.Debug("vector index ready")

	remote.Generation, err = ai.CreateAndValidateGenerationService(&settings.Generation)
	if err != nil {
		return err
	}
	if remote.Generation == nil && needGeneration {
		return fmt.Errorf("%w: set generation.api_key via 'docent settings set'",
			domain.ErrGenerationUnavailable)
	}
	if remote.Generation != nil {
		logger.Debug("generation service ready (model %s)", remote.Generation.ModelName())
	}

	ch, err := chunker.New(
		chunker.WithMaxChars(settings.Chunking.MaxChars),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)
	if err != nil {
		return fmt.Errorf("configuring chunker: %w", err)
	}

	if ingestService == nil {
		ingest := services.NewIngestService(ch, remote.Embedding, remote.Index)
		ingest.SetExtractor(pdf.New())
		ingest.SetConcurrency(settings.Ingest.Concurrency)

		if err := initRegistry(settings); err != nil {
			return err
		}
		if registryDocStore != nil {
			ingest.SetDocumentStore(registryDocStore)
		}

		if settings.Cache.IsConfigured() {
			cache, err := redis.New(ctx, redis.Config{
				Addr:     settings.Cache.Addr,
				Password: settings.Cache.Password,
				DB:       settings.Cache.DB,
				TTL:      settings.Cache.TTL,
			})
			if err != nil {
				// The cache is an optimisation; run without it.
				logger.Warn("embedding cache unavailable: %v", err)
			} else {
				closers = append(closers, func() {
					if err := cache.Close(); err != nil {
						logger.Warn("closing cache: %v", err)
					}
				})
				ingest.SetEmbeddingCache(cache)
				logger.Debug("embedding cache connected (%s)", settings.Cache.Addr)
			}
		}

		ingestService = ingest
	}

	if answerService == nil {
		answer := services.NewAnswerService(remote.Embedding, remote.Index, remote.Generation)
		answer.SetTopK(settings.Query.TopK)

		prompts, err := file.NewPromptStore(promptDirFor(configDir))
		if err != nil {
			logger.Warn("prompt store unavailable, using built-in prompts: %v", err)
		} else {
			answer.SetPromptStore(prompts)
		}

		answerService = answer
	}

	return nil
}

func promptDirFor(configDir string) string {
	if configDir == "" {
		return ""
	}
	return filepath.Join(configDir, "prompts")
}

// errNotConfigured standardises the message commands print when a
// test or caller cleared a required service.
func errNotConfigured(name string) error {
	return errors.New(name + " service not configured")
}
