package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/docent-labs/docent/internal/core/domain"
	"github.com/docent-labs/docent/internal/core/ports/driven"
	"github.com/docent-labs/docent/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedAPIKey    = "embedding.api_key"
	keyEmbedRPS       = "embedding.rps"
	keyIndexBaseURL   = "index.base_url"
	keyIndexAPIKey    = "index.api_key"
	keyIndexNamespace = "index.namespace"
	keyGenBaseURL     = "generation.base_url"
	keyGenAPIKey      = "generation.api_key"
	keyGenModel       = "generation.model"
	keyGenMaxTokens   = "generation.max_tokens"
	keyChunkMaxChars  = "chunking.max_chars"
	keyChunkOverlap   = "chunking.overlap"
	keyQueryTopK      = "query.top_k"
	keyIngestWorkers  = "ingest.concurrency"
	keyStorageDataDir = "storage.data_dir"
	keyCacheAddr      = "cache.addr"
	keyCachePassword  = "cache.password"
	keyCacheDB        = "cache.db"
	keyCacheTTL       = "cache.ttl"
	keyServerAddr     = "server.addr"
	keyServerMaxBytes = "server.max_upload_bytes"
)

// Environment variables that override config values regardless of the
// DOCENT_* mapping, so existing provider credentials just work.
var envAliases = map[string]string{
	keyEmbedAPIKey: "HF_API_KEY",
	keyIndexAPIKey: "PINECONE_API_KEY",
	keyGenAPIKey:   "OPENAI_API_KEY",
}

// SettingsService manages application settings: defaults, overlaid
// with the config file, overlaid with environment variables.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service. The validator is
// optional; when nil, Set skips connectivity validation.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := domain.DefaultAppSettings()

	settings.Embedding.BaseURL = s.getString(keyEmbedBaseURL, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = s.getString(keyEmbedAPIKey, settings.Embedding.APIKey)
	settings.Embedding.RPS = s.getFloat(keyEmbedRPS, settings.Embedding.RPS)

	settings.Index.BaseURL = s.getString(keyIndexBaseURL, settings.Index.BaseURL)
	settings.Index.APIKey = s.getString(keyIndexAPIKey, settings.Index.APIKey)
	settings.Index.Namespace = s.getString(keyIndexNamespace, settings.Index.Namespace)

	settings.Generation.BaseURL = s.getString(keyGenBaseURL, settings.Generation.BaseURL)
	settings.Generation.APIKey = s.getString(keyGenAPIKey, settings.Generation.APIKey)
	settings.Generation.Model = s.getString(keyGenModel, settings.Generation.Model)
	settings.Generation.MaxTokens = s.getInt(keyGenMaxTokens, settings.Generation.MaxTokens)

	settings.Chunking.MaxChars = s.getInt(keyChunkMaxChars, settings.Chunking.MaxChars)
	settings.Chunking.Overlap = s.getInt(keyChunkOverlap, settings.Chunking.Overlap)
	settings.Query.TopK = s.getInt(keyQueryTopK, settings.Query.TopK)
	settings.Ingest.Concurrency = s.getInt(keyIngestWorkers, settings.Ingest.Concurrency)
	settings.Storage.DataDir = s.getString(keyStorageDataDir, settings.Storage.DataDir)

	settings.Cache.Addr = s.getString(keyCacheAddr, settings.Cache.Addr)
	settings.Cache.Password = s.getString(keyCachePassword, settings.Cache.Password)
	settings.Cache.DB = s.getInt(keyCacheDB, settings.Cache.DB)
	if ttl := s.getString(keyCacheTTL, ""); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			settings.Cache.TTL = d
		}
	}

	settings.Server.Addr = s.getString(keyServerAddr, settings.Server.Addr)
	if n := s.getInt(keyServerMaxBytes, 0); n > 0 {
		settings.Server.MaxUploadBytes = int64(n)
	}

	return &settings, nil
}

// Save persists application settings to the config store.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := map[string]any{
		keyEmbedBaseURL:   settings.Embedding.BaseURL,
		keyEmbedRPS:       settings.Embedding.RPS,
		keyIndexBaseURL:   settings.Index.BaseURL,
		keyIndexNamespace: settings.Index.Namespace,
		keyGenBaseURL:     settings.Generation.BaseURL,
		keyGenModel:       settings.Generation.Model,
		keyGenMaxTokens:   settings.Generation.MaxTokens,
		keyChunkMaxChars:  settings.Chunking.MaxChars,
		keyChunkOverlap:   settings.Chunking.Overlap,
		keyQueryTopK:      settings.Query.TopK,
		keyIngestWorkers:  settings.Ingest.Concurrency,
		keyStorageDataDir: settings.Storage.DataDir,
		keyCacheAddr:      settings.Cache.Addr,
		keyCacheDB:        settings.Cache.DB,
		keyCacheTTL:       settings.Cache.TTL.String(),
		keyServerAddr:     settings.Server.Addr,
		keyServerMaxBytes: int(settings.Server.MaxUploadBytes),
	}

	// Secrets are only written when set, so clearing the struct field
	// never wipes a stored credential by accident.
	if settings.Embedding.APIKey != "" {
		values[keyEmbedAPIKey] = settings.Embedding.APIKey
	}
	if settings.Index.APIKey != "" {
		values[keyIndexAPIKey] = settings.Index.APIKey
	}
	if settings.Generation.APIKey != "" {
		values[keyGenAPIKey] = settings.Generation.APIKey
	}
	if settings.Cache.Password != "" {
		values[keyCachePassword] = settings.Cache.Password
	}

	for key, value := range values {
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}

// Set updates a single dotted-key setting and persists it.
func (s *SettingsService) Set(key, value string) error {
	parsed, err := parseSettingValue(key, value)
	if err != nil {
		return err
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	return s.validateChangedService(key)
}

// Keys returns the dotted keys Set understands, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for key := range settingKinds {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks that settings are complete enough to serve.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding service not configured: set %s", keyEmbedBaseURL)
	}
	if !settings.Index.IsConfigured() {
		return fmt.Errorf("vector index not configured: set %s", keyIndexBaseURL)
	}
	if settings.Chunking.MaxChars <= 0 {
		return fmt.Errorf("%s must be positive", keyChunkMaxChars)
	}
	if settings.Chunking.Overlap < 0 || settings.Chunking.Overlap >= settings.Chunking.MaxChars {
		return fmt.Errorf("%s must satisfy 0 <= overlap < %s", keyChunkOverlap, keyChunkMaxChars)
	}
	if settings.Query.TopK <= 0 {
		return fmt.Errorf("%s must be positive", keyQueryTopK)
	}
	return nil
}

// validateChangedService pings the service a key belongs to, so bad
// endpoints or credentials surface at configuration time.
func (s *SettingsService) validateChangedService(key string) error {
	if s.aiValidator == nil {
		return nil
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	switch {
	case strings.HasPrefix(key, "embedding."):
		return s.aiValidator.ValidateEmbedding(&settings.Embedding)
	case strings.HasPrefix(key, "index."):
		return s.aiValidator.ValidateIndex(&settings.Index)
	case strings.HasPrefix(key, "generation."):
		return s.aiValidator.ValidateGeneration(&settings.Generation)
	}
	return nil
}

// settingKind describes how a key's string value is parsed.
type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindDuration
)

var settingKinds = map[string]settingKind{
	keyEmbedBaseURL:   kindString,
	keyEmbedAPIKey:    kindString,
	keyEmbedRPS:       kindFloat,
	keyIndexBaseURL:   kindString,
	keyIndexAPIKey:    kindString,
	keyIndexNamespace: kindString,
	keyGenBaseURL:     kindString,
	keyGenAPIKey:      kindString,
	keyGenModel:       kindString,
	keyGenMaxTokens:   kindInt,
	keyChunkMaxChars:  kindInt,
	keyChunkOverlap:   kindInt,
	keyQueryTopK:      kindInt,
	keyIngestWorkers:  kindInt,
	keyStorageDataDir: kindString,
	keyCacheAddr:      kindString,
	keyCachePassword:  kindString,
	keyCacheDB:        kindInt,
	keyCacheTTL:       kindDuration,
	keyServerAddr:     kindString,
	keyServerMaxBytes: kindInt,
}

// parseSettingValue converts a user-supplied string into the key's
// storage type. Unknown keys and unparseable values are rejected.
func parseSettingValue(key, value string) (any, error) {
	kind, ok := settingKinds[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects an integer, got %q", domain.ErrInvalidInput, key, value)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects a number, got %q", domain.ErrInvalidInput, key, value)
		}
		return f, nil
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects a duration like 24h, got %q", domain.ErrInvalidInput, key, value)
		}
		return d.String(), nil
	default:
		return value, nil
	}
}

// envValue resolves the environment override for a key: the DOCENT_*
// form first, then any provider alias (OPENAI_API_KEY and friends).
func envValue(key string) string {
	name := "DOCENT_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
	if v := os.Getenv(name); v != "" {
		return v
	}
	if alias, ok := envAliases[key]; ok {
		if v := os.Getenv(alias); v != "" {
			return v
		}
	}
	return ""
}

func (s *SettingsService) getString(key, fallback string) string {
	if v := envValue(key); v != "" {
		return v
	}
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return fallback
}

func (s *SettingsService) getInt(key string, fallback int) int {
	if v := envValue(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetInt(key)
	}
	return fallback
}

func (s *SettingsService) getFloat(key string, fallback float64) float64 {
	if v := envValue(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetFloat(key)
	}
	return fallback
}
