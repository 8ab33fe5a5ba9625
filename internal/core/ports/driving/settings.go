package driving

import "github.com/docent-labs/docent/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings: defaults, overlaid
	// with the config file, overlaid with environment variables.
	Get() (*domain.AppSettings, error)

	// Save persists application settings to the config store.
	Save(settings *domain.AppSettings) error

	// Set updates a single dotted-key setting (e.g. "embedding.base_url")
	// and persists it. Unknown keys and unparseable values are rejected
	// with domain.ErrInvalidInput.
	Set(key, value string) error

	// Keys returns the dotted keys Set understands, sorted.
	Keys() []string

	// Validate checks that settings are complete enough to serve:
	// embedding and index configured, chunking precondition satisfied.
	Validate() error
}
