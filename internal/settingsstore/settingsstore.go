package settingsstore

import (
	"os"

	"github.com/mrlokans/bgsync/internal/database/settings"
)

// Setting sources, reported next to effective values
const (
	SourceDatabase    = "database"
	SourceEnvironment = "environment"
	SourceDefault     = "default"
)

// SettingsStore resolves user-editable settings.
// Priority: database > environment > default
type SettingsStore struct {
	repo *settings.Repository
}

func New(repo *settings.Repository) *SettingsStore {
	return &SettingsStore{repo: repo}
}

// resolve returns the effective value of a setting and where it came from
func (s *SettingsStore) resolve(key, envKey, def string) (string, string) {
	if value, ok, err := s.repo.GetValue(key); err == nil && ok && value != "" {
		return value, SourceDatabase
	}
	if envKey != "" {
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal, SourceEnvironment
		}
	}
	return def, SourceDefault
}

func parseBool(value string) bool {
	return value == "true" || value == "1"
}
