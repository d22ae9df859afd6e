package config

import (
	"sync"

	"asset-organizer/internal/organizer"
)

// PreferenceStore keeps organizer preferences in the [preferences] table
// of the config file. Every SetString rewrites the file.
type PreferenceStore struct {
	mu   sync.Mutex
	path string
	cfg  *Config
}

// NewPreferenceStore creates a store over cfg. An empty path keeps
// changes in memory only.
func NewPreferenceStore(path string, cfg *Config) *PreferenceStore {
	if cfg.Preferences == nil {
		cfg.Preferences = map[string]string{}
	}
	return &PreferenceStore{path: path, cfg: cfg}
}

func (s *PreferenceStore) GetString(key, defaultValue string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cfg.Preferences[key]; ok {
		return v
	}
	return defaultValue
}

// SetString updates key and persists the config. On a failed write the
// in-memory value is rolled back.
func (s *PreferenceStore) SetString(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, had := s.cfg.Preferences[key]
	s.cfg.Preferences[key] = value
	if s.path == "" {
		return nil
	}
	if err := writeToFile(s.path, s.cfg); err != nil {
		if had {
			s.cfg.Preferences[key] = old
		} else {
			delete(s.cfg.Preferences, key)
		}
		return err
	}
	return nil
}

var _ organizer.Preferences = (*PreferenceStore)(nil)
