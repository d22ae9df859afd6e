package organizer

import "sync"

// Preference keys for the two user-chosen directories.
const (
	CustomDirectoryKey = "com.noisecrimestudios.assetStoreManager.customDirectory"
	BackupDirectoryKey = "com.noisecrimestudios.assetStoreManager.backupDirectory"
)

// Preferences persists string settings across sessions.
type Preferences interface {
	GetString(key, defaultValue string) string
	SetString(key, value string) error
}

// MemoryPreferences keeps preferences in memory only.
type MemoryPreferences struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryPreferences creates an empty in-memory preference store.
func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{values: make(map[string]string)}
}

func (p *MemoryPreferences) GetString(key, defaultValue string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		return v
	}
	return defaultValue
}

func (p *MemoryPreferences) SetString(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
	return nil
}
