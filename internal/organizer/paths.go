package organizer

import (
	"fmt"
	"path/filepath"
)

// Directory names under the application data directory.
const (
	storeRootName   = "Unity"
	storeLegacyName = "Asset Store"
	storeModernName = "Asset Store-5.x"
)

// Paths resolves each Location to a directory. The canonical store
// directories derive from the application data directory; the custom and
// archive directories come from Preferences.
type Paths struct {
	appDataDir string
	prefs      Preferences
}

// LocationPath pairs a location with the directory it resolves to.
type LocationPath struct {
	Location Location
	Path     string
}

// NewPaths creates a Paths rooted at appDataDir.
func NewPaths(appDataDir string, prefs Preferences) *Paths {
	return &Paths{appDataDir: appDataDir, prefs: prefs}
}

// StoreRoot returns the root directory for Unity application data.
func (p *Paths) StoreRoot() string {
	return NormalizePath(filepath.Join(p.appDataDir, storeRootName))
}

// StoreLegacy returns the pre 5.x Asset Store directory.
func (p *Paths) StoreLegacy() string {
	return filepath.Join(p.StoreRoot(), storeLegacyName)
}

// StoreModern returns the Asset Store directory used from 5.x on.
func (p *Paths) StoreModern() string {
	return filepath.Join(p.StoreRoot(), storeModernName)
}

// Custom returns the custom directory, or "" if unset.
func (p *Paths) Custom() string {
	return NormalizePath(p.prefs.GetString(CustomDirectoryKey, ""))
}

// Backup returns the archive directory, or "" if unset.
func (p *Paths) Backup() string {
	return NormalizePath(p.prefs.GetString(BackupDirectoryKey, ""))
}

// Directory returns the directory for loc. The native location resolves
// to the store root.
func (p *Paths) Directory(loc Location) (string, error) {
	switch loc {
	case LocationNative:
		return p.StoreRoot(), nil
	case LocationAssetStore:
		return p.StoreLegacy(), nil
	case LocationAssetStore5x:
		return p.StoreModern(), nil
	case LocationCustom:
		return p.Custom(), nil
	case LocationArchive:
		return p.Backup(), nil
	default:
		return "", fmt.Errorf("resolving directory: %w: %v", ErrUnhandledLocation, loc)
	}
}

// SetDirectory stores the directory for a user-configurable location.
// The canonical locations cannot be changed.
func (p *Paths) SetDirectory(loc Location, path string) error {
	switch loc {
	case LocationNative, LocationAssetStore, LocationAssetStore5x:
		return fmt.Errorf("%w: setting the %v directory is not permitted", ErrInvalidOperation, loc)
	case LocationCustom:
		return p.prefs.SetString(CustomDirectoryKey, NormalizePath(path))
	case LocationArchive:
		return p.prefs.SetString(BackupDirectoryKey, NormalizePath(path))
	default:
		return fmt.Errorf("setting directory: %w: %v", ErrUnhandledLocation, loc)
	}
}

// Describe lists every location with its resolved directory.
func (p *Paths) Describe() []LocationPath {
	out := make([]LocationPath, 0, len(AllLocations()))
	for _, loc := range AllLocations() {
		dir, _ := p.Directory(loc)
		out = append(out, LocationPath{Location: loc, Path: dir})
	}
	return out
}

// NormalizePath returns path as a cleaned absolute path using the OS
// separator. An empty path stays empty.
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}
	path = filepath.FromSlash(path)
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
