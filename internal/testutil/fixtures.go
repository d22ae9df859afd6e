package testutil

import (
	"testing"

	"asset-organizer/internal/organizer"
	"asset-organizer/internal/unitypackage"
)

// PackageSpec describes a package fixture.
type PackageSpec struct {
	ID           int
	Title        string
	Version      string
	VersionID    int
	UnityVersion string
	PubDate      string
	Category     string
	Publisher    string
}

// Metadata returns the header metadata for s.
func (s PackageSpec) Metadata() *unitypackage.Metadata {
	m := unitypackage.NewMetadata(s.ID, s.Title, s.Version, s.VersionID, s.UnityVersion, s.PubDate)
	if s.Category != "" {
		m.SetCategory("1", s.Category)
	}
	if s.Publisher != "" {
		m.SetPublisher("1", s.Publisher)
	}
	return m
}

// PackageBytes builds a valid package file for s.
func PackageBytes(t *testing.T, s PackageSpec) []byte {
	t.Helper()
	meta, err := s.Metadata().Encode()
	if err != nil {
		t.Fatalf("encoding metadata: %v", err)
	}
	data, err := unitypackage.BuildPackage(meta, map[string][]byte{
		"0000/asset": []byte(s.Title),
	})
	if err != nil {
		t.Fatalf("building package: %v", err)
	}
	return data
}

// AddPackage writes a package fixture for s at path.
func (m *MockFilesystemManager) AddPackage(t *testing.T, path string, s PackageSpec) {
	t.Helper()
	m.AddFile(path, PackageBytes(t, s))
}

// NewRecord returns a record with the identity fields set.
func NewRecord(id int, title, version string, versionID int, unityVersion, path string) *organizer.PackageRecord {
	return &organizer.PackageRecord{
		ID:           id,
		Title:        title,
		Version:      version,
		VersionID:    versionID,
		UnityVersion: unityVersion,
		PubDate:      "01 Jan 2020",
		FullFilePath: path,
		Category:     organizer.LabelWithID{ID: "1", Label: "Tools"},
		Publisher:    organizer.LabelWithID{ID: "1", Label: "Acme"},
		BaseCategory: "Tools",
	}
}
