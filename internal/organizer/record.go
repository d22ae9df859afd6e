package organizer

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	// BuiltinID marks a legacy built-in or otherwise unidentified package.
	// Such records are never archived.
	BuiltinID = -1

	// NotAvailable is the placeholder for missing metadata values.
	NotAvailable = "NA"
)

// LabelWithID is a category or publisher reference.
type LabelWithID struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Link is the store link carried in package metadata.
type Link struct {
	ID   string `json:"id" yaml:"id"`
	Type string `json:"type" yaml:"type"`
}

// PackageRecord is one discovered instance of a package file.
//
// Records are created once per scan and are not mutated afterwards, except
// for IsArchived, which is written by PackageLibrary.CompareAgainst and by
// the Archiver after a copy.
type PackageRecord struct {
	ID           int    `json:"id" yaml:"id"`
	Title        string `json:"title" yaml:"title"`
	Version      string `json:"version" yaml:"version"`
	VersionID    int    `json:"version_id" yaml:"version_id"`
	UnityVersion string `json:"unity_version" yaml:"unity_version"`
	PubDate      string `json:"pubdate" yaml:"pubdate"`
	UploadID     int    `json:"upload_id" yaml:"upload_id"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`

	Link         Link        `json:"link" yaml:"link"`
	Category     LabelWithID `json:"category" yaml:"category"`
	Publisher    LabelWithID `json:"publisher" yaml:"publisher"`
	BaseCategory string      `json:"base_category" yaml:"base_category"`

	FullFilePath string    `json:"path" yaml:"path"`
	FileSize     int64     `json:"size" yaml:"size"`
	ModifiedDate time.Time `json:"modified" yaml:"modified"`
	PublishDate  time.Time `json:"published" yaml:"published"`

	DisplayFileSize     string `json:"-" yaml:"-"`
	DisplayModifiedDate string `json:"-" yaml:"-"`

	IsBuiltinStandardAsset bool `json:"builtin_standard_asset" yaml:"builtin_standard_asset"`
	IsArchived             bool `json:"archived" yaml:"archived"`
}

// IsBuiltin reports whether the record is excluded from archival.
func (r *PackageRecord) IsBuiltin() bool {
	return r.ID == BuiltinID
}

// FileName returns the base name of the package file.
func (r *PackageRecord) FileName() string {
	return filepath.Base(r.FullFilePath)
}

// BaseCategoryOf returns the first segment of a "/"-separated category label.
func BaseCategoryOf(label string) string {
	base, _, _ := strings.Cut(label, "/")
	return base
}

func (r *PackageRecord) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s    [Size: %d  UnityStandardAsset: %t  IsArchived: %t]\n", r.Title, r.FileSize, r.IsBuiltinStandardAsset, r.IsArchived)
	fmt.Fprintf(&sb, "PubDate: %s   unity_version: %s  version: %s  version_id: %d  upload_id: %d  id: %d\n", r.PubDate, r.UnityVersion, r.Version, r.VersionID, r.UploadID, r.ID)
	fmt.Fprintf(&sb, "Link: id: %s  Type: %s\n", r.Link.ID, r.Link.Type)
	fmt.Fprintf(&sb, "Category id: %s  label: %s  Base: %s\n", r.Category.ID, r.Category.Label, r.BaseCategory)
	fmt.Fprintf(&sb, "Publisher id: %s  label: %s\n", r.Publisher.ID, r.Publisher.Label)
	fmt.Fprintf(&sb, "Package: %s\n", r.FullFilePath)
	fmt.Fprintf(&sb, "Description: %s\n", r.Description)
	return sb.String()
}
