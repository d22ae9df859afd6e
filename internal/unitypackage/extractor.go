package unitypackage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"asset-organizer/internal/organizer"
)

// Values given to built-in standard assets, which ship without metadata.
const (
	standardAssetPublisher   = "Unity Technologies"
	standardAssetPublisherID = "1"
	standardAssetCategory    = "Prefab Packages"
	standardAssetCategoryID  = "4"
	standardAssetVersion     = "4.3.4"
	standardAssetTitlePrefix = "BuiltinStandardAsset."
)

// DisplayDateLayout formats PackageRecord.DisplayModifiedDate.
const DisplayDateLayout = "02 Jan 2006"

// Accepted pubdate layouts, tried in order.
var pubDateLayouts = []string{
	"2 Jan 2006",
	"02 Jan 2006",
	"2006-01-02",
	time.RFC3339,
}

// Extractor builds PackageRecords from package headers.
type Extractor struct {
	fsmgr            organizer.FilesystemManager
	hostUnityVersion string
}

// NewExtractor creates an Extractor. hostUnityVersion is used as the
// version of packages that carry no metadata; empty means "NA".
func NewExtractor(fsmgr organizer.FilesystemManager, hostUnityVersion string) *Extractor {
	if hostUnityVersion == "" {
		hostUnityVersion = organizer.NotAvailable
	}
	return &Extractor{fsmgr: fsmgr, hostUnityVersion: hostUnityVersion}
}

// Extract reads the package header at path.
func (e *Extractor) Extract(path string) (*organizer.PackageRecord, error) {
	data, err := e.readJSON(path)
	if err != nil {
		return nil, err
	}
	return e.FromPackageInfo(organizer.PackageInfo{PackagePath: path, JSONInfo: string(data)})
}

func (e *Extractor) readJSON(path string) ([]byte, error) {
	info, err := e.fsmgr.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	f, err := e.fsmgr.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	data, err := ReadHeaderJSON(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// FromPackageInfo builds a record from metadata already read from a
// package. An empty JSONInfo yields a synthetic record.
func (e *Extractor) FromPackageInfo(info organizer.PackageInfo) (*organizer.PackageRecord, error) {
	path := organizer.NormalizePath(info.PackagePath)
	standard := IsStandardAssetPath(path)

	var rec *organizer.PackageRecord
	if info.JSONInfo != "" {
		meta, err := ParseMetadata([]byte(info.JSONInfo))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: decoding metadata: %w", organizer.ErrInvalidPackageFormat, path, err)
		}
		rec = recordFromMetadata(meta)
	} else {
		rec = e.syntheticRecord(filepath.Base(path), standard)
	}

	rec.FullFilePath = path
	rec.IsBuiltinStandardAsset = standard

	if st, err := e.fsmgr.Stat(path); err == nil {
		rec.FileSize = st.Size()
		rec.ModifiedDate = st.ModTime()
	}
	rec.PublishDate = parsePubDate(rec.PubDate)
	rec.DisplayModifiedDate = rec.ModifiedDate.Format(DisplayDateLayout)
	rec.DisplayFileSize = humanize.IBytes(uint64(rec.FileSize))

	if rec.UnityVersion == "" {
		rec.UnityVersion = organizer.NotAvailable
	}
	rec.Category.Label = strings.ReplaceAll(orNA(rec.Category.Label), "&", "and")
	rec.Category.ID = orNA(rec.Category.ID)
	rec.Publisher.Label = orNA(rec.Publisher.Label)
	rec.Publisher.ID = orNA(rec.Publisher.ID)
	rec.BaseCategory = organizer.BaseCategoryOf(rec.Category.Label)

	return rec, nil
}

func recordFromMetadata(m *Metadata) *organizer.PackageRecord {
	return &organizer.PackageRecord{
		ID:           int(m.ID),
		Title:        m.Title,
		Version:      m.Version,
		VersionID:    int(m.VersionID),
		UnityVersion: m.UnityVersion,
		PubDate:      m.PubDate,
		UploadID:     int(m.UploadID),
		Description:  m.Description,
		Link:         organizer.Link{ID: string(m.Link.ID), Type: m.Link.Type},
		Category:     organizer.LabelWithID{ID: string(m.Category.ID), Label: m.Category.Label},
		Publisher:    organizer.LabelWithID{ID: string(m.Publisher.ID), Label: m.Publisher.Label},
	}
}

func (e *Extractor) syntheticRecord(name string, standard bool) *organizer.PackageRecord {
	rec := &organizer.PackageRecord{
		ID:          organizer.BuiltinID,
		VersionID:   organizer.BuiltinID,
		UploadID:    organizer.BuiltinID,
		PubDate:     organizer.NotAvailable,
		Description: organizer.NotAvailable,
		Link:        organizer.Link{ID: organizer.NotAvailable, Type: organizer.NotAvailable},
	}
	if standard {
		rec.Title = standardAssetTitlePrefix + strings.TrimSuffix(name, filepath.Ext(name))
		rec.Version = standardAssetVersion
		rec.Category = organizer.LabelWithID{ID: standardAssetCategoryID, Label: standardAssetCategory}
		rec.Publisher = organizer.LabelWithID{ID: standardAssetPublisherID, Label: standardAssetPublisher}
	} else {
		rec.Title = name
		rec.Version = e.hostUnityVersion
		rec.Category = organizer.LabelWithID{ID: organizer.NotAvailable, Label: organizer.NotAvailable}
		rec.Publisher = organizer.LabelWithID{ID: organizer.NotAvailable, Label: organizer.NotAvailable}
	}
	rec.UnityVersion = rec.Version
	return rec
}

// IsStandardAssetPath reports whether path lies in the editor's bundled
// Standard Assets directory.
func IsStandardAssetPath(path string) bool {
	return strings.Contains(path, "Editor/Standard Assets") || strings.Contains(path, `Editor\Standard Assets`)
}

func parsePubDate(s string) time.Time {
	if s == "" || s == organizer.NotAvailable {
		return time.Time{}
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func orNA(s string) string {
	if s == "" {
		return organizer.NotAvailable
	}
	return s
}

var _ organizer.MetadataExtractor = (*Extractor)(nil)
