package organizer

// PackageInfo is the raw description of one package as reported by a
// package source: the path on disk and the JSON metadata embedded in its
// header. JSONInfo is empty for packages that carry no metadata, such as
// the editor's built-in standard assets.
type PackageInfo struct {
	PackagePath string
	JSONInfo    string
}

// MetadataExtractor turns package files into PackageRecords.
type MetadataExtractor interface {
	// Extract reads the header of the package at path. It fails with an
	// error wrapping ErrInvalidPackageFormat when the header is invalid.
	Extract(path string) (*PackageRecord, error)

	// FromPackageInfo builds a record from already-extracted metadata.
	// Records without metadata are synthesized with ID == BuiltinID.
	FromPackageInfo(info PackageInfo) (*PackageRecord, error)
}

// NativePackageSource supplies the host editor's own package list.
type NativePackageSource interface {
	PackageList() ([]PackageInfo, error)
}
