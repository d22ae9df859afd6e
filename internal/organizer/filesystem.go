package organizer

import (
	"io"
	"io/fs"
)

// PackagePattern is the glob every package scan matches against.
const PackagePattern = "*.unitypackage"

// FilesystemManager provides an interface for filesystem operations.
// It abstracts file access to enable testing without touching the real filesystem.
type FilesystemManager interface {
	// DirExists reports whether path names an existing directory.
	DirExists(path string) bool

	// FileExists reports whether path names an existing regular file.
	FileExists(path string) bool

	// FindFiles recursively lists regular files under root whose base name
	// matches any of patterns. Sub-directories are visited before the files
	// of the directory that contains them. On error the files found so far
	// are returned alongside it.
	FindFiles(root string, patterns []string) ([]string, error)

	// Stat returns fresh file info for a path.
	Stat(path string) (fs.FileInfo, error)

	// Open opens a file for reading.
	Open(path string) (io.ReadSeekCloser, error)

	// CopyFile copies src to dst. If overwrite is false and dst exists,
	// it fails with an error wrapping ErrDestinationExists.
	CopyFile(src, dst string, overwrite bool) error

	// MkdirAll creates path and any missing parents.
	MkdirAll(path string) error
}
