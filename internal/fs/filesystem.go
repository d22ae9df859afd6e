package fs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"asset-organizer/internal/organizer"
)

// OSFilesystemManager is the real filesystem implementation of FilesystemManager.
// It performs actual filesystem operations using the os package.
type OSFilesystemManager struct {
	ignore *IgnoreMatcher
}

// NewOSFilesystemManager creates a new filesystem manager that operates on the real filesystem.
// ignorePatterns are applied to every scan in addition to the root's ignore file.
func NewOSFilesystemManager(ignorePatterns []string) *OSFilesystemManager {
	return &OSFilesystemManager{ignore: NewIgnoreMatcher(ignorePatterns)}
}

func (m *OSFilesystemManager) DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (m *OSFilesystemManager) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Stat returns fresh file info for a path.
func (m *OSFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Open opens a file for reading.
func (m *OSFilesystemManager) Open(path string) (io.ReadSeekCloser, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("cannot open directory as file: %s", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (m *OSFilesystemManager) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

// FindFiles recursively discovers regular files under root matching any
// of patterns. Each directory's sub-directories are visited before its
// own files; entries are visited in name order. Symlinks are not followed.
// Unreadable sub-directories and an unreadable ignore file are skipped
// and reported in the joined error.
func (m *OSFilesystemManager) FindFiles(root string, patterns []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root)
	}

	var found []string
	var errs []error

	matcher := m.ignore
	if extra, err := ParseIgnoreFile(filepath.Join(root, IgnoreFileName)); err != nil {
		errs = append(errs, err)
	} else {
		matcher = m.ignore.With(extra)
	}
	var walk func(dir string)
	walk = func(dir string) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			errs = append(errs, fmt.Errorf("reading directory %s: %w", dir, err))
			return
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			p := filepath.Join(dir, e.Name())
			if rel, _ := filepath.Rel(root, p); matcher.MatchDir(rel) {
				continue
			}
			walk(p)
		}
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			if !matchAny(patterns, e.Name()) {
				continue
			}
			p := filepath.Join(dir, e.Name())
			if rel, _ := filepath.Rel(root, p); matcher.Match(rel) {
				continue
			}
			found = append(found, p)
		}
	}
	walk(root)

	return found, errors.Join(errs...)
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := filepath.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

// CopyFile copies src to dst, keeping the source modification time.
// Without overwrite an existing dst fails with organizer.ErrDestinationExists.
// A newly created dst is removed if the copy fails.
func (m *OSFilesystemManager) CopyFile(src, dst string, overwrite bool) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	out, err := os.OpenFile(dst, flags, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s: %w", dst, organizer.ErrDestinationExists)
		}
		return fmt.Errorf("creating destination: %w", err)
	}
	defer func() {
		if err != nil && !overwrite {
			os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying data: %w", err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("closing destination: %w", err)
	}
	if err = os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("setting modification time: %w", err)
	}
	return nil
}

// Compile-time check that OSFilesystemManager implements organizer.FilesystemManager interface
var _ organizer.FilesystemManager = (*OSFilesystemManager)(nil)
