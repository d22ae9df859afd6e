package testutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"asset-organizer/internal/organizer"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Content     []byte
	Permissions fs.FileMode
	ModTime     time.Time
	IsDirectory bool
}

// CopyOp records one CopyFile call that succeeded.
type CopyOp struct {
	Src, Dst  string
	Overwrite bool
}

// MockFilesystemManager is an in-memory filesystem for testing.
// Paths are cleaned; parent directories are created implicitly.
type MockFilesystemManager struct {
	files map[string]*MockFile

	// Copies lists successful copies in call order.
	Copies []CopyOp
	// Mutations counts CopyFile and MkdirAll calls, successful or not.
	Mutations int
	// FailCopy makes CopyFile fail for the given source paths.
	FailCopy map[string]error
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:    make(map[string]*MockFile),
		FailCopy: make(map[string]error),
	}
}

// AddFile adds a file to the mock filesystem, creating its parents.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.AddFileWithTime(path, content, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
}

// AddFileWithTime adds a file with the given modification time.
func (m *MockFilesystemManager) AddFileWithTime(path string, content []byte, modTime time.Time) {
	path = filepath.Clean(path)
	m.addParents(path)
	m.files[path] = &MockFile{
		Content:     content,
		Permissions: 0644,
		ModTime:     modTime,
	}
}

// AddDirectory adds a directory to the mock filesystem.
func (m *MockFilesystemManager) AddDirectory(path string) {
	path = filepath.Clean(path)
	m.addParents(path)
	m.files[path] = &MockFile{Permissions: 0755, IsDirectory: true}
}

func (m *MockFilesystemManager) addParents(path string) {
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		if _, ok := m.files[dir]; !ok {
			m.files[dir] = &MockFile{Permissions: 0755, IsDirectory: true}
		}
		if parent := filepath.Dir(dir); parent == dir {
			return
		}
	}
}

// Content returns the content of a file and whether it exists.
func (m *MockFilesystemManager) Content(path string) ([]byte, bool) {
	f, ok := m.files[filepath.Clean(path)]
	if !ok || f.IsDirectory {
		return nil, false
	}
	return f.Content, true
}

// Files returns every regular file path, sorted.
func (m *MockFilesystemManager) Files() []string {
	var out []string
	for p, f := range m.files {
		if !f.IsDirectory {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func (m *MockFilesystemManager) DirExists(path string) bool {
	f, ok := m.files[filepath.Clean(path)]
	return ok && f.IsDirectory
}

func (m *MockFilesystemManager) FileExists(path string) bool {
	f, ok := m.files[filepath.Clean(path)]
	return ok && !f.IsDirectory
}

// children returns the direct children of dir in name order.
func (m *MockFilesystemManager) children(dir string) []string {
	prefix := dir + string(filepath.Separator)
	if dir == string(filepath.Separator) {
		prefix = dir
	}
	var out []string
	for p := range m.files {
		if p == dir || !strings.HasPrefix(p, prefix) {
			continue
		}
		if !strings.Contains(p[len(prefix):], string(filepath.Separator)) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func (m *MockFilesystemManager) FindFiles(root string, patterns []string) ([]string, error) {
	root = filepath.Clean(root)
	if !m.DirExists(root) {
		return nil, fmt.Errorf("directory not found: %s", root)
	}

	var found []string
	var walk func(dir string)
	walk = func(dir string) {
		kids := m.children(dir)
		for _, p := range kids {
			if m.files[p].IsDirectory {
				walk(p)
			}
		}
		for _, p := range kids {
			if m.files[p].IsDirectory {
				continue
			}
			for _, pat := range patterns {
				if ok, _ := filepath.Match(pat, filepath.Base(p)); ok {
					found = append(found, p)
					break
				}
			}
		}
	}
	walk(root)
	return found, nil
}

func (m *MockFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	path = filepath.Clean(path)
	file, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("stat %s: %w", path, fs.ErrNotExist)
	}
	return &mockFileInfo{
		name:    filepath.Base(path),
		size:    int64(len(file.Content)),
		mode:    file.Permissions,
		modTime: file.ModTime,
		isDir:   file.IsDirectory,
	}, nil
}

type readSeekNopCloser struct {
	*bytes.Reader
}

func (readSeekNopCloser) Close() error { return nil }

func (m *MockFilesystemManager) Open(path string) (io.ReadSeekCloser, error) {
	path = filepath.Clean(path)
	file, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
	}
	if file.IsDirectory {
		return nil, fmt.Errorf("cannot open directory: %s", path)
	}
	return readSeekNopCloser{bytes.NewReader(file.Content)}, nil
}

func (m *MockFilesystemManager) CopyFile(src, dst string, overwrite bool) error {
	m.Mutations++
	src, dst = filepath.Clean(src), filepath.Clean(dst)
	if err, ok := m.FailCopy[src]; ok {
		return err
	}
	file, ok := m.files[src]
	if !ok || file.IsDirectory {
		return fmt.Errorf("open %s: %w", src, fs.ErrNotExist)
	}
	if !overwrite && m.FileExists(dst) {
		return fmt.Errorf("%s: %w", dst, organizer.ErrDestinationExists)
	}
	if !m.DirExists(filepath.Dir(dst)) {
		return fmt.Errorf("parent of %s: %w", dst, fs.ErrNotExist)
	}
	content := make([]byte, len(file.Content))
	copy(content, file.Content)
	m.files[dst] = &MockFile{Content: content, Permissions: file.Permissions, ModTime: file.ModTime}
	m.Copies = append(m.Copies, CopyOp{Src: src, Dst: dst, Overwrite: overwrite})
	return nil
}

func (m *MockFilesystemManager) MkdirAll(path string) error {
	m.Mutations++
	path = filepath.Clean(path)
	if f, ok := m.files[path]; ok {
		if !f.IsDirectory {
			return fmt.Errorf("mkdir %s: not a directory", path)
		}
		return nil
	}
	m.AddDirectory(path)
	return nil
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return nil }

// Compile-time check
var _ organizer.FilesystemManager = (*MockFilesystemManager)(nil)
