package fs

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"asset-organizer/internal/organizer"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestOSFilesystemManager_FindFiles(t *testing.T) {
	t.Run("visits sub-directories before files", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "A.unitypackage"), "a")
		writeFile(t, filepath.Join(root, "Pub", "B.unitypackage"), "b")
		writeFile(t, filepath.Join(root, "Pub", "Cat", "C.unitypackage"), "c")
		writeFile(t, filepath.Join(root, "Pub", "readme.txt"), "r")

		m := NewOSFilesystemManager(nil)
		got, err := m.FindFiles(root, []string{organizer.PackagePattern})
		if err != nil {
			t.Fatalf("FindFiles() error = %v", err)
		}

		want := []string{
			filepath.Join(root, "Pub", "Cat", "C.unitypackage"),
			filepath.Join(root, "Pub", "B.unitypackage"),
			filepath.Join(root, "A.unitypackage"),
		}
		if !slices.Equal(got, want) {
			t.Errorf("FindFiles() = %v, want %v", got, want)
		}
	})

	t.Run("applies config and root ignore patterns", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "Keep.unitypackage"), "k")
		writeFile(t, filepath.Join(root, "Old", "Skip.unitypackage"), "s")
		writeFile(t, filepath.Join(root, "Draft.unitypackage"), "d")
		writeFile(t, filepath.Join(root, IgnoreFileName), "Draft*\n")

		m := NewOSFilesystemManager([]string{"Old/"})
		got, err := m.FindFiles(root, []string{organizer.PackagePattern})
		if err != nil {
			t.Fatalf("FindFiles() error = %v", err)
		}
		want := []string{filepath.Join(root, "Keep.unitypackage")}
		if !slices.Equal(got, want) {
			t.Errorf("FindFiles() = %v, want %v", got, want)
		}
	})

	t.Run("unreadable ignore file keeps scanning", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "Keep.unitypackage"), "k")
		writeFile(t, filepath.Join(root, "Old", "Skip.unitypackage"), "s")
		// A directory in place of the ignore file fails on read.
		if err := os.Mkdir(filepath.Join(root, IgnoreFileName), 0755); err != nil {
			t.Fatalf("creating dir: %v", err)
		}

		m := NewOSFilesystemManager([]string{"Old/"})
		got, err := m.FindFiles(root, []string{organizer.PackagePattern})
		if err == nil {
			t.Error("FindFiles() expected error for unreadable ignore file")
		}
		want := []string{filepath.Join(root, "Keep.unitypackage")}
		if !slices.Equal(got, want) {
			t.Errorf("FindFiles() = %v, want %v", got, want)
		}
	})

	t.Run("fails for missing root", func(t *testing.T) {
		m := NewOSFilesystemManager(nil)
		if _, err := m.FindFiles(filepath.Join(t.TempDir(), "missing"), []string{"*"}); err == nil {
			t.Error("FindFiles() expected error for missing root")
		}
	})
}

func TestOSFilesystemManager_CopyFile(t *testing.T) {
	t.Run("copies content and modification time", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "src.unitypackage")
		dst := filepath.Join(dir, "dst.unitypackage")
		writeFile(t, src, "payload")
		mtime := time.Date(2020, 5, 1, 12, 0, 0, 0, time.UTC)
		if err := os.Chtimes(src, mtime, mtime); err != nil {
			t.Fatalf("Chtimes() error = %v", err)
		}

		m := NewOSFilesystemManager(nil)
		if err := m.CopyFile(src, dst, false); err != nil {
			t.Fatalf("CopyFile() error = %v", err)
		}

		data, err := os.ReadFile(dst)
		if err != nil {
			t.Fatalf("reading copy: %v", err)
		}
		if string(data) != "payload" {
			t.Errorf("content = %q, want %q", data, "payload")
		}
		info, err := os.Stat(dst)
		if err != nil {
			t.Fatalf("stat copy: %v", err)
		}
		if !info.ModTime().Equal(mtime) {
			t.Errorf("ModTime = %v, want %v", info.ModTime(), mtime)
		}
	})

	t.Run("refuses to overwrite without permission", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "src")
		dst := filepath.Join(dir, "dst")
		writeFile(t, src, "new")
		writeFile(t, dst, "old")

		m := NewOSFilesystemManager(nil)
		err := m.CopyFile(src, dst, false)
		if !errors.Is(err, organizer.ErrDestinationExists) {
			t.Fatalf("CopyFile() error = %v, want ErrDestinationExists", err)
		}
		data, _ := os.ReadFile(dst)
		if string(data) != "old" {
			t.Errorf("destination was modified: %q", data)
		}
	})

	t.Run("overwrites when allowed", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "src")
		dst := filepath.Join(dir, "dst")
		writeFile(t, src, "new")
		writeFile(t, dst, "old")

		m := NewOSFilesystemManager(nil)
		if err := m.CopyFile(src, dst, true); err != nil {
			t.Fatalf("CopyFile() error = %v", err)
		}
		data, _ := os.ReadFile(dst)
		if string(data) != "new" {
			t.Errorf("content = %q, want %q", data, "new")
		}
	})
}

func TestOSFilesystemManager_Exists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	writeFile(t, file, "x")
	m := NewOSFilesystemManager(nil)

	if !m.DirExists(dir) || m.DirExists(file) {
		t.Error("DirExists() misreports directory vs file")
	}
	if !m.FileExists(file) || m.FileExists(dir) {
		t.Error("FileExists() misreports file vs directory")
	}
	if m.FileExists(filepath.Join(dir, "missing")) {
		t.Error("FileExists() = true for missing file")
	}
}
