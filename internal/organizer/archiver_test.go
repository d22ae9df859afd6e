package organizer_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"asset-organizer/internal/organizer"
	"asset-organizer/internal/testutil"
)

const backupDir = "/backup"

type archiverFixture struct {
	fsmgr     *testutil.MockFilesystemManager
	prefs     *organizer.MemoryPreferences
	paths     *organizer.Paths
	confirmer *testutil.StubConfirmer
	progress  *testutil.RecordingProgress
	logger    *testutil.RecordingLogger
	archiver  *organizer.Archiver
}

func newArchiverFixture(t *testing.T) *archiverFixture {
	t.Helper()
	f := &archiverFixture{
		fsmgr:     testutil.NewMockFilesystemManager(),
		prefs:     organizer.NewMemoryPreferences(),
		confirmer: testutil.NewStubConfirmer(true),
		progress:  &testutil.RecordingProgress{},
		logger:    testutil.NewRecordingLogger(),
	}
	f.fsmgr.AddDirectory(backupDir)
	if err := f.prefs.SetString(organizer.BackupDirectoryKey, backupDir); err != nil {
		t.Fatalf("SetString() error = %v", err)
	}
	f.paths = organizer.NewPaths(appData, f.prefs)
	f.archiver = organizer.NewArchiver(f.fsmgr, f.paths, f.confirmer, f.progress, f.logger)
	return f
}

// addSource places a record's file in the mock filesystem.
func (f *archiverFixture) addSource(rec *organizer.PackageRecord) *organizer.PackageRecord {
	f.fsmgr.AddFile(rec.FullFilePath, []byte(rec.Title))
	return rec
}

func emptyArchive() *organizer.PackageLibrary {
	return organizer.LibraryFromRecords(organizer.LocationArchive, nil)
}

func TestArchiver_ArchivePackages(t *testing.T) {
	t.Run("fresh archive copies with version tag", func(t *testing.T) {
		f := newArchiverFixture(t)
		rec := f.addSource(fooRecord())

		report, err := f.archiver.ArchivePackages([]*organizer.PackageRecord{rec}, emptyArchive(), organizer.LocationAssetStore5x, true)
		if err != nil {
			t.Fatalf("ArchivePackages() error = %v", err)
		}

		entry := report.Entries[0]
		if entry.State != organizer.MatchNone {
			t.Errorf("State = %v, want None", entry.State)
		}
		if entry.Decision != organizer.DecisionCopied {
			t.Errorf("Decision = %v, want COPIED", entry.Decision)
		}
		want := filepath.Join(backupDir, "Asset Store-5.x", "Acme", "Tools", "[1.0]Foo.unitypackage")
		if entry.Destination != want {
			t.Errorf("Destination = %q, want %q", entry.Destination, want)
		}
		if len(f.fsmgr.Copies) != 1 {
			t.Fatalf("copies = %d, want 1", len(f.fsmgr.Copies))
		}
		if !f.fsmgr.FileExists(want) {
			t.Error("archived file does not exist")
		}
		if !rec.IsArchived {
			t.Error("IsArchived = false after copy")
		}
	})

	t.Run("exact match is skipped", func(t *testing.T) {
		f := newArchiverFixture(t)
		rec := f.addSource(fooRecord())
		archived := fooRecord()
		archived.FullFilePath = filepath.Join(backupDir, "Asset Store-5.x", "Acme", "Tools", "[1.0]Foo.unitypackage")
		archive := organizer.LibraryFromRecords(organizer.LocationArchive, []*organizer.PackageRecord{archived})

		report, err := f.archiver.ArchivePackages([]*organizer.PackageRecord{rec}, archive, organizer.LocationAssetStore5x, true)
		if err != nil {
			t.Fatalf("ArchivePackages() error = %v", err)
		}
		if got := report.Entries[0].Decision; got != organizer.DecisionExists {
			t.Errorf("Decision = %v, want EXISTS", got)
		}
		if report.Entries[0].State != organizer.MatchExact {
			t.Errorf("State = %v, want Exact", report.Entries[0].State)
		}
		if len(f.fsmgr.Copies) != 0 {
			t.Errorf("copies = %d, want 0", len(f.fsmgr.Copies))
		}
	})

	t.Run("partial match adds version id tag", func(t *testing.T) {
		f := newArchiverFixture(t)
		rec := f.addSource(fooRecord())
		archive := organizer.LibraryFromRecords(organizer.LocationArchive, []*organizer.PackageRecord{
			testutil.NewRecord(100, "Foo", "1.0", 9, "2018.3", filepath.Join(backupDir, "Asset Store-5.x", "Acme", "Tools", "[1.0]Foo.unitypackage")),
		})

		report, err := f.archiver.ArchivePackages([]*organizer.PackageRecord{rec}, archive, organizer.LocationAssetStore5x, true)
		if err != nil {
			t.Fatalf("ArchivePackages() error = %v", err)
		}
		entry := report.Entries[0]
		if entry.State != organizer.MatchPartial {
			t.Errorf("State = %v, want Partial", entry.State)
		}
		if got := filepath.Base(entry.Destination); got != "[1.0][5]Foo.unitypackage" {
			t.Errorf("filename = %q, want [1.0][5]Foo.unitypackage", got)
		}
		if entry.Decision != organizer.DecisionCopied {
			t.Errorf("Decision = %v, want COPIED", entry.Decision)
		}
	})

	t.Run("built-in packages are ignored", func(t *testing.T) {
		f := newArchiverFixture(t)
		builtin := f.addSource(testutil.NewRecord(organizer.BuiltinID, "BuiltinStandardAsset.Characters", "4.3.4", -1, "4.3.4",
			filepath.Join(storeModern(), "Characters.unitypackage")))

		report, err := f.archiver.ArchivePackages([]*organizer.PackageRecord{builtin}, emptyArchive(), organizer.LocationAssetStore5x, true)
		if err != nil {
			t.Fatalf("ArchivePackages() error = %v", err)
		}
		if got := report.Entries[0].Decision; got != organizer.DecisionIgnored {
			t.Errorf("Decision = %v, want IGNORED", got)
		}
		if f.fsmgr.Mutations != 0 {
			t.Errorf("file operations = %d, want 0", f.fsmgr.Mutations)
		}
		if f.logger.Count("INFO", "IGNORED") != 1 {
			t.Errorf("expected IGNORED log, got %v", f.logger.Entries())
		}
	})

	t.Run("dry run never touches the filesystem", func(t *testing.T) {
		f := newArchiverFixture(t)
		fresh := f.addSource(fooRecord())
		partial := f.addSource(testutil.NewRecord(200, "Bar", "2.0", 7, "2019.4", filepath.Join(storeModern(), "Acme", "Bar.unitypackage")))
		archive := organizer.LibraryFromRecords(organizer.LocationArchive, []*organizer.PackageRecord{
			testutil.NewRecord(200, "Bar", "2.0", 3, "2018.1", "/backup/Bar.unitypackage"),
		})
		before := f.fsmgr.Files()

		report, err := f.archiver.ArchivePackages([]*organizer.PackageRecord{fresh, partial}, archive, organizer.LocationAssetStore5x, false)
		if err != nil {
			t.Fatalf("ArchivePackages() error = %v", err)
		}
		if f.fsmgr.Mutations != 0 {
			t.Errorf("file operations = %d, want 0", f.fsmgr.Mutations)
		}
		if got := f.fsmgr.Files(); strings.Join(got, "|") != strings.Join(before, "|") {
			t.Errorf("files changed during dry run: %v", got)
		}
		if report.Count(organizer.DecisionSimulated) != 2 {
			t.Errorf("simulated = %d, want 2", report.Count(organizer.DecisionSimulated))
		}
		if !report.DryRun {
			t.Error("DryRun = false, want true")
		}
		if !fresh.IsArchived || !partial.IsArchived {
			t.Error("dry run should update IsArchived bookkeeping")
		}
	})

	t.Run("copy failure is isolated to one record", func(t *testing.T) {
		f := newArchiverFixture(t)
		bad := f.addSource(testutil.NewRecord(1, "Bad", "1", 1, "2019.4", filepath.Join(storeModern(), "Bad.unitypackage")))
		good := f.addSource(fooRecord())
		f.fsmgr.FailCopy[bad.FullFilePath] = errors.New("disk full")

		report, err := f.archiver.ArchivePackages([]*organizer.PackageRecord{bad, good}, emptyArchive(), organizer.LocationAssetStore5x, true)
		if err != nil {
			t.Fatalf("ArchivePackages() error = %v", err)
		}
		if report.Entries[0].Decision != organizer.DecisionFailed {
			t.Errorf("first Decision = %v, want FAILED", report.Entries[0].Decision)
		}
		if !errors.Is(report.Entries[0].Err, organizer.ErrCopyFailure) {
			t.Errorf("first Err = %v, want ErrCopyFailure", report.Entries[0].Err)
		}
		if report.Entries[1].Decision != organizer.DecisionCopied {
			t.Errorf("second Decision = %v, want COPIED", report.Entries[1].Decision)
		}
		if bad.IsArchived {
			t.Error("failed record marked archived")
		}
		if len(f.progress.Labels) != 2 || f.progress.DoneCalls != 1 {
			t.Errorf("progress = %v (done %d), want 2 steps and 1 done", f.progress.Labels, f.progress.DoneCalls)
		}
	})

	t.Run("missing source file fails that record", func(t *testing.T) {
		f := newArchiverFixture(t)
		rec := fooRecord()

		report, err := f.archiver.ArchivePackages([]*organizer.PackageRecord{rec}, emptyArchive(), organizer.LocationAssetStore5x, true)
		if err != nil {
			t.Fatalf("ArchivePackages() error = %v", err)
		}
		if report.Entries[0].Decision != organizer.DecisionFailed {
			t.Errorf("Decision = %v, want FAILED", report.Entries[0].Decision)
		}
		if f.fsmgr.Mutations != 0 {
			t.Errorf("file operations = %d, want 0", f.fsmgr.Mutations)
		}
	})

	t.Run("existing destination is skipped", func(t *testing.T) {
		f := newArchiverFixture(t)
		rec := f.addSource(fooRecord())
		f.fsmgr.AddFile(filepath.Join(backupDir, "Asset Store-5.x", "Acme", "Tools", "[1.0]Foo.unitypackage"), []byte("other"))

		report, err := f.archiver.ArchivePackages([]*organizer.PackageRecord{rec}, emptyArchive(), organizer.LocationAssetStore5x, true)
		if err != nil {
			t.Fatalf("ArchivePackages() error = %v", err)
		}
		if report.Entries[0].Decision != organizer.DecisionSkipped {
			t.Errorf("Decision = %v, want SKIPPED", report.Entries[0].Decision)
		}
		if len(f.fsmgr.Copies) != 0 {
			t.Errorf("copies = %d, want 0", len(f.fsmgr.Copies))
		}
	})

	t.Run("custom source keeps its relative layout", func(t *testing.T) {
		f := newArchiverFixture(t)
		if err := f.paths.SetDirectory(organizer.LocationCustom, "/custom"); err != nil {
			t.Fatalf("SetDirectory() error = %v", err)
		}
		rec := f.addSource(testutil.NewRecord(100, "Foo", "1.0", 5, "2019.4", "/custom/Tools/Foo.unitypackage"))

		report, err := f.archiver.ArchivePackages([]*organizer.PackageRecord{rec}, emptyArchive(), organizer.LocationCustom, true)
		if err != nil {
			t.Fatalf("ArchivePackages() error = %v", err)
		}
		want := filepath.Join(backupDir, "Tools", "[1.0]Foo.unitypackage")
		if report.Entries[0].Destination != want {
			t.Errorf("Destination = %q, want %q", report.Entries[0].Destination, want)
		}
	})
}

func TestArchiver_ArchivePackages_Preconditions(t *testing.T) {
	t.Run("archive source is rejected", func(t *testing.T) {
		f := newArchiverFixture(t)
		_, err := f.archiver.ArchivePackages([]*organizer.PackageRecord{fooRecord()}, emptyArchive(), organizer.LocationArchive, true)
		if !errors.Is(err, organizer.ErrInvalidOperation) {
			t.Errorf("error = %v, want ErrInvalidOperation", err)
		}
		if f.logger.Count("WARN", "cannot archive the archive to itself") != 1 {
			t.Errorf("expected warning, got %v", f.logger.Entries())
		}
	})

	t.Run("missing archive directory", func(t *testing.T) {
		f := newArchiverFixture(t)
		if err := f.prefs.SetString(organizer.BackupDirectoryKey, "/nowhere"); err != nil {
			t.Fatalf("SetString() error = %v", err)
		}
		_, err := f.archiver.ArchivePackages([]*organizer.PackageRecord{fooRecord()}, emptyArchive(), organizer.LocationAssetStore5x, true)
		if !errors.Is(err, organizer.ErrDirectoryNotFound) {
			t.Errorf("error = %v, want ErrDirectoryNotFound", err)
		}
	})

	t.Run("unset archive directory", func(t *testing.T) {
		f := newArchiverFixture(t)
		if err := f.prefs.SetString(organizer.BackupDirectoryKey, ""); err != nil {
			t.Fatalf("SetString() error = %v", err)
		}
		_, err := f.archiver.ArchivePackages(nil, emptyArchive(), organizer.LocationAssetStore5x, true)
		if !errors.Is(err, organizer.ErrDirectoryNotFound) {
			t.Errorf("error = %v, want ErrDirectoryNotFound", err)
		}
	})

	t.Run("source equal to archive", func(t *testing.T) {
		f := newArchiverFixture(t)
		if err := f.paths.SetDirectory(organizer.LocationCustom, backupDir); err != nil {
			t.Fatalf("SetDirectory() error = %v", err)
		}
		_, err := f.archiver.ArchivePackages([]*organizer.PackageRecord{fooRecord()}, emptyArchive(), organizer.LocationCustom, true)
		if !errors.Is(err, organizer.ErrInvalidOperation) {
			t.Errorf("error = %v, want ErrInvalidOperation", err)
		}
		if f.fsmgr.Mutations != 0 {
			t.Errorf("file operations = %d, want 0", f.fsmgr.Mutations)
		}
	})

	storeCases := []struct {
		name   string
		backup func(p *organizer.Paths) string
	}{
		{"store directory used as archive", func(p *organizer.Paths) string { return p.StoreModern() }},
		{"archive nested inside store directory", func(p *organizer.Paths) string { return filepath.Join(p.StoreModern(), "Backups") }},
	}
	for _, tc := range storeCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newArchiverFixture(t)
			dir := tc.backup(f.paths)
			f.fsmgr.AddDirectory(dir)
			if err := f.prefs.SetString(organizer.BackupDirectoryKey, dir); err != nil {
				t.Fatalf("SetString() error = %v", err)
			}
			rec := f.addSource(testutil.NewRecord(100, "Foo", "1.0", 5, "2019.4",
				filepath.Join(f.paths.StoreModern(), "Pub", "Cat", "Foo.unitypackage")))

			report, err := f.archiver.ArchivePackages([]*organizer.PackageRecord{rec}, emptyArchive(), organizer.LocationAssetStore5x, true)
			if !errors.Is(err, organizer.ErrInvalidOperation) {
				t.Errorf("error = %v, want ErrInvalidOperation", err)
			}
			if report != nil {
				t.Errorf("report = %+v, want nil", report)
			}
			if f.fsmgr.Mutations != 0 {
				t.Errorf("file operations = %d, want 0", f.fsmgr.Mutations)
			}
		})
	}
}

func TestArchiveFilename(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		state organizer.MatchState
		want  string
	}{
		{"none adds version", "Foo.unitypackage", organizer.MatchNone, "[1.0]Foo.unitypackage"},
		{"partial adds version and id", "Foo.unitypackage", organizer.MatchPartial, "[1.0][5]Foo.unitypackage"},
		{"none strips existing version tag", "[1.0]Foo.unitypackage", organizer.MatchNone, "[1.0]Foo.unitypackage"},
		{"none keeps version id tag", "[1.0][5]Foo.unitypackage", organizer.MatchNone, "[1.0][5]Foo.unitypackage"},
		{"partial strips both tags", "[1.0][5]Foo.unitypackage", organizer.MatchPartial, "[1.0][5]Foo.unitypackage"},
		{"partial strips tags anywhere", "Foo[5] [1.0].unitypackage", organizer.MatchPartial, "[1.0][5]Foo .unitypackage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := organizer.ArchiveFilename(tt.base, "1.0", 5, tt.state)
			if got != tt.want {
				t.Errorf("ArchiveFilename(%q) = %q, want %q", tt.base, got, tt.want)
			}
		})
	}
}

func TestArchiveFilename_Idempotent(t *testing.T) {
	for _, state := range []organizer.MatchState{organizer.MatchNone, organizer.MatchPartial} {
		once := organizer.ArchiveFilename("Foo.unitypackage", "1.0", 5, state)
		twice := organizer.ArchiveFilename(once, "1.0", 5, state)
		if once != twice {
			t.Errorf("%v: second pass = %q, want %q", state, twice, once)
		}
		if strings.Count(twice, "[1.0]") != 1 {
			t.Errorf("%v: doubled version tag in %q", state, twice)
		}
	}
}

func TestArchiver_RestorePackage(t *testing.T) {
	archived := func() *organizer.PackageRecord {
		return testutil.NewRecord(100, "Foo", "1.0", 5, "2019.4",
			filepath.Join(backupDir, "Asset Store-5.x", "Acme", "Tools", "[1.0][5]Foo.unitypackage"))
	}
	restoredPath := filepath.Join(storeModern(), "Acme", "Tools", "Foo.unitypackage")

	t.Run("restores to store root with tags stripped", func(t *testing.T) {
		f := newArchiverFixture(t)
		rec := f.addSource(archived())

		ok, err := f.archiver.RestorePackage(rec, organizer.LocationArchive, true)
		if err != nil {
			t.Fatalf("RestorePackage() error = %v", err)
		}
		if !ok {
			t.Fatal("RestorePackage() = false, want true")
		}
		if !f.fsmgr.FileExists(restoredPath) {
			t.Errorf("expected restored file at %s, have %v", restoredPath, f.fsmgr.Files())
		}
		if len(f.confirmer.Prompts) != 1 || !strings.HasPrefix(f.confirmer.Prompts[0].Message, "Are you sure you want to restore the package\nFoo") {
			t.Errorf("prompts = %+v", f.confirmer.Prompts)
		}
		if f.confirmer.Prompts[0].Title != organizer.RestoreDialogTitle {
			t.Errorf("prompt title = %q", f.confirmer.Prompts[0].Title)
		}
	})

	t.Run("existing destination asks to overwrite", func(t *testing.T) {
		f := newArchiverFixture(t)
		rec := f.addSource(archived())
		f.fsmgr.AddFile(restoredPath, []byte("original"))

		ok, err := f.archiver.RestorePackage(rec, organizer.LocationArchive, true)
		if err != nil {
			t.Fatalf("RestorePackage() error = %v", err)
		}
		if !ok {
			t.Fatal("RestorePackage() = false, want true")
		}
		if !strings.Contains(f.confirmer.Prompts[0].Message, "Already exists in the AssetStore Directory.") {
			t.Errorf("prompt = %q, want overwrite question", f.confirmer.Prompts[0].Message)
		}
		content, _ := f.fsmgr.Content(restoredPath)
		if string(content) != "Foo" {
			t.Errorf("content = %q, want overwritten content", content)
		}
	})

	t.Run("declined confirmation does nothing", func(t *testing.T) {
		f := newArchiverFixture(t)
		f.confirmer.Answer = false
		rec := f.addSource(archived())

		ok, err := f.archiver.RestorePackage(rec, organizer.LocationArchive, true)
		if err != nil {
			t.Fatalf("RestorePackage() error = %v", err)
		}
		if ok {
			t.Error("RestorePackage() = true, want false")
		}
		if f.fsmgr.Mutations != 0 {
			t.Errorf("file operations = %d, want 0", f.fsmgr.Mutations)
		}
	})

	t.Run("dry run asks but does not copy", func(t *testing.T) {
		f := newArchiverFixture(t)
		rec := f.addSource(archived())

		ok, err := f.archiver.RestorePackage(rec, organizer.LocationArchive, false)
		if err != nil {
			t.Fatalf("RestorePackage() error = %v", err)
		}
		if ok {
			t.Error("RestorePackage() = true, want false")
		}
		if f.fsmgr.Mutations != 0 {
			t.Errorf("file operations = %d, want 0", f.fsmgr.Mutations)
		}
	})

	t.Run("only custom or archive sources", func(t *testing.T) {
		for _, loc := range []organizer.Location{organizer.LocationNative, organizer.LocationAssetStore, organizer.LocationAssetStore5x} {
			f := newArchiverFixture(t)
			ok, err := f.archiver.RestorePackage(fooRecord(), loc, true)
			if ok || !errors.Is(err, organizer.ErrInvalidOperation) {
				t.Errorf("RestorePackage(%v) = %v, %v; want false, ErrInvalidOperation", loc, ok, err)
			}
			if len(f.confirmer.Prompts) != 0 {
				t.Errorf("RestorePackage(%v) prompted the user", loc)
			}
		}
	})
}
