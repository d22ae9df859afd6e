package organizer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Decision is the outcome recorded for one record in an archive batch.
type Decision string

const (
	DecisionIgnored   Decision = "IGNORED"
	DecisionExists    Decision = "EXISTS"
	DecisionCopied    Decision = "COPIED"
	DecisionSimulated Decision = "SIMULATED"
	DecisionSkipped   Decision = "SKIPPED"
	DecisionFailed    Decision = "FAILED"

	// Restore outcomes.
	DecisionRestored Decision = "RESTORED"
	DecisionDeclined Decision = "DECLINED"
)

// Restore dialog text.
const (
	RestoreDialogTitle   = "Restore Package To Asset Store"
	restoreOverwriteText = "%s\nAlready exists in the AssetStore Directory.\nDo you want to overwrite the original file with\n%s"
	restoreConfirmText   = "Are you sure you want to restore the package\n%s\n(%s)\nto\n%s"
)

// ArchiveEntry records what happened to one record of a batch.
type ArchiveEntry struct {
	Index       int
	Record      *PackageRecord
	State       MatchState
	Decision    Decision
	Destination string
	Err         error
}

// ArchiveReport summarizes an archive batch.
type ArchiveReport struct {
	Source  Location
	DryRun  bool
	Entries []ArchiveEntry
}

// Count returns how many entries ended in d.
func (r *ArchiveReport) Count(d Decision) int {
	n := 0
	for _, e := range r.Entries {
		if e.Decision == d {
			n++
		}
	}
	return n
}

// Archiver copies packages between a source location and the archive.
type Archiver struct {
	fsmgr     FilesystemManager
	paths     *Paths
	confirmer Confirmer
	progress  Progress
	logger    Logger
}

// NewArchiver creates an Archiver. A nil progress or logger is replaced by
// a no-op implementation.
func NewArchiver(fsmgr FilesystemManager, paths *Paths, confirmer Confirmer, progress Progress, logger Logger) *Archiver {
	if progress == nil {
		progress = NopProgress{}
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Archiver{fsmgr: fsmgr, paths: paths, confirmer: confirmer, progress: progress, logger: logger}
}

// ArchivePackages copies every record not already in archive into the
// archive directory. When perform is false the copies are only logged,
// though IsArchived is still updated.
//
// Precondition failures return an error before any I/O. Per-record
// failures are logged, recorded in the report and do not stop the batch.
func (a *Archiver) ArchivePackages(records []*PackageRecord, archive *PackageLibrary, source Location, perform bool) (*ArchiveReport, error) {
	if source == LocationArchive {
		a.logger.Warn("cannot archive the archive to itself")
		return nil, fmt.Errorf("archiving from %v: %w", source, ErrInvalidOperation)
	}

	backupDir := a.paths.Backup()
	if backupDir == "" || !a.fsmgr.DirExists(backupDir) {
		a.logger.Warn("archive directory not found", "dir", backupDir)
		return nil, fmt.Errorf("archive directory %q: %w", backupDir, ErrDirectoryNotFound)
	}

	srcDir, err := a.paths.Directory(source)
	if err != nil {
		return nil, err
	}
	if srcDir == "" {
		a.logger.Warn("source directory not set", "location", source.String())
		return nil, fmt.Errorf("source directory for %v: %w", source, ErrDirectoryNotFound)
	}
	srcRoot := sourceRoot(source, srcDir)
	if srcDir == backupDir || srcRoot == backupDir {
		a.logger.Warn("source and archive directories are the same", "dir", backupDir)
		return nil, fmt.Errorf("source and archive are both %q: %w", backupDir, ErrInvalidOperation)
	}
	if isWithin(srcDir, backupDir) {
		a.logger.Warn("archive directory is inside the source directory", "source", srcDir, "archive", backupDir)
		return nil, fmt.Errorf("archive %q is inside source %q: %w", backupDir, srcDir, ErrInvalidOperation)
	}

	report := &ArchiveReport{Source: source, DryRun: !perform}
	defer a.progress.Done()

	for i, rec := range records {
		a.progress.Step(rec.Title, i, len(records))
		entry := a.archiveOne(rec, archive, srcRoot, backupDir, perform)
		entry.Index = i
		report.Entries = append(report.Entries, entry)
	}

	a.logger.Info("archive finished",
		"source", source.String(),
		"dry_run", !perform,
		"copied", report.Count(DecisionCopied),
		"simulated", report.Count(DecisionSimulated),
		"exists", report.Count(DecisionExists),
		"failed", report.Count(DecisionFailed))
	return report, nil
}

func (a *Archiver) archiveOne(rec *PackageRecord, archive *PackageLibrary, srcRoot, backupDir string, perform bool) ArchiveEntry {
	entry := ArchiveEntry{Record: rec}

	if rec.IsBuiltin() {
		entry.Decision = DecisionIgnored
		a.logger.Info("IGNORED", "title", rec.Title, "id", rec.ID, "path", rec.FullFilePath)
		return entry
	}

	state, matched := archive.TryGetMatched(rec)
	entry.State = state
	if state == MatchExact {
		entry.Decision = DecisionExists
		rec.IsArchived = true
		a.logger.Info("EXISTS", "title", rec.Title, "id", rec.ID, "archived", matched.FullFilePath)
		return entry
	}

	dst, err := ArchiveDestination(rec, srcRoot, backupDir, state)
	if err != nil {
		entry.Decision = DecisionFailed
		entry.Err = err
		a.logger.Error("computing archive destination", "title", rec.Title, "id", rec.ID, "error", err)
		return entry
	}
	entry.Destination = dst

	if !perform {
		entry.Decision = DecisionSimulated
		rec.IsArchived = true
		a.logger.Info("SIMULATED", "title", rec.Title, "id", rec.ID, "state", state.String(), "src", rec.FullFilePath, "dst", dst)
		return entry
	}

	err = a.copyFile(rec.FullFilePath, dst, false)
	switch {
	case err == nil:
		entry.Decision = DecisionCopied
		rec.IsArchived = true
		a.logger.Info("COPIED", "title", rec.Title, "id", rec.ID, "state", state.String(), "src", rec.FullFilePath, "dst", dst)
	case errors.Is(err, ErrDestinationExists):
		entry.Decision = DecisionSkipped
		entry.Err = err
		a.logger.Warn("SKIPPED", "title", rec.Title, "id", rec.ID, "dst", dst, "error", err)
	default:
		entry.Decision = DecisionFailed
		entry.Err = err
		a.logger.Error("FAILED", "title", rec.Title, "id", rec.ID, "src", rec.FullFilePath, "error", err)
	}
	return entry
}

// sourceRoot returns the directory record paths are made relative to.
// For the canonical store directories this is the parent, so the store
// directory name survives into the archive layout.
func sourceRoot(source Location, dir string) string {
	if source.IsCanonicalStore() {
		return filepath.Dir(dir)
	}
	return dir
}

// isWithin reports whether path lies strictly below dir.
func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// copyFile copies src to dst, creating the destination directory.
func (a *Archiver) copyFile(src, dst string, overwrite bool) error {
	if !a.fsmgr.FileExists(src) {
		return fmt.Errorf("%w: source %q does not exist", ErrCopyFailure, src)
	}
	if !overwrite && a.fsmgr.FileExists(dst) {
		return fmt.Errorf("copying to %q: %w", dst, ErrDestinationExists)
	}
	if err := a.fsmgr.MkdirAll(filepath.Dir(dst)); err != nil {
		return fmt.Errorf("%w: %w", ErrCopyFailure, err)
	}
	if err := a.fsmgr.CopyFile(src, dst, overwrite); err != nil {
		if errors.Is(err, ErrDestinationExists) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrCopyFailure, err)
	}
	return nil
}

// ArchiveDestination returns the archive path for rec: the archive root,
// the record's directory relative to srcRoot and the tagged filename.
func ArchiveDestination(rec *PackageRecord, srcRoot, archiveRoot string, state MatchState) (string, error) {
	rel, err := filepath.Rel(srcRoot, filepath.Dir(rec.FullFilePath))
	if err != nil {
		return "", fmt.Errorf("relative path of %q: %w", rec.FullFilePath, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q is outside %q: %w", rec.FullFilePath, srcRoot, ErrInvalidOperation)
	}
	name := ArchiveFilename(rec.FileName(), rec.Version, rec.VersionID, state)
	return filepath.Join(archiveRoot, rel, name), nil
}

// ArchiveFilename applies the version tags to base. A partial match gets
// both "[version]" and "[version_id]"; anything else gets "[version]".
// Existing tags are stripped first so repeated passes do not stack them.
func ArchiveFilename(base, version string, versionID int, state MatchState) string {
	tagVersion := "[" + version + "]"
	if state == MatchPartial {
		tagVersionID := "[" + strconv.Itoa(versionID) + "]"
		stripped := strings.ReplaceAll(base, tagVersion, "")
		stripped = strings.ReplaceAll(stripped, tagVersionID, "")
		return tagVersion + tagVersionID + stripped
	}
	return tagVersion + strings.ReplaceAll(base, tagVersion, "")
}

// StripTags removes the version and version id tags from path.
func StripTags(path, version string, versionID int) string {
	path = strings.ReplaceAll(path, "["+version+"]", "")
	return strings.ReplaceAll(path, "["+strconv.Itoa(versionID)+"]", "")
}

// RestoreDestination returns where rec would be restored under the store
// root when read from source.
func (a *Archiver) RestoreDestination(rec *PackageRecord, source Location) (string, error) {
	if source != LocationCustom && source != LocationArchive {
		return "", fmt.Errorf("restoring from %v: %w", source, ErrInvalidOperation)
	}
	dir, err := a.paths.Directory(source)
	if err != nil {
		return "", err
	}
	if dir == "" {
		return "", fmt.Errorf("%v directory: %w", source, ErrDirectoryNotFound)
	}
	rel, err := filepath.Rel(dir, rec.FullFilePath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q is outside %q: %w", rec.FullFilePath, dir, ErrInvalidOperation)
	}
	rel = StripTags(rel, rec.Version, rec.VersionID)
	return filepath.Join(a.paths.StoreRoot(), rel), nil
}

// RestorePackage copies rec back into the Asset Store directory after
// asking for confirmation. It reports whether the copy happened.
func (a *Archiver) RestorePackage(rec *PackageRecord, source Location, perform bool) (bool, error) {
	dst, err := a.RestoreDestination(rec, source)
	if err != nil {
		a.logger.Warn("restore not permitted", "title", rec.Title, "location", source.String(), "error", err)
		return false, err
	}

	exists := a.fsmgr.FileExists(dst)
	var confirmed bool
	if exists {
		confirmed = a.confirmer.Confirm(RestoreDialogTitle, fmt.Sprintf(restoreOverwriteText, dst, rec.FullFilePath))
	} else {
		confirmed = a.confirmer.Confirm(RestoreDialogTitle, fmt.Sprintf(restoreConfirmText, rec.Title, rec.FullFilePath, dst))
	}

	if !perform || !confirmed {
		a.logger.Info("restore not performed", "title", rec.Title, "dst", dst, "confirmed", confirmed, "dry_run", !perform)
		return false, nil
	}

	if err := a.copyFile(rec.FullFilePath, dst, exists); err != nil {
		a.logger.Error("restore failed", "title", rec.Title, "src", rec.FullFilePath, "dst", dst, "error", err)
		return false, err
	}
	a.logger.Info(string(DecisionRestored), "title", rec.Title, "src", rec.FullFilePath, "dst", dst)
	return true, nil
}
