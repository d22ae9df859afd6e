package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"asset-organizer/internal/config"
	"asset-organizer/internal/database"
	"asset-organizer/internal/fs"
	"asset-organizer/internal/model"
	"asset-organizer/internal/organizer"
	"asset-organizer/internal/prompt"
	"asset-organizer/internal/unitypackage"
)

// ErrPackageNotFound is returned when a command names a package that the
// scanned location does not hold.
var ErrPackageNotFound = errors.New("package not found")

// Options controls how NewOrganizerApp wires its collaborators.
type Options struct {
	// Operation names the CLI command being run (e.g. "scan", "archive").
	Operation string
	Verbose   bool
	AssumeYes bool
	// Stderr receives log output and the progress bar; nil means os.Stderr.
	Stderr io.Writer
}

// OrganizerApp is the application layer between the CLI and the organizer.
// It constructs all dependencies from config, exposes high-level operations
// that accept location names and raw paths, and records archive and
// restore runs in the history database.
type OrganizerApp struct {
	cfg       *config.Config
	history   organizer.HistoryStore
	fsmgr     organizer.FilesystemManager
	extractor organizer.MetadataExtractor
	native    organizer.NativePackageSource
	paths     *organizer.Paths
	archiver  *organizer.Archiver
	logger    organizer.Logger
	clock     organizer.Clock
	ids       organizer.IDGenerator
	op        *Operation
	logFile   *os.File
}

// components are the collaborators an OrganizerApp runs on.
type components struct {
	history   organizer.HistoryStore // may be nil
	fsmgr     organizer.FilesystemManager
	extractor organizer.MetadataExtractor
	native    organizer.NativePackageSource
	paths     *organizer.Paths
	confirmer organizer.Confirmer
	progress  organizer.Progress
	logger    organizer.Logger
	clock     organizer.Clock
	ids       organizer.IDGenerator
}

// NewOrganizerApp creates a fully wired OrganizerApp from the given config.
// configPath is where preference changes are saved. The caller must call
// Close when done.
func NewOrganizerApp(cfg *config.Config, configPath string, opts Options) (*OrganizerApp, error) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	now := time.Now()
	slogger, logFile, err := newLogger(cfg.LogDir, OpIDFor(now), opts.Verbose, stderr)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		logFile.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	if err := db.CheckMigrations(); err != nil {
		db.Close()
		logFile.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	fsmgr := fs.NewOSFilesystemManager(cfg.Scan.Ignore)
	prefs := config.NewPreferenceStore(configPath, cfg)
	paths := organizer.NewPaths(cfg.Unity.AppDataDir, prefs)
	roots := append([]string{paths.StoreRoot()}, cfg.Unity.StandardAssetsDirs...)

	a := newOrganizerApp(cfg, opts.Operation, components{
		history:   db,
		fsmgr:     fsmgr,
		extractor: unitypackage.NewExtractor(fsmgr, cfg.Unity.HostUnityVersion),
		native:    unitypackage.NewDirectorySource(fsmgr, logger, roots...),
		paths:     paths,
		confirmer: prompt.NewTerminalConfirmer(opts.AssumeYes || cfg.Archive.AssumeYes),
		progress:  prompt.NewBarProgress(),
		logger:    logger,
		clock:     organizer.RealClock{},
		ids:       organizer.UUIDGenerator{},
	})
	a.logFile = logFile
	return a, nil
}

func newOrganizerApp(cfg *config.Config, operation string, c components) *OrganizerApp {
	if c.logger == nil {
		c.logger = organizer.NewNopLogger()
	}
	return &OrganizerApp{
		cfg:       cfg,
		history:   c.history,
		fsmgr:     c.fsmgr,
		extractor: c.extractor,
		native:    c.native,
		paths:     c.paths,
		archiver:  organizer.NewArchiver(c.fsmgr, c.paths, c.confirmer, c.progress, c.logger),
		logger:    c.logger,
		clock:     c.clock,
		ids:       c.ids,
		op:        NewOperation(operation, c.clock.Now()),
	}
}

// Config returns the configuration the app was built from.
func (a *OrganizerApp) Config() *config.Config {
	return a.cfg
}

// Operation returns the operation this app instance is running.
func (a *OrganizerApp) Operation() *Operation {
	return a.op
}

// Paths lists every location with its resolved directory.
func (a *OrganizerApp) Paths() []organizer.LocationPath {
	return a.paths.Describe()
}

// SetDirectory points a user-configurable location at rawPath, which must
// be an existing directory. It returns the normalized path stored.
func (a *OrganizerApp) SetDirectory(loc organizer.Location, rawPath string) (string, error) {
	path := organizer.NormalizePath(rawPath)
	if path == "" || !a.fsmgr.DirExists(path) {
		return "", fmt.Errorf("setting %v directory to %q: %w", loc, rawPath, organizer.ErrDirectoryNotFound)
	}
	if err := a.paths.SetDirectory(loc, path); err != nil {
		return "", err
	}
	a.logger.Info("directory set", "location", loc.String(), "dir", path)
	return path, nil
}

func (a *OrganizerApp) populate(loc organizer.Location) (*organizer.PackageLibrary, error) {
	lib := organizer.NewPackageLibrary(a.fsmgr, a.extractor, a.native, a.paths, a.logger)
	if err := lib.Populate(loc); err != nil {
		return nil, err
	}
	return lib, nil
}

// Scan populates a library for loc. With compare set, each record's
// IsArchived flag is computed against the archive location.
func (a *OrganizerApp) Scan(loc organizer.Location, compare bool) (*organizer.PackageLibrary, error) {
	lib, err := a.populate(loc)
	if err != nil {
		return nil, err
	}
	if compare && loc != organizer.LocationArchive {
		archive, err := a.populate(organizer.LocationArchive)
		if err != nil {
			return nil, err
		}
		lib.CompareAgainst(archive)
	}
	return lib, nil
}

// Status explains how each record with package id in loc matches against
// the archive.
func (a *OrganizerApp) Status(loc organizer.Location, id int) ([]organizer.ArchiveStatusReport, error) {
	lib, err := a.populate(loc)
	if err != nil {
		return nil, err
	}
	archive, err := a.populate(organizer.LocationArchive)
	if err != nil {
		return nil, err
	}

	var reports []organizer.ArchiveStatusReport
	for _, r := range lib.Candidates(id) {
		reports = append(reports, archive.ArchiveStatus(r))
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("id %d in %v: %w", id, loc, ErrPackageNotFound)
	}
	return reports, nil
}

// Archive copies the records of loc that pass filter into the archive.
// When perform is false the batch is simulated. The run is recorded in
// the history database.
func (a *OrganizerApp) Archive(loc organizer.Location, filter organizer.Filter, perform bool) (*organizer.ArchiveReport, error) {
	lib, err := a.populate(loc)
	if err != nil {
		return nil, err
	}
	archive, err := a.populate(organizer.LocationArchive)
	if err != nil {
		return nil, err
	}
	records := filter.Apply(lib.Packages())

	if err := a.beginRun("archive", loc, !perform); err != nil {
		return nil, err
	}

	report, err := a.archiver.ArchivePackages(records, archive, loc, perform)
	if err != nil {
		a.finishRun(model.RunStatusFailed)
		return nil, err
	}

	a.recordEntries(organizer.EntriesFromReport(a.op.RunID, report))
	if report.Count(organizer.DecisionFailed) > 0 {
		a.finishRun(model.RunStatusFailed)
	} else {
		a.finishRun(model.RunStatusSuccess)
	}
	return report, nil
}

// RestoreResult describes a restore request.
type RestoreResult struct {
	Record      *organizer.PackageRecord
	Destination string
	Decision    organizer.Decision
}

// Restore copies the package at rawPath, found in loc, back into the
// Asset Store directory. The user is asked to confirm; when perform is
// false nothing is copied even after confirmation.
func (a *OrganizerApp) Restore(loc organizer.Location, rawPath string, perform bool) (*RestoreResult, error) {
	lib, err := a.populate(loc)
	if err != nil {
		return nil, err
	}

	path := organizer.NormalizePath(rawPath)
	var rec *organizer.PackageRecord
	for _, r := range lib.Packages() {
		if r.FullFilePath == path {
			rec = r
			break
		}
	}
	if rec == nil {
		return nil, fmt.Errorf("%q in %v: %w", path, loc, ErrPackageNotFound)
	}

	dst, err := a.archiver.RestoreDestination(rec, loc)
	if err != nil {
		return nil, err
	}

	if err := a.beginRun("restore", loc, !perform); err != nil {
		return nil, err
	}

	result := &RestoreResult{Record: rec, Destination: dst}
	restored, err := a.archiver.RestorePackage(rec, loc, perform)
	switch {
	case err != nil:
		result.Decision = organizer.DecisionFailed
	case restored:
		result.Decision = organizer.DecisionRestored
	case !perform:
		result.Decision = organizer.DecisionSimulated
	default:
		result.Decision = organizer.DecisionDeclined
	}

	entry := &model.RunEntry{
		RunID:           a.op.RunID,
		PackageID:       rec.ID,
		Title:           rec.Title,
		Decision:        string(result.Decision),
		MatchState:      organizer.MatchNone.String(),
		SourcePath:      rec.FullFilePath,
		DestinationPath: dst,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	a.recordEntries([]*model.RunEntry{entry})

	if err != nil {
		a.finishRun(model.RunStatusFailed)
		return result, err
	}
	a.finishRun(model.RunStatusSuccess)
	return result, nil
}

// FilterOptions returns the distinct filter values present in loc.
func (a *OrganizerApp) FilterOptions(loc organizer.Location) (organizer.FilterChoices, error) {
	lib, err := a.populate(loc)
	if err != nil {
		return organizer.FilterChoices{}, err
	}
	return organizer.FilterOptions(lib.Packages()), nil
}

// History returns the most recent archive and restore runs.
func (a *OrganizerApp) History(limit int) ([]*model.Run, error) {
	if a.history == nil {
		return nil, nil
	}
	return a.history.ListRuns(limit)
}

// HistoryRun returns the run whose id starts with prefix and its entries.
func (a *OrganizerApp) HistoryRun(prefix string) (*model.Run, []*model.RunEntry, error) {
	if a.history == nil {
		return nil, nil, fmt.Errorf("run %q: %w", prefix, database.ErrRunNotFound)
	}
	run, err := a.history.FindRun(prefix)
	if err != nil {
		return nil, nil, err
	}
	if run == nil {
		return nil, nil, fmt.Errorf("run %q: %w", prefix, database.ErrRunNotFound)
	}
	entries, err := a.history.ListRunEntries(run.ID)
	if err != nil {
		return nil, nil, err
	}
	return run, entries, nil
}

// beginRun persists the operation as a history run.
func (a *OrganizerApp) beginRun(operation string, source organizer.Location, dryRun bool) error {
	a.op.Name = operation
	if a.history == nil || a.op.Persisted() {
		return nil
	}
	run := &model.Run{
		ID:        a.ids.New(),
		OpID:      a.op.OpID,
		Operation: operation,
		Source:    source.String(),
		DryRun:    dryRun,
		StartedAt: a.clock.Now(),
		Status:    model.RunStatusRunning,
	}
	if err := a.history.CreateRun(run); err != nil {
		return fmt.Errorf("recording %s run: %w", operation, err)
	}
	a.op.RunID = run.ID
	return nil
}

// recordEntries stores entries. The copies have already happened, so a
// failure is logged rather than returned.
func (a *OrganizerApp) recordEntries(entries []*model.RunEntry) {
	if !a.op.Persisted() {
		return
	}
	for _, e := range entries {
		if err := a.history.AddRunEntry(e); err != nil {
			a.logger.Error("recording history entry", "run", a.op.RunID, "title", e.Title, "error", err)
		}
	}
}

func (a *OrganizerApp) finishRun(status string) {
	a.op.Status = status
	if !a.op.Persisted() {
		return
	}
	if err := a.history.FinishRun(a.op.RunID, status, a.clock.Now()); err != nil {
		a.logger.Error("finishing history run", "run", a.op.RunID, "error", err)
	}
}

// Close finalizes an unfinished run as failed and closes all resources.
func (a *OrganizerApp) Close() error {
	var firstErr error

	if a.op.Persisted() && a.op.Status == model.RunStatusRunning {
		a.finishRun(model.RunStatusFailed)
	}

	if a.history != nil {
		if err := a.history.Close(); err != nil {
			firstErr = fmt.Errorf("closing database: %w", err)
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
