package organizer

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
)

// PackageLibrary is the package inventory of one location, indexed by id.
//
// A library is owned by a single caller. Populate replaces its contents
// wholesale; the id index is rebuilt from the record list every time.
type PackageLibrary struct {
	fsmgr     FilesystemManager
	extractor MetadataExtractor
	native    NativePackageSource
	paths     *Paths
	logger    Logger

	location   Location
	packages   []*PackageRecord
	byID       map[int][]*PackageRecord
	fileCount  int
	totalBytes int64
}

// NewPackageLibrary creates an empty library that populates itself through
// the given collaborators.
func NewPackageLibrary(fsmgr FilesystemManager, extractor MetadataExtractor, native NativePackageSource, paths *Paths, logger Logger) *PackageLibrary {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &PackageLibrary{
		fsmgr:     fsmgr,
		extractor: extractor,
		native:    native,
		paths:     paths,
		logger:    logger,
		byID:      make(map[int][]*PackageRecord),
	}
}

// LibraryFromRecords builds a library for loc directly from records.
// It cannot Populate.
func LibraryFromRecords(loc Location, records []*PackageRecord) *PackageLibrary {
	lib := &PackageLibrary{
		logger:   NewNopLogger(),
		location: loc,
		byID:     make(map[int][]*PackageRecord),
	}
	lib.AddRecords(records...)
	return lib
}

// AddRecords appends records and indexes them.
func (l *PackageLibrary) AddRecords(records ...*PackageRecord) {
	for _, r := range records {
		l.packages = append(l.packages, r)
		l.byID[r.ID] = append(l.byID[r.ID], r)
		l.totalBytes += r.FileSize
	}
}

// Populate clears the library and rescans loc.
//
// A missing or unset directory yields an empty library and a warning.
// Files whose metadata cannot be read are logged and skipped.
func (l *PackageLibrary) Populate(loc Location) error {
	l.clear()
	l.location = loc

	var records []*PackageRecord
	switch loc {
	case LocationNative:
		records = l.scanNative()
	case LocationAssetStore, LocationAssetStore5x, LocationCustom, LocationArchive:
		if l.paths == nil {
			return fmt.Errorf("populating %v: no paths configured", loc)
		}
		dir, err := l.paths.Directory(loc)
		if err != nil {
			return err
		}
		records = l.scanDirectory(loc, dir)
	default:
		return fmt.Errorf("populating library: %w: %v", ErrUnhandledLocation, loc)
	}

	l.AddRecords(records...)
	l.logger.Info("library populated", "location", loc.String(), "files", l.fileCount, "packages", len(l.packages), "size", l.SizeOnDisk())
	return nil
}

func (l *PackageLibrary) clear() {
	l.packages = nil
	l.byID = make(map[int][]*PackageRecord)
	l.fileCount = 0
	l.totalBytes = 0
}

func (l *PackageLibrary) scanNative() []*PackageRecord {
	if l.native == nil {
		l.logger.Warn("no native package source available")
		return nil
	}
	infos, err := l.native.PackageList()
	if err != nil {
		l.logger.Warn("reading native package list", "error", err)
	}

	records := make([]*PackageRecord, 0, len(infos))
	for _, info := range infos {
		l.fileCount++
		rec, err := l.extractor.FromPackageInfo(info)
		if err != nil {
			l.logger.Error("reading native package", "path", info.PackagePath, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records
}

func (l *PackageLibrary) scanDirectory(loc Location, dir string) []*PackageRecord {
	if dir == "" || !l.fsmgr.DirExists(dir) {
		l.logger.Warn("skipping scan", "location", loc.String(), "dir", dir, "error", ErrDirectoryNotFound)
		return nil
	}

	files, err := l.fsmgr.FindFiles(dir, []string{PackagePattern})
	if err != nil {
		// Keep whatever was enumerated before the failure.
		l.logger.Warn("scanning directory", "dir", dir, "error", err)
	}

	records := make([]*PackageRecord, 0, len(files))
	for _, path := range files {
		l.fileCount++
		rec, err := l.extractor.Extract(path)
		if err != nil {
			if errors.Is(err, ErrInvalidPackageFormat) {
				l.logger.Error("invalid package", "path", path, "error", err)
			} else {
				l.logger.Error("reading package", "path", path, "error", err)
			}
			continue
		}
		records = append(records, rec)
	}
	return records
}

// Location returns the location the library was last populated from.
func (l *PackageLibrary) Location() Location { return l.location }

// Packages returns the records in scan order. The slice must not be modified.
func (l *PackageLibrary) Packages() []*PackageRecord { return l.packages }

// FileCount returns how many package files the last scan visited,
// including files that failed to parse.
func (l *PackageLibrary) FileCount() int { return l.fileCount }

// PackageCount returns the number of records in the library.
func (l *PackageLibrary) PackageCount() int { return len(l.packages) }

// TotalBytes returns the summed size of all records.
func (l *PackageLibrary) TotalBytes() int64 { return l.totalBytes }

// SizeOnDisk returns TotalBytes in human-readable form.
func (l *PackageLibrary) SizeOnDisk() string {
	return humanize.IBytes(uint64(l.totalBytes))
}

// Candidates returns every record sharing id.
func (l *PackageLibrary) Candidates(id int) []*PackageRecord {
	return l.byID[id]
}

// CompareAgainst marks each record in l as archived iff other holds an
// exact match for it.
func (l *PackageLibrary) CompareAgainst(other *PackageLibrary) {
	for _, r := range l.packages {
		r.IsArchived = other.Contains(r) == MatchExact
	}
}

// Contains classifies r against the records in l sharing its id.
func (l *PackageLibrary) Contains(r *PackageRecord) MatchState {
	state, _ := l.TryGetMatched(r)
	return state
}

// TryGetMatched is Contains, but also returns the exact match if one
// exists. A partial match carries no candidate.
func (l *PackageLibrary) TryGetMatched(r *PackageRecord) (MatchState, *PackageRecord) {
	candidates, ok := l.byID[r.ID]
	if !ok {
		return MatchNone, nil
	}

	partial := false
	for _, c := range candidates {
		m := CompareIdentity(r, c)
		if m.Exact() {
			return MatchExact, c
		}
		if m.Partial() {
			partial = true
		}
	}
	if partial {
		return MatchPartial, nil
	}
	return MatchNone, nil
}

// CandidateStatus is one candidate's field-by-field comparison.
type CandidateStatus struct {
	Candidate *PackageRecord `json:"candidate" yaml:"candidate"`
	Fields    FieldMatch     `json:"fields" yaml:"fields"`
}

// ArchiveStatusReport explains how a record matches against a library.
type ArchiveStatusReport struct {
	Record     *PackageRecord    `json:"record" yaml:"record"`
	State      MatchState        `json:"-" yaml:"-"`
	StateName  string            `json:"state" yaml:"state"`
	Candidates []CandidateStatus `json:"candidates" yaml:"candidates"`
}

// ArchiveStatus compares r against every candidate sharing its id.
func (l *PackageLibrary) ArchiveStatus(r *PackageRecord) ArchiveStatusReport {
	state := l.Contains(r)
	report := ArchiveStatusReport{Record: r, State: state, StateName: state.String()}
	for _, c := range l.byID[r.ID] {
		report.Candidates = append(report.Candidates, CandidateStatus{Candidate: c, Fields: CompareIdentity(r, c)})
	}
	return report
}
