package unitypackage

import (
	"errors"

	"asset-organizer/internal/organizer"
)

// DirectorySource lists the packages the editor knows about by scanning
// its package directories. It stands in for the editor's own package list
// outside of the editor.
type DirectorySource struct {
	fsmgr  organizer.FilesystemManager
	logger organizer.Logger
	roots  []string
}

// NewDirectorySource creates a source over roots. Missing roots are skipped.
func NewDirectorySource(fsmgr organizer.FilesystemManager, logger organizer.Logger, roots ...string) *DirectorySource {
	if logger == nil {
		logger = organizer.NewNopLogger()
	}
	return &DirectorySource{fsmgr: fsmgr, logger: logger, roots: roots}
}

// PackageList returns every package under the roots. Packages whose header
// cannot be read are returned without metadata.
func (s *DirectorySource) PackageList() ([]organizer.PackageInfo, error) {
	var infos []organizer.PackageInfo
	var errs []error
	for _, root := range s.roots {
		if root == "" || !s.fsmgr.DirExists(root) {
			s.logger.Debug("native source root missing", "dir", root)
			continue
		}
		files, err := s.fsmgr.FindFiles(root, []string{organizer.PackagePattern})
		if err != nil {
			errs = append(errs, err)
		}
		for _, path := range files {
			infos = append(infos, s.packageInfo(path))
		}
	}
	return infos, errors.Join(errs...)
}

func (s *DirectorySource) packageInfo(path string) organizer.PackageInfo {
	info := organizer.PackageInfo{PackagePath: path}

	st, err := s.fsmgr.Stat(path)
	if err != nil {
		s.logger.Warn("stat native package", "path", path, "error", err)
		return info
	}
	f, err := s.fsmgr.Open(path)
	if err != nil {
		s.logger.Warn("open native package", "path", path, "error", err)
		return info
	}
	defer f.Close()

	data, err := ReadHeaderJSON(f, st.Size())
	if err != nil {
		s.logger.Debug("native package without metadata", "path", path, "error", err)
		return info
	}
	info.JSONInfo = string(data)
	return info
}

// EmptySource is a NativePackageSource with no packages.
type EmptySource struct{}

func (EmptySource) PackageList() ([]organizer.PackageInfo, error) { return nil, nil }

var (
	_ organizer.NativePackageSource = (*DirectorySource)(nil)
	_ organizer.NativePackageSource = EmptySource{}
)
