package ciid

import "io/fs"

// Path is an absolute photo or directory path with the stat info captured
// when it was resolved or discovered.
type Path struct {
	absPath string
	isDir   bool
	info    fs.FileInfo
}

// NewPath creates a Path from its components.
// This is primarily for use by FilesystemManager implementations.
func NewPath(absPath string, isDir bool, info fs.FileInfo) *Path {
	return &Path{
		absPath: absPath,
		isDir:   isDir,
		info:    info,
	}
}

// String returns the absolute path as a string.
func (p *Path) String() string {
	return p.absPath
}

// IsDir returns true if this path points to a directory.
func (p *Path) IsDir() bool {
	return p.isDir
}

// Size returns the file size in bytes, or 0 without stat info.
func (p *Path) Size() int64 {
	if p.info == nil {
		return 0
	}
	return p.info.Size()
}

// FilesystemManager resolves user-supplied paths and discovers photo files.
type FilesystemManager interface {
	// Resolve validates a raw path and returns a Path object.
	// It resolves the path to an absolute path, stats it, and validates
	// it's a regular file or directory (not a device, pipe, etc.).
	Resolve(rawPath string) (*Path, error)

	// FindFiles discovers regular files anywhere below the given directory.
	// Files matching the configured ignore patterns are skipped.
	FindFiles(path *Path) ([]*Path, error)

	// Rename moves oldPath to newPath, failing if newPath already exists.
	Rename(oldPath, newPath string) error
}
