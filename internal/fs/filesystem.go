package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"ciid-go/internal/ciid"
)

// IgnoreFileName is read from the root of every directory scan, when present.
const IgnoreFileName = ".ciidignore"

// OSFilesystemManager is the real filesystem implementation of FilesystemManager.
// It performs actual filesystem operations using the os package.
type OSFilesystemManager struct {
	ignore []string
}

// NewOSFilesystemManager creates a new filesystem manager that operates on the
// real filesystem. ignore holds patterns applied to every directory scan in
// addition to the scanned directory's own .ciidignore.
func NewOSFilesystemManager(ignore []string) *OSFilesystemManager {
	return &OSFilesystemManager{ignore: ignore}
}

// Resolve validates a raw path and returns a Path object.
func (m *OSFilesystemManager) Resolve(rawPath string) (*ciid.Path, error) {
	// Convert to absolute path
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	// Stat the path
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	// Check for special file types we don't support
	mode := info.Mode()
	if mode&os.ModeDevice != 0 {
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	}
	if mode&os.ModeNamedPipe != 0 {
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	}
	if mode&os.ModeSocket != 0 {
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return ciid.NewPath(absPath, info.IsDir(), info), nil
}

// FindFiles walks the directory at path and returns its regular files at
// any depth, in lexical order. Ignored files are skipped and ignored
// directories are not descended into.
func (m *OSFilesystemManager) FindFiles(path *ciid.Path) ([]*ciid.Path, error) {
	if !path.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", path.String())
	}

	matcher, err := m.matcherFor(path.String())
	if err != nil {
		return nil, err
	}

	var paths []*ciid.Path
	err = filepath.WalkDir(path.String(), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path.String(), p)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if rel != "." && matcher.Match(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || matcher.Match(rel, false) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		paths = append(paths, ciid.NewPath(p, false, info))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}
	return paths, nil
}

func (m *OSFilesystemManager) matcherFor(root string) (*IgnoreMatcher, error) {
	patterns := append([]string{}, defaultIgnorePatterns...)
	patterns = append(patterns, m.ignore...)

	local, err := ParseIgnoreFile(filepath.Join(root, IgnoreFileName))
	if err != nil {
		return nil, err
	}
	patterns = append(patterns, local...)
	return NewIgnoreMatcher(patterns), nil
}

// Rename moves oldPath to newPath. It refuses to replace an existing file.
// The check and the rename are not atomic; hard links would close the gap but
// are unavailable on the FAT filesystems of most memory cards.
func (m *OSFilesystemManager) Rename(oldPath, newPath string) error {
	if _, err := os.Lstat(newPath); err == nil {
		return fmt.Errorf("refusing to overwrite %s: %w", newPath, fs.ErrExist)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", newPath, err)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("renaming file: %w", err)
	}
	return nil
}

// Compile-time check that OSFilesystemManager implements ciid.FilesystemManager interface
var _ ciid.FilesystemManager = (*OSFilesystemManager)(nil)
