package fs

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// defaultIgnorePatterns are always applied regardless of config or .ciidignore.
var defaultIgnorePatterns = []string{IgnoreFileName}

// ignoreRule is one parsed line of an ignore list.
type ignoreRule struct {
	glob    string // lower-cased, slash separated
	negate  bool   // "!pattern" re-includes what an earlier rule ignored
	dirOnly bool   // "pattern/" only matches directories
	rooted  bool   // patterns containing '/' match the whole relative path
}

// IgnoreMatcher decides which files and directories a scan skips.
//
// Matching is case-insensitive, since cameras and import tools disagree on
// the case of extensions (IMG_0001.JPG next to IMG_0001.xmp). Rules are
// evaluated in order and the last matching rule wins, so a later "!keep.xmp"
// re-includes a file matched by an earlier "*.xmp".
type IgnoreMatcher struct {
	rules []ignoreRule
}

// NewIgnoreMatcher parses raw pattern lines. Blank lines and lines starting
// with '#' are skipped; malformed globs are dropped.
func NewIgnoreMatcher(lines []string) *IgnoreMatcher {
	var rules []ignoreRule
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var r ignoreRule
		if rest, ok := strings.CutPrefix(line, "!"); ok {
			r.negate, line = true, rest
		}
		if rest, ok := strings.CutSuffix(line, "/"); ok {
			r.dirOnly, line = true, rest
		}
		line = strings.TrimPrefix(line, "/")
		if line == "" {
			continue
		}
		r.rooted = strings.Contains(line, "/")
		r.glob = strings.ToLower(line)

		if _, err := path.Match(r.glob, ""); err != nil {
			continue
		}
		rules = append(rules, r)
	}
	return &IgnoreMatcher{rules: rules}
}

// Match reports whether the entry at relativePath, relative to the scan root,
// is ignored. isDir selects whether directory-only rules apply.
func (m *IgnoreMatcher) Match(relativePath string, isDir bool) bool {
	if relativePath == "" || len(m.rules) == 0 {
		return false
	}

	rel := strings.ToLower(filepath.ToSlash(relativePath))
	base := path.Base(rel)

	ignored := false
	for _, r := range m.rules {
		if r.dirOnly && !isDir {
			continue
		}
		subject := base
		if r.rooted {
			subject = rel
		}
		if ok, _ := path.Match(r.glob, subject); ok {
			ignored = !r.negate
		}
	}
	return ignored
}

// ParseIgnoreFile reads an ignore file and returns its raw lines.
// A missing file yields no lines and no error.
func ParseIgnoreFile(name string) ([]string, error) {
	f, err := os.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return lines, nil
}
