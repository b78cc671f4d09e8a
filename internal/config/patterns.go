package config

import (
	"path/filepath"

	"github.com/gobwas/glob"
)

func compilePattern(p string) (glob.Glob, error) {
	return glob.Compile(p)
}

// FileMatcher decides which windows the Stata command acts on, by the base name of the
// window's file.
type FileMatcher struct {
	patterns []string
	globs    []glob.Glob
}

func NewFileMatcher(patterns []string) (*FileMatcher, error) {
	m := &FileMatcher{patterns: patterns}
	for _, p := range patterns {
		g, err := compilePattern(p)
		if err != nil {
			return nil, err
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Match reports whether the file at path may be run. An empty path, or an empty pattern
// list, always matches.
func (m *FileMatcher) Match(path string) bool {
	if path == "" || len(m.globs) == 0 {
		return true
	}

	base := filepath.Base(path)
	for _, g := range m.globs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (m *FileMatcher) Patterns() []string {
	return m.patterns
}
