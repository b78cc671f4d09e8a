package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, contents string) string {
	path := filepath.Join(dir, "astata.toml")
	err := os.WriteFile(path, []byte(contents), 0644)
	require.NoError(t, err)
	return path
}

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.toml"), Defaults())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)
}

func TestLoadOverridesOnlySetKeys(t *testing.T) {
	path := writeFile(t, t.TempDir(), `
[general]
advance-position = true
file-patterns = ["*.do"]

[console]
path = "/usr/local/stata17/stata-mp"

[batch]
eol = "\r\n"

[clipboard]
paste-delay = 0.5
`)

	s, err := Load(path, Defaults())
	require.NoError(t, err)

	assert.Equal(t, TargetConsole, s.General.Target)
	assert.True(t, s.General.AdvancePosition)
	assert.True(t, s.General.SkipComments)
	assert.True(t, s.General.AllowSave)
	assert.Equal(t, []string{"*.do"}, s.General.FilePatterns)
	assert.Equal(t, "/usr/local/stata17/stata-mp", s.Console.Path)
	assert.Equal(t, []string{"-q"}, s.Console.Args)
	assert.Equal(t, 0.5, s.Clipboard.PasteDelay)
	assert.Equal(t, "\r\n", s.BatchEol())
	assert.Equal(t, 100, s.History.Size)
}

func TestLoadDoesNotChangeDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), `
[general]
file-patterns = ["*.ado"]
`)
	defaults := Defaults()
	_, err := Load(path, defaults)
	require.NoError(t, err)
	assert.Equal(t, Defaults().General.FilePatterns, defaults.General.FilePatterns)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{
			name:     "syntax",
			contents: "[general\ntarget=",
		},
		{
			name:     "unknown target",
			contents: "[general]\ntarget = \"R\"\n",
		},
		{
			name:     "paste delay too small",
			contents: "[clipboard]\npaste-delay = 0.01\n",
		},
		{
			name:     "paste delay too large",
			contents: "[clipboard]\npaste-delay = 11.0\n",
		},
		{
			name:     "ssh without host",
			contents: "[general]\ntarget = \"ssh\"\n",
		},
		{
			name:     "negative history",
			contents: "[history]\nsize = -1\n",
		},
		{
			name:     "bad pattern",
			contents: "[general]\nfile-patterns = [\"[a-\"]\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tc.contents)
			_, err := Load(path, Defaults())
			assert.Error(t, err)
		})
	}
}

func TestSshTarget(t *testing.T) {
	path := writeFile(t, t.TempDir(), `
[general]
target = "ssh"

[ssh]
host = "stats.example.com"
user = "jw"
`)
	s, err := Load(path, Defaults())
	require.NoError(t, err)
	assert.Equal(t, TargetSsh, s.General.Target)
	assert.Equal(t, "stats.example.com", s.Ssh.Host)
	assert.Equal(t, "22", s.Ssh.Port)
	assert.Equal(t, "stata -q", s.Ssh.Command)
	assert.Equal(t, 5, s.Ssh.ConnectionTimeout)
}

func TestBatchPath(t *testing.T) {
	s := Defaults()
	assert.Equal(t, ".stata-exec_batch_code", filepath.Base(s.BatchPath()))

	s.Batch.Path = "/tmp/batch.do"
	assert.Equal(t, "/tmp/batch.do", s.BatchPath())
}

func TestTargetNames(t *testing.T) {
	assert.True(t, IsTarget("StataMP"))
	assert.False(t, IsTarget("stata"))
	assert.True(t, IsMacApp("StataIC"))
	assert.False(t, IsMacApp("XQuartz"))
	assert.False(t, IsMacApp("console"))
}

func TestExpandEscapes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain",
			input:    "abc",
			expected: "abc",
		},
		{
			name:     "crlf",
			input:    `\r\n`,
			expected: "\r\n",
		},
		{
			name:     "tab",
			input:    `a\tb`,
			expected: "a\tb",
		},
		{
			name:     "backslash",
			input:    `\\`,
			expected: `\`,
		},
		{
			name:     "unknown escape",
			input:    `\q`,
			expected: `\q`,
		},
		{
			name:     "trailing backslash",
			input:    `a\`,
			expected: `a\`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExpandEscapes(tc.input))
		})
	}
}

func TestFileMatcher(t *testing.T) {
	m, err := NewFileMatcher([]string{"*.do", "*.ado"})
	require.NoError(t, err)

	assert.True(t, m.Match("/home/jw/analysis/clean.do"))
	assert.True(t, m.Match("mycmd.ado"))
	assert.False(t, m.Match("/home/jw/notes.txt"))
	assert.False(t, m.Match("/home/jw/do"))
	assert.True(t, m.Match(""), "windows without a file are accepted")

	m, err = NewFileMatcher(nil)
	require.NoError(t, err)
	assert.True(t, m.Match("notes.txt"))

	_, err = NewFileMatcher([]string{"[a-"})
	assert.Error(t, err)
}

func TestWatchReportsChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "[general]\n")

	changed := make(chan struct{}, 10)
	w, err := Watch(path, func() { changed <- struct{}{} })
	require.NoError(t, err)
	defer w.Close()

	other := filepath.Join(dir, "other.toml")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("[general]\nadvance-position = true\n"), 0644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
