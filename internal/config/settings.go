// Package config loads the astata settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	toml "github.com/pelletier/go-toml"
)

// Delivery target names accepted by the target setting.
const (
	TargetConsole    = "console"
	TargetStataSE    = "StataSE"
	TargetStataMP    = "StataMP"
	TargetStata      = "Stata"
	TargetStataIC    = "StataIC"
	TargetXQuartz    = "XQuartz"
	TargetSsh        = "ssh"
	settingsBasename = "astata.toml"
)

var ConfDir string

func init() {
	if d := os.Getenv("ANVIL_CFG_DIR"); d != "" {
		ConfDir = d
	} else if runtime.GOOS == "windows" {
		ConfDir = fmt.Sprintf("%s/.anvil", os.Getenv("USERPROFILE"))
	} else {
		ConfDir = fmt.Sprintf("%s/.anvil", os.Getenv("HOME"))
	}
}

func SettingsConfigFile() string {
	return filepath.Join(ConfDir, settingsBasename)
}

func SshKeyDir() string {
	return filepath.Join(ConfDir, "sshkeys")
}

type Settings struct {
	General   GeneralSettings
	Console   ConsoleSettings
	Batch     BatchSettings
	Clipboard ClipboardSettings
	Ssh       SshSettings
	History   HistorySettings
}

type GeneralSettings struct {
	Target          string
	AdvancePosition bool     `toml:"advance-position"`
	SkipComments    bool     `toml:"skip-comments"`
	AllowSave       bool     `toml:"allow-save"`
	FocusWindow     bool     `toml:"focus-window"`
	FilePatterns    []string `toml:"file-patterns"`
}

type ConsoleSettings struct {
	Path string
	Args []string
}

type BatchSettings struct {
	Path string
	// Eol is appended to the batch file when it does not end in a newline. Backslash
	// escapes are expanded.
	Eol string
}

type ClipboardSettings struct {
	// PasteDelay is in seconds.
	PasteDelay float64 `toml:"paste-delay"`
}

type SshSettings struct {
	Host              string
	User              string
	Port              string
	Command           string
	ConnectionTimeout int `toml:"conn-timeout"`
}

type HistorySettings struct {
	Size int
}

// Defaults returns the settings used when the settings file is missing or doesn't set a key.
func Defaults() Settings {
	return Settings{
		General: GeneralSettings{
			Target:       TargetConsole,
			SkipComments: true,
			AllowSave:    true,
			FocusWindow:  true,
			FilePatterns: []string{"*.do", "*.ado", "*.doh", "*.mata", "*.class"},
		},
		Console: ConsoleSettings{
			Path: "stata-se",
			Args: []string{"-q"},
		},
		Clipboard: ClipboardSettings{
			PasteDelay: 1.0,
		},
		Ssh: SshSettings{
			Port:              "22",
			Command:           "stata -q",
			ConnectionTimeout: 5,
		},
		History: HistorySettings{
			Size: 100,
		},
	}
}

// Load reads the settings file at path over a copy of defaults. A file that does not exist
// is not an error; the defaults are returned.
func Load(path string, defaults Settings) (s Settings, err error) {
	s = defaults
	s.General.FilePatterns = append([]string(nil), defaults.General.FilePatterns...)
	s.Console.Args = append([]string(nil), defaults.Console.Args...)

	var f *os.File
	f, err = os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = nil
		}
		return
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	err = dec.Decode(&s)
	if err != nil {
		err = fmt.Errorf("parsing %s: %w", path, err)
		return
	}

	err = s.Validate()
	if err != nil {
		err = fmt.Errorf("%s: %w", path, err)
	}
	return
}

// Validate checks values the TOML decoder can't.
func (s Settings) Validate() error {
	if !IsTarget(s.General.Target) {
		return fmt.Errorf("unknown target '%s'", s.General.Target)
	}

	if s.Clipboard.PasteDelay < 0.1 || s.Clipboard.PasteDelay > 10 {
		return fmt.Errorf("paste-delay must be between 0.1 and 10 seconds but is %v", s.Clipboard.PasteDelay)
	}

	if s.General.Target == TargetSsh && s.Ssh.Host == "" {
		return fmt.Errorf("the ssh target requires ssh.host to be set")
	}

	if s.History.Size < 0 {
		return fmt.Errorf("history size can't be negative")
	}

	for _, p := range s.General.FilePatterns {
		if _, err := compilePattern(p); err != nil {
			return fmt.Errorf("invalid file pattern '%s': %w", p, err)
		}
	}

	return nil
}

// IsTarget reports whether name is a known delivery target.
func IsTarget(name string) bool {
	switch name {
	case TargetConsole, TargetStataSE, TargetStataMP, TargetStata, TargetStataIC, TargetXQuartz, TargetSsh:
		return true
	}
	return false
}

// IsMacApp reports whether name is a target that drives a Stata application on macOS.
func IsMacApp(name string) bool {
	switch name {
	case TargetStataSE, TargetStataMP, TargetStata, TargetStataIC:
		return true
	}
	return false
}

// BatchPath is the file batch code is written to.
func (s Settings) BatchPath() string {
	if s.Batch.Path != "" {
		return s.Batch.Path
	}
	home := os.Getenv("HOME")
	if runtime.GOOS == "windows" {
		home = os.Getenv("USERPROFILE")
	}
	return filepath.Join(home, ".stata-exec_batch_code")
}

// BatchEol is the line ending appended to batch files, with escapes expanded.
func (s Settings) BatchEol() string {
	if s.Batch.Eol != "" {
		return ExpandEscapes(s.Batch.Eol)
	}
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

func GenerateSampleSettings() string {
	return `# Sample astata settings file
[general]
# target is where code is sent. One of console, StataSE, StataMP, Stata, StataIC,
# XQuartz or ssh. The Stata* and XQuartz targets only work on macOS.
#target="console"

# advance-position moves the cursor to the next line of code after running the current line.
#advance-position=false

# skip-comments makes advance-position pass over lines that are only a comment.
#skip-comments=true

# allow-save saves the window before "Stata all" runs the file.
#allow-save=true

# focus-window brings the Stata application to the front after sending code.
#focus-window=true

# file-patterns limits the Stata command to windows whose file name matches one of
# the patterns. Windows with no file are always accepted.
#file-patterns=["*.do", "*.ado", "*.doh", "*.mata", "*.class"]

[console]
# path and args start the Stata console for the console target.
#path="stata-se"
#args=["-q"]

[batch]
# path is the file "Stata batch" writes code to. The default is .stata-exec_batch_code
# in the home directory.
#path=""

# eol is appended to the batch file when it doesn't end with a newline. Escapes like \r\n
# are expanded. The default is \r\n on Windows and \n elsewhere.
#eol=""

[clipboard]
# paste-delay is the number of seconds to wait between steps when pasting into XQuartz.
#paste-delay=1.0

[ssh]
# host, user and port locate the remote system for the ssh target, and command is
# the Stata console run there. Keys are read from the ssh agent and the sshkeys
# directory in the configuration directory.
#host=""
#user=""
#port="22"
#command="stata -q"

# conn-timeout is the TCP connection timeout for the SSH session in seconds
#conn-timeout=5

[history]
# size is the number of sends remembered for "Stata history".
#size=100
`
}
