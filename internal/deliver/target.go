// Package deliver sends finished Stata code to where it is run: a Stata console, a Stata
// application on macOS, XQuartz, or Stata on a remote host.
package deliver

import (
	"fmt"
	"runtime"

	"github.com/jeffwilliams/astata/internal/config"
)

// Debug is called with diagnostics about starting and talking to targets.
var Debug = func(format string, args ...interface{}) {}

// Target is something that runs Stata code.
type Target interface {
	Name() string
	Capabilities() Capabilities
	// Send delivers code once. It does not wait for Stata to run it.
	Send(code string) error
	Close() error
}

// Capabilities lists the optional actions a target supports.
type Capabilities struct {
	// RunFile is true if the target can run a do file by path.
	RunFile bool
	// ChangeDir is true if the target can change Stata's working directory.
	ChangeDir bool
}

// CapabilitiesOf returns the capabilities of the target with the given name. XQuartz and ssh
// talk to a Stata on another host that can't see local files, so they support neither.
func CapabilitiesOf(name string) Capabilities {
	if name == config.TargetXQuartz || name == config.TargetSsh {
		return Capabilities{}
	}
	return Capabilities{RunFile: true, ChangeDir: true}
}

// Output receives text a target's Stata writes, with terminal escapes removed.
type Output func(s string)

// Opener creates a target when it is first needed.
type Opener func() (Target, error)

// NewOpener returns an Opener for the target selected in s.
func NewOpener(s config.Settings, output Output) Opener {
	name := s.General.Target
	return func() (Target, error) {
		switch {
		case name == config.TargetConsole:
			argv := append([]string{s.Console.Path}, s.Console.Args...)
			return NewConsole(argv, output), nil
		case name == config.TargetSsh:
			return DialSsh(s.Ssh, config.SshKeyDir(), output)
		case config.IsMacApp(name), name == config.TargetXQuartz:
			if runtime.GOOS != "darwin" {
				return nil, fmt.Errorf("the %s target is only available on macOS", name)
			}
			if name == config.TargetXQuartz {
				return NewXQuartz(s.Clipboard.PasteDelay, runOsascript), nil
			}
			return NewMacApp(name, s.General.FocusWindow, runOsascript), nil
		}
		return nil, fmt.Errorf("unknown target '%s'", name)
	}
}
