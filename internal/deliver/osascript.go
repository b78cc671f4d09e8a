package deliver

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/jeffwilliams/astata/internal/config"
)

// scriptRunner runs AppleScript statements, one per element of lines.
type scriptRunner func(lines ...string) error

func runOsascript(lines ...string) error {
	args := make([]string, 0, len(lines)*2)
	for _, l := range lines {
		args = append(args, "-e", l)
	}

	out, err := exec.Command("osascript", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("osascript failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// appleScriptString quotes s as an AppleScript string literal.
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// MacApp sends code to one of the Stata applications on macOS using its DoCommandAsync
// AppleScript command.
type MacApp struct {
	app   string
	focus bool
	run   scriptRunner
}

func NewMacApp(app string, focus bool, run scriptRunner) *MacApp {
	return &MacApp{app: app, focus: focus, run: run}
}

func (m *MacApp) Name() string {
	return m.app
}

func (m *MacApp) Capabilities() Capabilities {
	return CapabilitiesOf(m.app)
}

func (m *MacApp) Send(code string) error {
	app := appleScriptString(m.app)
	var lines []string
	if m.focus {
		lines = append(lines, fmt.Sprintf("tell application %s to activate", app))
	}
	lines = append(lines, fmt.Sprintf("tell application %s to DoCommandAsync %s", app, appleScriptString(code)))
	return m.run(lines...)
}

func (m *MacApp) Close() error {
	return nil
}

// XQuartz pastes code into the frontmost XQuartz window, which is usually a terminal logged
// in to a remote Stata. The clipboard is the only way in, so code is copied, XQuartz is brought
// forward, and the paste and return keys are pressed with a delay between each step.
type XQuartz struct {
	delay     time.Duration
	run       scriptRunner
	writeClip func(string) error
}

// NewXQuartz makes an XQuartz target that waits pasteDelay seconds between steps.
func NewXQuartz(pasteDelay float64, run scriptRunner) *XQuartz {
	return &XQuartz{
		delay:     time.Duration(pasteDelay * float64(time.Second)),
		run:       run,
		writeClip: clipboard.WriteAll,
	}
}

func (x *XQuartz) Name() string {
	return config.TargetXQuartz
}

func (x *XQuartz) Capabilities() Capabilities {
	return CapabilitiesOf(config.TargetXQuartz)
}

func (x *XQuartz) Send(code string) error {
	err := x.writeClip(code)
	if err != nil {
		return fmt.Errorf("copying code to the clipboard: %w", err)
	}

	delay := fmt.Sprintf("delay %g", x.delay.Seconds())
	return x.run(
		`tell application "XQuartz" to activate`,
		delay,
		`tell application "System Events" to keystroke "v" using {command down}`,
		delay,
		`tell application "System Events" to keystroke return`,
	)
}

func (x *XQuartz) Close() error {
	return nil
}
