package main

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"sync"

	"github.com/jeffwilliams/astata/internal/config"
	"github.com/jeffwilliams/astata/internal/deliver"
	"github.com/jeffwilliams/astata/internal/runner"
	"github.com/jeffwilliams/astata/internal/strip"
	anvil "github.com/jeffwilliams/astata/pkg/anvil-go-api"
)

// editor is the part of the Anvil API astata uses.
type editor interface {
	Window(id int) (anvil.Window, error)
	Windows() ([]anvil.Window, error)
	NewWindow() (anvil.Window, error)
	SetWindowTag(win anvil.Window, tag string) error
	AppendWindowBodyString(win anvil.Window, s string) error
	WindowBodyString(win anvil.Window) (string, error)
	WindowBodySelections(win anvil.Window) ([]anvil.Selection, error)
	WindowBodyCursors(win anvil.Window) ([]int, error)
	SetWindowBodyCursors(win anvil.Window, cursors []int) error
	ExecuteInWin(win anvil.Window, command string, args []string) error
}

// App handles Stata commands one at a time.
type App struct {
	lock       sync.Mutex
	ed         editor
	settings   config.Settings
	matcher    *config.FileMatcher
	out        *outputWindow
	dispatcher *deliver.Dispatcher
	runner     *runner.Runner
}

func NewApp(ed editor, settings config.Settings) (*App, error) {
	matcher, err := config.NewFileMatcher(settings.General.FilePatterns)
	if err != nil {
		return nil, err
	}

	a := &App{
		ed:       ed,
		settings: settings,
		matcher:  matcher,
		out:      newOutputWindow(ed),
	}

	a.dispatcher = deliver.NewDispatcher(
		settings.General.Target,
		deliver.NewOpener(settings, a.out.Append),
		deliver.NewHistory(settings.History.Size),
	)
	a.runner = runner.New(a.dispatcher, a.out, runnerOptions(settings))
	return a, nil
}

func runnerOptions(s config.Settings) runner.Options {
	return runner.Options{
		AdvancePosition: s.General.AdvancePosition,
		SkipComments:    s.General.SkipComments,
		AllowSave:       s.General.AllowSave,
		BatchPath:       s.BatchPath(),
		BatchEol:        s.BatchEol(),
		Platform:        strip.Platform{IsWindows: runtime.GOOS == "windows"},
	}
}

// Exec runs the Stata sub-command in args against the window with id winId.
func (a *App) Exec(winId int, args []string) {
	a.lock.Lock()
	defer a.lock.Unlock()

	win, err := a.ed.Window(winId)
	if err != nil {
		fmt.Fprintf(os.Stderr, "astata: getting info for window %d failed: %v\n", winId, err)
		return
	}
	a.out.SetDir(outputDir(win))

	name := "run"
	if len(args) > 0 {
		name = args[0]
	}

	cmd, err := lookupCommand(name)
	if err != nil {
		a.out.Warning(err.Error())
		return
	}
	debug("astata: running sub-command %s in window %d\n", cmd.name, win.Id)

	if cmd.usesWindow && !a.matcher.Match(win.Path) {
		a.out.Warning(fmt.Sprintf("%s doesn't match any of the file patterns %v", filepath.Base(win.Path), a.matcher.Patterns()))
		return
	}

	err = cmd.run(a, newWindowHost(a.ed, win))
	if err != nil {
		debug("astata: %s failed: %v\n", cmd.name, err)
	}
}

// Reload reads the settings file again. If it can't be used the current settings are kept.
func (a *App) Reload(path string) {
	a.lock.Lock()
	defer a.lock.Unlock()

	debug("astata: reloading settings from %s\n", path)
	s, err := config.Load(path, config.Defaults())
	if err != nil {
		a.out.Error(fmt.Sprintf("reloading settings failed, keeping the old ones: %v", err))
		return
	}

	matcher, err := config.NewFileMatcher(s.General.FilePatterns)
	if err != nil {
		a.out.Error(fmt.Sprintf("reloading settings failed, keeping the old ones: %v", err))
		return
	}

	if targetChanged(a.settings, s) {
		debug("astata: switching target from %s to %s\n", a.settings.General.Target, s.General.Target)
		err = a.dispatcher.Retarget(s.General.Target, deliver.NewOpener(s, a.out.Append))
		if err != nil {
			a.out.Warning(fmt.Sprintf("closing %s: %v", a.settings.General.Target, err))
		}
	}

	a.dispatcher.History().SetMax(s.History.Size)
	a.runner.SetOptions(runnerOptions(s))
	a.matcher = matcher
	a.settings = s
}

// targetChanged reports whether the target has to be restarted to apply cur.
func targetChanged(old, cur config.Settings) bool {
	return old.General.Target != cur.General.Target ||
		old.General.FocusWindow != cur.General.FocusWindow ||
		!reflect.DeepEqual(old.Console, cur.Console) ||
		old.Clipboard != cur.Clipboard ||
		old.Ssh != cur.Ssh
}

func (a *App) Close() {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.dispatcher.Stop()
}

// outputDir is the directory whose +Stata window messages for win go to.
func outputDir(win anvil.Window) string {
	p := win.GlobalPath
	if p == "" {
		p = win.Path
	}
	if p == "" {
		if d := os.Getenv("ANVIL_WIN_GLOBAL_DIR"); d != "" {
			return d
		}
		d, _ := os.Getwd()
		return d
	}
	if p[len(p)-1] == '/' {
		return filepath.Clean(p)
	}
	return filepath.Dir(p)
}
