// Package runner implements the Stata commands: it finds the code the user wants to run, cleans
// it and hands it to the delivery target, then moves the cursor.
package runner

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jeffwilliams/astata/internal/buffer"
	"github.com/jeffwilliams/astata/internal/deliver"
	"github.com/jeffwilliams/astata/internal/region"
	"github.com/jeffwilliams/astata/internal/strip"
)

// Host is the editor window a command runs against.
type Host interface {
	// Snapshot returns the window's text, selections and cursors as they are now.
	Snapshot() (buffer.Snapshot, error)
	// Path is the file the window holds, or the empty string if it has none.
	Path() string
	// Save writes the window to its file.
	Save() error
	SetCursor(p buffer.Position) error
}

// Notifier shows messages to the user.
type Notifier interface {
	Error(msg string)
	Warning(msg string)
}

type Options struct {
	AdvancePosition bool
	SkipComments    bool
	AllowSave       bool
	BatchPath       string
	BatchEol        string
	Platform        strip.Platform
}

// Runner runs commands one at a time. Each command reports its own failure through the
// Notifier and also returns it.
type Runner struct {
	d      *deliver.Dispatcher
	notify Notifier
	opts   Options
}

func New(d *deliver.Dispatcher, notify Notifier, opts Options) *Runner {
	return &Runner{d: d, notify: notify, opts: opts}
}

func (r *Runner) SetOptions(opts Options) {
	r.opts = opts
}

func (r *Runner) Options() Options {
	return r.opts
}

// report shows err to the user. Missing regions are only worth a warning.
func (r *Runner) report(err error, warning bool) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	var e *Error
	if errors.As(err, &e) {
		msg = e.Error()
		if e.Kind == RegionNotFound {
			warning = true
		}
	}

	if warning {
		r.notify.Warning(msg)
	} else {
		r.notify.Error(msg)
	}
	return err
}

func (r *Runner) send(mode deliver.Mode, code string) error {
	err := r.d.Send(mode, code)
	if err != nil {
		return newError(DeliveryFailure, "Sending code failed", err)
	}
	return nil
}

func (r *Runner) clean(code string) string {
	return strip.Strip(code, r.opts.Platform)
}

// Run sends the text of each selection, or the line under each cursor, with comments removed.
// If advance is true or the advance-position option is set, and no selection had text, the
// cursor then moves to the next line of code.
func (r *Runner) Run(host Host, advance bool) error {
	return r.report(r.run(host, advance, false), false)
}

// RunBatch writes the text Run would send to the batch file, comments and all, and sends a
// command to run that file.
func (r *Runner) RunBatch(host Host) error {
	return r.report(r.run(host, false, true), false)
}

func (r *Runner) run(host Host, advance, batch bool) error {
	if batch && !r.d.Capabilities().RunFile {
		return newError(UnsupportedForTarget, fmt.Sprintf("Running a batch file not supported for %s", r.d.TargetName()), nil)
	}

	snap, err := host.Snapshot()
	if err != nil {
		return err
	}

	units := region.CollectUnits(snap.Lines, snap.Selections)

	if batch {
		text := strings.Join(units.Texts, "\n")
		err = deliver.WriteBatch(r.opts.BatchPath, text, r.opts.BatchEol)
		if err != nil {
			return newError(IOFailure, "Writing the batch file failed", err)
		}
		err = r.send(deliver.ModeBatch, deliver.DoFileCommand(r.opts.BatchPath))
		if err != nil {
			return err
		}
	} else {
		for _, text := range units.Texts {
			err = r.send(deliver.ModeLine, r.clean(text))
			if err != nil {
				return err
			}
		}
	}

	if (advance || r.opts.AdvancePosition) && !units.AnySelectionNonEmpty {
		return r.advance(host, snap.Lines, snap.Cursor().Row)
	}
	return nil
}

// advance moves the cursor to the first line of code after row.
func (r *Runner) advance(host Host, lines *buffer.Lines, row int) error {
	p, ok := region.FindForward(lines, region.NonEmptyLine(r.opts.SkipComments), row+1)
	if !ok {
		return nil
	}
	return host.SetCursor(region.FirstNonBlank(lines, p.Row))
}

// RunPrevious sends the last code sent again.
func (r *Runner) RunPrevious() error {
	prev := r.d.Previous()
	if prev == "" {
		return r.report(errors.New("No previous command."), true)
	}
	return r.report(r.send(deliver.ModePrevious, prev), false)
}

// RunAll runs the window's file as a do file, saving it first if the allow-save option is set.
func (r *Runner) RunAll(host Host) error {
	return r.report(r.runAll(host), false)
}

func (r *Runner) runAll(host Host) error {
	if !r.d.Capabilities().RunFile {
		return newError(UnsupportedForTarget, fmt.Sprintf("Running entire do file not supported for %s", r.d.TargetName()), nil)
	}

	path := host.Path()
	if path == "" {
		return newError(NoActiveFile, "Error: File not yet saved.", nil)
	}

	if r.opts.AllowSave {
		err := host.Save()
		if err != nil {
			return newError(IOFailure, "Saving the file failed", err)
		}
	}

	return r.send(deliver.ModeFile, deliver.DoFileCommand(path))
}

// RunParagraph sends the paragraph around the cursor with comments removed.
func (r *Runner) RunParagraph(host Host) error {
	return r.report(r.runParagraph(host), false)
}

func (r *Runner) runParagraph(host Host) error {
	snap, err := host.Snapshot()
	if err != nil {
		return err
	}

	rg, ok := region.FindParagraph(snap.Lines, snap.Cursor().Row)
	if !ok {
		return newError(RegionNotFound, "No paragraph at cursor.", nil)
	}

	err = r.send(deliver.ModeParagraph, r.clean(snap.Lines.TextInRange(rg)))
	if err != nil {
		return err
	}

	if r.opts.AdvancePosition {
		return r.advance(host, snap.Lines, rg.End.Row)
	}
	return nil
}

// RunProgram sends the program definition around the cursor with comments removed.
func (r *Runner) RunProgram(host Host) error {
	return r.report(r.runProgram(host), false)
}

func (r *Runner) runProgram(host Host) error {
	snap, err := host.Snapshot()
	if err != nil {
		return err
	}

	rg, ok := region.FindProgramBlock(snap.Lines, snap.Cursor().Row)
	if !ok {
		return newError(RegionNotFound, "Couldn't find program.", nil)
	}

	return r.send(deliver.ModeProgram, r.clean(snap.Lines.TextInRange(rg)))
}

// SetWorkingDirectory changes Stata's working directory to the directory holding the window's
// file. Problems are reported as warnings.
func (r *Runner) SetWorkingDirectory(host Host) error {
	if !r.d.Capabilities().ChangeDir {
		return r.report(newError(UnsupportedForTarget, fmt.Sprintf("Set Working Directory not supported for %s", r.d.TargetName()), nil), true)
	}

	path := host.Path()
	if path == "" {
		return r.report(newError(NoActiveFile, "No current working directory (save the file first).", nil), true)
	}

	return r.report(r.send(deliver.ModeChdir, deliver.ChdirCommand(filepath.Dir(path))), false)
}

// History returns the recent sends as CSV.
func (r *Runner) History() (string, error) {
	var buf bytes.Buffer
	err := r.d.History().WriteCSV(&buf)
	if err != nil {
		return "", r.report(fmt.Errorf("formatting history: %w", err), false)
	}
	return buf.String(), nil
}

// Stop closes the delivery target. The next command starts it again.
func (r *Runner) Stop() error {
	err := r.d.Stop()
	if err != nil {
		return r.report(fmt.Errorf("stopping %s: %w", r.d.TargetName(), err), false)
	}
	return nil
}
