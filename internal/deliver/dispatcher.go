package deliver

import (
	"fmt"
	"time"
)

// Mode names how a piece of code came to be sent.
type Mode string

const (
	ModeLine      Mode = "line"
	ModeParagraph Mode = "paragraph"
	ModeProgram   Mode = "program"
	ModePrevious  Mode = "previous"
	ModeFile      Mode = "file"
	ModeBatch     Mode = "batch"
	ModeChdir     Mode = "cd"
)

// Dispatcher hands code to the current target. It remembers the last code sent so that it
// can be sent again, and keeps a history of sends.
//
// A Dispatcher is not safe for concurrent use; commands are run one at a time.
type Dispatcher struct {
	name     string
	open     Opener
	target   Target
	previous string
	history  *History
	now      func() time.Time
}

func NewDispatcher(name string, open Opener, history *History) *Dispatcher {
	if history == nil {
		history = NewHistory(0)
	}
	return &Dispatcher{
		name:    name,
		open:    open,
		history: history,
		now:     time.Now,
	}
}

// Retarget switches to a different target, closing the current one. The new target is opened
// on the next Send.
func (d *Dispatcher) Retarget(name string, open Opener) error {
	err := d.Stop()
	d.name = name
	d.open = open
	return err
}

func (d *Dispatcher) TargetName() string {
	return d.name
}

func (d *Dispatcher) Capabilities() Capabilities {
	return CapabilitiesOf(d.name)
}

// Send records code as the previous command and delivers it once.
func (d *Dispatcher) Send(mode Mode, code string) error {
	d.previous = code
	d.history.Add(HistoryEntry{
		Time:   d.now(),
		Mode:   mode,
		Target: d.name,
		Code:   code,
	})

	if d.target == nil {
		t, err := d.open()
		if err != nil {
			return fmt.Errorf("starting target %s: %w", d.name, err)
		}
		d.target = t
	}

	Debug("deliver: sending %d bytes to %s\n", len(code), d.name)
	err := d.target.Send(code)
	if err != nil {
		return fmt.Errorf("sending to %s: %w", d.name, err)
	}
	return nil
}

// Previous is the last code sent, or the empty string if nothing has been sent.
func (d *Dispatcher) Previous() string {
	return d.previous
}

func (d *Dispatcher) History() *History {
	return d.history
}

// Stop closes the current target, if one is open.
func (d *Dispatcher) Stop() error {
	if d.target == nil {
		return nil
	}
	t := d.target
	d.target = nil
	return t.Close()
}
