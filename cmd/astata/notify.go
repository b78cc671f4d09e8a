package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	anvil "github.com/jeffwilliams/astata/pkg/anvil-go-api"
)

// outputWindow appends messages and Stata's output to the +Stata window of a directory,
// creating the window when needed.
type outputWindow struct {
	lock sync.Mutex
	ed   editor
	dir  string
	win  *anvil.Window
}

func newOutputWindow(ed editor) *outputWindow {
	return &outputWindow{ed: ed}
}

// SetDir makes later output go to the +Stata window of dir.
func (o *outputWindow) SetDir(dir string) {
	o.lock.Lock()
	defer o.lock.Unlock()

	if dir != o.dir {
		o.dir = dir
		o.win = nil
	}
}

func (o *outputWindow) path() string {
	return filepath.Join(o.dir, "+Stata")
}

func (o *outputWindow) Error(msg string) {
	o.Append(fmt.Sprintf("astata: error: %s\n", msg))
}

func (o *outputWindow) Warning(msg string) {
	o.Append(fmt.Sprintf("astata: warning: %s\n", msg))
}

func (o *outputWindow) Append(s string) {
	o.lock.Lock()
	defer o.lock.Unlock()

	err := o.append(s)
	if err != nil {
		// The window may have been closed. Look for it again.
		o.win = nil
		err = o.append(s)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "astata: writing to %s failed: %v\n%s", o.path(), err, s)
	}
}

func (o *outputWindow) append(s string) (err error) {
	if o.win == nil {
		var win anvil.Window
		win, err = o.findOrCreateWindow()
		if err != nil {
			return
		}
		o.win = &win
	}
	return o.ed.AppendWindowBodyString(*o.win, s)
}

func (o *outputWindow) findOrCreateWindow() (win anvil.Window, err error) {
	path := o.path()

	wins, err := o.ed.Windows()
	if err != nil {
		return
	}
	for _, w := range wins {
		if w.GlobalPath == path || w.Path == path {
			return w, nil
		}
	}

	win, err = o.ed.NewWindow()
	if err != nil {
		return
	}
	err = o.ed.SetWindowTag(win, fmt.Sprintf("%s Del! Snarf | Look ", path))
	return
}
