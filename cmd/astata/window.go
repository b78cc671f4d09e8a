package main

import (
	"fmt"

	"github.com/jeffwilliams/astata/internal/buffer"
	anvil "github.com/jeffwilliams/astata/pkg/anvil-go-api"
)

// windowHost lets the runner read and move the cursor in an Anvil window.
type windowHost struct {
	ed    editor
	win   anvil.Window
	lines *buffer.Lines
}

func newWindowHost(ed editor, win anvil.Window) *windowHost {
	return &windowHost{ed: ed, win: win}
}

func (h *windowHost) Snapshot() (snap buffer.Snapshot, err error) {
	body, err := h.ed.WindowBodyString(h.win)
	if err != nil {
		err = fmt.Errorf("reading body of window %d failed: %w", h.win.Id, err)
		return
	}

	sels, err := h.ed.WindowBodySelections(h.win)
	if err != nil {
		err = fmt.Errorf("reading selections of window %d failed: %w", h.win.Id, err)
		return
	}

	cursors, err := h.ed.WindowBodyCursors(h.win)
	if err != nil {
		err = fmt.Errorf("reading cursors of window %d failed: %w", h.win.Id, err)
		return
	}

	ranges := make([]buffer.TextRange, len(sels))
	for i, s := range sels {
		ranges[i] = buffer.TextRange{Start: s.Start, End: s.End}
	}

	snap = buffer.NewSnapshot(body, ranges, cursors)
	h.lines = snap.Lines
	debug("astata: window %d has %d lines and %d selections\n", h.win.Id, snap.Lines.LineCount(), len(snap.Selections))
	return
}

func (h *windowHost) Path() string {
	return h.win.Path
}

// Save runs Put in the window.
func (h *windowHost) Save() error {
	return h.ed.ExecuteInWin(h.win, "Put", nil)
}

// SetCursor replaces the window's cursors with a single cursor at p.
func (h *windowHost) SetCursor(p buffer.Position) error {
	if h.lines == nil {
		_, err := h.Snapshot()
		if err != nil {
			return err
		}
	}
	return h.ed.SetWindowBodyCursors(h.win, []int{h.lines.Offset(p)})
}
