package deliver

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
)

type HistoryEntry struct {
	Time   time.Time `csv:"time"`
	Mode   Mode      `csv:"mode"`
	Target string    `csv:"target"`
	Code   string    `csv:"code"`
}

// History remembers the most recent sends, oldest first.
type History struct {
	entries []HistoryEntry
	max     int
}

// NewHistory makes a History holding at most max entries. A max of 0 remembers nothing.
func NewHistory(max int) *History {
	return &History{max: max}
}

// Add records e. Only the first line of the code is kept.
func (h *History) Add(e HistoryEntry) {
	if h.max <= 0 {
		return
	}

	e.Code = firstLine(e.Code)
	h.entries = append(h.entries, e)
	if len(h.entries) > h.max {
		n := copy(h.entries, h.entries[len(h.entries)-h.max:])
		h.entries = h.entries[:n]
	}
}

// SetMax changes how many entries are kept, dropping the oldest if needed.
func (h *History) SetMax(max int) {
	h.max = max
	if max <= 0 {
		h.entries = nil
		return
	}
	if len(h.entries) > max {
		h.entries = append([]HistoryEntry(nil), h.entries[len(h.entries)-max:]...)
	}
}

func (h *History) Entries() []HistoryEntry {
	return append([]HistoryEntry(nil), h.entries...)
}

func (h *History) Len() int {
	return len(h.entries)
}

// WriteCSV writes the history as CSV with a header row.
func (h *History) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	var err error
	if len(h.entries) == 0 {
		err = enc.EncodeHeader(HistoryEntry{})
	} else {
		err = enc.Encode(h.entries)
	}
	if err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
