package region

import "github.com/jeffwilliams/astata/internal/buffer"

// Units is the code taken from a set of selections.
type Units struct {
	Texts []string
	// AnySelectionNonEmpty is true if at least one selection had text. Moving the cursor
	// forward after running only applies when it is false.
	AnySelectionNonEmpty bool
}

// CollectUnits takes the text of each selection, in order. An empty selection stands for the
// whole line its cursor is on.
func CollectUnits(v buffer.View, sels []buffer.Selection) Units {
	u := Units{Texts: make([]string, len(sels))}

	for i, s := range sels {
		if s.IsEmpty() {
			u.Texts[i] = v.LineText(s.Cursor().Row)
			continue
		}
		u.Texts[i] = s.Text
		u.AnySelectionNonEmpty = true
	}

	return u
}
