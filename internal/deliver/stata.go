package deliver

import (
	"fmt"
	"os"
	"strings"
)

// DoFileCommand is the Stata command that runs the do file at path.
func DoFileCommand(path string) string {
	return fmt.Sprintf("do `\"%s\"'", path)
}

// ChdirCommand is the Stata command that makes dir the working directory.
func ChdirCommand(dir string) string {
	return fmt.Sprintf("cd `\"%s\"'", dir)
}

// WriteBatch writes text to the batch file at path, appending eol if the text doesn't already
// end in a newline.
func WriteBatch(path, text, eol string) error {
	if !strings.HasSuffix(text, "\n") {
		text += eol
	}

	err := os.WriteFile(path, []byte(text), 0644)
	if err != nil {
		return fmt.Errorf("writing batch file: %w", err)
	}
	Debug("deliver: the batch code was saved to %s\n", path)
	return nil
}

func ensureNewline(code string) string {
	if strings.HasSuffix(code, "\n") {
		return code
	}
	return code + "\n"
}
