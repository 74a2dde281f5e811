// Package submission loads question and answer text from files, stdin, or flags.
package submission

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dshills/leetgrade/internal/report"
)

// StdinPath is the path that selects standard input.
const StdinPath = "-"

// Text holds a loaded question or answer with its metadata.
type Text struct {
	Source string
	Raw    string
	Hash   string
}

// FromText wraps literal text. source labels where it came from.
func FromText(source, raw string) *Text {
	return &Text{
		Source: source,
		Raw:    raw,
		Hash:   report.Hash(raw),
	}
}

// Load reads a file, or stdin when path is "-".
func Load(path string, stdin io.Reader) (*Text, error) {
	if path == StdinPath {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("submission.Load: read stdin: %w", err)
		}
		return FromText("stdin", string(data)), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("submission.Load: %w", err)
	}
	return FromText(filepath.Base(path), string(data)), nil
}

// Resolve picks between literal text and a path. Setting both is an error;
// setting neither yields empty text, which scores zero.
func Resolve(name, text, path string, stdin io.Reader) (*Text, error) {
	switch {
	case text != "" && path != "":
		return nil, fmt.Errorf("submission.Resolve: %s given both as text and as file", name)
	case path != "":
		return Load(path, stdin)
	default:
		return FromText(name, text), nil
	}
}
