// Package reporting renders sweep tables and run series for humans and
// for other tools.
package reporting

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Format selects an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	// FormatAuto renders a table on a terminal and JSON otherwise.
	FormatAuto Format = "auto"
)

// Options controls what the writers include.
type Options struct {
	// Series adds each point's per-step metrics to the output.
	Series bool
	// Summary adds mean and standard deviation of replicate runs per
	// parameter.
	Summary bool
}

var printer = message.NewPrinter(language.English)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatJSON, FormatAuto:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q: must be table, json or auto", s)
	}
}

// Resolve turns FormatAuto into a concrete format for w.
func (f Format) Resolve(w io.Writer) Format {
	if f != FormatAuto {
		return f
	}
	if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		return FormatTable
	}
	return FormatJSON
}
