// Package output renders lookup results as tables, JSON or plain lines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Format is the output format requested by the user.
type Format string

// Output format constants supported by the --output flag.
const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatPlain Format = "plain"
)

// Formats lists every supported format, in completion order.
var Formats = []Format{FormatTable, FormatJSON, FormatPlain}

// ParseFormat validates s as a Format. A near miss ("jsn") is answered
// with a suggestion.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	if f, ok := closestFormat(s); ok {
		return "", fmt.Errorf("invalid output format %q (did you mean %q?)", s, f)
	}
	return "", fmt.Errorf("invalid output format %q: must be \"table\", \"json\", or \"plain\"", s)
}

// closestFormat returns the format within edit distance 2 of s, if any.
func closestFormat(s string) (Format, bool) {
	best, bestDist := Format(""), 3
	for _, f := range Formats {
		if d := levenshtein.ComputeDistance(strings.ToLower(s), string(f)); d < bestDist {
			best, bestDist = f, d
		}
	}
	return best, best != ""
}

// TableFormattable results know how to render themselves as an ASCII table.
type TableFormattable interface {
	WriteTable(w io.Writer) error
}

// PlainFormattable results render one record per line, for piping into other tools.
type PlainFormattable interface {
	WritePlain(w io.Writer) error
}

// Write dispatches a result to the formatter for format.
// JSON uses json.Encoder with indentation and no HTML escaping, so registry
// text such as "<abuse@example.net>" is kept verbatim.
func Write(w io.Writer, format Format, result any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(result)
	case FormatTable:
		tf, ok := result.(TableFormattable)
		if !ok {
			return fmt.Errorf("result type %T does not support table output", result)
		}
		return tf.WriteTable(w)
	case FormatPlain:
		pf, ok := result.(PlainFormattable)
		if !ok {
			return fmt.Errorf("result type %T does not support plain output", result)
		}
		return pf.WritePlain(w)
	default:
		return fmt.Errorf("unsupported output format: %q", format)
	}
}
