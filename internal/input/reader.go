// Package input reads lookup inputs from a stream, one identifier per line.
package input

import (
	"bufio"
	"io"
	"strings"
)

// Read reads lines from r and returns the identifiers they carry, in order.
// Leading and trailing whitespace is trimmed. Everything after a '#' is a
// comment, so blank lines, comment lines and trailing comments are dropped.
func Read(r io.Reader) ([]string, error) {
	var inputs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line != "" {
			inputs = append(inputs, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return inputs, nil
}
