package output

import (
	"io"
	"regexp"
	"strings"
)

// defangDotRe matches every dot, which covers IPv4 addresses, CIDR blocks and domains.
var defangDotRe = regexp.MustCompile(`\.`)

// defangSchemeRe matches http:// and https:// scheme prefixes anywhere in a line.
var defangSchemeRe = regexp.MustCompile(`(?i)\bhttps?://`)

// Defang neutralises dots and http(s) schemes in s so that addresses and
// links pasted into reports are not clickable.
// Example: "193.0.0.0/21 https://www.ripe.net" → "193[.]0[.]0[.]0/21 hxxps://www[.]ripe[.]net".
func Defang(s string) string {
	s = defangSchemeRe.ReplaceAllStringFunc(s, func(match string) string {
		return strings.Replace(strings.ToLower(match), "http", "hxxp", 1)
	})
	return defangDotRe.ReplaceAllString(s, "[.]")
}

// DefangWriter wraps an io.Writer and applies Defang on every Write call.
type DefangWriter struct {
	Inner io.Writer
}

// Write implements io.Writer; it defangs p before forwarding to the inner writer.
func (d *DefangWriter) Write(p []byte) (n int, err error) {
	written, err := d.Inner.Write([]byte(Defang(string(p))))
	// Return the original length so callers don't think a short write occurred due to expansion.
	if err != nil {
		return written, err
	}
	return len(p), nil
}
