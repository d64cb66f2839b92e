// Package validate provides shared input validation helpers.
package validate

import "regexp"

var (
	// asnRegexp matches an autonomous system number in registry notation.
	asnRegexp = regexp.MustCompile(`(?i)^AS[0-9]{1,10}$`)

	// domainRegexp validates RFC-compliant hostnames.
	domainRegexp = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)
)

// IsASN reports whether s is an ASN such as "AS3333", case-insensitively.
func IsASN(s string) bool {
	return asnRegexp.MatchString(s)
}

// IsDomain reports whether s is a valid RFC-compliant hostname.
func IsDomain(s string) bool {
	return domainRegexp.MatchString(s)
}
