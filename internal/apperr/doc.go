// Package apperr defines shared error sentinels for ripe.
// It is a leaf package with no internal imports, so both the registry
// client and the CLI can match on the sentinels without import cycles.
package apperr
