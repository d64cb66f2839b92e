// Package version reports the build identity of the ripe binary.
//
// Release builds set Version, Commit and Date through -ldflags. Plain
// `go install` builds fall back to the module version and VCS stamps recorded
// in runtime/debug.BuildInfo.
package version
