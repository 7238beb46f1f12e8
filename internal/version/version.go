// Package version holds the release versions of the rplus binaries. The
// daemon and the CLI are versioned independently; both follow semver.
package version

// RplusdVersion is the current rplusd daemon version.
// Format: major.minor.patch[-prerelease][+build]
const RplusdVersion = "0.1.0-dev"

// RplusctlVersion is the current rplusctl CLI version.
const RplusctlVersion = "0.1.0-dev"
