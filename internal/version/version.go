package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Version is the service version. Overridden at build time with
// -ldflags "-X github.com/hrygo/todoassist/internal/version.Version=x.y.z".
var Version = "0.1.0"

// DevVersion is the version reported in dev mode.
var DevVersion = "0.1.0"

func GetCurrentVersion(mode string) string {
	if mode == "dev" || mode == "demo" {
		return DevVersion
	}
	return Version
}

// canonical prefixes v so semver accepts "1.2.3" as well as "v1.2.3".
func canonical(version string) string {
	return "v" + strings.TrimPrefix(version, "v")
}

// IsValid reports whether version is a semantic version, with or without
// a leading v.
func IsValid(version string) bool {
	return semver.IsValid(canonical(version))
}

// GetMinorVersion returns e.g. "0.1" for "0.1.3".
func GetMinorVersion(version string) string {
	return strings.TrimPrefix(semver.MajorMinor(canonical(version)), "v")
}

// IsVersionGreaterOrEqualThan reports whether version >= target.
func IsVersionGreaterOrEqualThan(version, target string) bool {
	return semver.Compare(canonical(version), canonical(target)) >= 0
}

// IsVersionGreaterThan reports whether version > target.
func IsVersionGreaterThan(version, target string) bool {
	return semver.Compare(canonical(version), canonical(target)) > 0
}
