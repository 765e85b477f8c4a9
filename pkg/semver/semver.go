// SPDX-License-Identifier: MPL-2.0

// Package semver implements the semantic version value type used for
// project versions.
//
// A Version is immutable: parsing produces a value, and Bump returns a new
// value rather than mutating in place. Precedence follows the SemVer 2.0.0
// rules: the numeric triple is compared numerically, a version with a
// prerelease sorts lower than the same triple without one, prerelease
// identifiers are compared one by one (numeric identifiers numerically and
// lower than alphanumeric ones), and build metadata never participates in
// precedence.
package semver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// BumpLevel selects which component of the numeric triple a bump increments.
type BumpLevel string

const (
	// BumpMajor increments MAJOR and resets MINOR and PATCH.
	BumpMajor BumpLevel = "major"
	// BumpMinor increments MINOR and resets PATCH.
	BumpMinor BumpLevel = "minor"
	// BumpPatch increments PATCH. This is the default level.
	BumpPatch BumpLevel = "patch"
)

// ParseBumpLevel validates a bump level string. An empty string selects
// BumpPatch.
func ParseBumpLevel(s string) (BumpLevel, error) {
	switch BumpLevel(s) {
	case "":
		return BumpPatch, nil
	case BumpMajor, BumpMinor, BumpPatch:
		return BumpLevel(s), nil
	}
	return "", fmt.Errorf("invalid bump level %q: must be one of major, minor, patch", s)
}

// FormatError reports a string that does not conform to the
// MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD] grammar.
type FormatError struct {
	// Input is the rejected version string.
	Input string
	// Reason describes which part of the grammar was violated.
	Reason string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid semantic version %q: %s", e.Input, e.Reason)
}

// Version is a parsed semantic version. The zero value is "0.0.0".
type Version struct {
	// Major, Minor, Patch form the numeric triple.
	Major int
	Minor int
	Patch int
	// Prerelease holds the dot-separated prerelease identifiers, in order.
	// Empty means no prerelease.
	Prerelease []string
	// Build holds the dot-separated build metadata identifiers, in order.
	// Build metadata is preserved verbatim but ignored in precedence.
	Build []string
}

// semverRegex splits a version string into its five parts. The numeric
// fields forbid leading zeros; identifier lists are validated separately.
var semverRegex = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:-([0-9A-Za-z\-.]+))?(?:\+([0-9A-Za-z\-.]+))?$`)

// Parse parses a strict SemVer string. It returns a *FormatError when the
// text does not match the grammar.
func Parse(s string) (Version, error) {
	matches := semverRegex.FindStringSubmatch(s)
	if matches == nil {
		return Version{}, &FormatError{Input: s, Reason: "expected MAJOR.MINOR.PATCH with optional -PRERELEASE and +BUILD"}
	}

	// The regex guarantees the triple is numeric without leading zeros.
	major, _ := strconv.Atoi(matches[1])
	minor, _ := strconv.Atoi(matches[2])
	patch, _ := strconv.Atoi(matches[3])

	v := Version{Major: major, Minor: minor, Patch: patch}

	if matches[4] != "" {
		idents := strings.Split(matches[4], ".")
		for _, id := range idents {
			if err := checkPrereleaseIdent(id); err != nil {
				return Version{}, &FormatError{Input: s, Reason: err.Error()}
			}
		}
		v.Prerelease = idents
	}

	if matches[5] != "" {
		idents := strings.Split(matches[5], ".")
		for _, id := range idents {
			if id == "" {
				return Version{}, &FormatError{Input: s, Reason: "build metadata contains an empty identifier"}
			}
		}
		v.Build = idents
	}

	return v, nil
}

// MustParse parses a version string and panics on failure. Reserved for
// literals in tests and defaults.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsValid reports whether s parses as a strict semantic version.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

func checkPrereleaseIdent(id string) error {
	if id == "" {
		return fmt.Errorf("prerelease contains an empty identifier")
	}
	if isNumeric(id) && len(id) > 1 && id[0] == '0' {
		return fmt.Errorf("prerelease identifier %q has a leading zero", id)
	}
	return nil
}

func isNumeric(id string) bool {
	for _, c := range id {
		if c < '0' || c > '9' {
			return false
		}
	}
	return id != ""
}

// String renders the version back to its canonical textual form. A parsed
// version renders to exactly the string it was parsed from.
func (v Version) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d.%d.%d", v.Major, v.Minor, v.Patch)
	if len(v.Prerelease) > 0 {
		sb.WriteString("-")
		sb.WriteString(strings.Join(v.Prerelease, "."))
	}
	if len(v.Build) > 0 {
		sb.WriteString("+")
		sb.WriteString(strings.Join(v.Build, "."))
	}
	return sb.String()
}

// Compare compares two versions by SemVer precedence.
// Returns -1 if v < other, 0 if equal, 1 if v > other.
// Build metadata is ignored.
func (v Version) Compare(other Version) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, other.Patch); c != 0 {
		return c
	}

	// Same triple: a prerelease sorts below the release.
	switch {
	case len(v.Prerelease) == 0 && len(other.Prerelease) == 0:
		return 0
	case len(v.Prerelease) == 0:
		return 1
	case len(other.Prerelease) == 0:
		return -1
	}

	return comparePrerelease(v.Prerelease, other.Prerelease)
}

// Bump returns a new version with the requested component incremented and
// lower components reset to zero. Any prerelease and build metadata on the
// source version is discarded.
func (v Version) Bump(level BumpLevel) (Version, error) {
	switch level {
	case BumpMajor:
		return Version{Major: v.Major + 1}, nil
	case BumpMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}, nil
	case BumpPatch, "":
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}, nil
	}
	return Version{}, fmt.Errorf("invalid bump level %q: must be one of major, minor, patch", level)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// comparePrerelease compares prerelease identifier lists per SemVer:
// numeric identifiers compare numerically and sort below alphanumeric
// ones; when a common prefix is equal, the list with fewer identifiers
// has lower precedence.
func comparePrerelease(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareIdent(a[i], b[i]); c != 0 {
			return c
		}
	}
	return compareInt(len(a), len(b))
}

func compareIdent(a, b string) int {
	aNum, bNum := isNumeric(a), isNumeric(b)
	switch {
	case aNum && bNum:
		// Leading zeros are rejected at parse time, so numeric
		// identifiers can be compared by length then lexically.
		if c := compareInt(len(a), len(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case aNum:
		return -1
	case bNum:
		return 1
	}
	return strings.Compare(a, b)
}
