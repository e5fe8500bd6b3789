package domain

import dErrors "campuspass/pkg/domain-errors"

// Campus is the enrollment location of a student. It determines the 3-digit
// prefix of every StudentID allocated for that campus.
//
// Usage: construct via ParseCampus at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type Campus string

// Supported campuses.
const (
	CampusLondon     Campus = "london"
	CampusBristol    Campus = "bristol"
	CampusSheffield  Campus = "sheffield"
	CampusBirmingham Campus = "birmingham"
)

// campusPrefixes is the single source of truth for campus serial prefixes.
// Prefixes are fixed forever: issued IDs are immutable, so a prefix can never
// be reassigned or changed.
var campusPrefixes = map[Campus]string{
	CampusLondon:     "207",
	CampusBristol:    "117",
	CampusSheffield:  "114",
	CampusBirmingham: "121",
}

// ParseCampus constructs a Campus from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseCampus(s string) (Campus, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "campus cannot be empty")
	}
	c := Campus(s)
	if !c.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid campus")
	}
	return c, nil
}

// IsValid checks if the campus is one of the supported enum values.
func (c Campus) IsValid() bool {
	_, ok := campusPrefixes[c]
	return ok
}

// Prefix returns the 3-digit serial prefix for the campus, or "" when invalid.
func (c Campus) Prefix() string {
	return campusPrefixes[c]
}

// String returns the string representation of the campus.
func (c Campus) String() string {
	return string(c)
}

// CampusForPrefix resolves a 3-digit prefix back to its campus.
func CampusForPrefix(prefix string) (Campus, bool) {
	for campus, p := range campusPrefixes {
		if p == prefix {
			return campus, true
		}
	}
	return "", false
}
