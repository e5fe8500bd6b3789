// Package domain provides typed identifiers shared across services.
//
// IDs are validated at construction so downstream code can trust their shape.
// Always construct via the Parse/Format functions at trust boundaries; direct
// casting bypasses validation.
package domain

import (
	"fmt"

	dErrors "campuspass/pkg/domain-errors"
)

// StudentID is the unique identifier of an enrolled student and, identically,
// the serial number of that student's pass. Wire and storage format:
// a 3-digit campus prefix followed by a 6-digit sequence, e.g. "207100001".
//
// Invariant: immutable once assigned; the sequence part lies in
// [SequenceFloor, SequenceCap].
type StudentID string

const (
	// SequenceFloor is the first sequence number issued for a campus.
	SequenceFloor = 100001
	// SequenceCap is the last issuable sequence number; allocation beyond it
	// fails rather than wrapping or rolling over to another campus.
	SequenceCap = 999999

	serialLength = 9
	prefixLength = 3
)

// ParseStudentID constructs a StudentID from external input.
//
// Errors: returns CodeInvalidInput when the value is not nine digits, carries
// an unknown campus prefix, or has a sequence outside the issuable range.
func ParseStudentID(s string) (StudentID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "serial number cannot be empty")
	}
	if len(s) != serialLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "serial number must be nine digits")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", dErrors.New(dErrors.CodeInvalidInput, "serial number must be nine digits")
		}
	}
	if _, ok := CampusForPrefix(s[:prefixLength]); !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown campus prefix")
	}
	seq := sequenceValue(s)
	if seq < SequenceFloor || seq > SequenceCap {
		return "", dErrors.New(dErrors.CodeInvalidInput, "serial sequence out of range")
	}
	return StudentID(s), nil
}

// FormatStudentID builds a StudentID from a campus and sequence number.
// The caller is responsible for keeping seq within the issuable range; the
// allocator enforces that before calling.
func FormatStudentID(campus Campus, seq int) StudentID {
	return StudentID(fmt.Sprintf("%s%06d", campus.Prefix(), seq))
}

// Campus returns the campus encoded in the ID's prefix.
func (s StudentID) Campus() (Campus, bool) {
	if len(s) != serialLength {
		return "", false
	}
	return CampusForPrefix(string(s[:prefixLength]))
}

// Sequence returns the numeric sequence part of the ID, 0 for malformed IDs.
func (s StudentID) Sequence() int {
	if len(s) != serialLength {
		return 0
	}
	return sequenceValue(string(s))
}

// String returns the wire representation of the ID.
func (s StudentID) String() string {
	return string(s)
}

func sequenceValue(s string) int {
	seq := 0
	for _, r := range s[prefixLength:] {
		if r < '0' || r > '9' {
			return 0
		}
		seq = seq*10 + int(r-'0')
	}
	return seq
}
