package progress

import (
	"errors"
	"fmt"
	"strings"
)

// Status represents how far along a tracked identifier is.
type Status string

const (
	// StatusNone indicates no progress has been made.
	StatusNone Status = "NONE"
	// StatusPartial indicates some, but not all, of the work is done.
	StatusPartial Status = "PARTIAL"
	// StatusComplete indicates the work is finished.
	StatusComplete Status = "COMPLETE"
)

// ErrInvalidStatus is returned when a string does not name a known Status.
var ErrInvalidStatus = errors.New("invalid status")

// String returns the string representation of the Status.
func (s Status) String() string { return string(s) }

// IsValid reports whether s is one of the three known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusNone, StatusPartial, StatusComplete:
		return true
	default:
		return false
	}
}

// AllStatuses returns every Status value. Tallying each of them over the same
// collection partitions its entries.
func AllStatuses() []Status {
	return []Status{StatusNone, StatusPartial, StatusComplete}
}

// ParseStatus converts a string to a Status. Matching is case-insensitive and
// "SOME" is accepted as an alias for StatusPartial.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NONE":
		return StatusNone, nil
	case "PARTIAL", "SOME":
		return StatusPartial, nil
	case "COMPLETE":
		return StatusComplete, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}
