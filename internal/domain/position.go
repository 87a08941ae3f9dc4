package domain

import (
	"fmt"
	"time"
)

// DateFormat is the layout used to read and print movement dates.
const DateFormat = "2006-01-02"

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current day.
func Today() time.Time {
	return Day(time.Now())
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// Position is the ordering key of a movement: its date, then its order
// within that date.
type Position struct {
	Date  time.Time
	Order int
}

// NewPosition returns a position with a normalized date.
func NewPosition(date time.Time, order int) Position {
	return Position{Date: Day(date), Order: order}
}

// EndOfDay returns the position after every movement of date.
func EndOfDay(date time.Time) Position {
	return Position{Date: Day(date), Order: int(^uint(0) >> 1)}
}

// StartOfDay returns the position before every movement of date.
func StartOfDay(date time.Time) Position {
	return Position{Date: Day(date), Order: -1}
}

// Compare returns -1, 0 or 1 when p is before, equal to or after o.
func (p Position) Compare(o Position) int {
	switch {
	case p.Date.Before(o.Date):
		return -1
	case p.Date.After(o.Date):
		return 1
	case p.Order < o.Order:
		return -1
	case p.Order > o.Order:
		return 1
	default:
		return 0
	}
}

// Before reports whether p sorts strictly before o.
func (p Position) Before(o Position) bool { return p.Compare(o) < 0 }

// After reports whether p sorts strictly after o.
func (p Position) After(o Position) bool { return p.Compare(o) > 0 }

// Equal reports whether p and o are the same position.
func (p Position) Equal(o Position) bool { return p.Compare(o) == 0 }

func (p Position) String() string {
	return fmt.Sprintf("%s#%d", p.Date.Format(DateFormat), p.Order)
}

// MinPosition returns the earlier of a and b.
func MinPosition(a, b Position) Position {
	if b.Before(a) {
		return b
	}
	return a
}

// MaxPosition returns the later of a and b.
func MaxPosition(a, b Position) Position {
	if b.After(a) {
		return b
	}
	return a
}
