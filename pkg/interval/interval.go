package interval

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange is returned when an interval's end does not come after its start.
var ErrInvalidRange = errors.New("end time must be after start time")

// Interval is a half-open time range [Start, End). End is exclusive, so two
// intervals that touch at an endpoint do not overlap.
type Interval struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (Interval, error) {
	if !end.After(start) {
		return Interval{}, ErrInvalidRange
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether the two half-open intervals share any instant.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains reports whether t falls inside the interval.
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start.Format(time.RFC3339), i.End.Format(time.RFC3339))
}
