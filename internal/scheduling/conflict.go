package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Interval is a staff member's occupancy [Start, End).
type Interval struct {
	ID    uuid.UUID
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals share any instant. Touching
// endpoints do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Conflicts returns the existing intervals that overlap candidate, skipping the one
// whose ID equals exclude.
func Conflicts(existing []Interval, candidate Interval, exclude uuid.UUID) []Interval {
	var out []Interval
	for _, e := range existing {
		if exclude != uuid.Nil && e.ID == exclude {
			continue
		}
		if Overlaps(candidate, e) {
			out = append(out, e)
		}
	}
	return out
}

func HasConflict(existing []Interval, candidate Interval, exclude uuid.UUID) bool {
	return len(Conflicts(existing, candidate, exclude)) > 0
}
