package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func span(id string, start time.Time, d time.Duration) Interval {
	iv := Interval{Start: start, End: start.Add(d)}
	if id != "" {
		iv.ID = uuid.MustParse(id)
	}
	return iv
}

func TestOverlaps(t *testing.T) {
	base := span("", at(2, 14, 0), time.Hour)

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{name: "identical", other: base, want: true},
		{name: "start inside", other: span("", at(2, 14, 30), time.Hour), want: true},
		{name: "end inside", other: span("", at(2, 13, 30), time.Hour), want: true},
		{name: "contains", other: span("", at(2, 13, 0), 3*time.Hour), want: true},
		{name: "contained", other: span("", at(2, 14, 15), 15*time.Minute), want: true},
		{name: "touching after", other: span("", at(2, 15, 0), time.Hour), want: false},
		{name: "touching before", other: span("", at(2, 13, 0), time.Hour), want: false},
		{name: "disjoint", other: span("", at(2, 17, 0), time.Hour), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(base, tt.other); got != tt.want {
				t.Fatalf("Overlaps(base, other) = %v, want %v", got, tt.want)
			}
			if got := Overlaps(tt.other, base); got != tt.want {
				t.Fatalf("Overlaps(other, base) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasConflict_Symmetric(t *testing.T) {
	starts := []int{10, 11, 12, 13, 14, 15}
	durations := []time.Duration{30 * time.Minute, time.Hour, 90 * time.Minute, 3 * time.Hour}

	for _, sa := range starts {
		for _, da := range durations {
			for _, sb := range starts {
				for _, db := range durations {
					a := span("", at(2, sa, 0), da)
					b := span("", at(2, sb, 0), db)
					ab := HasConflict([]Interval{a}, b, uuid.Nil)
					ba := HasConflict([]Interval{b}, a, uuid.Nil)
					if ab != ba {
						t.Fatalf("asymmetric conflict for %v-%v and %v-%v", a.Start, a.End, b.Start, b.End)
					}
				}
			}
		}
	}
}

func TestConflicts_ExcludesOwnInterval(t *testing.T) {
	own := span("00000000-0000-0000-0000-000000000001", at(2, 14, 0), time.Hour)
	other := span("00000000-0000-0000-0000-000000000002", at(2, 16, 0), time.Hour)
	existing := []Interval{own, other}

	if HasConflict(existing, span("", at(2, 14, 0), time.Hour), own.ID) {
		t.Fatalf("editing in place must not conflict with itself")
	}
	if !HasConflict(existing, span("", at(2, 14, 0), time.Hour), uuid.Nil) {
		t.Fatalf("expected conflict without exclusion")
	}

	got := Conflicts(existing, span("", at(2, 14, 30), 2*time.Hour), own.ID)
	if len(got) != 1 || got[0].ID != other.ID {
		t.Fatalf("conflicts = %v, want only %s", got, other.ID)
	}
}
