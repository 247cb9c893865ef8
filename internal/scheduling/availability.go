package scheduling

import (
	"sort"
	"time"

	"salonbook/backend/internal/domain"
)

const SlotLength = time.Hour

type Availability struct {
	Bookable     []domain.Service
	BlockedSlots []time.Time
}

// SlotsFor expands an occupied interval into the hourly slots it blocks: ceil(D/60)
// slots from its start. Partial hours block the whole slot.
func SlotsFor(iv Interval) []time.Time {
	d := iv.End.Sub(iv.Start)
	if d <= 0 {
		return nil
	}
	n := int((d + SlotLength - 1) / SlotLength)
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, iv.Start.Add(time.Duration(i)*SlotLength))
	}
	return out
}

// ComputeAvailability derives which catalog services can start at candidate and
// which hourly slots of the day are taken. booked must hold the staff member's
// appointments for candidate's day. The result depends only on the inputs.
//
// Slots are matched on the hour, so candidate is expected to fall on a full hour
// as bookings do. A candidate such as 13:30 steps over 14:00 without seeing it;
// callers reject such candidates before getting here.
func ComputeAvailability(hours BusinessHours, booked []Interval, catalog []domain.Service, candidate time.Time) Availability {
	loc := hours.loc()
	blocked := make(map[int64]time.Time)
	for _, iv := range booked {
		for _, slot := range SlotsFor(iv) {
			blocked[slot.UnixNano()] = slot.In(loc)
		}
	}

	slots := make([]time.Time, 0, len(blocked))
	for _, s := range blocked {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })

	closing := hours.Closing(candidate)
	bookable := make([]domain.Service, 0, len(catalog))
	for _, svc := range catalog {
		if fits(svc, candidate, closing, blocked) {
			bookable = append(bookable, svc)
		}
	}

	return Availability{Bookable: bookable, BlockedSlots: slots}
}

func fits(svc domain.Service, start, closing time.Time, blocked map[int64]time.Time) bool {
	if svc.DurationMinutes <= 0 {
		return false
	}
	end := start.Add(svc.Duration())
	if end.After(closing) {
		return false
	}
	for t := start; t.Before(end); t = t.Add(SlotLength) {
		if _, taken := blocked[t.UnixNano()]; taken {
			return false
		}
	}
	return true
}
