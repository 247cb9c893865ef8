package scheduling

import (
	"errors"
	"fmt"
	"time"
)

// BusinessHours is the salon-wide opening policy. Appointments start on a whole hour
// between OpenHour and LastStartHour and end no later than CloseHour, all in Location.
type BusinessHours struct {
	Location      *time.Location
	OpenHour      int
	LastStartHour int
	CloseHour     int
}

func DefaultBusinessHours() BusinessHours {
	return BusinessHours{
		Location:      time.Local,
		OpenHour:      10,
		LastStartHour: 18,
		CloseHour:     19,
	}
}

func (h BusinessHours) Validate() error {
	if h.OpenHour < 0 || h.CloseHour > 24 {
		return errors.New("business hours must be within a day")
	}
	if h.OpenHour > h.LastStartHour {
		return errors.New("open hour must not be after last start hour")
	}
	if h.LastStartHour >= h.CloseHour {
		return errors.New("last start hour must be before close hour")
	}
	return nil
}

func (h BusinessHours) loc() *time.Location {
	if h.Location == nil {
		return time.Local
	}
	return h.Location
}

// DayBounds returns [midnight, next midnight) of t's calendar day in the salon location.
func (h BusinessHours) DayBounds(t time.Time) (time.Time, time.Time) {
	local := t.In(h.loc())
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, h.loc())
	return start, start.AddDate(0, 0, 1)
}

// Closing is the latest permitted end instant on t's calendar day. It is the
// CloseHour wall clock reading, which is not midnight plus CloseHour hours on
// daylight saving transition days.
func (h BusinessHours) Closing(t time.Time) time.Time {
	l := t.In(h.loc())
	return time.Date(l.Year(), l.Month(), l.Day(), h.CloseHour, 0, 0, 0, h.loc())
}

// Candidate builds the local instant for a calendar query. clock is "HH:mm".
func (h BusinessHours) Candidate(year, month, day int, clock string) (time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid month %d", month)
	}
	hm, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid hour format %q", clock)
	}
	t := time.Date(year, time.Month(month), day, hm.Hour(), hm.Minute(), 0, 0, h.loc())
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("invalid date %04d-%02d-%02d", year, month, day)
	}
	return t, nil
}

type Rule string

const (
	RuleAlignment     Rule = "alignment"
	RuleBusinessHours Rule = "business_hours"
	RulePast          Rule = "past"
)

type Violation struct {
	Rule    Rule
	Message string
}

// Check returns every schedule rule broken by an appointment of the given duration
// starting at start. An empty result means the slot is acceptable.
func (h BusinessHours) Check(start time.Time, duration time.Duration, now time.Time) []Violation {
	var out []Violation
	local := start.In(h.loc())

	if local.Minute() != 0 || local.Second() != 0 || local.Nanosecond() != 0 {
		out = append(out, Violation{
			Rule:    RuleAlignment,
			Message: "appointment must start on a full hour",
		})
	}
	if local.Hour() < h.OpenHour || local.Hour() > h.LastStartHour {
		out = append(out, Violation{
			Rule:    RuleBusinessHours,
			Message: fmt.Sprintf("appointment must start between %02d:00 and %02d:00", h.OpenHour, h.LastStartHour),
		})
	}
	if end := start.Add(duration); end.After(h.Closing(start)) {
		out = append(out, Violation{
			Rule:    RuleBusinessHours,
			Message: fmt.Sprintf("appointment must end by %02d:00", h.CloseHour),
		})
	}
	if start.Before(now) {
		out = append(out, Violation{
			Rule:    RulePast,
			Message: "appointment cannot be scheduled in the past",
		})
	}
	return out
}
