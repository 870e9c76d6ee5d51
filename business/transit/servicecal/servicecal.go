// Package servicecal determines which service schedule the agencies run on a
// given date.
package servicecal

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// ServiceSchedule is the timetable variant in effect on a date.
type ServiceSchedule int

const (
	Weekday ServiceSchedule = iota
	Saturday
	SundayHoliday
)

func (s ServiceSchedule) String() string {
	switch s {
	case Saturday:
		return "saturday"
	case SundayHoliday:
		return "sunday-holiday"
	default:
		return "weekday"
	}
}

// Calendar holds the holidays the agencies observe; holidays run on the
// sunday timetable.
type Calendar struct {
	calendar *cal.BusinessCalendar
}

// MakeCalendar builds a Calendar with the observed holiday set.
func MakeCalendar() *Calendar {
	calendar := cal.NewBusinessCalendar()
	calendar.AddHoliday(
		us.NewYear,
		us.MlkDay,
		us.MemorialDay,
		us.IndependenceDay,
		us.LaborDay,
		us.ThanksgivingDay,
		us.ChristmasDay,
	)
	return &Calendar{calendar: calendar}
}

// ScheduleFor returns the service schedule in effect at the given time.
func (c *Calendar) ScheduleFor(at time.Time) ServiceSchedule {
	if at.Weekday() == time.Sunday || c.isHoliday(at) {
		return SundayHoliday
	}
	if at.Weekday() == time.Saturday {
		return Saturday
	}
	return Weekday
}

func (c *Calendar) isHoliday(at time.Time) bool {
	_, observed, _ := c.calendar.IsHoliday(at)
	return observed
}
