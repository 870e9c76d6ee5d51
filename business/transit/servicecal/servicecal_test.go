package servicecal

import (
	"testing"
	"time"
)

func TestScheduleFor(t *testing.T) {
	calendar := MakeCalendar()
	tests := []struct {
		name string
		at   time.Time
		want ServiceSchedule
	}{
		{name: "tuesday", at: time.Date(2024, 6, 18, 9, 0, 0, 0, time.UTC), want: Weekday},
		{name: "saturday", at: time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC), want: Saturday},
		{name: "sunday", at: time.Date(2024, 6, 16, 9, 0, 0, 0, time.UTC), want: SundayHoliday},
		{name: "independence day on a thursday", at: time.Date(2024, 7, 4, 9, 0, 0, 0, time.UTC), want: SundayHoliday},
		{name: "christmas on a wednesday", at: time.Date(2024, 12, 25, 9, 0, 0, 0, time.UTC), want: SundayHoliday},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calendar.ScheduleFor(tt.at); got != tt.want {
				t.Errorf("ScheduleFor(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestServiceScheduleString(t *testing.T) {
	tests := []struct {
		schedule ServiceSchedule
		want     string
	}{
		{schedule: Weekday, want: "weekday"},
		{schedule: Saturday, want: "saturday"},
		{schedule: SundayHoliday, want: "sunday-holiday"},
	}
	for _, tt := range tests {
		if got := tt.schedule.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
