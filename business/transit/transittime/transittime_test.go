package transittime

import (
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestParsePacific(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{
			name:  "summer date gets daylight offset",
			value: "20240615 18:32",
			want:  time.Date(2024, 6, 15, 18, 32, 0, 0, time.FixedZone("PDT", -7*60*60)),
		},
		{
			name:  "winter date gets standard offset",
			value: "20240115 08:05",
			want:  time.Date(2024, 1, 15, 8, 5, 0, 0, time.FixedZone("PST", -8*60*60)),
		},
		{
			name:  "day before second sunday of march is standard time",
			value: "20240309 01:00",
			want:  time.Date(2024, 3, 9, 1, 0, 0, 0, time.FixedZone("PST", -8*60*60)),
		},
		{
			name:  "second sunday of march is daylight time",
			value: "20240310 01:00",
			want:  time.Date(2024, 3, 10, 1, 0, 0, 0, time.FixedZone("PDT", -7*60*60)),
		},
		{
			name:  "day before first sunday of november is daylight time",
			value: "20241102 23:59",
			want:  time.Date(2024, 11, 2, 23, 59, 0, 0, time.FixedZone("PDT", -7*60*60)),
		},
		{
			name:  "first sunday of november is standard time",
			value: "20241103 00:30",
			want:  time.Date(2024, 11, 3, 0, 30, 0, 0, time.FixedZone("PST", -8*60*60)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			got, err := ParsePacific(tt.value)
			is.NoErr(err)
			if !got.Equal(tt.want) {
				t.Errorf("ParsePacific(%q) = %v, want %v", tt.value, got, tt.want)
			}
			_, gotOffset := got.Zone()
			_, wantOffset := tt.want.Zone()
			is.Equal(gotOffset, wantOffset)
		})
	}
}

func TestParsePacificToUTC(t *testing.T) {
	is := is.New(t)
	got, err := ParsePacific("20240615 18:32")
	is.NoErr(err)
	is.Equal(got.UTC(), time.Date(2024, 6, 16, 1, 32, 0, 0, time.UTC))
}

func TestParsePacificRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "empty", value: ""},
		{name: "too short", value: "20240615 18:3"},
		{name: "too long", value: "20240615 18:32:00"},
		{name: "missing space separator", value: "20240615-18:32"},
		{name: "missing colon", value: "20240615 18332"},
		{name: "non numeric year", value: "2o240615 18:32"},
		{name: "month out of range", value: "20241315 18:32"},
		{name: "hour out of range", value: "20240615 25:32"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePacific(tt.value)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("ParsePacific(%q) error = %v, want ParseError", tt.value, err)
			}
		})
	}
}

func TestNthSunday(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		n     int
		want  int
	}{
		{year: 2024, month: time.March, n: 2, want: 10},
		{year: 2024, month: time.November, n: 1, want: 3},
		{year: 2025, month: time.March, n: 2, want: 9},
		{year: 2025, month: time.November, n: 1, want: 2},
		{year: 2026, month: time.March, n: 2, want: 8},
		{year: 2026, month: time.November, n: 1, want: 1},
	}
	for _, tt := range tests {
		if got := nthSunday(tt.year, tt.month, tt.n); got != tt.want {
			t.Errorf("nthSunday(%d, %v, %d) = %d, want %d", tt.year, tt.month, tt.n, got, tt.want)
		}
	}
}
