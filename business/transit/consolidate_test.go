package transit

import (
	"reflect"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestConsolidateStops(t *testing.T) {
	tests := []struct {
		name      string
		rawStops  []RawStop
		want      []ConsolidatedStop
		wantIndex map[string][]string
	}{
		{
			name:      "no stops",
			rawStops:  nil,
			want:      []ConsolidatedStop{},
			wantIndex: map[string][]string{},
		},
		{
			name: "single stop keeps its own id",
			rawStops: []RawStop{
				{Id: "55558", Name: "Broadway & 14th St", Lat: 37.80, Lon: -122.27, Direction: "To San Francisco"},
			},
			want: []ConsolidatedStop{
				{Id: "55558", Name: "Broadway & 14th St", Lat: 37.80, Lon: -122.27},
			},
			wantIndex: map[string][]string{
				"Broadway & 14th St": {"55558"},
			},
		},
		{
			name: "shared name joins ids in first seen order with first member coordinates",
			rawStops: []RawStop{
				{Id: "51234", Name: "MacArthur Blvd & 73rd Ave", Lat: 37.76, Lon: -122.17, Direction: "To Eastmont"},
				{Id: "50011", Name: "Bancroft Ave & 73rd Ave", Lat: 37.75, Lon: -122.16, Direction: "To Eastmont"},
				{Id: "51235", Name: "MacArthur Blvd & 73rd Ave", Lat: 37.77, Lon: -122.18, Direction: "To San Francisco"},
			},
			want: []ConsolidatedStop{
				{Id: "50011", Name: "Bancroft Ave & 73rd Ave", Lat: 37.75, Lon: -122.16},
				{Id: "51234,51235", Name: "MacArthur Blvd & 73rd Ave", Lat: 37.76, Lon: -122.17},
			},
			wantIndex: map[string][]string{
				"Bancroft Ave & 73rd Ave":   {"50011"},
				"MacArthur Blvd & 73rd Ave": {"51234", "51235"},
			},
		},
		{
			name: "duplicate id within a name group recorded once",
			rawStops: []RawStop{
				{Id: "55558", Name: "Broadway & 14th St", Lat: 37.80, Lon: -122.27, Direction: "To San Francisco"},
				{Id: "55558", Name: "Broadway & 14th St", Lat: 37.80, Lon: -122.27, Direction: "To Richmond"},
			},
			want: []ConsolidatedStop{
				{Id: "55558", Name: "Broadway & 14th St", Lat: 37.80, Lon: -122.27},
			},
			wantIndex: map[string][]string{
				"Broadway & 14th St": {"55558"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, gotIndex := ConsolidateStops(tt.rawStops)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ConsolidateStops() = %v, want %v", got, tt.want)
			}
			if !reflect.DeepEqual(gotIndex, tt.wantIndex) {
				t.Errorf("ConsolidateStops() index = %v, want %v", gotIndex, tt.wantIndex)
			}
		})
	}
}

func TestConsolidateStopsIdempotent(t *testing.T) {
	is := is.New(t)
	rawStops := []RawStop{
		{Id: "51234", Name: "MacArthur Blvd & 73rd Ave", Lat: 37.76, Lon: -122.17, Direction: "To Eastmont"},
		{Id: "51235", Name: "MacArthur Blvd & 73rd Ave", Lat: 37.77, Lon: -122.18, Direction: "To San Francisco"},
		{Id: "50011", Name: "Bancroft Ave & 73rd Ave", Lat: 37.75, Lon: -122.16, Direction: "To Eastmont"},
	}
	first, firstIndex := ConsolidateStops(rawStops)
	second, secondIndex := ConsolidateStops(rawStops)
	is.Equal(first, second)
	is.Equal(firstIndex, secondIndex)
}

func TestMinutesUntil(t *testing.T) {
	now := time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		arrival time.Time
		want    int
	}{
		{name: "arrival in the past clamps to zero", arrival: now.Add(-5 * time.Minute), want: 0},
		{name: "arrival now", arrival: now, want: 0},
		{name: "ninety seconds rounds to two", arrival: now.Add(90 * time.Second), want: 2},
		{name: "eighty seconds rounds to one", arrival: now.Add(80 * time.Second), want: 1},
		{name: "ten minutes", arrival: now.Add(10 * time.Minute), want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MinutesUntil(now, tt.arrival); got != tt.want {
				t.Errorf("MinutesUntil() = %d, want %d", got, tt.want)
			}
		})
	}
}
