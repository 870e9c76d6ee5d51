package transit

import (
	"errors"
	"reflect"
	"testing"
)

func TestResolveDirections(t *testing.T) {
	tests := []struct {
		name               string
		consolidatedStopId string
		routeDirections    []RouteDirection
		want               []DirectionEntry
		wantNotFound       bool
	}{
		{
			name:               "consolidated id resolves one member per direction",
			consolidatedStopId: "51234,51235",
			routeDirections: []RouteDirection{
				{Direction: "To SF", Destination: "To SF", StopIds: []string{"50001", "51235"}},
				{Direction: "To Eastmont", Destination: "To Eastmont", StopIds: []string{"51234", "50002"}},
			},
			want: []DirectionEntry{
				{Direction: "To SF", Destination: "To SF", StopId: "51235"},
				{Direction: "To Eastmont", Destination: "To Eastmont", StopId: "51234"},
			},
		},
		{
			name:               "first candidate wins when direction serves both members",
			consolidatedStopId: "51234,51235",
			routeDirections: []RouteDirection{
				{Direction: "To SF", Destination: "To SF", StopIds: []string{"51235", "51234"}},
			},
			want: []DirectionEntry{
				{Direction: "To SF", Destination: "To SF", StopId: "51234"},
			},
		},
		{
			name:               "single id resolves single direction",
			consolidatedStopId: "55558",
			routeDirections: []RouteDirection{
				{Direction: "To San Francisco", Destination: "To San Francisco", StopIds: []string{"55558"}},
				{Direction: "To Richmond", Destination: "To Richmond", StopIds: []string{"55559"}},
			},
			want: []DirectionEntry{
				{Direction: "To San Francisco", Destination: "To San Francisco", StopId: "55558"},
			},
		},
		{
			name:               "repeated direction value keeps first entry only",
			consolidatedStopId: "51234",
			routeDirections: []RouteDirection{
				{Direction: "Loop", Destination: "Downtown Loop", StopIds: []string{"51234"}},
				{Direction: "Loop", Destination: "Uptown Loop", StopIds: []string{"51234"}},
			},
			want: []DirectionEntry{
				{Direction: "Loop", Destination: "Downtown Loop", StopId: "51234"},
			},
		},
		{
			name:               "whitespace around ids is trimmed",
			consolidatedStopId: "51234, 51235",
			routeDirections: []RouteDirection{
				{Direction: "To SF", Destination: "To SF", StopIds: []string{"51235"}},
			},
			want: []DirectionEntry{
				{Direction: "To SF", Destination: "To SF", StopId: "51235"},
			},
		},
		{
			name:               "stop absent from every direction",
			consolidatedStopId: "99999",
			routeDirections: []RouteDirection{
				{Direction: "To SF", Destination: "To SF", StopIds: []string{"51235"}},
			},
			wantNotFound: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveDirections(tt.consolidatedStopId, tt.routeDirections)
			if tt.wantNotFound {
				var notFound *NotFoundError
				if !errors.As(err, &notFound) {
					t.Errorf("ResolveDirections() error = %v, want NotFoundError", err)
				}
				return
			}
			if err != nil {
				t.Errorf("ResolveDirections() unexpected error: %v", err)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveDirections() = %v, want %v", got, tt.want)
			}
		})
	}
}
