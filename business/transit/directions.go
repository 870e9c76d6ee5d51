package transit

import "strings"

// SplitStopId splits a possibly comma-joined consolidated stop id into its
// trimmed underlying ids, dropping empty pieces.
func SplitStopId(consolidatedStopId string) []string {
	pieces := strings.Split(consolidatedStopId, ",")
	ids := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		id := strings.TrimSpace(piece)
		if len(id) > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// ResolveDirections determines, for each direction a consolidated stop serves
// on a route, the single underlying stop id to use when querying predictions.
// Directions are scanned in upstream traversal order and the first candidate
// id found in a direction's stop set wins; at most one entry is produced per
// distinct direction value. Returns NotFoundError when the stop appears in no
// direction of the route.
func ResolveDirections(consolidatedStopId string, routeDirections []RouteDirection) ([]DirectionEntry, error) {
	candidates := SplitStopId(consolidatedStopId)

	var entries []DirectionEntry
	resolved := make(map[string]bool)
	for _, routeDirection := range routeDirections {
		if resolved[routeDirection.Direction] {
			continue
		}
		members := make(map[string]bool, len(routeDirection.StopIds))
		for _, id := range routeDirection.StopIds {
			members[id] = true
		}
		for _, candidate := range candidates {
			if members[candidate] {
				entries = append(entries, DirectionEntry{
					Direction:   routeDirection.Direction,
					Destination: routeDirection.Destination,
					StopId:      candidate,
				})
				resolved[routeDirection.Direction] = true
				break
			}
		}
	}

	if len(entries) == 0 {
		return nil, &NotFoundError{What: "stop " + consolidatedStopId + " on route"}
	}
	return entries, nil
}
