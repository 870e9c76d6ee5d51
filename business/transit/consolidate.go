package transit

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// stopGroup collects the underlying stop ids sharing one display name,
// preserving first-seen order.
type stopGroup struct {
	name    string
	lat     float64
	lon     float64
	ids     []string
	idsSeen map[string]bool
}

func (g *stopGroup) addId(id string) {
	if g.idsSeen[id] {
		return
	}
	g.idsSeen[id] = true
	g.ids = append(g.ids, id)
}

// ConsolidateStops groups rawStops by exact display name and produces one
// ConsolidatedStop per name. A name served by several underlying stop ids gets
// a comma-joined id in first-seen order, with coordinates taken from the first
// member. The returned index maps each name to its ordered underlying ids.
// Output is sorted by name. The transform is pure and idempotent.
func ConsolidateStops(rawStops []RawStop) ([]ConsolidatedStop, map[string][]string) {
	// association list plus hash index keeps grouping insertion ordered
	var order []string
	groups := make(map[string]*stopGroup)

	for _, raw := range rawStops {
		group, ok := groups[raw.Name]
		if !ok {
			group = &stopGroup{
				name:    raw.Name,
				lat:     raw.Lat,
				lon:     raw.Lon,
				idsSeen: make(map[string]bool),
			}
			groups[raw.Name] = group
			order = append(order, raw.Name)
		}
		group.addId(raw.Id)
	}

	consolidated := make([]ConsolidatedStop, 0, len(order))
	nameToIds := make(map[string][]string, len(order))
	for _, name := range order {
		group := groups[name]
		consolidated = append(consolidated, ConsolidatedStop{
			Id:   strings.Join(group.ids, ","),
			Name: group.name,
			Lat:  group.lat,
			Lon:  group.lon,
		})
		nameToIds[name] = group.ids
	}

	collator := collate.New(language.AmericanEnglish)
	sort.SliceStable(consolidated, func(i, j int) bool {
		return collator.CompareString(consolidated[i].Name, consolidated[j].Name) < 0
	})

	return consolidated, nameToIds
}
