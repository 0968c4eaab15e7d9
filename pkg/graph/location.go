package graph

import (
	"sort"
	"strings"

	"github.com/OFFIS-RIT/plotline/backend/pkg/common"
	"github.com/OFFIS-RIT/plotline/backend/pkg/lexicon"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"
	"github.com/OFFIS-RIT/plotline/backend/pkg/text"
)

func locationImportance(events, important int) float64 {
	return min((float64(events)*0.6+float64(important)*0.4)/10, 1.0)
}

func classifyLocation(name string, types []lexicon.Category) common.LocationType {
	for _, t := range types {
		for _, kw := range t.Keywords {
			if kw != "" && strings.Contains(name, kw) {
				return common.LocationType(t.Name)
			}
		}
	}
	return common.LocationUnknown
}

// mapEventsToLocations lists for every location the events whose
// description names it.
func mapEventsToLocations(events []common.Event, locations []common.Location) map[string][]common.LocationEvent {
	out := make(map[string][]common.LocationEvent)
	for _, e := range events {
		for _, l := range locations {
			if !strings.Contains(e.Description, l.Name) {
				continue
			}
			out[l.Name] = append(out[l.Name], common.LocationEvent{
				EventID:     e.ID,
				Description: text.Truncate(e.Description, evidenceRunes),
				Chapter:     e.Chapter,
				Importance:  e.ImportanceScore,
			})
		}
	}
	return out
}

// firstLocation returns the location mentioned earliest in para.
func firstLocation(para string, locations []common.Location) (string, bool) {
	best := ""
	pos := -1
	for _, l := range locations {
		if i := strings.Index(para, l.Name); i >= 0 && (pos < 0 || i < pos) {
			pos = i
			best = l.Name
		}
	}
	return best, pos >= 0
}

// sceneTransitions records every paragraph whose first mentioned location
// differs from the current scene of the chapter.
func sceneTransitions(chapters []common.Chapter, locations []common.Location) []common.SceneTransition {
	out := make([]common.SceneTransition, 0)
	for _, ch := range chapters {
		current := ""
		for i, para := range ch.Paragraphs {
			loc, ok := firstLocation(para, locations)
			if !ok {
				continue
			}
			if current != "" && loc != current {
				out = append(out, common.SceneTransition{
					From:      current,
					To:        loc,
					Chapter:   ch.Number,
					Paragraph: i,
					Context:   text.Truncate(para, contextRunes),
				})
			}
			current = loc
		}
	}
	return out
}

// mapCharactersToLocations counts the paragraphs in which a character and
// a location appear together.
func mapCharactersToLocations(
	chapters []common.Chapter,
	characters []common.Character,
	locations []common.Location,
) map[string][]common.LocationVisit {
	idx := newNameIndex(characters)
	counts := make(map[string]map[string]int)
	for _, ch := range chapters {
		for _, para := range ch.Paragraphs {
			names := idx.present(para)
			if len(names) == 0 {
				continue
			}
			for _, l := range locations {
				if !strings.Contains(para, l.Name) {
					continue
				}
				for _, n := range names {
					if counts[n] == nil {
						counts[n] = make(map[string]int)
					}
					counts[n][l.Name]++
				}
			}
		}
	}

	out := make(map[string][]common.LocationVisit, len(counts))
	for name, locs := range counts {
		visits := make([]common.LocationVisit, 0, len(locs))
		for _, l := range locations {
			if c, ok := locs[l.Name]; ok {
				visits = append(visits, common.LocationVisit{Location: l.Name, VisitCount: c})
			}
		}
		sort.SliceStable(visits, func(i, j int) bool {
			return visits[i].VisitCount > visits[j].VisitCount
		})
		out[name] = visits
	}
	return out
}

func mostActiveLocation(locations []common.Location) string {
	name := ""
	best := -1
	for _, l := range locations {
		if l.EventCount > best {
			best = l.EventCount
			name = l.Name
		}
	}
	return name
}

// AnalyzeLocations ties extracted locations to events, characters and scene
// changes. Locations are returned sorted by descending importance.
func (g *GraphClient) AnalyzeLocations(
	chapters []common.Chapter,
	locations []common.Location,
	characters []common.Character,
	events []common.Event,
) common.LocationAnalysis {
	eventMap := mapEventsToLocations(events, locations)

	ranked := make([]common.Location, len(locations))
	copy(ranked, locations)
	for i := range ranked {
		l := &ranked[i]
		atLocation := eventMap[l.Name]
		important := 0
		for _, e := range atLocation {
			if e.Importance > MajorEventThreshold {
				important++
			}
		}
		l.EventCount = len(atLocation)
		l.ImportantEvents = important
		l.Importance = locationImportance(l.EventCount, important)
		l.Type = classifyLocation(l.Name, g.lexicon.LocationTypes)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Importance > ranked[j].Importance
	})

	transitions := sceneTransitions(chapters, ranked)
	logger.Debug("[Location] Analyzed locations", "locations", len(ranked), "transitions", len(transitions))

	return common.LocationAnalysis{
		Locations:            ranked,
		SceneTransitions:     transitions,
		CharacterLocationMap: mapCharactersToLocations(chapters, characters, ranked),
		EventLocationMap:     eventMap,
		Statistics: common.LocationStatistics{
			TotalLocations:     len(ranked),
			SceneTransitions:   len(transitions),
			MostActiveLocation: mostActiveLocation(ranked),
		},
	}
}

// LocationVisitor is a character seen at a location.
type LocationVisitor struct {
	Character  string `json:"character"`
	VisitCount int    `json:"visit_count"`
}

// LocationProfile collects everything known about one location.
type LocationProfile struct {
	Location        common.Location          `json:"location"`
	Events          []common.LocationEvent   `json:"events"`
	Visitors        []LocationVisitor        `json:"visitors"`
	TransitionsFrom []common.SceneTransition `json:"transitions_from"`
	TransitionsTo   []common.SceneTransition `json:"transitions_to"`
}

// LocationProfileOf returns the profile of the location called name.
func LocationProfileOf(analysis common.LocationAnalysis, name string) (LocationProfile, bool) {
	var profile LocationProfile
	found := false
	for _, l := range analysis.Locations {
		if l.Name == name {
			profile.Location = l
			found = true
			break
		}
	}
	if !found {
		return LocationProfile{}, false
	}

	profile.Events = analysis.EventLocationMap[name]
	if profile.Events == nil {
		profile.Events = []common.LocationEvent{}
	}
	profile.Visitors = make([]LocationVisitor, 0)
	for character, visits := range analysis.CharacterLocationMap {
		for _, v := range visits {
			if v.Location == name {
				profile.Visitors = append(profile.Visitors, LocationVisitor{Character: character, VisitCount: v.VisitCount})
			}
		}
	}
	sort.Slice(profile.Visitors, func(i, j int) bool {
		if profile.Visitors[i].VisitCount != profile.Visitors[j].VisitCount {
			return profile.Visitors[i].VisitCount > profile.Visitors[j].VisitCount
		}
		return profile.Visitors[i].Character < profile.Visitors[j].Character
	})
	profile.TransitionsFrom = make([]common.SceneTransition, 0)
	profile.TransitionsTo = make([]common.SceneTransition, 0)
	for _, t := range analysis.SceneTransitions {
		if t.From == name {
			profile.TransitionsFrom = append(profile.TransitionsFrom, t)
		}
		if t.To == name {
			profile.TransitionsTo = append(profile.TransitionsTo, t)
		}
	}
	return profile, true
}
