package graph

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/OFFIS-RIT/plotline/backend/pkg/common"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"
	"github.com/OFFIS-RIT/plotline/backend/pkg/text"
)

const (
	maxDescriptionRunes = 200
	evidenceRunes       = 100
)

func (g *GraphClient) isActionVerb(word string) bool {
	if _, ok := g.actionVerbs[word]; ok {
		return true
	}
	_, ok := g.actionVerbs[strings.ToLower(word)]
	return ok
}

func (g *GraphClient) hasActionVerb(tok text.Tokenizer, sentence string) bool {
	for _, t := range tok.Tag(sentence) {
		if g.isActionVerb(t.Text) {
			return true
		}
	}
	return false
}

// participantsOf returns the canonical names of characters mentioned in
// sentence, ordered by first mention.
func participantsOf(sentence string, characters []common.Character) []string {
	type mention struct {
		name string
		pos  int
	}
	mentions := make([]mention, 0)
	for _, c := range characters {
		pos := -1
		for _, n := range c.Names() {
			if n == "" {
				continue
			}
			if i := strings.Index(sentence, n); i >= 0 && (pos < 0 || i < pos) {
				pos = i
			}
		}
		if pos >= 0 {
			mentions = append(mentions, mention{name: c.Name, pos: pos})
		}
	}
	sort.SliceStable(mentions, func(i, j int) bool {
		return mentions[i].pos < mentions[j].pos
	})

	out := make([]string, len(mentions))
	for i, m := range mentions {
		out[i] = m.name
	}
	return out
}

// extractEvents turns every sentence holding an action verb and at least
// one known character into a minor event.
func (g *GraphClient) extractEvents(
	tok text.Tokenizer,
	chapters []common.Chapter,
	characters []common.Character,
) []common.Event {
	events := make([]common.Event, 0)
	if len(characters) == 0 {
		return events
	}

	for _, ch := range chapters {
		for seq, sentence := range tok.Sentences(ch.Content) {
			participants := participantsOf(sentence, characters)
			if len(participants) == 0 {
				continue
			}
			if !g.hasActionVerb(tok, sentence) {
				continue
			}
			events = append(events, common.Event{
				ID:           fmt.Sprintf("event_%04d", len(events)+1),
				Description:  text.Truncate(sentence, maxDescriptionRunes),
				Chapter:      ch.Number,
				Sequence:     seq,
				Participants: participants,
				EventType:    common.EventMinor,
			})
		}
	}

	logger.Debug("[Event] Extracted events", "count", len(events))
	return events
}

// scoreEvents sets the importance of every event and promotes events at or
// above MajorEventThreshold to major. Promotion happens only after all
// events are scored. Characters not yet ranked by AnalyzeCharacters score
// with their mention importance.
func scoreEvents(events []common.Event, characters []common.Character) {
	importance := make(map[string]float64, len(characters))
	for _, c := range characters {
		if c.FinalImportance > 0 {
			importance[c.Name] = c.FinalImportance
		} else {
			importance[c.Name] = c.Importance
		}
	}

	for i := range events {
		e := &events[i]
		charScore := 0.0
		for _, p := range e.Participants {
			charScore = max(charScore, importance[p])
		}
		lengthScore := min(float64(utf8.RuneCountInString(e.Description))/maxDescriptionRunes, 1.0)
		impactScore := min(float64(len(e.Participants))/3, 1.0)
		e.ImportanceScore = min(0.4*charScore+0.3*lengthScore+0.3*impactScore, 1.0)
	}

	for i := range events {
		if events[i].ImportanceScore >= MajorEventThreshold {
			events[i].EventType = common.EventMajor
		}
	}
}

// buildHierarchy attaches every minor event to the latest major event of
// the same chapter. Minor events before the first major of a chapter stay
// unattached.
func buildHierarchy(events []common.Event) common.EventHierarchy {
	sorted := make([]common.Event, len(events))
	copy(sorted, events)
	common.SortEvents(sorted)

	hierarchy := common.EventHierarchy{
		MajorEvents:  make([]common.Event, 0),
		SubEventsMap: make(map[string][]common.Event),
	}
	current := ""
	chapter := 0
	for _, e := range sorted {
		if e.Chapter != chapter {
			chapter = e.Chapter
			current = ""
		}
		if e.EventType == common.EventMajor {
			current = e.ID
			hierarchy.MajorEvents = append(hierarchy.MajorEvents, e)
			hierarchy.SubEventsMap[e.ID] = make([]common.Event, 0)
			continue
		}
		if current != "" {
			hierarchy.SubEventsMap[current] = append(hierarchy.SubEventsMap[current], e)
		}
	}
	return hierarchy
}

// analyzeCausality links every event whose description holds a causal
// keyword to the event right before it in story order.
//
// The predecessor is taken regardless of participants, so unrelated events
// can be linked. Callers should treat the edges as low precision.
func (g *GraphClient) analyzeCausality(events []common.Event) []common.CausalEdge {
	sorted := make([]common.Event, len(events))
	copy(sorted, events)
	common.SortEvents(sorted)

	edges := make([]common.CausalEdge, 0)
	for i := 1; i < len(sorted); i++ {
		if !g.causal.Match(sorted[i].Description) {
			continue
		}
		edges = append(edges, common.CausalEdge{
			From:              sorted[i-1].ID,
			To:                sorted[i].ID,
			CausalityStrength: causalityStrength,
			Evidence:          text.Truncate(sorted[i].Description, evidenceRunes),
		})
	}
	return edges
}
