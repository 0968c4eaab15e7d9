package graph

import (
	"sort"
	"strings"

	"github.com/OFFIS-RIT/plotline/backend/pkg/common"
	"github.com/OFFIS-RIT/plotline/backend/pkg/lexicon"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"
	"github.com/OFFIS-RIT/plotline/backend/pkg/text"
)

// paragraphStates returns one state per (type, value) found in para, keyed
// by the first matching keyword.
func paragraphStates(para string, chapter, index int, groups []lexicon.StateGroup) []common.CharacterState {
	out := make([]common.CharacterState, 0)
	for _, group := range groups {
		for _, value := range group.Values {
			for _, kw := range value.Keywords {
				if kw == "" || !strings.Contains(para, kw) {
					continue
				}
				out = append(out, common.CharacterState{
					Chapter:    chapter,
					Paragraph:  index,
					StateType:  group.Type,
					StateValue: value.Name,
					Keyword:    kw,
					Context:    text.Truncate(para, contextRunes),
				})
				break
			}
		}
	}
	return out
}

func trackStates(
	chapters []common.Chapter,
	characters []common.Character,
	groups []lexicon.StateGroup,
) map[string][]common.CharacterState {
	idx := newNameIndex(characters)
	out := make(map[string][]common.CharacterState)
	for _, ch := range chapters {
		for i, para := range ch.Paragraphs {
			names := idx.present(para)
			if len(names) == 0 {
				continue
			}
			states := paragraphStates(para, ch.Number, i, groups)
			if len(states) == 0 {
				continue
			}
			for _, n := range names {
				out[n] = append(out[n], states...)
			}
		}
	}
	return out
}

// stateChanges compares consecutive states of the same type per character.
// Characters are visited in list order and types in lexicon order.
func stateChanges(
	states map[string][]common.CharacterState,
	characters []common.Character,
	groups []lexicon.StateGroup,
) []common.StateChange {
	out := make([]common.StateChange, 0)
	for _, c := range characters {
		history := states[c.Name]
		if len(history) < 2 {
			continue
		}
		sorted := make([]common.CharacterState, len(history))
		copy(sorted, history)
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].Chapter != sorted[j].Chapter {
				return sorted[i].Chapter < sorted[j].Chapter
			}
			return sorted[i].Paragraph < sorted[j].Paragraph
		})

		for _, group := range groups {
			var prev *common.CharacterState
			for i := range sorted {
				curr := &sorted[i]
				if curr.StateType != group.Type {
					continue
				}
				if prev != nil && prev.StateValue != curr.StateValue {
					out = append(out, common.StateChange{
						Character:   c.Name,
						StateType:   group.Type,
						FromState:   prev.StateValue,
						ToState:     curr.StateValue,
						FromChapter: prev.Chapter,
						ToChapter:   curr.Chapter,
						Context:     curr.Context,
					})
				}
				prev = curr
			}
		}
	}
	return out
}

// stateTriggers pairs each change with the most important event of the
// character in the chapter the change happened in.
func stateTriggers(changes []common.StateChange, events []common.Event) []common.StateTrigger {
	out := make([]common.StateTrigger, 0)
	for _, change := range changes {
		var trigger *common.Event
		for i := range events {
			e := &events[i]
			if e.Chapter != change.ToChapter || !e.HasParticipant(change.Character) {
				continue
			}
			if trigger == nil || e.ImportanceScore > trigger.ImportanceScore {
				trigger = e
			}
		}
		if trigger == nil {
			continue
		}
		out = append(out, common.StateTrigger{
			StateChange: change,
			TriggerEvent: common.LocationEvent{
				EventID:     trigger.ID,
				Description: text.Truncate(trigger.Description, evidenceRunes),
				Chapter:     trigger.Chapter,
				Importance:  trigger.ImportanceScore,
			},
		})
	}
	return out
}

// TrackStates follows keyword based character states (health, mood, ...)
// through the novel and links changes to events.
func (g *GraphClient) TrackStates(
	chapters []common.Chapter,
	characters []common.Character,
	events []common.Event,
) common.StateAnalysis {
	groups := g.lexicon.States
	states := trackStates(chapters, characters, groups)
	changes := stateChanges(states, characters, groups)

	total := 0
	for _, s := range states {
		total += len(s)
	}
	logger.Debug("[State] Tracked states", "characters", len(states), "changes", len(changes))

	return common.StateAnalysis{
		CharacterStates: states,
		StateChanges:    changes,
		StateEventMap:   stateTriggers(changes, events),
		Statistics: common.StateStatistics{
			TotalStates:       total,
			TotalChanges:      len(changes),
			CharactersTracked: len(states),
		},
	}
}

// StateHistory returns the states of name, optionally limited to one type.
func StateHistory(analysis common.StateAnalysis, name, stateType string) []common.CharacterState {
	out := make([]common.CharacterState, 0)
	for _, s := range analysis.CharacterStates[name] {
		if stateType == "" || s.StateType == stateType {
			out = append(out, s)
		}
	}
	return out
}
