package graph

import (
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/plotline/backend/pkg/common"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"
	"github.com/OFFIS-RIT/plotline/backend/pkg/text"
)

const (
	markerAnchorRunes = 50
	markerWindowRunes = 100

	// DefaultContextSize is the number of neighbours ContextOf returns on
	// each side when size is negative.
	DefaultContextSize = 2
)

// annotateTimeMarkers looks for a temporal expression within 100 runes
// around each event in its chapter text. The first matching category in
// lexicon order wins.
func (g *GraphClient) annotateTimeMarkers(events []common.Event, chapters []common.Chapter) {
	content := make(map[int]string, len(chapters))
	for _, ch := range chapters {
		content[ch.Number] = ch.Content
	}

	for i := range events {
		e := &events[i]
		e.TimeMarker = nil
		c := content[e.Chapter]
		pos := strings.Index(c, text.Truncate(e.Description, markerAnchorRunes))
		if pos < 0 {
			continue
		}
		window := text.Window(c, pos, pos, markerWindowRunes)
		e.TimeMarker = g.findTimeMarker(window)
	}
}

func (g *GraphClient) findTimeMarker(window string) *common.TimeMarker {
	for _, rule := range g.timeMarkers {
		for _, re := range rule.patterns {
			if m := re.FindString(window); m != "" {
				return &common.TimeMarker{Type: rule.markerType, Text: m}
			}
		}
	}
	return nil
}

func timeGap(prev, curr common.Event) string {
	if prev.Chapter == curr.Chapter {
		return "same chapter"
	}
	return fmt.Sprintf("%d chapters later", curr.Chapter-prev.Chapter)
}

// buildTimeline orders events by (chapter, sequence) in place and sets the
// gap to the previous event.
func buildTimeline(events []common.Event) {
	common.SortEvents(events)
	for i := range events {
		if i == 0 {
			events[i].TimeGap = ""
			continue
		}
		events[i].TimeGap = timeGap(events[i-1], events[i])
	}
}

// protagonist is the character with the single highest final importance.
// Ties go to the character listed first.
func protagonist(characters []common.Character) string {
	name := ""
	best := -1.0
	for _, c := range characters {
		if c.FinalImportance > best {
			best = c.FinalImportance
			name = c.Name
		}
	}
	return name
}

func contributionType(score float64) common.ContributionType {
	switch {
	case score >= 0.8:
		return common.ContributionClimax
	case score >= 0.6:
		return common.ContributionDriving
	case score >= 0.4:
		return common.ContributionSetup
	case score >= 0.2:
		return common.ContributionTwist
	default:
		return common.ContributionSubplot
	}
}

func contributionScore(e common.Event, hero string) float64 {
	involvement := 0.3
	if hero != "" && e.HasParticipant(hero) {
		involvement = 1.0
	}
	advancement := 0.3
	if e.EventType == common.EventMajor {
		advancement = 0.8
	}
	causal := e.ImportanceScore * 0.8
	return min(0.4*e.ImportanceScore+0.3*causal+0.2*involvement+0.1*advancement, 1.0)
}

func scoreContribution(events []common.Event, hero string) {
	for i := range events {
		score := contributionScore(events[i], hero)
		events[i].ContributionScore = score
		events[i].ContributionType = contributionType(score)
	}
}

func mainPlot(events []common.Event) []common.Event {
	out := make([]common.Event, 0)
	for _, e := range events {
		if e.ContributionScore >= MainPlotThreshold {
			out = append(out, e)
		}
	}
	common.SortEvents(out)
	return out
}

func (g *GraphClient) analyzeTimeline(
	tok text.Tokenizer,
	chapters []common.Chapter,
	characters []common.Character,
) common.TimelineAnalysis {
	events := g.extractEvents(tok, chapters, characters)
	scoreEvents(events, characters)
	g.annotateTimeMarkers(events, chapters)
	buildTimeline(events)

	hero := protagonist(characters)
	scoreContribution(events, hero)

	hierarchy := buildHierarchy(events)
	causality := g.analyzeCausality(events)
	plot := mainPlot(events)

	timeline := make([]common.Event, len(events))
	copy(timeline, events)

	major := len(hierarchy.MajorEvents)
	logger.Debug("[Timeline] Built timeline", "events", len(events), "major", major, "main_plot", len(plot))

	return common.TimelineAnalysis{
		Events:         events,
		Timeline:       timeline,
		Hierarchy:      hierarchy,
		Causality:      causality,
		MainPlotEvents: plot,
		Protagonist:    hero,
		Statistics: common.TimelineStatistics{
			TotalEvents:     len(events),
			MajorEvents:     major,
			MinorEvents:     len(events) - major,
			MainPlotEvents:  len(plot),
			CausalRelations: len(causality),
		},
	}
}

// AnalyzeTimeline runs the event pipeline over chapters. characters should
// carry FinalImportance, see AnalyzeCharacters, otherwise Importance is
// used for event scoring.
func (g *GraphClient) AnalyzeTimeline(chapters []common.Chapter, characters []common.Character) (common.TimelineAnalysis, error) {
	if err := common.ValidateCharacters(characters); err != nil {
		return common.TimelineAnalysis{}, fmt.Errorf("failed to analyze timeline: %w", err)
	}
	return g.analyzeTimeline(g.tokenizerFor(chapters), chapters, characters), nil
}

// ChapterTimeline returns the timeline events of one chapter.
func ChapterTimeline(analysis common.TimelineAnalysis, chapter int) []common.Event {
	out := make([]common.Event, 0)
	for _, e := range analysis.Timeline {
		if e.Chapter == chapter {
			out = append(out, e)
		}
	}
	return out
}

// CharacterTimeline returns the timeline events name takes part in.
func CharacterTimeline(analysis common.TimelineAnalysis, name string) []common.Event {
	out := make([]common.Event, 0)
	for _, e := range analysis.Timeline {
		if e.HasParticipant(name) {
			out = append(out, e)
		}
	}
	return out
}

// ContextOf returns the event with the given id and up to size events on
// either side of it. A size of 0 returns the event alone, a negative size
// uses DefaultContextSize.
func ContextOf(analysis common.TimelineAnalysis, eventID string, size int) (common.EventContext, bool) {
	if size < 0 {
		size = DefaultContextSize
	}
	for i, e := range analysis.Timeline {
		if e.ID != eventID {
			continue
		}
		start := max(i-size, 0)
		end := min(i+size+1, len(analysis.Timeline))
		return common.EventContext{
			Target:    e,
			Previous:  append([]common.Event{}, analysis.Timeline[start:i]...),
			Following: append([]common.Event{}, analysis.Timeline[i+1:end]...),
		}, true
	}
	return common.EventContext{}, false
}
