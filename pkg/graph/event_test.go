package graph

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/plotline/backend/pkg/common"
	"github.com/OFFIS-RIT/plotline/backend/pkg/text"
)

func rankedCharacters() []common.Character {
	return []common.Character{
		{Name: "甲", Aliases: []string{}, MentionCount: 10, FirstAppearance: 1, FinalImportance: 0.5},
		{Name: "乙", Aliases: []string{}, MentionCount: 5, FirstAppearance: 1, FinalImportance: 0.2},
	}
}

func TestExtractEvents(t *testing.T) {
	client := newTestClient(t)
	tok := text.NewLexiconTokenizer(client.Lexicon())
	chapters := []common.Chapter{
		chapter(1, "天色已晚。乙打了甲。"),
		chapter(2, "甲和乙。甲救了乙。"),
	}

	events := client.extractEvents(tok, chapters, rankedCharacters())
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %+v", events)
	}

	want := []common.Event{
		{ID: "event_0001", Description: "乙打了甲", Chapter: 1, Sequence: 1, Participants: []string{"乙", "甲"}, EventType: common.EventMinor},
		{ID: "event_0002", Description: "甲救了乙", Chapter: 2, Sequence: 1, Participants: []string{"甲", "乙"}, EventType: common.EventMinor},
	}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("extractEvents =\n%+v\nwant\n%+v", events, want)
	}
}

func TestExtractEventsWithoutCharacters(t *testing.T) {
	client := newTestClient(t)
	tok := text.NewLexiconTokenizer(client.Lexicon())

	events := client.extractEvents(tok, []common.Chapter{chapter(1, "甲打了乙。")}, nil)
	if events == nil || len(events) != 0 {
		t.Fatalf("expected no events, got %+v", events)
	}
}

func TestScoreEvents(t *testing.T) {
	characters := []common.Character{
		{Name: "A", FinalImportance: 1.0},
		{Name: "B", FinalImportance: 0},
	}
	events := []common.Event{
		{ID: "event_0001", Description: strings.Repeat("x", 100), Participants: []string{"A"}, EventType: common.EventMinor},
		{ID: "event_0002", Description: "x", Participants: []string{"B"}, EventType: common.EventMinor},
		{ID: "event_0003", Description: strings.Repeat("x", 300), Participants: []string{"A", "B", "C"}, EventType: common.EventMinor},
	}

	scoreEvents(events, characters)

	tests := []struct {
		importance float64
		eventType  common.EventType
	}{
		{0.4 + 0.15 + 0.1, common.EventMajor},
		{0.3*0.005 + 0.1, common.EventMinor},
		{1.0, common.EventMajor},
	}
	for i, tt := range tests {
		if !almostEqual(events[i].ImportanceScore, tt.importance) {
			t.Errorf("event %d: importance %f, want %f", i, events[i].ImportanceScore, tt.importance)
		}
		if events[i].EventType != tt.eventType {
			t.Errorf("event %d: type %s, want %s", i, events[i].EventType, tt.eventType)
		}
	}
}

func TestScoreEventsFallsBackToImportance(t *testing.T) {
	characters := []common.Character{
		{Name: "王小明", Importance: 0.6},
		{Name: "李四", Importance: 0.6, FinalImportance: 0.25},
	}
	events := []common.Event{
		{ID: "event_0001", Description: "x", Participants: []string{"王小明"}, EventType: common.EventMinor},
		{ID: "event_0002", Description: "x", Participants: []string{"李四"}, EventType: common.EventMinor},
	}

	scoreEvents(events, characters)

	want := []float64{0.4*0.6 + 0.3*0.005 + 0.1, 0.4*0.25 + 0.3*0.005 + 0.1}
	for i, w := range want {
		if !almostEqual(events[i].ImportanceScore, w) {
			t.Errorf("event %d: importance %f, want %f", i, events[i].ImportanceScore, w)
		}
	}
}

func TestAnalyzeTimelineWithExtractedCharacters(t *testing.T) {
	client := newTestClient(t, "甲", "乙")
	chapters := []common.Chapter{
		chapter(1, "甲打了乙。", "乙逃跑了。"),
		chapter(2, "甲找乙。"),
	}

	timeline, err := client.AnalyzeTimeline(chapters, client.ExtractCharacters(chapters))
	if err != nil {
		t.Fatal(err)
	}
	if len(timeline.Events) == 0 {
		t.Fatal("expected events")
	}
	unranked := append([]common.Event{}, timeline.Events...)
	scoreEvents(unranked, nil)
	for i, e := range timeline.Events {
		if e.ImportanceScore <= unranked[i].ImportanceScore {
			t.Errorf("event %s ignores character importance: %f", e.ID, e.ImportanceScore)
		}
	}
}

func TestAnalyzeTimelineRejectsNamelessCharacter(t *testing.T) {
	client := newTestClient(t, "甲")
	characters := []common.Character{{Name: "", MentionCount: 1, FirstAppearance: 1}}

	if _, err := client.AnalyzeTimeline([]common.Chapter{chapter(1, "甲走了。")}, characters); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestBuildHierarchy(t *testing.T) {
	events := []common.Event{
		{ID: "e1", Chapter: 1, Sequence: 0, EventType: common.EventMinor},
		{ID: "e2", Chapter: 1, Sequence: 1, EventType: common.EventMajor},
		{ID: "e3", Chapter: 1, Sequence: 2, EventType: common.EventMinor},
		{ID: "e4", Chapter: 1, Sequence: 3, EventType: common.EventMajor},
		{ID: "e5", Chapter: 1, Sequence: 4, EventType: common.EventMinor},
		{ID: "e6", Chapter: 2, Sequence: 0, EventType: common.EventMinor},
	}

	h := buildHierarchy(events)
	if len(h.MajorEvents) != 2 || h.MajorEvents[0].ID != "e2" || h.MajorEvents[1].ID != "e4" {
		t.Fatalf("unexpected major events %+v", h.MajorEvents)
	}

	ids := func(events []common.Event) []string {
		out := make([]string, 0, len(events))
		for _, e := range events {
			out = append(out, e.ID)
		}
		return out
	}
	if got := ids(h.SubEventsMap["e2"]); !reflect.DeepEqual(got, []string{"e3"}) {
		t.Errorf("sub events of e2 = %v", got)
	}
	if got := ids(h.SubEventsMap["e4"]); !reflect.DeepEqual(got, []string{"e5"}) {
		t.Errorf("sub events of e4 = %v", got)
	}
}

func TestAnalyzeCausality(t *testing.T) {
	client := newTestClient(t)
	tok := text.NewLexiconTokenizer(client.Lexicon())
	chapters := []common.Chapter{
		chapter(1, "甲打了乙。甲because甲打了乙。"),
	}

	events := client.extractEvents(tok, chapters, rankedCharacters())
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %+v", events)
	}
	if !reflect.DeepEqual(events[1].Participants, []string{"甲", "乙"}) {
		t.Errorf("unexpected participants %v", events[1].Participants)
	}

	edges := client.analyzeCausality(events)
	want := []common.CausalEdge{
		{From: "event_0001", To: "event_0002", CausalityStrength: 0.7, Evidence: "甲because甲打了乙"},
	}
	if !reflect.DeepEqual(edges, want) {
		t.Fatalf("analyzeCausality = %+v, want %+v", edges, want)
	}
}

func TestCausalityNeverLinksFirstEvent(t *testing.T) {
	client := newTestClient(t)
	events := []common.Event{
		{ID: "event_0001", Description: "因为甲打了乙", Chapter: 1, Sequence: 0},
		{ID: "event_0002", Description: "甲走了", Chapter: 1, Sequence: 1},
		{ID: "event_0003", Description: "所以乙哭了", Chapter: 2, Sequence: 0},
	}

	edges := client.analyzeCausality(events)
	if len(edges) != 1 || edges[0].From != "event_0002" || edges[0].To != "event_0003" {
		t.Fatalf("unexpected edges %+v", edges)
	}
}

func TestCausalityLatinWordBoundary(t *testing.T) {
	client := newTestClient(t)
	events := []common.Event{
		{ID: "event_0001", Description: "Alice met Bob", Chapter: 1, Sequence: 0},
		{ID: "event_0002", Description: "Bob also left", Chapter: 1, Sequence: 1},
		{ID: "event_0003", Description: "Bob left so Alice cried", Chapter: 1, Sequence: 2},
	}

	edges := client.analyzeCausality(events)
	if len(edges) != 1 || edges[0].To != "event_0003" {
		t.Fatalf("unexpected edges %+v", edges)
	}
}
