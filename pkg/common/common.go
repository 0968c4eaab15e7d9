package common

import "sort"

// Chapter is one chapter of a novel as handed over by ingestion. Chapters
// are read-only for every analysis stage.
//
// Number is 1-indexed and unique within a novel. Paragraphs keeps the
// original paragraph order of Content.
type Chapter struct {
	Number     int      `json:"number" validate:"min=1"`
	Title      string   `json:"title" validate:"required"`
	Content    string   `json:"content" validate:"required"`
	Paragraphs []string `json:"paragraphs" validate:"required"`
}

// Novel is the unit of analysis. ID is the document identity results are
// stored under.
type Novel struct {
	ID       string    `json:"id" validate:"required"`
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	Source   string    `json:"source,omitempty"`
	Chapters []Chapter `json:"chapters" validate:"dive"`
}

// TotalWords returns the number of runes across all chapter contents.
func (n Novel) TotalWords() int {
	total := 0
	for _, ch := range n.Chapters {
		total += len([]rune(ch.Content))
	}
	return total
}

// Character is a person extracted from the text. Name is canonical and
// unique within a run, Aliases never contains Name.
//
// Importance is the crude extraction-time score, FinalImportance the
// composite score computed once the relation network is known.
type Character struct {
	ID               string   `json:"id"`
	Name             string   `json:"name" validate:"required"`
	Aliases          []string `json:"aliases"`
	MentionCount     int      `json:"mention_count" validate:"min=1"`
	FirstAppearance  int      `json:"first_appearance"`
	Chapters         []int    `json:"chapters"`
	DegreeCentrality int      `json:"degree_centrality"`
	Importance       float64  `json:"importance"`
	FinalImportance  float64  `json:"final_importance"`
}

// Names returns the canonical name followed by all aliases.
func (c Character) Names() []string {
	names := make([]string, 0, len(c.Aliases)+1)
	names = append(names, c.Name)
	names = append(names, c.Aliases...)
	return names
}

type LocationType string

const (
	LocationIndoor   LocationType = "indoor"
	LocationOutdoor  LocationType = "outdoor"
	LocationBuilding LocationType = "building"
	LocationNatural  LocationType = "natural"
	LocationUnknown  LocationType = "unknown"
)

// Location is a place extracted from the text.
type Location struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	MentionCount    int          `json:"mention_count"`
	FirstAppearance int          `json:"first_appearance"`
	Chapters        []int        `json:"chapters"`
	Type            LocationType `json:"type"`
	Importance      float64      `json:"importance"`
	EventCount      int          `json:"event_count"`
	ImportantEvents int          `json:"important_events"`
}

// Relation is an undirected, weighted edge between two characters. From and
// To always hold the lexicographically sorted canonical pair.
type Relation struct {
	ID               string   `json:"id"`
	From             string   `json:"from"`
	To               string   `json:"to"`
	RelationshipType string   `json:"relationship_type"`
	Strength         float64  `json:"strength"`
	FirstMetChapter  int      `json:"first_met_chapter"`
	Chapters         []int    `json:"chapters"`
	AllTypes         []string `json:"all_types"`
	EvidenceCount    int      `json:"evidence_count"`
}

// RelationEvidence is a single candidate produced by one relation signal
// before the merge.
type RelationEvidence struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Type     string   `json:"type"`
	Strength float64  `json:"strength"`
	Chapters []int    `json:"chapters"`
	Contexts []string `json:"contexts,omitempty"`
	Count    int      `json:"count"`
}

// PairKey returns the canonical key of an unordered character pair.
func PairKey(a, b string) [2]string {
	if b < a {
		return [2]string{b, a}
	}
	return [2]string{a, b}
}

type EventType string

const (
	EventMajor EventType = "major"
	EventMinor EventType = "minor"
)

type ContributionType string

const (
	ContributionClimax  ContributionType = "climax"
	ContributionDriving ContributionType = "driving"
	ContributionSetup   ContributionType = "setup"
	ContributionTwist   ContributionType = "twist"
	ContributionSubplot ContributionType = "subplot"
)

// TimeMarker is a temporal expression found near an event.
type TimeMarker struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Event is an action sentence with at least one known participant.
// (Chapter, Sequence) defines the total order of events in a run.
type Event struct {
	ID                string           `json:"id"`
	Description       string           `json:"description"`
	Chapter           int              `json:"chapter"`
	Sequence          int              `json:"sequence"`
	Participants      []string         `json:"participants"`
	EventType         EventType        `json:"event_type"`
	ImportanceScore   float64          `json:"importance_score"`
	ContributionScore float64          `json:"contribution_score"`
	ContributionType  ContributionType `json:"contribution_type,omitempty"`
	TimeGap           string           `json:"time_gap,omitempty"`
	TimeMarker        *TimeMarker      `json:"time_marker,omitempty"`
}

// Before reports whether e comes strictly before o in story order.
func (e Event) Before(o Event) bool {
	if e.Chapter != o.Chapter {
		return e.Chapter < o.Chapter
	}
	return e.Sequence < o.Sequence
}

// HasParticipant reports whether name takes part in the event.
func (e Event) HasParticipant(name string) bool {
	for _, p := range e.Participants {
		if p == name {
			return true
		}
	}
	return false
}

// SortEvents orders events by (chapter, sequence) in place.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Before(events[j])
	})
}

// CausalEdge links an earlier event to a later one.
type CausalEdge struct {
	From              string  `json:"from"`
	To                string  `json:"to"`
	CausalityStrength float64 `json:"causality_strength"`
	Evidence          string  `json:"evidence"`
}

// Community is a connected group of at least two characters.
type Community struct {
	ID      int      `json:"id"`
	Members []string `json:"members"`
	Size    int      `json:"size"`
}

// AdjacentEdge is one direction of a relation in the adjacency map.
type AdjacentEdge struct {
	Target   string  `json:"target"`
	Type     string  `json:"type"`
	Strength float64 `json:"strength"`
}

// Network is the character relation graph.
type Network struct {
	Adjacency   map[string][]AdjacentEdge `json:"adjacency"`
	Communities []Community               `json:"communities"`
	Density     float64                   `json:"density"`
}
