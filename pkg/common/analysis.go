package common

import "time"

// CharacterStatistics summarises a character analysis.
type CharacterStatistics struct {
	TotalCharacters      int     `json:"total_characters"`
	MainCharacters       int     `json:"main_characters"`
	SupportingCharacters int     `json:"supporting_characters"`
	TotalRelations       int     `json:"total_relations"`
	Communities          int     `json:"communities"`
	NetworkDensity       float64 `json:"network_density"`
}

// CharacterAnalysis is the output of the character network stage.
type CharacterAnalysis struct {
	Characters           []Character         `json:"characters"`
	MainCharacters       []Character         `json:"main_characters"`
	SupportingCharacters []Character         `json:"supporting_characters"`
	Relations            []Relation          `json:"relations"`
	Network              Network             `json:"network"`
	Statistics           CharacterStatistics `json:"statistics"`
}

// EventHierarchy groups minor events under the major event preceding them
// in the same chapter.
type EventHierarchy struct {
	MajorEvents  []Event            `json:"major_events"`
	SubEventsMap map[string][]Event `json:"sub_events_map"`
}

// TimelineStatistics summarises a timeline analysis.
type TimelineStatistics struct {
	TotalEvents     int `json:"total_events"`
	MajorEvents     int `json:"major_events"`
	MinorEvents     int `json:"minor_events"`
	MainPlotEvents  int `json:"main_plot_events"`
	CausalRelations int `json:"causal_relations"`
}

// TimelineAnalysis is the output of the event pipeline.
type TimelineAnalysis struct {
	Events         []Event            `json:"events"`
	Timeline       []Event            `json:"timeline"`
	Hierarchy      EventHierarchy     `json:"hierarchy"`
	Causality      []CausalEdge       `json:"causality"`
	MainPlotEvents []Event            `json:"main_plot_events"`
	Protagonist    string             `json:"protagonist"`
	Statistics     TimelineStatistics `json:"statistics"`
}

// EventContext is an event together with its neighbours on the timeline.
type EventContext struct {
	Target    Event   `json:"target_event"`
	Previous  []Event `json:"previous_events"`
	Following []Event `json:"following_events"`
}

type SceneTransition struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Chapter   int    `json:"chapter"`
	Paragraph int    `json:"paragraph"`
	Context   string `json:"context"`
}

type LocationVisit struct {
	Location   string `json:"location"`
	VisitCount int    `json:"visit_count"`
}

type LocationEvent struct {
	EventID     string  `json:"event_id"`
	Description string  `json:"description"`
	Chapter     int     `json:"chapter"`
	Importance  float64 `json:"importance"`
}

type LocationStatistics struct {
	TotalLocations     int    `json:"total_locations"`
	SceneTransitions   int    `json:"scene_transitions"`
	MostActiveLocation string `json:"most_active_location"`
}

// LocationAnalysis ties locations to events, characters and scene changes.
type LocationAnalysis struct {
	Locations            []Location                 `json:"locations"`
	SceneTransitions     []SceneTransition          `json:"scene_transitions"`
	CharacterLocationMap map[string][]LocationVisit `json:"character_location_map"`
	EventLocationMap     map[string][]LocationEvent `json:"event_location_map"`
	Statistics           LocationStatistics         `json:"statistics"`
}

type ChapterEmotion struct {
	Chapter           int            `json:"chapter"`
	EmotionScore      float64        `json:"emotion_score"`
	DominantEmotion   string         `json:"dominant_emotion"`
	EmotionCounts     map[string]int `json:"emotion_counts"`
	TotalEmotionWords int            `json:"total_emotion_words"`
}

type CharacterEmotion struct {
	Chapter int    `json:"chapter"`
	Emotion string `json:"emotion"`
	Context string `json:"context"`
}

type EmotionRelation struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	EmotionType string  `json:"emotion_type"`
	Chapter     int     `json:"chapter"`
	Intensity   float64 `json:"intensity"`
	Context     string  `json:"context"`
}

type EmotionPoint struct {
	Chapter  int     `json:"chapter"`
	Score    float64 `json:"score"`
	Dominant string  `json:"dominant,omitempty"`
	Type     string  `json:"type,omitempty"`
}

type EmotionPeaks struct {
	Peaks   []EmotionPoint `json:"peaks"`
	Valleys []EmotionPoint `json:"valleys"`
}

type EmotionStatistics struct {
	AverageEmotion  float64 `json:"average_emotion"`
	EmotionVariance float64 `json:"emotion_variance"`
	PeakCount       int     `json:"peak_count"`
	ValleyCount     int     `json:"valley_count"`
}

// EmotionAnalysis is the keyword based emotion side-pipeline output.
type EmotionAnalysis struct {
	ChapterEmotions   []ChapterEmotion              `json:"chapter_emotions"`
	CharacterEmotions map[string][]CharacterEmotion `json:"character_emotions"`
	EmotionRelations  []EmotionRelation             `json:"emotion_relations"`
	EmotionCurve      []EmotionPoint                `json:"emotion_curve"`
	EmotionalPeaks    EmotionPeaks                  `json:"emotional_peaks"`
	Statistics        EmotionStatistics             `json:"statistics"`
}

type CharacterState struct {
	Chapter    int    `json:"chapter"`
	Paragraph  int    `json:"paragraph"`
	StateType  string `json:"state_type"`
	StateValue string `json:"state_value"`
	Keyword    string `json:"keyword"`
	Context    string `json:"context"`
}

type StateChange struct {
	Character   string `json:"character"`
	StateType   string `json:"state_type"`
	FromState   string `json:"from_state"`
	ToState     string `json:"to_state"`
	FromChapter int    `json:"from_chapter"`
	ToChapter   int    `json:"to_chapter"`
	Context     string `json:"context"`
}

type StateTrigger struct {
	StateChange  StateChange   `json:"state_change"`
	TriggerEvent LocationEvent `json:"trigger_event"`
}

type StateStatistics struct {
	TotalStates       int `json:"total_states"`
	TotalChanges      int `json:"total_changes"`
	CharactersTracked int `json:"characters_tracked"`
}

// StateAnalysis tracks keyword based character states over the novel.
type StateAnalysis struct {
	CharacterStates map[string][]CharacterState `json:"character_states"`
	StateChanges    []StateChange               `json:"state_changes"`
	StateEventMap   []StateTrigger              `json:"state_event_map"`
	Statistics      StateStatistics             `json:"statistics"`
}

// Analysis is the complete result for one novel. It is the only object that
// outlives a pipeline run and is stored keyed by NovelID.
type Analysis struct {
	NovelID      string            `json:"novel_id"`
	Title        string            `json:"title"`
	Author       string            `json:"author"`
	ChapterCount int               `json:"chapter_count"`
	TotalWords   int               `json:"total_words"`
	Characters   CharacterAnalysis `json:"characters"`
	Locations    LocationAnalysis  `json:"locations"`
	Timeline     TimelineAnalysis  `json:"timeline"`
	Emotions     EmotionAnalysis   `json:"emotions"`
	States       StateAnalysis     `json:"states"`
	CreatedAt    time.Time         `json:"created_at"`
}

// AnalysisSummary is the listing view of a stored analysis.
type AnalysisSummary struct {
	NovelID        string    `json:"novel_id"`
	Title          string    `json:"title"`
	Author         string    `json:"author"`
	ChapterCount   int       `json:"chapter_count"`
	TotalWords     int       `json:"total_words"`
	CharacterCount int       `json:"character_count"`
	EventCount     int       `json:"event_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// Summary returns the listing view of a.
func (a *Analysis) Summary() AnalysisSummary {
	return AnalysisSummary{
		NovelID:        a.NovelID,
		Title:          a.Title,
		Author:         a.Author,
		ChapterCount:   a.ChapterCount,
		TotalWords:     a.TotalWords,
		CharacterCount: len(a.Characters.Characters),
		EventCount:     len(a.Timeline.Events),
		CreatedAt:      a.CreatedAt,
	}
}
