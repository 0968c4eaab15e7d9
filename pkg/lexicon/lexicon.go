// Package lexicon holds the keyword and pattern tables the narrative
// heuristics run on. Tables are plain data so they can be tested and
// extended without touching the merge logic.
package lexicon

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// NamePlaceholder is replaced by an alternation of known character names
// when a relation template is compiled for a run.
const NamePlaceholder = "{name}"

// Category is a named keyword list.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// RelationPattern maps a relationship category to its regex templates.
// Every template must contain NamePlaceholder exactly twice.
type RelationPattern struct {
	Type      string   `yaml:"type"`
	Templates []string `yaml:"templates"`
}

// StateGroup is a state dimension (health, mood, ...) with its values.
type StateGroup struct {
	Type   string     `yaml:"type"`
	Values []Category `yaml:"values"`
}

// Lexicon bundles every vocabulary used by the tokenizer and the analyzers.
// Order matters for all slices: the first matching entry wins.
type Lexicon struct {
	Names            []string          `yaml:"names"`
	Places           []string          `yaml:"places"`
	Surnames         []string          `yaml:"surnames"`
	NameBoundaries   []string          `yaml:"name_boundaries"`
	PlaceMarkers     []string          `yaml:"place_markers"`
	PlaceSuffixes    []string          `yaml:"place_suffixes"`
	LatinStopwords   []string          `yaml:"latin_stopwords"`
	ActionVerbs      []string          `yaml:"action_verbs"`
	SpeechVerbs      []string          `yaml:"speech_verbs"`
	CausalKeywords   []string          `yaml:"causal_keywords"`
	RelationPatterns []RelationPattern `yaml:"relation_patterns"`
	LocationTypes    []Category        `yaml:"location_types"`
	TimeMarkers      []Category        `yaml:"time_markers"`
	Emotions         []Category        `yaml:"emotions"`
	EmotionVerbs     []string          `yaml:"emotion_verbs"`
	States           []StateGroup      `yaml:"states"`
}

// Load reads a YAML lexicon from path and overlays it on Default. Name and
// place lists are appended, every other non-empty table replaces the
// default one.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}
	return Parse(data)
}

// Parse is Load for in-memory YAML.
func Parse(data []byte) (*Lexicon, error) {
	var override Lexicon
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}

	lex := Default()
	lex.Names = append(lex.Names, override.Names...)
	lex.Places = append(lex.Places, override.Places...)
	replace(&lex.Surnames, override.Surnames)
	replace(&lex.NameBoundaries, override.NameBoundaries)
	replace(&lex.PlaceMarkers, override.PlaceMarkers)
	replace(&lex.PlaceSuffixes, override.PlaceSuffixes)
	replace(&lex.LatinStopwords, override.LatinStopwords)
	replace(&lex.ActionVerbs, override.ActionVerbs)
	replace(&lex.SpeechVerbs, override.SpeechVerbs)
	replace(&lex.CausalKeywords, override.CausalKeywords)
	replace(&lex.EmotionVerbs, override.EmotionVerbs)
	if len(override.RelationPatterns) > 0 {
		lex.RelationPatterns = override.RelationPatterns
	}
	if len(override.LocationTypes) > 0 {
		lex.LocationTypes = override.LocationTypes
	}
	if len(override.TimeMarkers) > 0 {
		lex.TimeMarkers = override.TimeMarkers
	}
	if len(override.Emotions) > 0 {
		lex.Emotions = override.Emotions
	}
	if len(override.States) > 0 {
		lex.States = override.States
	}

	if err := lex.Validate(); err != nil {
		return nil, err
	}
	return lex, nil
}

func replace(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = src
	}
}

// Validate checks that every regex table compiles and relation templates
// carry two name slots.
func (l *Lexicon) Validate() error {
	for _, p := range l.RelationPatterns {
		if p.Type == "" {
			return fmt.Errorf("relation pattern without type")
		}
		for _, tpl := range p.Templates {
			if strings.Count(tpl, NamePlaceholder) != 2 {
				return fmt.Errorf("relation template %q of type %s needs two %s slots", tpl, p.Type, NamePlaceholder)
			}
			if _, err := regexp.Compile(strings.ReplaceAll(tpl, NamePlaceholder, "(x)")); err != nil {
				return fmt.Errorf("relation template %q: %w", tpl, err)
			}
		}
	}
	for _, c := range l.TimeMarkers {
		for _, kw := range c.Keywords {
			if _, err := regexp.Compile(kw); err != nil {
				return fmt.Errorf("time marker %q: %w", kw, err)
			}
		}
	}
	return nil
}

// IsLatin reports whether a keyword is written in ASCII letters and should
// be matched on word boundaries rather than as a substring.
func IsLatin(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > 0x7f {
			return false
		}
	}
	return true
}

// KeywordMatcher compiles keywords into a single matcher. CJK keywords
// match anywhere, Latin keywords only as whole words (case-insensitive).
type KeywordMatcher struct {
	substrings []string
	latin      *regexp.Regexp
}

// NewKeywordMatcher builds a matcher over keywords.
func NewKeywordMatcher(keywords []string) *KeywordMatcher {
	m := &KeywordMatcher{}
	latin := make([]string, 0)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if IsLatin(kw) {
			latin = append(latin, regexp.QuoteMeta(strings.ToLower(kw)))
			continue
		}
		m.substrings = append(m.substrings, kw)
	}
	if len(latin) > 0 {
		m.latin = regexp.MustCompile(`(?i)\b(?:` + strings.Join(latin, "|") + `)\b`)
	}
	return m
}

// Match reports whether text contains any keyword.
func (m *KeywordMatcher) Match(text string) bool {
	for _, kw := range m.substrings {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return m.latin != nil && m.latin.MatchString(text)
}
