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

type nameDiscoverer interface {
	text.NameLearner
	Discover(content string) (people, places []string)
}

// tokenizerFor returns the tokenizer used for one run. When discovery is
// enabled the client tokenizer is copied and extended with the names found
// in chapters, the client itself is never modified.
func (g *GraphClient) tokenizerFor(chapters []common.Chapter) text.Tokenizer {
	if !g.discoverNames {
		return g.tokenizer
	}
	d, ok := g.tokenizer.(nameDiscoverer)
	if !ok {
		return g.tokenizer
	}

	people := make([]string, 0)
	places := make([]string, 0)
	for _, ch := range chapters {
		p, l := d.Discover(ch.Content)
		people = append(people, p...)
		places = append(places, l...)
	}
	if len(people) == 0 && len(places) == 0 {
		return g.tokenizer
	}
	logger.Debug("[Entity] Discovered names", "people", len(people), "places", len(places))
	return d.WithNames(people, places)
}

type surfaceCount struct {
	name         string
	count        int
	order        int
	firstChapter int
	chapters     map[int]struct{}
}

type surfaceCounter struct {
	byName map[string]*surfaceCount
	next   int
}

func newSurfaceCounter() *surfaceCounter {
	return &surfaceCounter{byName: make(map[string]*surfaceCount)}
}

func (c *surfaceCounter) add(name string, chapter int) {
	sc, ok := c.byName[name]
	if !ok {
		sc = &surfaceCount{
			name:         name,
			order:        c.next,
			firstChapter: chapter,
			chapters:     make(map[int]struct{}),
		}
		c.byName[name] = sc
		c.next++
	}
	sc.count++
	sc.chapters[chapter] = struct{}{}
	if chapter < sc.firstChapter {
		sc.firstChapter = chapter
	}
}

// ranked drops forms below minMentions and orders the rest by descending
// count, ties by first occurrence.
func (c *surfaceCounter) ranked(minMentions int) []*surfaceCount {
	out := make([]*surfaceCount, 0, len(c.byName))
	for _, sc := range c.byName {
		if sc.count >= minMentions {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].order < out[j].order
	})
	return out
}

func sortedChapters(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for ch := range set {
		out = append(out, ch)
	}
	sort.Ints(out)
	return out
}

func mentionImportance(count, totalChapters int) float64 {
	if totalChapters <= 0 {
		return 0
	}
	return min(float64(count)/float64(totalChapters*5), 1.0)
}

func extractEntities(
	tok text.Tokenizer,
	chapters []common.Chapter,
	minMentions int,
) ([]common.Character, []common.Location) {
	people := newSurfaceCounter()
	places := newSurfaceCounter()
	for _, ch := range chapters {
		for _, t := range tok.Tag(ch.Content) {
			switch t.Tag {
			case text.TagPerson:
				people.add(t.Text, ch.Number)
			case text.TagPlace:
				places.add(t.Text, ch.Number)
			}
		}
	}

	total := len(chapters)
	characters := make([]common.Character, 0)
	for i, sc := range people.ranked(minMentions) {
		characters = append(characters, common.Character{
			ID:              fmt.Sprintf("char_%03d", i+1),
			Name:            sc.name,
			Aliases:         []string{},
			MentionCount:    sc.count,
			FirstAppearance: sc.firstChapter,
			Chapters:        sortedChapters(sc.chapters),
			Importance:      mentionImportance(sc.count, total),
		})
	}

	locations := make([]common.Location, 0)
	for i, sc := range places.ranked(minMentions) {
		locations = append(locations, common.Location{
			ID:              fmt.Sprintf("loc_%03d", i+1),
			Name:            sc.name,
			MentionCount:    sc.count,
			FirstAppearance: sc.firstChapter,
			Chapters:        sortedChapters(sc.chapters),
			Type:            common.LocationUnknown,
			Importance:      mentionImportance(sc.count, total),
		})
	}

	logger.Debug("[Entity] Extracted candidates", "characters", len(characters), "locations", len(locations))
	return characters, locations
}

// ExtractEntities returns the character and location candidates of
// chapters. Characters are not alias-merged yet.
func (g *GraphClient) ExtractEntities(chapters []common.Chapter) ([]common.Character, []common.Location) {
	return extractEntities(g.tokenizerFor(chapters), chapters, g.minMentions)
}

// ExtractCharacters returns the alias-merged characters of chapters.
func (g *GraphClient) ExtractCharacters(chapters []common.Chapter) []common.Character {
	characters, _ := g.ExtractEntities(chapters)
	return MergeAliases(characters, g.aliasThreshold, len(chapters))
}

// ExtractLocations returns the location candidates of chapters.
func (g *GraphClient) ExtractLocations(chapters []common.Chapter) []common.Location {
	_, locations := g.ExtractEntities(chapters)
	return locations
}

// nameSimilarity is 0.9 when one name contains the other, otherwise the
// rune set overlap divided by the larger set size.
func nameSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.9
	}
	setA := runeSet(a)
	setB := runeSet(b)
	shared := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			shared++
		}
	}
	return float64(shared) / float64(max(len(setA), len(setB)))
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, utf8.RuneCountInString(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}

// MergeAliases folds surface forms of the same character into one record
// in a single pass. A candidate joins the first group holding a member it
// is similar enough to. The longest form becomes the name, the others
// become aliases; counts are summed and chapters united.
func MergeAliases(characters []common.Character, threshold float64, totalChapters int) []common.Character {
	groups := make([][]int, 0, len(characters))
	for i, c := range characters {
		joined := false
		for gi, group := range groups {
			for _, m := range group {
				if nameSimilarity(characters[m].Name, c.Name) >= threshold {
					groups[gi] = append(groups[gi], i)
					joined = true
					break
				}
			}
			if joined {
				break
			}
		}
		if !joined {
			groups = append(groups, []int{i})
		}
	}

	merged := make([]common.Character, 0, len(groups))
	for _, group := range groups {
		if len(group) == 1 {
			c := characters[group[0]]
			if c.Aliases == nil {
				c.Aliases = []string{}
			}
			merged = append(merged, c)
			continue
		}
		merged = append(merged, mergeGroup(characters, group, totalChapters))
	}

	if len(merged) != len(characters) {
		logger.Debug("[Entity] Merged aliases", "before", len(characters), "after", len(merged))
	}
	return merged
}

func mergeGroup(characters []common.Character, group []int, totalChapters int) common.Character {
	canonical := characters[group[0]]
	for _, idx := range group[1:] {
		if utf8.RuneCountInString(characters[idx].Name) > utf8.RuneCountInString(canonical.Name) {
			canonical = characters[idx]
		}
	}

	seen := map[string]struct{}{canonical.Name: {}}
	aliases := make([]string, 0)
	addAlias := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		aliases = append(aliases, name)
	}

	chapters := make(map[int]struct{})
	total := 0
	first := 0
	for _, idx := range group {
		c := characters[idx]
		addAlias(c.Name)
		for _, a := range c.Aliases {
			addAlias(a)
		}
		total += c.MentionCount
		for _, ch := range c.Chapters {
			chapters[ch] = struct{}{}
		}
		if first == 0 || (c.FirstAppearance > 0 && c.FirstAppearance < first) {
			first = c.FirstAppearance
		}
	}

	canonical.Aliases = aliases
	canonical.MentionCount = total
	canonical.Chapters = sortedChapters(chapters)
	canonical.FirstAppearance = first
	canonical.Importance = mentionImportance(total, totalChapters)
	return canonical
}
