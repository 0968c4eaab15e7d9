package graph

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/OFFIS-RIT/plotline/backend/pkg/common"
	"github.com/OFFIS-RIT/plotline/backend/pkg/lexicon"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"
	"github.com/OFFIS-RIT/plotline/backend/pkg/text"
)

const (
	cooccurrenceMinCount = 2
	maxContexts          = 3
	contextRunes         = 100
	speakerWindowRunes   = 20
)

// nameIndex resolves every surface form of the known characters to the
// canonical name.
type nameIndex struct {
	characters []common.Character
	canonical  map[string]string
	surfaces   []string
}

func newNameIndex(characters []common.Character) *nameIndex {
	idx := &nameIndex{
		characters: characters,
		canonical:  make(map[string]string),
		surfaces:   make([]string, 0, len(characters)),
	}
	for _, c := range characters {
		for _, n := range c.Names() {
			if n == "" {
				continue
			}
			if _, ok := idx.canonical[n]; ok {
				continue
			}
			idx.canonical[n] = c.Name
			idx.surfaces = append(idx.surfaces, n)
		}
	}
	return idx
}

func (idx *nameIndex) resolve(surface string) (string, bool) {
	name, ok := idx.canonical[surface]
	return name, ok
}

// present returns the canonical names of characters mentioned in s, in
// character list order.
func (idx *nameIndex) present(s string) []string {
	out := make([]string, 0)
	for _, c := range idx.characters {
		for _, n := range c.Names() {
			if n != "" && strings.Contains(s, n) {
				out = append(out, c.Name)
				break
			}
		}
	}
	return out
}

func (idx *nameIndex) pattern() string {
	return text.Alternation(idx.surfaces)
}

type pairAccumulator struct {
	count    int
	chapters map[int]struct{}
	contexts []string
}

type pairCounter struct {
	order []([2]string)
	pairs map[[2]string]*pairAccumulator
}

func newPairCounter() *pairCounter {
	return &pairCounter{pairs: make(map[[2]string]*pairAccumulator)}
}

func (pc *pairCounter) add(a, b string, chapter int, context string) {
	key := common.PairKey(a, b)
	acc, ok := pc.pairs[key]
	if !ok {
		acc = &pairAccumulator{chapters: make(map[int]struct{})}
		pc.pairs[key] = acc
		pc.order = append(pc.order, key)
	}
	acc.count++
	acc.chapters[chapter] = struct{}{}
	if context != "" && len(acc.contexts) < maxContexts {
		acc.contexts = append(acc.contexts, context)
	}
}

// cooccurrenceSignal counts paragraphs in which two characters appear
// together. Pairs seen in fewer than two paragraphs are dropped.
func cooccurrenceSignal(chapters []common.Chapter, idx *nameIndex) []common.RelationEvidence {
	pc := newPairCounter()
	for _, ch := range chapters {
		for _, para := range ch.Paragraphs {
			names := idx.present(para)
			for i := 0; i < len(names); i++ {
				for j := i + 1; j < len(names); j++ {
					pc.add(names[i], names[j], ch.Number, text.Truncate(para, contextRunes))
				}
			}
		}
	}

	out := make([]common.RelationEvidence, 0)
	for _, key := range pc.order {
		acc := pc.pairs[key]
		if acc.count < cooccurrenceMinCount {
			continue
		}
		out = append(out, common.RelationEvidence{
			From:     key[0],
			To:       key[1],
			Type:     lexicon.RelationAcquainted,
			Strength: min(float64(acc.count)/10, 1.0),
			Chapters: sortedChapters(acc.chapters),
			Contexts: acc.contexts,
			Count:    acc.count,
		})
	}
	return out
}

type relationRule struct {
	relType string
	re      *regexp.Regexp
	a, b    int
}

// compileRelationRules expands the {name} slots of every template into
// named groups matching the known surface forms.
func compileRelationRules(patterns []lexicon.RelationPattern, idx *nameIndex) []relationRule {
	if len(idx.surfaces) == 0 {
		return nil
	}
	alt := idx.pattern()
	rules := make([]relationRule, 0)
	for _, p := range patterns {
		for _, tpl := range p.Templates {
			expr := strings.Replace(tpl, lexicon.NamePlaceholder, `(?P<first>`+alt+`)`, 1)
			expr = strings.Replace(expr, lexicon.NamePlaceholder, `(?P<second>`+alt+`)`, 1)
			re, err := regexp.Compile(expr)
			if err != nil {
				logger.Warn("[Relation] Skipping relation template", "type", p.Type, "template", tpl, "err", err)
				continue
			}
			rules = append(rules, relationRule{
				relType: p.Type,
				re:      re,
				a:       re.SubexpIndex("first"),
				b:       re.SubexpIndex("second"),
			})
		}
	}
	return rules
}

// patternSignal applies the relation templates to full chapter text. Each
// match naming two distinct known characters yields one typed record.
func patternSignal(chapters []common.Chapter, idx *nameIndex, patterns []lexicon.RelationPattern) []common.RelationEvidence {
	rules := compileRelationRules(patterns, idx)
	out := make([]common.RelationEvidence, 0)
	for _, ch := range chapters {
		for _, rule := range rules {
			for _, m := range rule.re.FindAllStringSubmatch(ch.Content, -1) {
				a, okA := idx.resolve(m[rule.a])
				b, okB := idx.resolve(m[rule.b])
				if !okA || !okB || a == b {
					logger.Debug("[Relation] Discarding pattern match", "type", rule.relType, "match", m[0])
					continue
				}
				key := common.PairKey(a, b)
				out = append(out, common.RelationEvidence{
					From:     key[0],
					To:       key[1],
					Type:     rule.relType,
					Strength: patternStrength,
					Chapters: []int{ch.Number},
					Contexts: []string{m[0]},
					Count:    1,
				})
			}
		}
	}
	return out
}

func compileSpeakerPattern(idx *nameIndex, speechVerbs []string) *regexp.Regexp {
	if len(idx.surfaces) == 0 || len(speechVerbs) == 0 {
		return nil
	}
	return regexp.MustCompile(`(` + idx.pattern() + `)\s*(?:` + text.Alternation(speechVerbs) + `)`)
}

// dialogueSignal attributes quotes to the last "name + speech verb" found
// shortly before them and relates the speaker to every other character
// named inside the quote.
func dialogueSignal(
	tok text.Tokenizer,
	chapters []common.Chapter,
	idx *nameIndex,
	speechVerbs []string,
) []common.RelationEvidence {
	speaker := compileSpeakerPattern(idx, speechVerbs)
	if speaker == nil {
		return []common.RelationEvidence{}
	}

	pc := newPairCounter()
	for _, ch := range chapters {
		for _, q := range tok.Quotes(ch.Content) {
			window := text.RunesBefore(ch.Content, q.Start, speakerWindowRunes)
			matches := speaker.FindAllStringSubmatch(window, -1)
			if len(matches) == 0 {
				logger.Debug("[Relation] Quote without speaker", "chapter", ch.Number)
				continue
			}
			name, ok := idx.resolve(matches[len(matches)-1][1])
			if !ok {
				continue
			}
			for _, other := range idx.present(q.Content) {
				if other == name {
					continue
				}
				pc.add(name, other, ch.Number, "")
			}
		}
	}

	out := make([]common.RelationEvidence, 0)
	for _, key := range pc.order {
		acc := pc.pairs[key]
		out = append(out, common.RelationEvidence{
			From:     key[0],
			To:       key[1],
			Type:     lexicon.RelationDialogue,
			Strength: min(float64(acc.count)/5, 1.0),
			Chapters: sortedChapters(acc.chapters),
			Count:    acc.count,
		})
	}
	return out
}

type relationGroup struct {
	key      [2]string
	types    []string
	strength float64
	chapters map[int]struct{}
	records  int
}

// mergeRelations reduces the evidence of all signals to one relation per
// character pair: maximum strength, majority type (ties go to the type seen
// first), earliest chapter and the union of chapters.
func mergeRelations(signals ...[]common.RelationEvidence) []common.Relation {
	order := make([][2]string, 0)
	groups := make(map[[2]string]*relationGroup)
	for _, signal := range signals {
		for _, ev := range signal {
			if ev.Strength <= 0 || ev.From == ev.To || len(ev.Chapters) == 0 {
				continue
			}
			key := common.PairKey(ev.From, ev.To)
			grp, ok := groups[key]
			if !ok {
				grp = &relationGroup{key: key, chapters: make(map[int]struct{})}
				groups[key] = grp
				order = append(order, key)
			}
			grp.types = append(grp.types, ev.Type)
			grp.strength = max(grp.strength, ev.Strength)
			for _, ch := range ev.Chapters {
				grp.chapters[ch] = struct{}{}
			}
			grp.records++
		}
	}

	relations := make([]common.Relation, 0, len(order))
	for i, key := range order {
		grp := groups[key]
		chapters := sortedChapters(grp.chapters)
		relType, allTypes := majorityType(grp.types)
		relations = append(relations, common.Relation{
			ID:               fmt.Sprintf("rel_%03d", i+1),
			From:             key[0],
			To:               key[1],
			RelationshipType: relType,
			Strength:         min(grp.strength, 1.0),
			FirstMetChapter:  chapters[0],
			Chapters:         chapters,
			AllTypes:         allTypes,
			EvidenceCount:    grp.records,
		})
	}
	return relations
}

func majorityType(types []string) (string, []string) {
	counts := make(map[string]int, len(types))
	unique := make([]string, 0, len(types))
	for _, t := range types {
		if _, ok := counts[t]; !ok {
			unique = append(unique, t)
		}
		counts[t]++
	}
	best := ""
	bestCount := 0
	for _, t := range unique {
		if counts[t] > bestCount {
			best = t
			bestCount = counts[t]
		}
	}
	return best, unique
}

func (g *GraphClient) extractRelations(
	tok text.Tokenizer,
	chapters []common.Chapter,
	characters []common.Character,
) []common.Relation {
	if len(characters) < 2 {
		return []common.Relation{}
	}
	idx := newNameIndex(characters)
	cooc := cooccurrenceSignal(chapters, idx)
	patterns := patternSignal(chapters, idx, g.lexicon.RelationPatterns)
	dialogue := dialogueSignal(tok, chapters, idx, g.lexicon.SpeechVerbs)

	relations := mergeRelations(cooc, patterns, dialogue)
	logger.Debug(
		"[Relation] Extracted relations",
		"cooccurrence", len(cooc),
		"pattern", len(patterns),
		"dialogue", len(dialogue),
		"merged", len(relations),
	)
	return relations
}

// ExtractRelations returns one consolidated relation per character pair
// with supporting evidence in chapters.
func (g *GraphClient) ExtractRelations(chapters []common.Chapter, characters []common.Character) ([]common.Relation, error) {
	if err := common.ValidateCharacters(characters); err != nil {
		return nil, fmt.Errorf("failed to extract relations: %w", err)
	}
	return g.extractRelations(g.tokenizerFor(chapters), chapters, characters), nil
}
