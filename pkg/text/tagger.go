package text

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/OFFIS-RIT/plotline/backend/pkg/lexicon"
)

// NameLearner is implemented by tokenizers that can be extended with names
// discovered in a specific document. WithNames must not modify the
// receiver.
type NameLearner interface {
	WithNames(people, places []string) Tokenizer
}

// LexiconTokenizer is a dictionary driven forward maximum matching tagger.
// Han text is matched against the dictionary longest-first, Latin words are
// tagged as person names when capitalized and not a stopword.
type LexiconTokenizer struct {
	dict      map[string]Tag
	maxLen    int
	stopwords map[string]struct{}

	nameDiscovery  *regexp.Regexp
	placeDiscovery *regexp.Regexp
	boundaries     map[rune]struct{}
}

// NewLexiconTokenizer builds a tokenizer from lex.
func NewLexiconTokenizer(lex *lexicon.Lexicon) *LexiconTokenizer {
	t := &LexiconTokenizer{
		dict:       make(map[string]Tag),
		stopwords:  make(map[string]struct{}, len(lex.LatinStopwords)),
		boundaries: make(map[rune]struct{}, len(lex.NameBoundaries)),
	}
	for _, v := range lex.ActionVerbs {
		t.add(v, TagVerb)
	}
	for _, p := range lex.Places {
		t.add(p, TagPlace)
	}
	for _, n := range lex.Names {
		t.add(n, TagPerson)
	}
	for _, w := range lex.LatinStopwords {
		t.stopwords[w] = struct{}{}
	}
	for _, b := range lex.NameBoundaries {
		if r, size := utf8.DecodeRuneInString(b); size == len(b) {
			t.boundaries[r] = struct{}{}
		}
	}

	cjkSpeech := make([]string, 0, len(lex.SpeechVerbs))
	for _, v := range lex.SpeechVerbs {
		if !lexicon.IsLatin(v) {
			cjkSpeech = append(cjkSpeech, v)
		}
	}
	if len(lex.Surnames) > 0 && len(cjkSpeech) > 0 {
		t.nameDiscovery = regexp.MustCompile(
			`(` + alternation(lex.Surnames) + `)(\p{Han}{1,2}?)(?:` + alternation(cjkSpeech) + `)`,
		)
	}
	if len(lex.PlaceMarkers) > 0 && len(lex.PlaceSuffixes) > 0 {
		t.placeDiscovery = regexp.MustCompile(
			`(?:` + alternation(lex.PlaceMarkers) + `)(\p{Han}{1,3}?(?:` + alternation(lex.PlaceSuffixes) + `))`,
		)
	}
	return t
}

func (t *LexiconTokenizer) add(word string, tag Tag) {
	if word == "" {
		return
	}
	t.dict[word] = tag
	if n := utf8.RuneCountInString(word); n > t.maxLen {
		t.maxLen = n
	}
}

// alternation quotes words into a regex alternation, longest first so the
// leftmost-first semantics of RE2 prefer the longest form.
func alternation(words []string) string {
	sorted := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			sorted = append(sorted, w)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i]) > utf8.RuneCountInString(sorted[j])
	})
	for i, w := range sorted {
		sorted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(sorted, "|")
}

// Alternation is exported for callers building name patterns.
func Alternation(words []string) string {
	return alternation(words)
}

// WithNames returns a copy of the tokenizer with people and places added
// to the dictionary. Existing entries keep their tag.
func (t *LexiconTokenizer) WithNames(people, places []string) Tokenizer {
	c := &LexiconTokenizer{
		dict:           make(map[string]Tag, len(t.dict)+len(people)+len(places)),
		maxLen:         t.maxLen,
		stopwords:      t.stopwords,
		nameDiscovery:  t.nameDiscovery,
		placeDiscovery: t.placeDiscovery,
		boundaries:     t.boundaries,
	}
	for k, v := range t.dict {
		c.dict[k] = v
	}
	for _, p := range places {
		if _, ok := c.dict[p]; !ok {
			c.add(p, TagPlace)
		}
	}
	for _, n := range people {
		if tag, ok := c.dict[n]; !ok || tag == TagVerb {
			c.add(n, TagPerson)
		}
	}
	return c
}

// Discover finds likely person names (surname followed by a given name and
// a speech verb) and places (motion marker followed by a name ending in a
// place suffix) in text. Results are unique and in order of first
// appearance.
func (t *LexiconTokenizer) Discover(text string) (people, places []string) {
	people = make([]string, 0)
	places = make([]string, 0)
	seen := make(map[string]struct{})

	if t.nameDiscovery != nil {
		for _, m := range t.nameDiscovery.FindAllStringSubmatch(text, -1) {
			given := m[2]
			if t.hasBoundary(given) {
				continue
			}
			name := m[1] + given
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			people = append(people, name)
		}
	}
	if t.placeDiscovery != nil {
		for _, m := range t.placeDiscovery.FindAllStringSubmatch(text, -1) {
			name := m[1]
			if t.hasBoundary(name) {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			places = append(places, name)
		}
	}
	return people, places
}

func (t *LexiconTokenizer) hasBoundary(s string) bool {
	for _, r := range s {
		if _, ok := t.boundaries[r]; ok {
			return true
		}
	}
	return false
}

func isLatinLetter(r rune) bool {
	return r < utf8.RuneSelf && (unicode.IsLetter(r) || r == '\'')
}

// Tag segments text into tokens. Whitespace and punctuation produce no
// tokens.
func (t *LexiconTokenizer) Tag(text string) []Token {
	return t.scan(text, singleRunes)
}

// singleRunes tags every rune of an unmatched run as a plain word.
func singleRunes(run string, offset int) []Token {
	tokens := make([]Token, 0, utf8.RuneCountInString(run))
	for i, r := range run {
		tokens = append(tokens, Token{Text: string(r), Tag: TagWord, Offset: offset + i})
	}
	return tokens
}

// scan matches dictionary words longest-first. Consecutive non-Latin runes
// that match no entry are collected and handed to fallback as one run.
func (t *LexiconTokenizer) scan(text string, fallback func(run string, offset int) []Token) []Token {
	runes := make([]rune, 0, len(text))
	offsets := make([]int, 0, len(text))
	for i, r := range text {
		runes = append(runes, r)
		offsets = append(offsets, i)
	}
	offsetAt := func(i int) int {
		if i >= len(offsets) {
			return len(text)
		}
		return offsets[i]
	}

	tokens := make([]Token, 0, len(runes)/2)
	pending := -1
	flush := func(end int) {
		if pending < 0 {
			return
		}
		tokens = append(tokens, fallback(text[offsetAt(pending):offsetAt(end)], offsetAt(pending))...)
		pending = -1
	}
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush(i)
			i++
		case isLatinLetter(r):
			flush(i)
			j := i
			for j < len(runes) && isLatinLetter(runes[j]) {
				j++
			}
			word := strings.Trim(text[offsetAt(i):offsetAt(j)], "'")
			if word != "" {
				tokens = append(tokens, Token{Text: word, Tag: t.latinTag(word), Offset: offsetAt(i)})
			}
			i = j
		default:
			l := t.match(runes, i)
			if l == 0 {
				if pending < 0 {
					pending = i
				}
				i++
				continue
			}
			flush(i)
			word := text[offsetAt(i):offsetAt(i+l)]
			tokens = append(tokens, Token{Text: word, Tag: t.dict[word], Offset: offsetAt(i)})
			i += l
		}
	}
	flush(len(runes))
	return tokens
}

// match returns the rune length of the longest dictionary word at i.
func (t *LexiconTokenizer) match(runes []rune, i int) int {
	for l := min(t.maxLen, len(runes)-i); l > 0; l-- {
		if _, ok := t.dict[string(runes[i:i+l])]; ok {
			return l
		}
	}
	return 0
}

func (t *LexiconTokenizer) latinTag(word string) Tag {
	if tag, ok := t.dict[word]; ok {
		return tag
	}
	if tag, ok := t.dict[strings.ToLower(word)]; ok {
		return tag
	}
	first, _ := utf8.DecodeRuneInString(word)
	if unicode.IsUpper(first) {
		if _, stop := t.stopwords[word]; !stop {
			return TagPerson
		}
	}
	return TagWord
}

// Sentences implements Tokenizer.
func (t *LexiconTokenizer) Sentences(text string) []string {
	return SplitSentences(text)
}

// Quotes implements Tokenizer.
func (t *LexiconTokenizer) Quotes(text string) []Quote {
	return FindQuotes(text)
}
