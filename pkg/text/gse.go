package text

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-ego/gse"

	"github.com/OFFIS-RIT/plotline/backend/pkg/lexicon"
)

var (
	segOnce sync.Once
	seg     *gse.Segmenter
	segErr  error
)

// sharedSegmenter loads the embedded jieba dictionary once per process.
// The segmenter is only read afterwards.
func sharedSegmenter() (*gse.Segmenter, error) {
	segOnce.Do(func() {
		s := new(gse.Segmenter)
		if err := s.LoadDictEmbed(); err != nil {
			segErr = fmt.Errorf("failed to load segmenter dictionary: %w", err)
			return
		}
		seg = s
	})
	return seg, segErr
}

// GseTokenizer tags text with the lexicon first and lets the gse
// part-of-speech segmenter tag everything the lexicon does not know.
// Lexicon entries always win, so YAML names, places and action verbs keep
// their tags.
type GseTokenizer struct {
	lex *LexiconTokenizer
	seg *gse.Segmenter
}

// NewGseTokenizer builds a tokenizer from lex backed by the shared
// segmenter.
func NewGseTokenizer(lex *lexicon.Lexicon) (*GseTokenizer, error) {
	s, err := sharedSegmenter()
	if err != nil {
		return nil, err
	}
	return &GseTokenizer{lex: NewLexiconTokenizer(lex), seg: s}, nil
}

// Tag implements Tokenizer.
func (t *GseTokenizer) Tag(text string) []Token {
	return t.lex.scan(text, t.segment)
}

func (t *GseTokenizer) segment(run string, offset int) []Token {
	parts := t.seg.Pos(run, false)
	tokens := make([]Token, 0, len(parts))
	pos := 0
	for _, p := range parts {
		i := strings.Index(run[pos:], p.Text)
		if p.Text == "" || i < 0 {
			continue
		}
		start := pos + i
		pos = start + len(p.Text)
		tokens = append(tokens, Token{Text: p.Text, Tag: posTag(p.Text, p.Pos), Offset: offset + start})
	}
	return tokens
}

// posTag maps jieba labels onto the coarse tags. Single rune names are
// mostly surnames split off by the segmenter and stay plain words.
func posTag(word, pos string) Tag {
	switch {
	case strings.HasPrefix(pos, "nr"):
		if utf8.RuneCountInString(word) < 2 {
			return TagWord
		}
		return TagPerson
	case strings.HasPrefix(pos, "ns"):
		if utf8.RuneCountInString(word) < 2 {
			return TagWord
		}
		return TagPlace
	case strings.HasPrefix(pos, "v"):
		return TagVerb
	}
	return TagWord
}

// WithNames implements NameLearner. The segmenter is shared with the copy.
func (t *GseTokenizer) WithNames(people, places []string) Tokenizer {
	return &GseTokenizer{
		lex: t.lex.WithNames(people, places).(*LexiconTokenizer),
		seg: t.seg,
	}
}

// Discover finds names with the lexicon discovery patterns.
func (t *GseTokenizer) Discover(text string) (people, places []string) {
	return t.lex.Discover(text)
}

// Sentences implements Tokenizer.
func (t *GseTokenizer) Sentences(text string) []string {
	return SplitSentences(text)
}

// Quotes implements Tokenizer.
func (t *GseTokenizer) Quotes(text string) []Quote {
	return FindQuotes(text)
}
