// Package text segments narrative text into tagged tokens, sentences and
// quoted spans.
package text

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tag is a coarse part-of-speech label.
type Tag string

const (
	TagPerson Tag = "nr"
	TagPlace  Tag = "ns"
	TagVerb   Tag = "v"
	TagWord   Tag = "x"
)

// Token is a tagged surface form. Offset is the byte offset in the input.
type Token struct {
	Text   string
	Tag    Tag
	Offset int
}

// Quote is a quoted span. Start and End are byte offsets of the whole span
// including the quote marks, Content is the text between them.
type Quote struct {
	Content string
	Start   int
	End     int
}

// Tokenizer is what the analysis pipeline needs from a segmenter.
type Tokenizer interface {
	Tag(text string) []Token
	Sentences(text string) []string
	Quotes(text string) []Quote
}

var quotePattern = regexp.MustCompile(`"([^"]+)"|“([^”]+)”|‘([^’]+)’|「([^」]+)」`)

// FindQuotes returns all quoted spans in text, in order of appearance.
func FindQuotes(text string) []Quote {
	matches := quotePattern.FindAllStringSubmatchIndex(text, -1)
	quotes := make([]Quote, 0, len(matches))
	for _, m := range matches {
		for g := 1; g*2+1 < len(m); g++ {
			if m[g*2] < 0 {
				continue
			}
			quotes = append(quotes, Quote{
				Content: text[m[g*2]:m[g*2+1]],
				Start:   m[0],
				End:     m[1],
			})
			break
		}
	}
	return quotes
}

func isTerminator(r rune) bool {
	switch r {
	case '。', '！', '？', '!', '?', '；', ';':
		return true
	}
	return false
}

// SplitSentences splits on CJK and Latin sentence punctuation. A full stop
// only ends a sentence when followed by whitespace or the end of text so
// decimals stay intact. Terminators are dropped and empty sentences skipped.
func SplitSentences(text string) []string {
	sentences := make([]string, 0)
	start := 0
	for i, r := range text {
		end := false
		switch {
		case isTerminator(r):
			end = true
		case r == '.':
			next, _ := utf8.DecodeRuneInString(text[i+1:])
			end = i+1 >= len(text) || unicode.IsSpace(next)
		}
		if !end {
			continue
		}
		if s := strings.TrimSpace(text[start:i]); s != "" {
			sentences = append(sentences, s)
		}
		start = i + utf8.RuneLen(r)
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// RunesBefore returns up to n runes of s that end at byte offset end.
func RunesBefore(s string, end, n int) string {
	if end > len(s) {
		end = len(s)
	}
	start := end
	for i := 0; i < n && start > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(s[:start])
		start -= size
	}
	return s[start:end]
}

// Window returns the text within n runes on either side of [start, end).
func Window(s string, start, end, n int) string {
	before := RunesBefore(s, start, n)
	after := Truncate(s[end:], n)
	return before + s[start:end] + after
}
