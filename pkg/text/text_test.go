package text

import (
	"reflect"
	"testing"

	"github.com/OFFIS-RIT/plotline/backend/pkg/lexicon"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "cjk punctuation",
			input: "甲来了。乙走了！丙呢？丁；",
			want:  []string{"甲来了", "乙走了", "丙呢", "丁"},
		},
		{
			name:  "latin full stop",
			input: "Alice ran. Bob paid 3.5 coins. Done",
			want:  []string{"Alice ran", "Bob paid 3.5 coins", "Done"},
		},
		{
			name:  "empty pieces skipped",
			input: "。。 甲。",
			want:  []string{"甲"},
		},
		{
			name:  "empty",
			input: "",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("SplitSentences(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFindQuotes(t *testing.T) {
	input := `甲说：“你好，乙。”乙道："走吧"。丙笑‘嗯’`
	got := FindQuotes(input)
	want := []string{"你好，乙。", "走吧", "嗯"}
	if len(got) != len(want) {
		t.Fatalf("expected %d quotes, got %d: %+v", len(want), len(got), got)
	}
	for i, q := range got {
		if q.Content != want[i] {
			t.Errorf("quote %d: got %q, want %q", i, q.Content, want[i])
		}
		if input[q.Start:q.End] == "" {
			t.Errorf("quote %d: empty span", i)
		}
	}
	if got[0].Start != len("甲说：") {
		t.Errorf("unexpected start offset %d", got[0].Start)
	}
}

func TestTruncateAndWindow(t *testing.T) {
	if got := Truncate("甲乙丙丁", 2); got != "甲乙" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("甲", 5); got != "甲" {
		t.Errorf("Truncate short = %q", got)
	}
	if got := Truncate("甲", 0); got != "" {
		t.Errorf("Truncate zero = %q", got)
	}
	s := "一二三四五六七"
	start := len("一二三")
	end := start + len("四")
	if got := Window(s, start, end, 2); got != "二三四五六" {
		t.Errorf("Window = %q", got)
	}
	if got := RunesBefore(s, start, 10); got != "一二三" {
		t.Errorf("RunesBefore = %q", got)
	}
}

func newTestTokenizer() *LexiconTokenizer {
	lex := lexicon.Default()
	lex.Names = []string{"甲", "乙", "张三丰"}
	lex.Places = []string{"武当山"}
	return NewLexiconTokenizer(lex)
}

func TestLexiconTokenizerTag(t *testing.T) {
	tok := newTestTokenizer()

	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "longest match wins",
			input: "张三丰去武当山",
			want: []Token{
				{Text: "张三丰", Tag: TagPerson, Offset: 0},
				{Text: "去", Tag: TagVerb, Offset: len("张三丰")},
				{Text: "武当山", Tag: TagPlace, Offset: len("张三丰去")},
			},
		},
		{
			name:  "mixed scripts",
			input: "甲because甲打了乙",
			want: []Token{
				{Text: "甲", Tag: TagPerson, Offset: 0},
				{Text: "because", Tag: TagWord, Offset: len("甲")},
				{Text: "甲", Tag: TagPerson, Offset: len("甲because")},
				{Text: "打", Tag: TagVerb, Offset: len("甲because甲")},
				{Text: "了", Tag: TagWord, Offset: len("甲because甲打")},
				{Text: "乙", Tag: TagPerson, Offset: len("甲because甲打了")},
			},
		},
		{
			name:  "latin names",
			input: "The knight Alice fought Bob.",
			want: []Token{
				{Text: "The", Tag: TagWord, Offset: 0},
				{Text: "knight", Tag: TagWord, Offset: 4},
				{Text: "Alice", Tag: TagPerson, Offset: 11},
				{Text: "fought", Tag: TagVerb, Offset: 17},
				{Text: "Bob", Tag: TagPerson, Offset: 24},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tok.Tag(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Tag(%q) =\n%+v\nwant\n%+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLexiconTokenizerDiscover(t *testing.T) {
	tok := NewLexiconTokenizer(lexicon.Default())
	people, places := tok.Discover("王小明说：“走。”张三笑道。他说好。王也说。王小明来到青云山，又去了落霞镇。")

	if !reflect.DeepEqual(people, []string{"王小明", "张三"}) {
		t.Errorf("unexpected people: %v", people)
	}
	if !reflect.DeepEqual(places, []string{"青云山"}) {
		t.Errorf("unexpected places: %v", places)
	}
}

func TestWithNamesDoesNotMutate(t *testing.T) {
	tok := NewLexiconTokenizer(lexicon.Default())
	learned := tok.WithNames([]string{"王小明"}, []string{"青云山"})

	if got := tok.Tag("王小明"); len(got) == 1 && got[0].Tag == TagPerson {
		t.Fatal("original tokenizer must not learn names")
	}
	got := learned.Tag("王小明到青云山")
	want := []Token{
		{Text: "王小明", Tag: TagPerson, Offset: 0},
		{Text: "到", Tag: TagVerb, Offset: len("王小明")},
		{Text: "青云山", Tag: TagPlace, Offset: len("王小明到")},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tokens: %+v", got)
	}
}
