package lexicon

import (
	"reflect"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default lexicon invalid: %v", err)
	}
}

func TestDefaultReturnsCopy(t *testing.T) {
	a := Default()
	a.ActionVerbs[0] = "changed"
	b := Default()
	if b.ActionVerbs[0] == "changed" {
		t.Fatal("Default must not share state between calls")
	}
}

func TestParseOverlay(t *testing.T) {
	data := []byte(`
names: [张三, 李四]
places: [青云山]
causal_keywords: [因此]
relation_patterns:
  - type: rivalry
    templates: ["{name}与{name}争锋"]
`)
	lex, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(lex.Names, []string{"张三", "李四"}) {
		t.Errorf("unexpected names: %v", lex.Names)
	}
	if !reflect.DeepEqual(lex.Places, []string{"青云山"}) {
		t.Errorf("unexpected places: %v", lex.Places)
	}
	if !reflect.DeepEqual(lex.CausalKeywords, []string{"因此"}) {
		t.Errorf("causal keywords should be replaced, got %v", lex.CausalKeywords)
	}
	if len(lex.RelationPatterns) != 1 || lex.RelationPatterns[0].Type != "rivalry" {
		t.Errorf("relation patterns should be replaced, got %v", lex.RelationPatterns)
	}
	if len(lex.ActionVerbs) != len(Default().ActionVerbs) {
		t.Errorf("action verbs should keep defaults")
	}
}

func TestParseRejectsBadTemplates(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "single slot",
			data: "relation_patterns:\n  - type: x\n    templates: [\"{name}打人\"]\n",
		},
		{
			name: "broken regex",
			data: "relation_patterns:\n  - type: x\n    templates: [\"{name}(打{name}\"]\n",
		},
		{
			name: "broken time marker",
			data: "time_markers:\n  - name: absolute\n    keywords: [\"[0-9\"]\n",
		},
		{
			name: "not yaml",
			data: "names: [unterminated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestKeywordMatcher(t *testing.T) {
	m := NewKeywordMatcher([]string{"因为", "because", "led to", "so"})

	tests := []struct {
		text string
		want bool
	}{
		{text: "甲因为生气打了乙", want: true},
		{text: "甲because甲打了乙", want: true},
		{text: "It LED TO war", want: true},
		{text: "So it began", want: true},
		{text: "he also left", want: false},
		{text: "reason", want: false},
		{text: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := m.Match(tt.text); got != tt.want {
				t.Fatalf("Match(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
