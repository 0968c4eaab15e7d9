package graph

import (
	"errors"
	"reflect"
	"testing"

	"github.com/OFFIS-RIT/plotline/backend/pkg/common"
	"github.com/OFFIS-RIT/plotline/backend/pkg/lexicon"
	"github.com/OFFIS-RIT/plotline/backend/pkg/text"
)

func testCharacters(names ...string) []common.Character {
	out := make([]common.Character, 0, len(names))
	for _, n := range names {
		out = append(out, common.Character{Name: n, Aliases: []string{}, MentionCount: 1, FirstAppearance: 1})
	}
	return out
}

func TestCooccurrenceRelation(t *testing.T) {
	client := newTestClient(t)
	chapters := []common.Chapter{
		chapter(1, "甲与乙同行。", "甲见到了乙。"),
		chapter(2, "乙送甲回家。"),
		chapter(3, "甲独自离开。"),
	}

	relations, err := client.ExtractRelations(chapters, testCharacters("甲", "乙"))
	if err != nil {
		t.Fatal(err)
	}
	if len(relations) != 1 {
		t.Fatalf("expected one relation, got %+v", relations)
	}
	r := relations[0]
	key := common.PairKey("甲", "乙")
	if r.From != key[0] || r.To != key[1] {
		t.Errorf("pair is not canonical: %s-%s", r.From, r.To)
	}
	if r.ID != "rel_001" {
		t.Errorf("unexpected id %s", r.ID)
	}
	if r.RelationshipType != lexicon.RelationAcquainted {
		t.Errorf("unexpected type %s", r.RelationshipType)
	}
	if !almostEqual(r.Strength, 0.3) {
		t.Errorf("expected strength 0.3, got %f", r.Strength)
	}
	if r.FirstMetChapter != 1 {
		t.Errorf("expected first met chapter 1, got %d", r.FirstMetChapter)
	}
	if !reflect.DeepEqual(r.Chapters, []int{1, 2}) {
		t.Errorf("unexpected chapters %v", r.Chapters)
	}
}

func TestCooccurrenceNeedsTwoParagraphs(t *testing.T) {
	idx := newNameIndex(testCharacters("甲", "乙"))
	got := cooccurrenceSignal([]common.Chapter{chapter(1, "甲与乙同行。", "甲独自离开。")}, idx)
	if len(got) != 0 {
		t.Fatalf("expected no evidence, got %+v", got)
	}
}

func TestRelationKeyIndependentOfOrder(t *testing.T) {
	client := newTestClient(t)
	characters := testCharacters("甲", "乙")

	forward, err := client.ExtractRelations([]common.Chapter{
		chapter(1, "甲遇到乙。", "甲帮了乙。"),
	}, characters)
	if err != nil {
		t.Fatal(err)
	}
	backward, err := client.ExtractRelations([]common.Chapter{
		chapter(1, "乙遇到甲。", "乙帮了甲。"),
	}, characters)
	if err != nil {
		t.Fatal(err)
	}

	if len(forward) != 1 || len(backward) != 1 {
		t.Fatalf("expected one relation each, got %d and %d", len(forward), len(backward))
	}
	if forward[0].From != backward[0].From || forward[0].To != backward[0].To {
		t.Fatalf("pair keys differ: %s-%s vs %s-%s", forward[0].From, forward[0].To, backward[0].From, backward[0].To)
	}
}

func TestPatternSignal(t *testing.T) {
	lex := lexicon.Default()
	idx := newNameIndex(testCharacters("甲", "乙"))

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "mentorship",
			content: "甲是乙的师父。",
			want:    []string{lexicon.RelationMentorship},
		},
		{
			name:    "hostility",
			content: "甲攻击乙。",
			want:    []string{lexicon.RelationHostility},
		},
		{
			name:    "self relation discarded",
			content: "甲打甲。",
			want:    []string{},
		},
		{
			name:    "no pattern",
			content: "甲和乙吃饭。",
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := patternSignal([]common.Chapter{chapter(1, tt.content)}, idx, lex.RelationPatterns)
			types := make([]string, 0, len(got))
			for _, ev := range got {
				types = append(types, ev.Type)
				if !almostEqual(ev.Strength, patternStrength) {
					t.Errorf("unexpected strength %f", ev.Strength)
				}
			}
			if !reflect.DeepEqual(types, tt.want) {
				t.Errorf("got types %v, want %v", types, tt.want)
			}
		})
	}
}

func TestDialogueSignal(t *testing.T) {
	lex := lexicon.Default()
	tok := text.NewLexiconTokenizer(lex)
	idx := newNameIndex(testCharacters("甲", "乙", "丙"))
	chapters := []common.Chapter{
		chapter(1, "甲说：“乙，你好。”"),
		chapter(2, "“丙在哪里？”无人应答。"),
	}

	got := dialogueSignal(tok, chapters, idx, lex.SpeechVerbs)
	if len(got) != 1 {
		t.Fatalf("expected one dialogue record, got %+v", got)
	}
	key := common.PairKey("甲", "乙")
	ev := got[0]
	if ev.From != key[0] || ev.To != key[1] || ev.Type != lexicon.RelationDialogue {
		t.Errorf("unexpected record %+v", ev)
	}
	if !almostEqual(ev.Strength, 0.2) || ev.Count != 1 {
		t.Errorf("unexpected strength %f / count %d", ev.Strength, ev.Count)
	}
}

func TestMergeRelations(t *testing.T) {
	cooc := []common.RelationEvidence{
		{From: "乙", To: "甲", Type: lexicon.RelationAcquainted, Strength: 0.3, Chapters: []int{2}},
	}
	patterns := []common.RelationEvidence{
		{From: "甲", To: "乙", Type: lexicon.RelationKinship, Strength: 0.8, Chapters: []int{1}},
		{From: "乙", To: "甲", Type: lexicon.RelationKinship, Strength: 0.8, Chapters: []int{3}},
	}
	dialogue := []common.RelationEvidence{
		{From: "丙", To: "甲", Type: lexicon.RelationDialogue, Strength: 0, Chapters: []int{1}},
		{From: "丙", To: "乙", Type: lexicon.RelationDialogue, Strength: 0.2},
	}

	got := mergeRelations(cooc, patterns, dialogue)
	key := common.PairKey("甲", "乙")
	want := []common.Relation{
		{
			ID:               "rel_001",
			From:             key[0],
			To:               key[1],
			RelationshipType: lexicon.RelationKinship,
			Strength:         0.8,
			FirstMetChapter:  1,
			Chapters:         []int{1, 2, 3},
			AllTypes:         []string{lexicon.RelationAcquainted, lexicon.RelationKinship},
			EvidenceCount:    3,
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("mergeRelations =\n%+v\nwant\n%+v", got, want)
	}
}

func TestMajorityTypeTieBreak(t *testing.T) {
	tests := []struct {
		name  string
		types []string
		want  string
	}{
		{"first seen wins tie", []string{"dialogue", "acquainted"}, "dialogue"},
		{"majority", []string{"acquainted", "kinship", "kinship"}, "kinship"},
		{"single", []string{"romance"}, "romance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := majorityType(tt.types); got != tt.want {
				t.Errorf("majorityType(%v) = %s, want %s", tt.types, got, tt.want)
			}
		})
	}
}

func TestSingleCharacterHasNoRelations(t *testing.T) {
	client := newTestClient(t)
	relations, err := client.ExtractRelations([]common.Chapter{chapter(1, "甲走了。", "甲又来了。")}, testCharacters("甲"))
	if err != nil {
		t.Fatal(err)
	}
	if relations == nil || len(relations) != 0 {
		t.Fatalf("expected empty relations, got %+v", relations)
	}
}

func TestExtractRelationsRejectsNamelessCharacter(t *testing.T) {
	client := newTestClient(t)
	characters := append(testCharacters("甲"), common.Character{Name: "", MentionCount: 1, FirstAppearance: 1})

	relations, err := client.ExtractRelations([]common.Chapter{chapter(1, "甲走了。")}, characters)
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if relations != nil {
		t.Errorf("expected no relations, got %+v", relations)
	}
}
