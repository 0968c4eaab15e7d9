package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/OFFIS-RIT/plotline/backend/pkg/common"
	"github.com/OFFIS-RIT/plotline/backend/pkg/graph"
	"github.com/OFFIS-RIT/plotline/backend/pkg/lexicon"
	"github.com/OFFIS-RIT/plotline/backend/pkg/text"
)

func newClient(t *testing.T) *graph.GraphClient {
	t.Helper()
	lex := lexicon.Default()
	lex.Names = []string{"王小明", "李四"}
	client, err := graph.NewGraphClient(graph.NewGraphClientParams{Lexicon: lex, Tokenizer: text.NewLexiconTokenizer(lex)})
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func writeNovel(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	a := writeNovel(t, dir, "qingyun.txt", "作者：佚名\n第一章 相遇\n王小明遇到了李四。\n王小明和李四一起修炼。\n")
	b := writeNovel(t, dir, "luoxia.txt", "李四在落霞镇。\n王小明也来了。\n")

	summaries, err := run(context.Background(), newClient(t), options{OutDir: out, KeepNames: true}, []string{a, b})
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if len(summaries) != 2 || summaries[0].NovelID != "qingyun" || summaries[1].NovelID != "luoxia" {
		t.Fatalf("unexpected summaries %+v", summaries)
	}
	if summaries[0].Author != "佚名" || summaries[1].ChapterCount != 1 {
		t.Errorf("unexpected metadata %+v", summaries)
	}

	data, err := os.ReadFile(filepath.Join(out, "qingyun.json"))
	if err != nil {
		t.Fatal(err)
	}
	var analysis common.Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		t.Fatal(err)
	}
	if analysis.Title != "qingyun" || len(analysis.Characters.Characters) != 2 {
		t.Errorf("unexpected analysis %+v", analysis.Summary())
	}

	var index []common.AnalysisSummary
	data, err = os.ReadFile(filepath.Join(out, indexFile))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &index); err != nil || len(index) != 2 {
		t.Errorf("unexpected index %s (%v)", data, err)
	}
}

func TestRunGeneratedIDs(t *testing.T) {
	dir := t.TempDir()
	p := writeNovel(t, dir, "a.txt", "王小明遇到了李四。\n")

	summaries, err := run(context.Background(), newClient(t), options{OutDir: dir, Compact: true}, []string{p})
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 || summaries[0].NovelID == "a" || summaries[0].NovelID == "" {
		t.Errorf("expected a generated id, got %+v", summaries)
	}
}

func TestRunFailures(t *testing.T) {
	dir := t.TempDir()
	p := writeNovel(t, dir, "a.txt", "王小明遇到了李四。\n")
	other := filepath.Join(dir, "sub")
	if err := os.MkdirAll(other, 0o755); err != nil {
		t.Fatal(err)
	}
	dup := writeNovel(t, other, "a.txt", "李四。\n")

	tests := []struct {
		name  string
		paths []string
	}{
		{"missing file", []string{filepath.Join(dir, "missing.txt")}},
		{"duplicate ids", []string{p, dup}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(context.Background(), newClient(t), options{OutDir: dir, KeepNames: true}, tt.paths)
			if err == nil {
				t.Error("expected an error")
			}
		})
	}
}
