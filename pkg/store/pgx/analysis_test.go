package pgx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/OFFIS-RIT/plotline/backend/pkg/common"
	"github.com/OFFIS-RIT/plotline/backend/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeConn keeps the JSONB column per novel id and answers the four
// statements the storage issues.
type fakeConn struct {
	docs    map[string][]byte
	summary map[string][]any
	order   []string
}

func newFakeConn() *fakeConn {
	return &fakeConn{docs: make(map[string][]byte), summary: make(map[string][]any)}
}

func (f *fakeConn) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	switch {
	case strings.Contains(sql, "INSERT INTO novel_analyses"):
		id := args[0].(string)
		if _, ok := f.docs[id]; !ok {
			f.order = append(f.order, id)
		}
		f.docs[id] = args[7].([]byte)
		f.summary[id] = []any{args[0], args[1], args[2], args[3], args[4], args[5], args[6], args[8]}
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case strings.Contains(sql, "DELETE FROM novel_analyses"):
		id := args[0].(string)
		if _, ok := f.docs[id]; !ok {
			return pgconn.NewCommandTag("DELETE 0"), nil
		}
		delete(f.docs, id)
		delete(f.summary, id)
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	return pgconn.CommandTag{}, fmt.Errorf("unexpected statement %q", sql)
}

func (f *fakeConn) QueryRow(_ context.Context, _ string, args ...any) pgxv5.Row {
	data, ok := f.docs[args[0].(string)]
	if !ok {
		return fakeRow{err: pgxv5.ErrNoRows}
	}
	return fakeRow{values: []any{data}}
}

func (f *fakeConn) Query(context.Context, string, ...any) (pgxv5.Rows, error) {
	rows := &fakeRows{}
	for _, id := range f.order {
		if values, ok := f.summary[id]; ok {
			rows.rows = append(rows.rows, values)
		}
	}
	return rows, nil
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

type fakeRows struct {
	rows [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgxv5.Conn                            { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.rows[r.pos-1], nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return assign(dest, r.rows[r.pos-1])
}

func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = values[i].(string)
		case *int:
			*p = values[i].(int)
		case *[]byte:
			*p = values[i].([]byte)
		case *time.Time:
			*p = values[i].(time.Time)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

func TestAnalysisDBStorageRoundTrip(t *testing.T) {
	conn := newFakeConn()
	s := NewAnalysisDBStorage(conn)
	ctx := context.Background()
	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	analysis := &common.Analysis{
		NovelID: "n1",
		Title:   "青云志\x00",
		Characters: common.CharacterAnalysis{
			Characters: []common.Character{{Name: "甲\x00乙", MentionCount: 2}},
		},
		CreatedAt: created,
	}
	if err := s.SaveAnalysis(ctx, analysis); err != nil {
		t.Fatalf("SaveAnalysis returned error: %v", err)
	}
	if strings.Contains(string(conn.docs["n1"]), `\u0000`) {
		t.Errorf("NUL escapes must be stripped before storing")
	}

	got, err := s.GetAnalysis(ctx, "n1")
	if err != nil {
		t.Fatalf("GetAnalysis returned error: %v", err)
	}
	if got.Characters.Characters[0].Name != "甲乙" || !got.CreatedAt.Equal(created) {
		t.Errorf("unexpected analysis %+v", got)
	}

	list, err := s.ListAnalyses(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Title != "青云志" || list[0].CharacterCount != 1 {
		t.Errorf("unexpected summaries %+v", list)
	}

	if err := s.DeleteAnalysis(ctx, "n1"); err != nil {
		t.Fatalf("DeleteAnalysis returned error: %v", err)
	}
	if _, err := s.GetAnalysis(ctx, "n1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteAnalysis(ctx, "n1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for second delete, got %v", err)
	}
}

func TestAnalysisDBStorageRejectsMissingID(t *testing.T) {
	s := NewAnalysisDBStorage(newFakeConn())
	if err := s.SaveAnalysis(context.Background(), &common.Analysis{}); !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStripNulEscapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no escapes", `{"a":"b"}`, `{"a":"b"}`},
		{"nul escape", `{"a":"x\u0000y"}`, `{"a":"xy"}`},
		{"escaped backslash keeps text", `{"a":"\\u0000"}`, `{"a":"\\u0000"}`},
		{"escaped backslash then nul", `{"a":"\\\u0000"}`, `{"a":"\\"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(stripNulEscapes([]byte(tt.input))); got != tt.want {
				t.Errorf("stripNulEscapes(%s) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hello", "hello"},
		{"hel\x00lo", "hello"},
		{string([]byte{'a', 0xff, 'b'}), "ab"},
	}
	for _, tt := range tests {
		if got := sanitizeText(tt.input); got != tt.want {
			t.Errorf("sanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
