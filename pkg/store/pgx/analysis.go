package pgx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/OFFIS-RIT/plotline/backend/pkg/common"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"
	"github.com/OFFIS-RIT/plotline/backend/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

// AnalysisDBStorage stores analyses as JSONB documents with the summary
// columns denormalised for listing. The pool handles concurrency.
type AnalysisDBStorage struct {
	conn pgxIConn
}

// NewAnalysisDBStorage wraps an existing connection or pool. Run Migrate
// first.
func NewAnalysisDBStorage(conn pgxIConn) *AnalysisDBStorage {
	return &AnalysisDBStorage{conn: conn}
}

func (s *AnalysisDBStorage) SaveAnalysis(ctx context.Context, analysis *common.Analysis) error {
	if analysis == nil || analysis.NovelID == "" {
		return fmt.Errorf("failed to save analysis: %w", common.ErrInvalidInput)
	}
	data, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}
	data = stripNulEscapes(data)

	sum := analysis.Summary()
	_, err = s.conn.Exec(ctx, upsertAnalysisSQL,
		sum.NovelID,
		sanitizeText(sum.Title),
		sanitizeText(sum.Author),
		sum.ChapterCount,
		sum.TotalWords,
		sum.CharacterCount,
		sum.EventCount,
		data,
		sum.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis %s: %w", sum.NovelID, err)
	}
	logger.Debug("[Store] Analysis saved", "novel_id", sum.NovelID, "bytes", len(data))
	return nil
}

func (s *AnalysisDBStorage) GetAnalysis(ctx context.Context, novelID string) (*common.Analysis, error) {
	var data []byte
	err := s.conn.QueryRow(ctx, getAnalysisSQL, novelID).Scan(&data)
	if err != nil {
		if errors.Is(err, pgxv5.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load analysis %s: %w", novelID, err)
	}

	var analysis common.Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis %s: %w", novelID, err)
	}
	return &analysis, nil
}

func (s *AnalysisDBStorage) ListAnalyses(ctx context.Context) ([]common.AnalysisSummary, error) {
	rows, err := s.conn.Query(ctx, listAnalysesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	out := make([]common.AnalysisSummary, 0)
	for rows.Next() {
		var sum common.AnalysisSummary
		var created time.Time
		if err := rows.Scan(
			&sum.NovelID,
			&sum.Title,
			&sum.Author,
			&sum.ChapterCount,
			&sum.TotalWords,
			&sum.CharacterCount,
			&sum.EventCount,
			&created,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analysis summary: %w", err)
		}
		sum.CreatedAt = created.UTC()
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return out, nil
}

func (s *AnalysisDBStorage) DeleteAnalysis(ctx context.Context, novelID string) error {
	tag, err := s.conn.Exec(ctx, deleteAnalysisSQL, novelID)
	if err != nil {
		return fmt.Errorf("failed to delete analysis %s: %w", novelID, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func sanitizeText(value string) string {
	if value == "" {
		return value
	}
	return strings.ReplaceAll(strings.ToValidUTF8(value, ""), "\x00", "")
}

// stripNulEscapes removes \u0000 escapes from encoded JSON, jsonb rejects
// them. Escapes preceded by an odd run of backslashes are literal text and
// stay.
func stripNulEscapes(data []byte) []byte {
	nul := []byte(`\u0000`)
	if !bytes.Contains(data, nul) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\\' && bytes.HasPrefix(data[i:], nul) {
			run := 0
			for j := len(out) - 1; j >= 0 && out[j] == '\\'; j-- {
				run++
			}
			if run%2 == 0 {
				i += len(nul) - 1
				continue
			}
		}
		out = append(out, data[i])
	}
	return out
}

const upsertAnalysisSQL = `
INSERT INTO novel_analyses (
    novel_id, title, author, chapter_count, total_words,
    character_count, event_count, analysis, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9)
ON CONFLICT (novel_id) DO UPDATE
SET title           = EXCLUDED.title,
    author          = EXCLUDED.author,
    chapter_count   = EXCLUDED.chapter_count,
    total_words     = EXCLUDED.total_words,
    character_count = EXCLUDED.character_count,
    event_count     = EXCLUDED.event_count,
    analysis        = EXCLUDED.analysis,
    created_at      = EXCLUDED.created_at,
    updated_at      = now();
`

const getAnalysisSQL = `
SELECT analysis FROM novel_analyses WHERE novel_id = $1;
`

const listAnalysesSQL = `
SELECT novel_id, title, author, chapter_count, total_words,
       character_count, event_count, created_at
FROM novel_analyses
ORDER BY created_at DESC, novel_id ASC;
`

const deleteAnalysisSQL = `
DELETE FROM novel_analyses WHERE novel_id = $1;
`

var _ store.NovelStorage = (*AnalysisDBStorage)(nil)
