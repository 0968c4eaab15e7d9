package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/OFFIS-RIT/plotline/backend/pkg/common"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"
	"github.com/OFFIS-RIT/plotline/backend/pkg/store"
)

type entry struct {
	summary common.AnalysisSummary
	data    []byte
}

// AnalysisStorage keeps analyses in process memory. Results are stored in
// their JSON form so callers never share structures with the store.
type AnalysisStorage struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func NewAnalysisStorage() *AnalysisStorage {
	return &AnalysisStorage{entries: make(map[string]entry)}
}

func (s *AnalysisStorage) SaveAnalysis(ctx context.Context, analysis *common.Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if analysis == nil || analysis.NovelID == "" {
		return fmt.Errorf("failed to save analysis: %w", common.ErrInvalidInput)
	}
	data, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	s.mu.Lock()
	s.entries[analysis.NovelID] = entry{summary: analysis.Summary(), data: data}
	s.mu.Unlock()

	logger.Debug("[Store] Analysis saved", "novel_id", analysis.NovelID, "bytes", len(data))
	return nil
}

func (s *AnalysisStorage) GetAnalysis(ctx context.Context, novelID string) (*common.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	e, ok := s.entries[novelID]
	s.mu.RUnlock()
	if !ok {
		return nil, store.ErrNotFound
	}

	var analysis common.Analysis
	if err := json.Unmarshal(e.data, &analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}
	return &analysis, nil
}

// ListAnalyses returns summaries newest first, ties broken by novel id.
func (s *AnalysisStorage) ListAnalyses(ctx context.Context) ([]common.AnalysisSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]common.AnalysisSummary, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.summary)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].NovelID < out[j].NovelID
	})
	return out, nil
}

func (s *AnalysisStorage) DeleteAnalysis(ctx context.Context, novelID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[novelID]; !ok {
		return store.ErrNotFound
	}
	delete(s.entries, novelID)
	return nil
}

var _ store.NovelStorage = (*AnalysisStorage)(nil)
