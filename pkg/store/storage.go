package store

import (
	"context"
	"errors"

	"github.com/OFFIS-RIT/plotline/backend/pkg/common"
)

// ErrNotFound is returned when no analysis exists for a novel id.
var ErrNotFound = errors.New("analysis not found")

// NovelStorage persists finished analyses keyed by novel id. It is the only
// state shared between pipeline runs, implementations must be safe for
// concurrent use.
type NovelStorage interface {
	SaveAnalysis(ctx context.Context, analysis *common.Analysis) error
	GetAnalysis(ctx context.Context, novelID string) (*common.Analysis, error)
	ListAnalyses(ctx context.Context) ([]common.AnalysisSummary, error)
	DeleteAnalysis(ctx context.Context, novelID string) error
}
