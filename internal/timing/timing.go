package timing

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// StatAnalyze is the stat type of a full novel analysis, amount counts
// runes.
const StatAnalyze = "analyze"

// sampleSize bounds how many recent runs a prediction averages over.
const sampleSize = 50

type dbConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Stats records processing durations in processing_stats and predicts the
// duration of new work from them.
type Stats struct {
	db dbConn
}

func New(db dbConn) *Stats {
	return &Stats{db: db}
}

func (s *Stats) AddProcessingTime(ctx context.Context, statType string, amount int, d time.Duration) error {
	if amount <= 0 {
		return nil
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO processing_stats (stat_type, amount, duration_ms)
		VALUES ($1, $2, $3)
	`, statType, amount, d.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to record processing time: %w", err)
	}
	return nil
}

// PredictProcessingTime scales the average duration per unit of the most
// recent runs to amount. It returns 0 while no runs are recorded.
func (s *Stats) PredictProcessingTime(ctx context.Context, statType string, amount int) (time.Duration, error) {
	var msPerUnit float64
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(duration_ms)::float8 / NULLIF(SUM(amount), 0), 0)
		FROM (
			SELECT amount, duration_ms
			FROM processing_stats
			WHERE stat_type = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
	`, statType, sampleSize).Scan(&msPerUnit)
	if err != nil {
		return 0, fmt.Errorf("failed to predict processing time: %w", err)
	}
	return time.Duration(msPerUnit * float64(amount) * float64(time.Millisecond)), nil
}

// Format renders d as hh:mm:ss.
func Format(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
