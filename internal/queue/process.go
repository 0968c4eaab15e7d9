package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/plotline/backend/internal/timing"
	"github.com/OFFIS-RIT/plotline/backend/pkg/graph"
	"github.com/OFFIS-RIT/plotline/backend/pkg/leaselock"
	"github.com/OFFIS-RIT/plotline/backend/pkg/loader"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"
	"github.com/OFFIS-RIT/plotline/backend/pkg/store"
)

// Locker serialises work per key. *leaselock.Client implements it.
type Locker interface {
	WithLease(ctx context.Context, key string, opts leaselock.Options, fn func(ctx context.Context) error) error
}

// TimingRecorder stores how long an analysis took. *timing.Stats
// implements it.
type TimingRecorder interface {
	AddProcessingTime(ctx context.Context, statType string, amount int, d time.Duration) error
}

// Processor turns analyze messages into stored analyses.
type Processor struct {
	Graph *graph.GraphClient
	Store store.NovelStorage
	// NewLoader is called once per message so cached file bytes never
	// outlive the run that loaded them.
	NewLoader func() loader.NovelFileLoader
	// Locks is optional. Without it novels are not protected against
	// concurrent redelivery.
	Locks   Locker
	Timings TimingRecorder
}

// ProcessAnalyzeMessage loads the novel named by body, analyses it under a
// per-novel lease and saves the result.
func (p *Processor) ProcessAnalyzeMessage(ctx context.Context, body []byte) error {
	msg, err := ParseAnalyzeMessage(body)
	if err != nil {
		return err
	}
	start := time.Now()
	logger.Info("[Queue] Analyzing novel", "novel_id", msg.NovelID, "correlation_id", msg.CorrelationID)

	run := func(ctx context.Context) error {
		file := loader.NovelFile{
			ID:     msg.NovelID,
			Path:   msg.ObjectKey,
			Title:  msg.Title,
			Loader: p.NewLoader(),
		}
		novel, err := file.Load(ctx)
		if err != nil {
			return err
		}
		analysis, err := p.Graph.ProcessNovel(ctx, novel)
		if err != nil {
			return err
		}
		if err := p.Store.SaveAnalysis(ctx, analysis); err != nil {
			return err
		}
		if p.Timings != nil {
			if err := p.Timings.AddProcessingTime(ctx, timing.StatAnalyze, analysis.TotalWords, time.Since(start)); err != nil {
				logger.Warn("[Queue] Failed to record processing time", "novel_id", msg.NovelID, "err", err)
			}
		}
		return nil
	}

	if p.Locks != nil {
		opts := leaselock.Options{TTL: 5 * time.Minute, Wait: true, WaitInterval: time.Second}
		err = p.Locks.WithLease(ctx, leaselock.NovelKey(msg.NovelID), opts, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to analyze novel %s: %w", msg.NovelID, err)
	}

	logger.Info("[Queue] Novel analyzed", "novel_id", msg.NovelID, "duration", timing.Format(time.Since(start)))
	return nil
}
