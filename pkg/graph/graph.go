package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/plotline/backend/pkg/common"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"
	"github.com/OFFIS-RIT/plotline/backend/pkg/store"

	"golang.org/x/sync/errgroup"
)

// ProcessNovel runs the full pipeline over one novel: entities, relations,
// character network, events and timeline, then the location, emotion and
// state side analyses.
//
// The novel is validated first and the run fails fast on malformed input.
// An empty novel produces an empty analysis. Every call works on its own
// state, concurrent calls do not interfere.
func (g *GraphClient) ProcessNovel(ctx context.Context, novel common.Novel) (*common.Analysis, error) {
	if err := common.ValidateNovel(novel); err != nil {
		return nil, fmt.Errorf("failed to validate novel %s: %w", novel.ID, err)
	}
	chapters := novel.Chapters

	logger.Info("[Graph] Processing novel", "novel_id", novel.ID, "chapters", len(chapters))
	start := time.Now()

	tok := g.tokenizerFor(chapters)

	candidates, locations := extractEntities(tok, chapters, g.minMentions)
	characters := MergeAliases(candidates, g.aliasThreshold, len(chapters))
	logger.Debug("[Graph] Entities extracted", "characters", len(characters), "locations", len(locations))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	relations := g.extractRelations(tok, chapters, characters)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	characterAnalysis := analyzeCharacters(characters, relations)
	ranked := characterAnalysis.Characters
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeline := g.analyzeTimeline(tok, chapters, ranked)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analysis := &common.Analysis{
		NovelID:      novel.ID,
		Title:        novel.Title,
		Author:       novel.Author,
		ChapterCount: len(chapters),
		TotalWords:   novel.TotalWords(),
		Characters:   characterAnalysis,
		Locations:    g.AnalyzeLocations(chapters, locations, ranked, timeline.Events),
		Timeline:     timeline,
		Emotions:     g.AnalyzeEmotions(chapters, ranked),
		States:       g.TrackStates(chapters, ranked, timeline.Events),
		CreatedAt:    time.Now().UTC(),
	}

	logger.Info(
		"[Graph] Novel processed",
		"novel_id", novel.ID,
		"characters", len(ranked),
		"relations", len(relations),
		"events", len(timeline.Events),
		"duration", time.Since(start),
	)
	return analysis, nil
}

// ProcessNovels analyses independent novels in parallel, at most
// ParallelDocuments at a time. Results are returned in input order. The
// first failure cancels the remaining runs.
func (g *GraphClient) ProcessNovels(ctx context.Context, novels []common.Novel) ([]*common.Analysis, error) {
	results := make([]*common.Analysis, len(novels))

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallelDocuments)
	for i, novel := range novels {
		eg.Go(func() error {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			default:
				analysis, err := g.ProcessNovel(gCtx, novel)
				if err != nil {
					return err
				}
				results[i] = analysis
				return nil
			}
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to process novels:\n%w", err)
	}
	return results, nil
}

// ProcessAndSave analyses novels and stores every result in storeClient.
func (g *GraphClient) ProcessAndSave(
	ctx context.Context,
	novels []common.Novel,
	storeClient store.NovelStorage,
) ([]*common.Analysis, error) {
	results, err := g.ProcessNovels(ctx, novels)
	if err != nil {
		return nil, err
	}
	for _, analysis := range results {
		if err := storeClient.SaveAnalysis(ctx, analysis); err != nil {
			return nil, fmt.Errorf("failed to save analysis %s: %w", analysis.NovelID, err)
		}
	}
	logger.Info("[Graph] Analyses saved", "count", len(results))
	return results, nil
}
