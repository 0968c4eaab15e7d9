package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/OFFIS-RIT/plotline/backend/pkg/common"
	"github.com/OFFIS-RIT/plotline/backend/pkg/graph"
	"github.com/OFFIS-RIT/plotline/backend/pkg/loader"
	loaderio "github.com/OFFIS-RIT/plotline/backend/pkg/loader/io"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"
	"github.com/OFFIS-RIT/plotline/backend/pkg/store/memory"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const indexFile = "index.json"

type options struct {
	OutDir    string
	KeepNames bool
	Compact   bool
}

// run analyses every file in paths and writes <novel id>.json per novel
// plus an index of all summaries to opts.OutDir.
func run(ctx context.Context, client *graph.GraphClient, opts options, paths []string) ([]common.AnalysisSummary, error) {
	fileLoader := loaderio.NewIONovelFileLoader()

	novels := make([]common.Novel, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		id, err := novelID(p, opts.KeepNames)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("%s and %s map to the same novel id %s", prev, p, id)
		}
		seen[id] = p

		file := loader.NovelFile{ID: id, Path: p, Loader: fileLoader}
		novel, err := file.Load(ctx)
		if err != nil {
			return nil, err
		}
		novels = append(novels, novel)
	}

	results, err := client.ProcessAndSave(ctx, novels, memory.NewAnalysisStorage())
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	summaries := make([]common.AnalysisSummary, 0, len(results))
	for _, analysis := range results {
		target := filepath.Join(opts.OutDir, analysis.NovelID+".json")
		if err := writeJSON(target, analysis, opts.Compact); err != nil {
			return nil, err
		}
		logger.Info("[CLI] Analysis written", "novel_id", analysis.NovelID, "path", target)
		summaries = append(summaries, analysis.Summary())
	}
	if err := writeJSON(filepath.Join(opts.OutDir, indexFile), summaries, opts.Compact); err != nil {
		return nil, err
	}
	return summaries, nil
}

func novelID(path string, keepName bool) (string, error) {
	if keepName {
		base := filepath.Base(path)
		return strings.TrimSuffix(base, filepath.Ext(base)), nil
	}
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate novel id: %w", err)
	}
	return id, nil
}

func writeJSON(path string, v any, compact bool) error {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
