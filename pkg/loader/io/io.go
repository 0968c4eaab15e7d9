package io

import (
	"context"
	"os"

	"github.com/OFFIS-RIT/plotline/backend/pkg/loader"
)

// IONovelFileLoader reads novels from the local filesystem. Results are
// cached per file.
type IONovelFileLoader struct {
	cache *loader.Cache
}

func NewIONovelFileLoader() *IONovelFileLoader {
	return &IONovelFileLoader{cache: loader.NewCache()}
}

func (l *IONovelFileLoader) GetFileBytes(ctx context.Context, file loader.NovelFile) ([]byte, error) {
	return l.cache.Get(ctx, file, func(ctx context.Context) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return os.ReadFile(file.Path)
	})
}
