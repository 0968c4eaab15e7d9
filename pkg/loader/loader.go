package loader

import (
	"context"
	"fmt"
	"path"

	"github.com/OFFIS-RIT/plotline/backend/pkg/common"
)

// NovelFile is a stored plain text novel. ID becomes the novel identity,
// Path is the location understood by Loader (a filesystem path or an
// object key). Title overrides the title derived from the file.
type NovelFile struct {
	ID     string
	Path   string
	Title  string
	Loader NovelFileLoader
}

// NovelFileLoader fetches the raw bytes of a NovelFile. Implementations may
// read from disk, object storage or anything else.
type NovelFileLoader interface {
	GetFileBytes(ctx context.Context, file NovelFile) ([]byte, error)
}

// Load fetches the file and parses it into a novel.
//
// Example:
//
//	file := loader.NovelFile{ID: "n1", Path: "books/qingyun.txt", Loader: io.NewIONovelFileLoader()}
//	novel, err := file.Load(ctx)
func (f *NovelFile) Load(ctx context.Context) (common.Novel, error) {
	if f.Loader == nil {
		return common.Novel{}, fmt.Errorf("no loader configured for %s", f.Path)
	}
	data, err := f.Loader.GetFileBytes(ctx, *f)
	if err != nil {
		return common.Novel{}, fmt.Errorf("failed to load %s: %w", f.Path, err)
	}
	novel, err := ParseNovel(f.ID, path.Base(f.Path), data)
	if err != nil {
		return common.Novel{}, err
	}
	if f.Title != "" {
		novel.Title = f.Title
	}
	novel.Source = f.Path
	return novel, nil
}

// CacheKey identifies a file for loader caches.
func CacheKey(file NovelFile) string {
	return file.ID + ":" + file.Path
}
