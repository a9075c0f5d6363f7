// File path: internal/index/index.go
package index

import (
	"context"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/legacyforge/migrator/internal/catalog"
	"github.com/legacyforge/migrator/internal/common"
	"github.com/legacyforge/migrator/internal/generator"
)

const (
	chunkSize    = 2000
	chunkOverlap = 500
)

// Indexer splits generated sources into overlapping chunks and records them
// in the catalog for later retrieval. Indexing is advisory: a failure never
// fails the owning job.
type Indexer struct {
	splitter textsplitter.TextSplitter
	store    *catalog.Catalog
}

func New(store *catalog.Catalog) *Indexer {
	return &Indexer{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
		store: store,
	}
}

// Index chunks every generated artifact and replaces the job's chunk rows.
// Unreadable or unsplittable artifacts are skipped with a warning.
func (ix *Indexer) Index(ctx context.Context, jobID string, artifacts map[string]generator.Artifact) (int, error) {
	logger := common.Logger()
	var records []catalog.ChunkRecord
	for name, artifact := range artifacts {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		data, err := os.ReadFile(artifact.Path)
		if err != nil {
			logger.Warn("index: unreadable artifact skipped", "path", artifact.Path, "error", err)
			continue
		}
		chunks, err := ix.splitter.SplitText(string(data))
		if err != nil {
			logger.Warn("index: split failed", "program", name, "error", err)
			continue
		}
		for seq, chunk := range chunks {
			records = append(records, catalog.ChunkRecord{
				ProgramName: name,
				Seq:         seq,
				Content:     chunk,
			})
		}
	}
	if err := ix.store.ReplaceChunks(ctx, jobID, records); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}
	logger.Info("index: chunking complete", "job", jobID, "chunks", len(records))
	return len(records), nil
}
