// Package versions resolves document versions and their file sizes.
package versions

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docrepo/internal/domain"
	"docrepo/internal/port"
)

// DefaultConcurrency bounds the size lookups run in parallel.
const DefaultConcurrency = 4

// Catalog loads version lists through the API.
type Catalog struct {
	api   port.VersionLister
	limit int
	log   *zap.Logger
}

// NewCatalog creates a catalog. A non-positive limit uses DefaultConcurrency.
func NewCatalog(api port.VersionLister, limit int, log *zap.Logger) *Catalog {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{api: api, limit: limit, log: log}
}

// List returns the versions of a document in server order.
func (c *Catalog) List(ctx context.Context, documentID int64) ([]domain.Version, error) {
	versions, err := c.api.ListVersions(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("listing versions of document %d: %w", documentID, err)
	}
	return versions, nil
}

// Latest finds the version whose number equals current. No ordering of
// versions is assumed.
func Latest(versions []domain.Version, current int) (domain.Version, bool) {
	for _, v := range versions {
		if v.VersionNumber == current {
			return v, true
		}
	}
	return domain.Version{}, false
}

// SizeOf resolves the file size of the document's current version. It
// returns nil when the size is unknown, including on lookup failure.
func (c *Catalog) SizeOf(ctx context.Context, doc domain.DocSummary) *int64 {
	versions, err := c.api.ListVersions(ctx, doc.ID)
	if err != nil {
		c.log.Debug("versions.SizeOf: lookup failed",
			zap.Int64("document_id", doc.ID),
			zap.Error(err),
		)
		return nil
	}
	v, ok := Latest(versions, doc.CurrentVersionNumber)
	if !ok {
		return nil
	}
	return v.FileSize
}

// Sizes resolves SizeOf for every document with bounded concurrency. Each
// lookup is independent: a failure yields a nil entry for that id only.
// Every input id is present in the result.
func (c *Catalog) Sizes(ctx context.Context, docs []domain.DocSummary) map[int64]*int64 {
	out := make(map[int64]*int64, len(docs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.limit)
	for _, doc := range docs {
		doc := doc
		g.Go(func() error {
			size := c.SizeOf(gctx, doc)
			mu.Lock()
			out[doc.ID] = size
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
