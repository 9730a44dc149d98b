// Package browse composes document lists: all accessible documents, the
// caller's own documents and filtered search, each row annotated with the
// size of its current version.
package browse

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"docrepo/internal/domain"
	"docrepo/internal/port"
	"docrepo/internal/versions"
)

// MsgListFailed is shown when a document list cannot be fetched.
const MsgListFailed = "Failed to load documents"

// ErrClosed is returned by operations on a closed page.
var ErrClosed = errors.New("page is closed")

// Row is one list entry.
type Row struct {
	Doc domain.DocSummary
	// Size is the current version's file size, nil while unknown.
	Size *int64
}

// SizeText is the humanised size.
func (r Row) SizeText() string {
	return HumanizeBytes(r.Size)
}

// Page holds the document list currently shown. Each fetch supersedes the
// previous one, and results arriving after Close or after a newer fetch are
// discarded.
type Page struct {
	api   port.DocumentAPI
	sizes *versions.Catalog
	log   *zap.Logger

	mu     sync.Mutex
	state  domain.LoadState
	docs   []domain.DocSummary
	size   map[int64]*int64
	errMsg string
	seq    uint64
	closed bool
}

// NewPage creates an empty page.
func NewPage(api port.DocumentAPI, sizes *versions.Catalog, log *zap.Logger) *Page {
	if log == nil {
		log = zap.NewNop()
	}
	if sizes == nil {
		sizes = versions.NewCatalog(api, 0, log)
	}
	return &Page{
		api:   api,
		sizes: sizes,
		log:   log,
		state: domain.StateLoading,
		size:  map[int64]*int64{},
	}
}

// Load shows every document the caller can access.
func (p *Page) Load(ctx context.Context) error {
	return p.show(ctx, p.api.ListDocuments)
}

// LoadMine shows the documents the caller owns.
func (p *Page) LoadMine(ctx context.Context) error {
	return p.show(ctx, p.api.ListMyDocuments)
}

// Search shows the documents matching every supplied filter.
func (p *Page) Search(ctx context.Context, filters domain.SearchFilters) error {
	return p.show(ctx, func(ctx context.Context) ([]domain.DocSummary, error) {
		return p.api.SearchDocuments(ctx, filters)
	})
}

func (p *Page) show(ctx context.Context, fetch func(context.Context) ([]domain.DocSummary, error)) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.seq++
	seq := p.seq
	p.state = domain.StateLoading
	p.errMsg = ""
	p.mu.Unlock()

	docs, err := fetch(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || seq != p.seq {
		return nil
	}
	if err != nil {
		p.state = domain.StateFailed
		p.errMsg = domain.UserMessage(err, MsgListFailed)
		p.log.Warn("browse.show: list failed", zap.Error(err))
		return err
	}
	p.docs = docs
	p.size = map[int64]*int64{}
	p.state = domain.StateReady
	return nil
}

// RefreshSizes looks up the current-version size of every shown document.
// Lookups run concurrently and a failed one leaves that row unknown. The
// results are dropped if the page was closed or refetched meanwhile.
func (p *Page) RefreshSizes(ctx context.Context) {
	p.mu.Lock()
	if p.closed || len(p.docs) == 0 {
		p.mu.Unlock()
		return
	}
	seq := p.seq
	docs := append([]domain.DocSummary(nil), p.docs...)
	p.mu.Unlock()

	sizes := p.sizes.Sizes(ctx, docs)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || seq != p.seq {
		p.log.Debug("browse.RefreshSizes: dropping stale sizes")
		return
	}
	p.size = sizes
}

// Close tears the page down. Later results are ignored.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// State returns the load state.
func (p *Page) State() domain.LoadState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Err returns the last failure message, or "".
func (p *Page) Err() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errMsg
}

// Docs returns the shown documents.
func (p *Page) Docs() []domain.DocSummary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.DocSummary(nil), p.docs...)
}

// Size returns the known size of a row, or nil.
func (p *Page) Size(id int64) *int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size[id]
}

// Rows returns the shown documents with their sizes.
func (p *Page) Rows() []Row {
	p.mu.Lock()
	defer p.mu.Unlock()
	rows := make([]Row, len(p.docs))
	for i, d := range p.docs {
		rows[i] = Row{Doc: d, Size: p.size[d.ID]}
	}
	return rows
}
