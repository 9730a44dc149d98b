// Package detail drives the document detail view: loading a document with
// its versions, downloading, uploading a new version and editing metadata.
package detail

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"docrepo/internal/combobox"
	"docrepo/internal/domain"
	"docrepo/internal/port"
	"docrepo/internal/versions"
)

// Controller is the state machine behind one document's detail view.
//
// Load moves it to Loading and then to Ready or Failed. From Ready the upload
// and save flows may run, one at a time; each reloads on success. The error slot holds the
// message of the last failure and is cleared when a new load or mutation
// starts.
type Controller struct {
	api     port.DocumentAPI
	catalog *versions.Catalog
	id      int64
	log     *zap.Logger

	mu          sync.Mutex
	state       domain.LoadState
	doc         *domain.Document
	versionList []domain.Version
	draft       domain.DraftState
	errMsg      string
	loadSeq     uint64

	upload UploadFlow
	save   SaveFlow

	tags        *combobox.Selector[string]
	departments *combobox.Selector[domain.Department]
}

// NewController creates a controller for document id. Nothing is fetched
// until Load. The settings apply to both selectors.
func NewController(api port.DocumentAPI, id int64, log *zap.Logger, set ...combobox.Setting) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		api:     api,
		catalog: versions.NewCatalog(api, 1, log),
		id:      id,
		log:     log,
		state:   domain.StateLoading,
	}
	c.tags = combobox.NewTagSelector(nil, nil, true, c.setTags, set...)
	c.departments = combobox.NewDepartmentSelector(nil, nil, c.setDepartments, set...)
	return c
}

// ID returns the document id.
func (c *Controller) ID() int64 {
	return c.id
}

// Load fetches the document and then its versions. A load started later wins:
// results of a superseded load are dropped.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loadSeq++
	seq := c.loadSeq
	c.state = domain.StateLoading
	c.errMsg = ""
	c.mu.Unlock()

	doc, err := c.api.GetDocument(ctx, c.id)
	var vs []domain.Version
	if err == nil {
		vs, err = c.catalog.List(ctx, c.id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.loadSeq {
		c.log.Debug("detail.Load: dropping superseded result", zap.Int64("document_id", c.id))
		return nil
	}
	if err != nil {
		c.state = domain.StateFailed
		c.errMsg = domain.UserMessage(err, domain.MsgLoadFailed)
		c.log.Warn("detail.Load: failed", zap.Int64("document_id", c.id), zap.Error(err))
		return err
	}

	c.doc = doc
	c.versionList = vs
	c.state = domain.StateReady
	c.resetDraft()
	return nil
}

// Retry re-enters Loading after a failure.
func (c *Controller) Retry(ctx context.Context) error {
	return c.Load(ctx)
}

// resetDraft copies the loaded document into the draft. Department ids are
// not part of the detail response, so the edited set is kept as is, as is a
// pending file. Must hold c.mu.
func (c *Controller) resetDraft() {
	c.draft.Title = c.doc.Title
	c.draft.Description = c.doc.Description
	c.draft.Tags = append([]string(nil), c.doc.Tags...)
	c.tags.SetSelection(c.draft.Tags)
}

// LoadCatalogs fills the tag and department selectors. Catalog failures
// leave an empty pool.
func (c *Controller) LoadCatalogs(ctx context.Context) {
	c.tags.SetPool(tagNames(combobox.LoadTags(ctx, c.api, c.log)))
	deps := combobox.LoadDepartments(ctx, c.api, c.log)
	c.departments.SetPool(deps)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.departments.SetSelection(combobox.ResolveDepartments(deps, c.draft.DepartmentIDs))
}

func tagNames(tags []domain.Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}

// State returns the load state.
func (c *Controller) State() domain.LoadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the message of the last failure, or "".
func (c *Controller) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Document returns a copy of the loaded document, or nil before the first
// successful load.
func (c *Controller) Document() *domain.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil {
		return nil
	}
	d := *c.doc
	d.Tags = append([]string(nil), c.doc.Tags...)
	return &d
}

// Versions returns the loaded versions in server order.
func (c *Controller) Versions() []domain.Version {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Version(nil), c.versionList...)
}

// LatestVersion is the version whose number equals the document's current
// version number. It is derived on every call.
func (c *Controller) LatestVersion() (domain.Version, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil {
		return domain.Version{}, false
	}
	return versions.Latest(c.versionList, c.doc.CurrentVersionNumber)
}

// Capabilities returns the server-computed flags, all false until loaded.
func (c *Controller) Capabilities() domain.Capabilities {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil {
		return domain.Capabilities{}
	}
	return c.doc.Capabilities
}

// Draft returns a copy of the uncommitted edits.
func (c *Controller) Draft() domain.DraftState {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.draft
	d.Tags = append([]string(nil), c.draft.Tags...)
	d.DepartmentIDs = append([]int64(nil), c.draft.DepartmentIDs...)
	return d
}

// SetTitle edits the draft title.
func (c *Controller) SetTitle(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Title = title
}

// SetDescription edits the draft description.
func (c *Controller) SetDescription(description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Description = description
}

// SetTags replaces the draft tags and syncs the tag selector.
func (c *Controller) SetTags(tags []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Tags = domain.UniqueStrings(tags)
	c.tags.SetSelection(c.draft.Tags)
}

// SetDepartments replaces the draft department ids and syncs the selector.
func (c *Controller) SetDepartments(ids []int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.DepartmentIDs = domain.UniqueIDs(ids)
	c.departments.SetSelection(combobox.ResolveDepartments(c.departments.Pool(), c.draft.DepartmentIDs))
}

func (c *Controller) setTags(tags []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Tags = tags
}

func (c *Controller) setDepartments(ids []int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.DepartmentIDs = ids
}

// SelectFile sets the file for the next version upload.
func (c *Controller) SelectFile(file *domain.FileUpload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.PendingFile = file
}

// TagSelector is the tag editor bound to the draft. It allows new tags.
func (c *Controller) TagSelector() *combobox.Selector[string] {
	return c.tags
}

// DepartmentSelector is the permission editor bound to the draft.
func (c *Controller) DepartmentSelector() *combobox.Selector[domain.Department] {
	return c.departments
}

// UploadFlow exposes the upload busy flag and outcome.
func (c *Controller) UploadFlow() *UploadFlow {
	return &c.upload
}

// SaveFlow exposes the save busy flag and outcome.
func (c *Controller) SaveFlow() *SaveFlow {
	return &c.save
}

// Download fetches one version, or the latest.
func (c *Controller) Download(ctx context.Context, ref domain.VersionRef) (*domain.Download, error) {
	dl, err := c.api.Download(ctx, c.id, ref)
	if err != nil {
		return nil, fmt.Errorf("downloading %s version of document %d: %w", ref, c.id, err)
	}
	return dl, nil
}

// UploadNewVersion uploads the pending file. On success the pending file is
// cleared and the document reloaded; on failure the file stays selected so
// the upload can be retried.
func (c *Controller) UploadNewVersion(ctx context.Context) error {
	c.mu.Lock()
	if c.state != domain.StateReady || c.doc == nil {
		c.mu.Unlock()
		return domain.ErrNotLoaded
	}
	if !c.doc.Capabilities.CanUploadVersion {
		c.mu.Unlock()
		return domain.ErrNotPermitted
	}
	file := c.draft.PendingFile
	if file == nil {
		c.mu.Unlock()
		return domain.ErrNoFile
	}
	if !c.beginMutation(&c.upload.flow) {
		c.mu.Unlock()
		return domain.ErrBusy
	}
	c.errMsg = ""
	c.mu.Unlock()

	if _, err := c.api.UploadVersion(ctx, c.id, file); err != nil {
		c.fail("detail.UploadNewVersion", err, domain.MsgUploadFailed)
		c.upload.finish(err)
		return err
	}

	c.mu.Lock()
	if c.draft.PendingFile == file {
		c.draft.PendingFile = nil
	}
	c.mu.Unlock()

	err := c.Load(ctx)
	c.upload.finish(nil)
	if err != nil {
		return fmt.Errorf("reloading after upload: %w", err)
	}
	return nil
}

// SaveMetadata sends the draft. Empty text fields and empty collections are
// omitted, which the server treats as unchanged. On failure the draft is
// kept for a retry.
func (c *Controller) SaveMetadata(ctx context.Context) error {
	c.mu.Lock()
	if c.state != domain.StateReady || c.doc == nil {
		c.mu.Unlock()
		return domain.ErrNotLoaded
	}
	if !c.doc.Capabilities.CanEditMetadata {
		c.mu.Unlock()
		return domain.ErrNotPermitted
	}
	if !c.beginMutation(&c.save.flow) {
		c.mu.Unlock()
		return domain.ErrBusy
	}
	update := c.draft.Update()
	c.errMsg = ""
	c.mu.Unlock()

	if _, err := c.api.UpdateDocument(ctx, c.id, update); err != nil {
		c.fail("detail.SaveMetadata", err, domain.MsgSaveFailed)
		c.save.finish(err)
		return err
	}

	err := c.Load(ctx)
	c.save.finish(nil)
	if err != nil {
		return fmt.Errorf("reloading after save: %w", err)
	}
	return nil
}

// beginMutation starts f unless any mutation of this document is in flight.
// Must hold c.mu.
func (c *Controller) beginMutation(f *flow) bool {
	if c.upload.Busy() || c.save.Busy() {
		return false
	}
	return f.begin()
}

func (c *Controller) fail(op string, err error, fallback string) {
	msg := domain.UserMessage(err, fallback)
	c.mu.Lock()
	c.errMsg = msg
	c.mu.Unlock()
	c.log.Warn(op+": failed", zap.Int64("document_id", c.id), zap.Error(err))
}
