package fakeapi

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"docrepo/internal/domain"
)

// DefaultDepartments are seeded into every new store.
var DefaultDepartments = []string{"HR", "Finance", "Legal", "IT", "Operations"}

type user struct {
	id           int64
	name         string
	email        string
	passwordHash []byte
	role         *string
	departmentID *int64
}

type storedVersion struct {
	id             int64
	number         int
	filename       string
	mimeType       string
	data           []byte
	uploadedByName string
	uploadedAt     time.Time
}

type document struct {
	id          int64
	title       string
	description *string
	ownerID     int64
	current     int
	tags        []string
	departments []int64
	versions    []*storedVersion
	updatedAt   time.Time
}

// StoredFile is an uploaded payload.
type StoredFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// NewDocumentInput is a parsed upload form.
type NewDocumentInput struct {
	Title         string
	Description   *string
	Tags          []string
	DepartmentIDs []int64
	File          StoredFile
}

// MetadataUpdate is a parsed PUT body. Nil fields are left unchanged.
type MetadataUpdate struct {
	Title                   *string  `json:"title"`
	Description             *string  `json:"description"`
	Tags                    []string `json:"tags"`
	PermissionDepartmentIDs []int64  `json:"permission_department_ids"`
}

// DocumentDetail is the GET /api/documents/{id} body.
type DocumentDetail struct {
	ID                   int64    `json:"id"`
	Title                string   `json:"title"`
	Description          *string  `json:"description"`
	CurrentVersionNumber int      `json:"current_version_number"`
	Tags                 []string `json:"tags"`
	OwnerID              *int64   `json:"owner_id"`
	CanUploadVersion     bool     `json:"can_upload_version"`
	CanEditMetadata      bool     `json:"can_edit_metadata"`
}

// Store is the in-memory repository behind the fake backend. It is safe for
// concurrent use.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	departments []domain.Department
	tags        map[string]int64
	users       map[int64]*user
	byEmail     map[string]int64
	docs        map[int64]*document

	nextUser    int64
	nextDoc     int64
	nextTag     int64
	nextVersion int64
}

// NewStore creates a store seeded with DefaultDepartments. A nil now uses
// time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	s := &Store{
		now:     now,
		tags:    make(map[string]int64),
		users:   make(map[int64]*user),
		byEmail: make(map[string]int64),
		docs:    make(map[int64]*document),
	}
	for i, name := range DefaultDepartments {
		s.departments = append(s.departments, domain.Department{ID: int64(i + 1), Name: name})
	}
	return s
}

// Departments returns the catalog ordered by name.
func (s *Store) Departments() []domain.Department {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]domain.Department(nil), s.departments...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Tags returns the tag catalog ordered by name.
func (s *Store) Tags() []domain.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Tag, 0, len(s.tags))
	for name, id := range s.tags {
		out = append(out, domain.Tag{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Store) departmentName(id *int64) *string {
	if id == nil {
		return nil
	}
	for _, d := range s.departments {
		if d.ID == *id {
			name := d.Name
			return &name
		}
	}
	return nil
}

func (s *Store) toUser(u *user) *domain.User {
	return &domain.User{
		ID:             u.id,
		Name:           u.name,
		Email:          u.email,
		Role:           u.role,
		DepartmentID:   u.departmentID,
		DepartmentName: s.departmentName(u.departmentID),
	}
}

// Register creates an account.
func (s *Store) Register(reg domain.Registration) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(reg.Email))
	if _, ok := s.byEmail[email]; ok {
		return nil, ErrEmailTaken
	}
	if reg.DepartmentID != nil && s.departmentName(reg.DepartmentID) == nil {
		return nil, ErrInvalidDepartment
	}

	s.nextUser++
	u := &user{
		id:           s.nextUser,
		name:         reg.Name,
		email:        reg.Email,
		passwordHash: hash,
		role:         reg.Role,
		departmentID: reg.DepartmentID,
	}
	s.users[u.id] = u
	s.byEmail[email] = u.id
	return s.toUser(u), nil
}

// Authenticate checks credentials.
func (s *Store) Authenticate(email, password string) (*domain.User, error) {
	s.mu.RLock()
	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	var u *user
	if ok {
		u = s.users[id]
	}
	s.mu.RUnlock()
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.toUser(u), nil
}

// User looks up an account by id.
func (s *Store) User(id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUnauthorized
	}
	return s.toUser(u), nil
}

// getOrCreateTags returns the unique names, adding unknown ones to the
// catalog. Must hold s.mu.
func (s *Store) getOrCreateTags(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range domain.UniqueStrings(names) {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := s.tags[name]; !ok {
			s.nextTag++
			s.tags[name] = s.nextTag
		}
		out = append(out, name)
	}
	return out
}

func (s *Store) canView(u *domain.User, d *document) bool {
	if d.ownerID == u.ID {
		return true
	}
	if u.DepartmentID == nil {
		return false
	}
	for _, dep := range d.departments {
		if dep == *u.DepartmentID {
			return true
		}
	}
	return false
}

func (s *Store) capabilities(u *domain.User, d *document) domain.Capabilities {
	owner := d.ownerID == u.ID
	return domain.Capabilities{
		CanUploadVersion: owner || s.canView(u, d),
		CanEditMetadata:  owner,
	}
}

func (s *Store) newVersion(number int, uploader *domain.User, f StoredFile) *storedVersion {
	s.nextVersion++
	return &storedVersion{
		id:             s.nextVersion,
		number:         number,
		filename:       f.Filename,
		mimeType:       f.ContentType,
		data:           append([]byte(nil), f.Data...),
		uploadedByName: uploader.Name,
		uploadedAt:     s.now().UTC(),
	}
}

func summary(d *document) domain.DocSummary {
	updated := domain.Timestamp{Time: d.updatedAt}
	sum := domain.DocSummary{
		ID:                   d.id,
		Title:                d.title,
		CurrentVersionNumber: d.current,
		Tags:                 append([]string{}, d.tags...),
		UpdatedAt:            &updated,
	}
	if d.description != nil {
		sum.Description = *d.description
	}
	return sum
}

// CreateDocument stores a new document with version 1. With no departments
// given, the uploader's department is granted access.
func (s *Store) CreateDocument(u *domain.User, in NewDocumentInput) (domain.DocSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deps := domain.UniqueIDs(in.DepartmentIDs)
	if len(deps) == 0 && u.DepartmentID != nil {
		deps = []int64{*u.DepartmentID}
	}

	s.nextDoc++
	now := s.now().UTC()
	d := &document{
		id:          s.nextDoc,
		title:       in.Title,
		description: in.Description,
		ownerID:     u.ID,
		current:     1,
		tags:        s.getOrCreateTags(in.Tags),
		departments: deps,
		updatedAt:   now,
	}
	d.versions = []*storedVersion{s.newVersion(1, u, in.File)}
	s.docs[d.id] = d
	return summary(d), nil
}

func (s *Store) sortedDocs(keep func(*document) bool) []*document {
	out := make([]*document, 0, len(s.docs))
	for _, d := range s.docs {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Accessible lists the documents u may view.
func (s *Store) Accessible(u *domain.User) []domain.DocSummary {
	return s.Search(u, domain.SearchFilters{})
}

// Search narrows Accessible by the given filters. Title and description match
// case-insensitive substrings; every listed tag must be present; version
// matches the current version number.
func (s *Store) Search(u *domain.User, f domain.SearchFilters) []domain.DocSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	title := strings.ToLower(strings.TrimSpace(f.Title))
	desc := strings.ToLower(strings.TrimSpace(f.Description))

	docs := s.sortedDocs(func(d *document) bool {
		if !s.canView(u, d) {
			return false
		}
		if title != "" && !strings.Contains(strings.ToLower(d.title), title) {
			return false
		}
		if desc != "" && (d.description == nil || !strings.Contains(strings.ToLower(*d.description), desc)) {
			return false
		}
		if f.Version > 0 && d.current != f.Version {
			return false
		}
		return hasAllTags(d.tags, f.Tags)
	})

	out := make([]domain.DocSummary, len(docs))
	for i, d := range docs {
		out[i] = summary(d)
	}
	return out
}

func hasAllTags(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if strings.EqualFold(h, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Owned lists the documents owned by u, most recently updated first.
func (s *Store) Owned(u *domain.User) []domain.DocSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.sortedDocs(func(d *document) bool { return d.ownerID == u.ID })
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].updatedAt.After(docs[j].updatedAt) })
	out := make([]domain.DocSummary, len(docs))
	for i, d := range docs {
		out[i] = summary(d)
	}
	return out
}

// viewable returns the document if u may see it. Must hold s.mu.
func (s *Store) viewable(u *domain.User, id int64) (*document, error) {
	d, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !s.canView(u, d) {
		return nil, ErrForbidden
	}
	return d, nil
}

func (s *Store) detail(u *domain.User, d *document) *DocumentDetail {
	caps := s.capabilities(u, d)
	owner := d.ownerID
	return &DocumentDetail{
		ID:                   d.id,
		Title:                d.title,
		Description:          d.description,
		CurrentVersionNumber: d.current,
		Tags:                 append([]string{}, d.tags...),
		OwnerID:              &owner,
		CanUploadVersion:     caps.CanUploadVersion,
		CanEditMetadata:      caps.CanEditMetadata,
	}
}

// Document returns the detail view with u's capabilities.
func (s *Store) Document(u *domain.User, id int64) (*DocumentDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, err := s.viewable(u, id)
	if err != nil {
		return nil, err
	}
	return s.detail(u, d), nil
}

func versionInfo(v *storedVersion) domain.Version {
	name := v.uploadedByName
	size := int64(len(v.data))
	mimeType := v.mimeType
	at := domain.Timestamp{Time: v.uploadedAt}
	return domain.Version{
		ID:             v.id,
		VersionNumber:  v.number,
		UploadedByName: &name,
		UploadedAt:     &at,
		FileSize:       &size,
		MimeType:       &mimeType,
	}
}

// Versions lists a document's versions, newest first.
func (s *Store) Versions(u *domain.User, id int64) ([]domain.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, err := s.viewable(u, id)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Version, 0, len(d.versions))
	for i := len(d.versions) - 1; i >= 0; i-- {
		out = append(out, versionInfo(d.versions[i]))
	}
	return out, nil
}

// File resolves which ("latest", "" or a number) to a stored payload.
func (s *Store) File(u *domain.User, id int64, which string) (StoredFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, err := s.viewable(u, id)
	if err != nil {
		return StoredFile{}, err
	}
	n := d.current
	if which != "" && which != "latest" {
		if n, err = strconv.Atoi(which); err != nil {
			return StoredFile{}, ErrInvalidVersion
		}
	}
	for _, v := range d.versions {
		if v.number == n {
			return StoredFile{Filename: v.filename, ContentType: v.mimeType, Data: v.data}, nil
		}
	}
	return StoredFile{}, ErrNotFound
}

// AddVersion stores f as the next version.
func (s *Store) AddVersion(u *domain.User, id int64, f StoredFile) (domain.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.viewable(u, id)
	if err != nil {
		return domain.Version{}, err
	}
	if !s.capabilities(u, d).CanUploadVersion {
		return domain.Version{}, ErrForbidden
	}
	d.current++
	v := s.newVersion(d.current, u, f)
	d.versions = append(d.versions, v)
	d.updatedAt = v.uploadedAt
	return versionInfo(v), nil
}

// UpdateMetadata applies the non-nil fields of upd. Only the owner may edit.
func (s *Store) UpdateMetadata(u *domain.User, id int64, upd MetadataUpdate) (*DocumentDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.viewable(u, id)
	if err != nil {
		return nil, err
	}
	if !s.capabilities(u, d).CanEditMetadata {
		return nil, ErrForbidden
	}
	if upd.Title != nil {
		d.title = *upd.Title
	}
	if upd.Description != nil {
		desc := *upd.Description
		d.description = &desc
	}
	if upd.Tags != nil {
		d.tags = s.getOrCreateTags(upd.Tags)
	}
	if upd.PermissionDepartmentIDs != nil {
		d.departments = domain.UniqueIDs(upd.PermissionDepartmentIDs)
	}
	d.updatedAt = s.now().UTC()
	return s.detail(u, d), nil
}
