package domain

import (
	"bytes"
	"io"
)

// Department is a permission scope a document can be shared with.
type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Tag is a catalog entry; names are unique within the catalog.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Capabilities are server-computed permissions for the signed-in user on one
// document. They gate which mutating actions are offered.
type Capabilities struct {
	CanUploadVersion bool
	CanEditMetadata  bool
}

// Document is the detail representation of a stored document.
type Document struct {
	ID                   int64
	Title                string
	Description          string
	Tags                 []string
	CurrentVersionNumber int
	OwnerID              *int64
	Capabilities         Capabilities
}

// DocSummary is the list representation returned by list, search and upload.
type DocSummary struct {
	ID                   int64      `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description,omitempty"`
	CurrentVersionNumber int        `json:"current_version_number"`
	Tags                 []string   `json:"tags"`
	UpdatedAt            *Timestamp `json:"updated_at,omitempty"`
}

// Version is one stored revision of a document.
type Version struct {
	ID             int64      `json:"id"`
	VersionNumber  int        `json:"version_number"`
	UploadedByName *string    `json:"uploaded_by_name,omitempty"`
	UploadedAt     *Timestamp `json:"uploaded_at,omitempty"`
	FileSize       *int64     `json:"file_size,omitempty"`
	MimeType       *string    `json:"mime_type,omitempty"`
}

// User is the signed-in user as reported by /api/auth/me and /api/auth/register.
type User struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Role           *string `json:"role,omitempty"`
	DepartmentID   *int64  `json:"department_id,omitempty"`
	DepartmentName *string `json:"department_name,omitempty"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the register request body. DepartmentID is always sent,
// as null when unset.
type Registration struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	DepartmentID *int64  `json:"department_id"`
	Role         *string `json:"role,omitempty"`
}

// FileUpload is a file chosen for upload. Open may be called more than once,
// so a failed upload can be retried without choosing the file again.
type FileUpload struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// FileFromBytes wraps an in-memory payload as a FileUpload.
func FileFromBytes(name string, data []byte) *FileUpload {
	return &FileUpload{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// NewDocument holds the fields of the upload-new-document form.
type NewDocument struct {
	Title         string
	Description   string
	Tags          []string
	DepartmentIDs []int64
	File          *FileUpload
}

// DocumentUpdate is the metadata update body. Empty fields are omitted and
// the server leaves them unchanged.
type DocumentUpdate struct {
	Title                   string   `json:"title,omitempty"`
	Description             string   `json:"description,omitempty"`
	Tags                    []string `json:"tags,omitempty"`
	PermissionDepartmentIDs []int64  `json:"permission_department_ids,omitempty"`
}

// IsEmpty reports whether the update carries no fields at all.
func (u DocumentUpdate) IsEmpty() bool {
	return u.Title == "" && u.Description == "" && len(u.Tags) == 0 && len(u.PermissionDepartmentIDs) == 0
}

// SearchFilters are the optional document search filters. Zero values mean
// "not supplied".
type SearchFilters struct {
	Title       string
	Description string
	Tags        []string
	Version     int
}

// Download is a fetched file payload.
type Download struct {
	Filename    string
	ContentType string
	Body        []byte
}

// DraftState is the uncommitted local copy of a document's editable fields.
type DraftState struct {
	Title         string
	Description   string
	Tags          []string
	DepartmentIDs []int64
	PendingFile   *FileUpload
}

// Update converts the draft into an update body, omitting empty-string text
// fields and empty collections.
func (d DraftState) Update() DocumentUpdate {
	return DocumentUpdate{
		Title:                   d.Title,
		Description:             d.Description,
		Tags:                    UniqueStrings(d.Tags),
		PermissionDepartmentIDs: UniqueIDs(d.DepartmentIDs),
	}
}

// UniqueStrings returns values with duplicates removed, first occurrence wins.
// A nil or empty input yields nil.
func UniqueStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// UniqueIDs is UniqueStrings for int64 ids.
func UniqueIDs(values []int64) []int64 {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(values))
	out := make([]int64, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
