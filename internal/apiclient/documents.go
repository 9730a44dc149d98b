package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"docrepo/internal/domain"
)

// documentPayload is the wire shape of GET /api/documents/{id}. The
// capability flags are optional on the wire and default to false.
type documentPayload struct {
	ID                   int64    `json:"id"`
	Title                string   `json:"title"`
	Description          *string  `json:"description"`
	CurrentVersionNumber int      `json:"current_version_number"`
	Tags                 []string `json:"tags"`
	OwnerID              *int64   `json:"owner_id"`
	CanUploadVersion     *bool    `json:"can_upload_version"`
	CanEditMetadata      *bool    `json:"can_edit_metadata"`
}

func (p documentPayload) toDomain() *domain.Document {
	doc := &domain.Document{
		ID:                   p.ID,
		Title:                p.Title,
		Tags:                 p.Tags,
		CurrentVersionNumber: p.CurrentVersionNumber,
		OwnerID:              p.OwnerID,
	}
	if p.Description != nil {
		doc.Description = *p.Description
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	if p.CanUploadVersion != nil {
		doc.Capabilities.CanUploadVersion = *p.CanUploadVersion
	}
	if p.CanEditMetadata != nil {
		doc.Capabilities.CanEditMetadata = *p.CanEditMetadata
	}
	return doc
}

func documentPath(id int64, suffix string) string {
	return "/api/documents/" + strconv.FormatInt(id, 10) + suffix
}

// Login exchanges credentials for a bearer token. The token is not stored.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.TokenResponse, error) {
	var out domain.TokenResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/api/auth/login", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	var out domain.User
	if err := c.sendJSON(ctx, http.MethodPost, "/api/auth/register", reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := c.getJSON(ctx, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDepartments returns the department catalog.
func (c *Client) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	out := []domain.Department{}
	if err := c.getJSON(ctx, "/api/departments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTags returns the tag catalog.
func (c *Client) ListTags(ctx context.Context) ([]domain.Tag, error) {
	out := []domain.Tag{}
	if err := c.getJSON(ctx, "/api/tags", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDocuments returns the documents the caller's department can view.
func (c *Client) ListDocuments(ctx context.Context) ([]domain.DocSummary, error) {
	return c.listSummaries(ctx, "/api/documents", nil)
}

// SearchDocuments runs a filtered search. Only supplied filters are sent.
func (c *Client) SearchDocuments(ctx context.Context, filters domain.SearchFilters) ([]domain.DocSummary, error) {
	return c.listSummaries(ctx, "/api/documents/search", SearchQuery(filters))
}

// ListMyDocuments returns the documents owned by the caller.
func (c *Client) ListMyDocuments(ctx context.Context) ([]domain.DocSummary, error) {
	return c.listSummaries(ctx, "/api/users/me/documents", nil)
}

func (c *Client) listSummaries(ctx context.Context, path string, query url.Values) ([]domain.DocSummary, error) {
	out := []domain.DocSummary{}
	if err := c.getJSON(ctx, path, query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDocument returns the detail representation including capabilities.
func (c *Client) GetDocument(ctx context.Context, id int64) (*domain.Document, error) {
	var payload documentPayload
	if err := c.getJSON(ctx, documentPath(id, ""), nil, &payload); err != nil {
		return nil, err
	}
	return payload.toDomain(), nil
}

// ListVersions returns the stored versions of a document in server order.
func (c *Client) ListVersions(ctx context.Context, id int64) ([]domain.Version, error) {
	out := []domain.Version{}
	if err := c.getJSON(ctx, documentPath(id, "/versions"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateDocument sends a metadata update. Empty fields are omitted.
func (c *Client) UpdateDocument(ctx context.Context, id int64, update domain.DocumentUpdate) (*domain.Document, error) {
	var payload documentPayload
	if err := c.sendJSON(ctx, http.MethodPut, documentPath(id, ""), update, &payload); err != nil {
		return nil, err
	}
	return payload.toDomain(), nil
}

// UploadDocument creates a document with its first version.
func (c *Client) UploadDocument(ctx context.Context, doc domain.NewDocument) (*domain.DocSummary, error) {
	if doc.File == nil {
		return nil, domain.ErrNoFile
	}
	fields := []formField{{name: "title", value: doc.Title}}
	if doc.Description != "" {
		fields = append(fields, formField{name: "description", value: doc.Description})
	}
	if tags := domain.UniqueStrings(doc.Tags); len(tags) > 0 {
		fields = append(fields, formField{name: "tags", value: strings.Join(tags, ",")})
	}
	if ids := domain.UniqueIDs(doc.DepartmentIDs); len(ids) > 0 {
		fields = append(fields, formField{name: "permission_department_ids", value: joinIDs(ids)})
	}

	var out domain.DocSummary
	if err := c.postMultipart(ctx, "/api/documents/upload", fields, doc.File, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadVersion appends a new version to an existing document.
func (c *Client) UploadVersion(ctx context.Context, id int64, file *domain.FileUpload) (*domain.Version, error) {
	if file == nil {
		return nil, domain.ErrNoFile
	}
	var out domain.Version
	if err := c.postMultipart(ctx, documentPath(id, "/version"), nil, file, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
