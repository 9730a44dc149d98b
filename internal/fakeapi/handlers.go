package fakeapi

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docrepo/internal/domain"
)

// maxUploadBytes caps one uploaded file.
const maxUploadBytes = 50 << 20

// Handler serves the document repository endpoints.
type Handler struct {
	store  *Store
	tokens *TokenIssuer
	log    *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(store *Store, tokens *TokenIssuer, log *zap.Logger) *Handler {
	return &Handler{store: store, tokens: tokens, log: log}
}

func respondDetail(c *gin.Context, status int, detail string) {
	c.JSON(status, gin.H{"detail": detail})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	status, detail := MapError(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("internal error",
			zap.String("request_id", c.GetString(contextKeyRequestID)),
			zap.Error(err),
		)
	}
	respondDetail(c, status, detail)
}

func currentUser(c *gin.Context) *domain.User {
	u, _ := c.MustGet(contextKeyUser).(*domain.User)
	return u
}

func documentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondDetail(c, http.StatusUnprocessableEntity, "document id must be an integer")
		return 0, false
	}
	return id, true
}

// Register handles POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var reg domain.Registration
	if err := c.ShouldBindJSON(&reg); err != nil {
		respondDetail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if strings.TrimSpace(reg.Name) == "" || strings.TrimSpace(reg.Email) == "" {
		respondDetail(c, http.StatusUnprocessableEntity, "name and email are required")
		return
	}
	if len(reg.Password) < 6 {
		respondDetail(c, http.StatusUnprocessableEntity, "password must be at least 6 characters")
		return
	}

	u, err := h.store.Register(reg)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// Login handles POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var creds domain.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		respondDetail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	u, err := h.store.Authenticate(creds.Email, creds.Password)
	if err != nil {
		h.handleError(c, err)
		return
	}
	token, err := h.tokens.Issue(u)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me handles GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

// Departments handles GET /api/departments
func (h *Handler) Departments(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Departments())
}

// Tags handles GET /api/tags
func (h *Handler) Tags(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Tags())
}

// ListDocuments handles GET /api/documents
func (h *Handler) ListDocuments(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Accessible(currentUser(c)))
}

// SearchDocuments handles GET /api/documents/search
func (h *Handler) SearchDocuments(c *gin.Context) {
	f := domain.SearchFilters{
		Title:       c.Query("title"),
		Description: c.Query("description"),
		Tags:        domain.SplitCSV(c.Query("tags")),
	}
	if v := c.Query("version"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondDetail(c, http.StatusUnprocessableEntity, "version must be an integer")
			return
		}
		f.Version = n
	}
	c.JSON(http.StatusOK, h.store.Search(currentUser(c), f))
}

// MyDocuments handles GET /api/users/me/documents
func (h *Handler) MyDocuments(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Owned(currentUser(c)))
}

func readUpload(c *gin.Context) (StoredFile, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondDetail(c, http.StatusUnprocessableEntity, "file field is required")
		return StoredFile{}, false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		respondDetail(c, http.StatusBadRequest, "could not read file")
		return StoredFile{}, false
	}
	if len(data) > maxUploadBytes {
		respondDetail(c, http.StatusRequestEntityTooLarge, "file exceeds maximum allowed size")
		return StoredFile{}, false
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(header.Filename)); byExt != "" {
			contentType = byExt
		}
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mimetype.Detect(data).String()
	}
	return StoredFile{Filename: filepath.Base(header.Filename), ContentType: contentType, Data: data}, true
}

// Upload handles POST /api/documents/upload
func (h *Handler) Upload(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		respondDetail(c, http.StatusUnprocessableEntity, "title is required")
		return
	}
	deps, err := domain.ParseIDList(c.PostForm("permission_department_ids"))
	if err != nil {
		h.handleError(c, ErrBadDepartmentIDs)
		return
	}
	file, ok := readUpload(c)
	if !ok {
		return
	}

	in := NewDocumentInput{
		Title:         title,
		Tags:          domain.SplitCSV(c.PostForm("tags")),
		DepartmentIDs: deps,
		File:          file,
	}
	if desc, ok := c.GetPostForm("description"); ok {
		in.Description = &desc
	}

	sum, err := h.store.CreateDocument(currentUser(c), in)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sum)
}

// GetDocument handles GET /api/documents/:id
func (h *Handler) GetDocument(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}
	doc, err := h.store.Document(currentUser(c), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Versions handles GET /api/documents/:id/versions
func (h *Handler) Versions(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}
	vs, err := h.store.Versions(currentUser(c), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, vs)
}

// Download handles GET /api/documents/:id/download
func (h *Handler) Download(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}
	f, err := h.store.File(currentUser(c), id, c.Query("version"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Filename))
	c.Data(http.StatusOK, f.ContentType, f.Data)
}

// UploadVersion handles POST /api/documents/:id/version
func (h *Handler) UploadVersion(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}
	file, ok := readUpload(c)
	if !ok {
		return
	}
	v, err := h.store.AddVersion(currentUser(c), id, file)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// UpdateDocument handles PUT /api/documents/:id
func (h *Handler) UpdateDocument(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}
	var upd MetadataUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		respondDetail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	doc, err := h.store.UpdateMetadata(currentUser(c), id, upd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
