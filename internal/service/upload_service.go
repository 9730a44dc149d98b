package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"docrepo/internal/domain"
	"docrepo/internal/port"
)

// UploadService creates new documents.
type UploadService interface {
	Upload(ctx context.Context, doc domain.NewDocument) (*domain.DocSummary, error)
}

type uploadService struct {
	api port.DocumentAPI
	log *zap.Logger
}

// NewUploadService creates a new UploadService implementation.
func NewUploadService(api port.DocumentAPI, log *zap.Logger) UploadService {
	if log == nil {
		log = zap.NewNop()
	}
	return &uploadService{api: api, log: log}
}

// Upload validates the form before sending it: a file and a title are
// required. Optional fields are sent only when populated.
func (s *uploadService) Upload(ctx context.Context, doc domain.NewDocument) (*domain.DocSummary, error) {
	if doc.File == nil {
		return nil, domain.ErrNoFile
	}
	doc.Title = strings.TrimSpace(doc.Title)
	if doc.Title == "" {
		return nil, domain.ErrTitleRequired
	}
	doc.Description = strings.TrimSpace(doc.Description)
	doc.Tags = domain.UniqueStrings(doc.Tags)
	doc.DepartmentIDs = domain.UniqueIDs(doc.DepartmentIDs)

	summary, err := s.api.UploadDocument(ctx, doc)
	if err != nil {
		s.log.Warn("upload.Upload: failed", zap.String("title", doc.Title), zap.Error(err))
		return nil, err
	}
	s.log.Info("upload.Upload: created document",
		zap.Int64("document_id", summary.ID),
		zap.String("title", summary.Title),
	)
	return summary, nil
}
