package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strconv"

	"go.uber.org/zap"

	"docrepo/internal/config"
	"docrepo/internal/domain"
	"docrepo/internal/export"
	"docrepo/internal/port"
)

// ArchiveResult is the outcome for one document.
type ArchiveResult struct {
	DocumentID int64
	Version    int
	Key        string
	Location   string
	Err        error
}

// ArchiveService copies the latest version of documents into object storage.
type ArchiveService interface {
	Archive(ctx context.Context, docs []domain.DocSummary) []ArchiveResult
}

type archiveService struct {
	api     port.DocumentAPI
	storage port.ObjectStorage
	cfg     config.ArchiveConfig
	log     *zap.Logger
}

// NewArchiveService creates a new ArchiveService implementation.
func NewArchiveService(api port.DocumentAPI, storage port.ObjectStorage, cfg config.ArchiveConfig, log *zap.Logger) ArchiveService {
	if log == nil {
		log = zap.NewNop()
	}
	return &archiveService{api: api, storage: storage, cfg: cfg, log: log}
}

// ArchiveKey is {prefix}/documents/{id}/v{n}/{filename}.
func ArchiveKey(prefix string, documentID int64, version int, filename string) string {
	return path.Join(prefix, "documents", strconv.FormatInt(documentID, 10), "v"+strconv.Itoa(version), export.SafeDownloadName(filename))
}

// Archive processes documents one by one. A failure is recorded on that
// document's result and the batch continues.
func (s *archiveService) Archive(ctx context.Context, docs []domain.DocSummary) []ArchiveResult {
	results := make([]ArchiveResult, 0, len(docs))
	for _, doc := range docs {
		res := s.archiveOne(ctx, doc)
		if res.Err != nil {
			s.log.Warn("archive.Archive: document failed",
				zap.Int64("document_id", doc.ID),
				zap.Error(res.Err),
			)
		}
		results = append(results, res)
	}
	return results
}

func (s *archiveService) archiveOne(ctx context.Context, doc domain.DocSummary) ArchiveResult {
	res := ArchiveResult{DocumentID: doc.ID, Version: doc.CurrentVersionNumber}

	dl, err := s.api.Download(ctx, doc.ID, domain.VersionNumber(doc.CurrentVersionNumber))
	if err != nil {
		res.Err = fmt.Errorf("downloading: %w", err)
		return res
	}

	res.Key = ArchiveKey(s.cfg.Prefix, doc.ID, doc.CurrentVersionNumber, dl.Filename)
	contentType := dl.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	out, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         res.Key,
		Body:        bytes.NewReader(dl.Body),
		ContentType: contentType,
		Size:        int64(len(dl.Body)),
	})
	if err != nil {
		res.Err = fmt.Errorf("storing %s: %w", res.Key, err)
		return res
	}
	res.Location = out.Location
	return res
}
