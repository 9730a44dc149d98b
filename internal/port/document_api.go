package port

import (
	"context"

	"docrepo/internal/domain"
)

// AuthAPI covers the authentication endpoints.
type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.TokenResponse, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.User, error)
	Me(ctx context.Context) (*domain.User, error)
}

// CatalogAPI covers the read-mostly reference catalogs.
type CatalogAPI interface {
	ListDepartments(ctx context.Context) ([]domain.Department, error)
	ListTags(ctx context.Context) ([]domain.Tag, error)
}

// VersionLister fetches the version list of one document.
type VersionLister interface {
	ListVersions(ctx context.Context, documentID int64) ([]domain.Version, error)
}

// DocumentAPI is the full client-side contract of the document repository.
// It is the only network boundary; everything else calls through it.
type DocumentAPI interface {
	AuthAPI
	CatalogAPI
	VersionLister

	ListDocuments(ctx context.Context) ([]domain.DocSummary, error)
	SearchDocuments(ctx context.Context, filters domain.SearchFilters) ([]domain.DocSummary, error)
	ListMyDocuments(ctx context.Context) ([]domain.DocSummary, error)
	UploadDocument(ctx context.Context, doc domain.NewDocument) (*domain.DocSummary, error)
	GetDocument(ctx context.Context, documentID int64) (*domain.Document, error)
	Download(ctx context.Context, documentID int64, ref domain.VersionRef) (*domain.Download, error)
	UploadVersion(ctx context.Context, documentID int64, file *domain.FileUpload) (*domain.Version, error)
	UpdateDocument(ctx context.Context, documentID int64, update domain.DocumentUpdate) (*domain.Document, error)
}
