package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docrepo/internal/domain"
)

// MockDocumentAPI is a mock implementation of port.DocumentAPI.
type MockDocumentAPI struct {
	mock.Mock
}

func (m *MockDocumentAPI) Login(ctx context.Context, creds domain.Credentials) (*domain.TokenResponse, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenResponse), args.Error(1)
}

func (m *MockDocumentAPI) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	args := m.Called(ctx, reg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockDocumentAPI) Me(ctx context.Context) (*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockDocumentAPI) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Department), args.Error(1)
}

func (m *MockDocumentAPI) ListTags(ctx context.Context) ([]domain.Tag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Tag), args.Error(1)
}

func (m *MockDocumentAPI) ListVersions(ctx context.Context, documentID int64) ([]domain.Version, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Version), args.Error(1)
}

func (m *MockDocumentAPI) ListDocuments(ctx context.Context) ([]domain.DocSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocSummary), args.Error(1)
}

func (m *MockDocumentAPI) SearchDocuments(ctx context.Context, filters domain.SearchFilters) ([]domain.DocSummary, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocSummary), args.Error(1)
}

func (m *MockDocumentAPI) ListMyDocuments(ctx context.Context) ([]domain.DocSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocSummary), args.Error(1)
}

func (m *MockDocumentAPI) UploadDocument(ctx context.Context, doc domain.NewDocument) (*domain.DocSummary, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocSummary), args.Error(1)
}

func (m *MockDocumentAPI) GetDocument(ctx context.Context, documentID int64) (*domain.Document, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentAPI) Download(ctx context.Context, documentID int64, ref domain.VersionRef) (*domain.Download, error) {
	args := m.Called(ctx, documentID, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Download), args.Error(1)
}

func (m *MockDocumentAPI) UploadVersion(ctx context.Context, documentID int64, file *domain.FileUpload) (*domain.Version, error) {
	args := m.Called(ctx, documentID, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Version), args.Error(1)
}

func (m *MockDocumentAPI) UpdateDocument(ctx context.Context, documentID int64, update domain.DocumentUpdate) (*domain.Document, error) {
	args := m.Called(ctx, documentID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}
