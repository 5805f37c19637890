package service

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/buildvault/bimlibrary/internal/infra/blob"
	"github.com/buildvault/bimlibrary/internal/infra/cache"
	mq "github.com/buildvault/bimlibrary/internal/infra/queue"
	"github.com/buildvault/bimlibrary/internal/modules/model"
	"github.com/buildvault/bimlibrary/internal/modules/repo"
)

// MockAssetRepo is a mock implementation of repo.AssetRepo
type MockAssetRepo struct {
	mock.Mock
}

func (m *MockAssetRepo) Create(ctx context.Context, a *model.Asset) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssetRepo) GetByID(ctx context.Context, tenantID, assetID uuid.UUID) (*model.Asset, error) {
	args := m.Called(ctx, tenantID, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Asset), args.Error(1)
}

func (m *MockAssetRepo) UpdateVersion(ctx context.Context, tenantID, assetID uuid.UUID, up repo.VersionUpdate) (*model.Asset, error) {
	args := m.Called(ctx, tenantID, assetID, up)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Asset), args.Error(1)
}

func (m *MockAssetRepo) Move(ctx context.Context, tenantID, assetID uuid.UUID, mv repo.MoveUpdate) (*model.Asset, error) {
	args := m.Called(ctx, tenantID, assetID, mv)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Asset), args.Error(1)
}

func (m *MockAssetRepo) SetTrashed(ctx context.Context, tenantID, assetID, actorID uuid.UUID, trashed bool) error {
	args := m.Called(ctx, tenantID, assetID, actorID, trashed)
	return args.Error(0)
}

func (m *MockAssetRepo) List(ctx context.Context, tenantID uuid.UUID, includeTrashed bool) ([]*model.Asset, error) {
	args := m.Called(ctx, tenantID, includeTrashed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Asset), args.Error(1)
}

func (m *MockAssetRepo) ListByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*model.Asset, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Asset), args.Error(1)
}

// MockReferenceRepo is a mock implementation of repo.ReferenceRepo
type MockReferenceRepo struct {
	mock.Mock
}

func (m *MockReferenceRepo) GetProject(ctx context.Context, tenantID, projectID uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, tenantID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockReferenceRepo) GetDiscipline(ctx context.Context, tenantID, disciplineID uuid.UUID) (*model.Discipline, error) {
	args := m.Called(ctx, tenantID, disciplineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Discipline), args.Error(1)
}

func (m *MockReferenceRepo) ListCompanies(ctx context.Context, tenantID uuid.UUID) ([]*model.Company, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Company), args.Error(1)
}

func (m *MockReferenceRepo) ListProjects(ctx context.Context, tenantID uuid.UUID) ([]*model.Project, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Project), args.Error(1)
}

func (m *MockReferenceRepo) ListDisciplines(ctx context.Context, tenantID uuid.UUID) ([]*model.Discipline, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Discipline), args.Error(1)
}

// MockViewSetRepo is a mock implementation of repo.ViewSetRepo
type MockViewSetRepo struct {
	mock.Mock
}

func (m *MockViewSetRepo) Create(ctx context.Context, vs *model.ViewSet) error {
	args := m.Called(ctx, vs)
	return args.Error(0)
}

func (m *MockViewSetRepo) GetByID(ctx context.Context, tenantID, setID uuid.UUID) (*model.ViewSet, error) {
	args := m.Called(ctx, tenantID, setID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ViewSet), args.Error(1)
}

func (m *MockViewSetRepo) List(ctx context.Context, tenantID uuid.UUID) ([]*model.ViewSet, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ViewSet), args.Error(1)
}

// MockBlobStore is a mock implementation of BlobStore
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) UploadFormFile(ctx context.Context, key string, fileHeader *multipart.FileHeader) (*blob.UploadedMeta, error) {
	args := m.Called(ctx, key, fileHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blob.UploadedMeta), args.Error(1)
}

func (m *MockBlobStore) PresignGet(ctx context.Context, key string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, expire)
	return args.String(0), args.Error(1)
}

// MockTranslator is a mock implementation of translate.Client
type MockTranslator struct {
	mock.Mock
}

func (m *MockTranslator) Submit(ctx context.Context, sourceURL, displayName string) (string, error) {
	args := m.Called(ctx, sourceURL, displayName)
	return args.String(0), args.Error(1)
}

// MockStash is a mock implementation of cache.Stash
type MockStash struct {
	mock.Mock
}

func (m *MockStash) Put(ctx context.Context, tenantID uuid.UUID, p cache.PendingPersist) (string, error) {
	args := m.Called(ctx, tenantID, p)
	return args.String(0), args.Error(1)
}

func (m *MockStash) Take(ctx context.Context, tenantID uuid.UUID, key string) (*cache.PendingPersist, error) {
	args := m.Called(ctx, tenantID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cache.PendingPersist), args.Error(1)
}

// MockPublisher is a mock implementation of EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishAssetEvent(ctx context.Context, ev mq.AssetEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func createTestFileHeader(filename string) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: filename,
		Size:     20,
	}
}

func createTestUploadedMeta(key string) *blob.UploadedMeta {
	return &blob.UploadedMeta{
		Bucket: "bim-models",
		Key:    key,
		ETag:   "etag-1",
		MIME:   "application/octet-stream",
		SizeB:  20,
		SHA256: "deadbeef",
	}
}
