package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/buildvault/bimlibrary/internal/infra/blob"
	"github.com/buildvault/bimlibrary/internal/infra/cache"
	mq "github.com/buildvault/bimlibrary/internal/infra/queue"
	"github.com/buildvault/bimlibrary/internal/infra/translate"
	"github.com/buildvault/bimlibrary/internal/modules/model"
	"github.com/buildvault/bimlibrary/internal/modules/repo"
	"github.com/buildvault/bimlibrary/internal/pkg/apperr"
	"github.com/buildvault/bimlibrary/internal/pkg/utils/storagekey"
)

// Pipeline phases, in strict order. No phase is ever skipped.
const (
	PhaseStoring     = "storing"
	PhaseTranslating = "translating"
	PhasePersisting  = "persisting"
)

const (
	ModeCreate  = "create"
	ModeVersion = "version"
)

// sourceURLExpiry bounds how long the translation service can fetch the
// stored binary.
const sourceURLExpiry = time.Hour

// BlobStore is the slice of the S3 layer the pipeline needs.
type BlobStore interface {
	UploadFormFile(ctx context.Context, key string, fileHeader *multipart.FileHeader) (*blob.UploadedMeta, error)
	PresignGet(ctx context.Context, key string, expire time.Duration) (string, error)
}

// EventPublisher emits asset lifecycle events. Publishing is best-effort:
// a failed publish never fails the operation that triggered it.
type EventPublisher interface {
	PublishAssetEvent(ctx context.Context, ev mq.AssetEvent) error
}

// PipelineMetrics records pipeline outcomes.
type PipelineMetrics interface {
	ObserveUploadFailure(phase string)
	ObserveUploadSuccess(mode string, d time.Duration)
}

// PersistFailure reports that the blob and translation handle were obtained
// but the catalog write failed. StashKey retrieves the consumed side effects
// so the caller can retry persistence alone, without re-uploading or
// re-translating.
type PersistFailure struct {
	StashKey string
	Err      error
}

func (e *PersistFailure) Error() string { return e.Err.Error() }
func (e *PersistFailure) Unwrap() error { return e.Err }

type CreateInput struct {
	TenantID     uuid.UUID
	ActorID      uuid.UUID
	ProjectID    uuid.UUID
	DisciplineID uuid.UUID
	DisplayName  string
	File         *multipart.FileHeader
}

type VersionInput struct {
	TenantID uuid.UUID
	ActorID  uuid.UUID
	AssetID  uuid.UUID
	File     *multipart.FileHeader
}

// UploadService orchestrates the three-phase ingest pipeline:
// Storing -> Translating -> Persisting. An asset row is written only by a
// fully succeeded run; earlier failures leave at most an orphaned blob.
type UploadService interface {
	Create(ctx context.Context, in CreateInput) (*model.Asset, error)
	BumpVersion(ctx context.Context, in VersionInput) (*model.Asset, error)
	RetryPersist(ctx context.Context, tenantID, actorID uuid.UUID, stashKey string) (*model.Asset, error)
	DownloadURL(ctx context.Context, tenantID, assetID uuid.UUID, expire time.Duration) (string, error)
}

type uploadService struct {
	assets     repo.AssetRepo
	refs       repo.ReferenceRepo
	store      BlobStore
	translator translate.Client
	stash      cache.Stash
	events     EventPublisher
	metrics    PipelineMetrics
	log        *zap.Logger
}

func NewUploadService(
	assets repo.AssetRepo,
	refs repo.ReferenceRepo,
	store BlobStore,
	translator translate.Client,
	stash cache.Stash,
	events EventPublisher,
	metrics PipelineMetrics,
	log *zap.Logger,
) UploadService {
	return &uploadService{
		assets:     assets,
		refs:       refs,
		store:      store,
		translator: translator,
		stash:      stash,
		events:     events,
		metrics:    metrics,
		log:        log,
	}
}

func (s *uploadService) Create(ctx context.Context, in CreateInput) (*model.Asset, error) {
	if in.TenantID == uuid.Nil || in.ActorID == uuid.Nil {
		return nil, apperr.Validation("tenant id and actor id are required")
	}
	if in.ProjectID == uuid.Nil || in.DisciplineID == uuid.Nil {
		return nil, apperr.Validation("project id and discipline id are required")
	}
	if err := storagekey.ValidateDisplayName(in.DisplayName); err != nil {
		return nil, apperr.Validation("invalid display name", err)
	}
	if in.File == nil {
		return nil, apperr.Validation("file is required")
	}

	// Both targets must resolve in-tenant before any side effect.
	project, err := s.refs.GetProject(ctx, in.TenantID, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.refs.GetDiscipline(ctx, in.TenantID, in.DisciplineID); err != nil {
		return nil, err
	}

	start := time.Now()
	uploaded, handle, err := s.storeAndTranslate(ctx, in.TenantID, in.DisplayName, in.File)
	if err != nil {
		return nil, err
	}

	pending := cache.PendingPersist{
		Mode:              ModeCreate,
		TenantID:          in.TenantID,
		ProjectID:         in.ProjectID,
		DisciplineID:      in.DisciplineID,
		CompanyID:         project.CompanyID,
		DisplayName:       in.DisplayName,
		StorageBucket:     uploaded.Bucket,
		StorageKey:        uploaded.Key,
		TranslationHandle: handle,
		SizeBytes:         uploaded.SizeB,
		ContentType:       uploaded.MIME,
	}

	asset, err := s.persist(ctx, pending, in.ActorID)
	if err != nil {
		return nil, err
	}

	s.observeSuccess(ModeCreate, start)
	s.publish(ctx, mq.EventAssetCreated, asset, in.ActorID)
	return asset, nil
}

func (s *uploadService) BumpVersion(ctx context.Context, in VersionInput) (*model.Asset, error) {
	if in.TenantID == uuid.Nil || in.ActorID == uuid.Nil {
		return nil, apperr.Validation("tenant id and actor id are required")
	}
	if in.AssetID == uuid.Nil {
		return nil, apperr.Validation("asset id is required")
	}
	if in.File == nil {
		return nil, apperr.Validation("file is required")
	}

	asset, err := s.assets.GetByID(ctx, in.TenantID, in.AssetID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	uploaded, handle, err := s.storeAndTranslate(ctx, in.TenantID, asset.DisplayName, in.File)
	if err != nil {
		return nil, err
	}

	pending := cache.PendingPersist{
		Mode:              ModeVersion,
		TenantID:          in.TenantID,
		AssetID:           in.AssetID,
		StorageBucket:     uploaded.Bucket,
		StorageKey:        uploaded.Key,
		TranslationHandle: handle,
		SizeBytes:         uploaded.SizeB,
		ContentType:       uploaded.MIME,
	}

	updated, err := s.persist(ctx, pending, in.ActorID)
	if err != nil {
		return nil, err
	}

	s.observeSuccess(ModeVersion, start)
	s.publish(ctx, mq.EventAssetVersion, updated, in.ActorID)
	return updated, nil
}

// RetryPersist reruns only the Persisting phase from a stashed payload.
// The stashed pointer/handle are reused as-is; nothing is re-uploaded or
// re-translated.
func (s *uploadService) RetryPersist(ctx context.Context, tenantID, actorID uuid.UUID, stashKey string) (*model.Asset, error) {
	if tenantID == uuid.Nil || actorID == uuid.Nil {
		return nil, apperr.Validation("tenant id and actor id are required")
	}
	if stashKey == "" {
		return nil, apperr.Validation("stash key is required")
	}

	pending, err := s.stash.Take(ctx, tenantID, stashKey)
	if err != nil {
		return nil, err
	}

	asset, err := s.persist(ctx, *pending, actorID)
	if err != nil {
		return nil, err
	}

	eventType := mq.EventAssetCreated
	if pending.Mode == ModeVersion {
		eventType = mq.EventAssetVersion
	}
	s.publish(ctx, eventType, asset, actorID)
	return asset, nil
}

func (s *uploadService) DownloadURL(ctx context.Context, tenantID, assetID uuid.UUID, expire time.Duration) (string, error) {
	if tenantID == uuid.Nil {
		return "", apperr.Validation("tenant id is required")
	}
	asset, err := s.assets.GetByID(ctx, tenantID, assetID)
	if err != nil {
		return "", err
	}
	url, err := s.store.PresignGet(ctx, asset.StorageKey, expire)
	if err != nil {
		return "", apperr.Storage("presign download", err)
	}
	return url, nil
}

// storeAndTranslate runs the first two phases. A Storing failure leaves no
// side effects; a Translating failure leaves the blob as an acceptable
// orphan for the out-of-band cleanup job. Neither writes the catalog.
func (s *uploadService) storeAndTranslate(ctx context.Context, tenantID uuid.UUID, displayName string, file *multipart.FileHeader) (*blob.UploadedMeta, string, error) {
	key := storagekey.New(tenantID, displayName)

	uploaded, err := s.store.UploadFormFile(ctx, key, file)
	if err != nil {
		s.observeFailure(PhaseStoring)
		return nil, "", apperr.Storage("store model binary", err)
	}

	sourceURL, err := s.store.PresignGet(ctx, uploaded.Key, sourceURLExpiry)
	if err != nil {
		s.observeFailure(PhaseTranslating)
		return nil, "", apperr.Translation("presign source url", err)
	}

	handle, err := s.translator.Submit(ctx, sourceURL, displayName)
	if err != nil {
		s.observeFailure(PhaseTranslating)
		if apperr.IsKind(err, apperr.KindTranslation) {
			return nil, "", err
		}
		return nil, "", apperr.Translation("submit for translation", err)
	}

	return uploaded, handle, nil
}

// persist runs the final phase. It is detached from the caller's
// cancellation: once Persisting starts the blob and handle are consumed, and
// aborting midway would orphan them with no catalog record to reconcile
// against. On failure the payload is stashed and the returned error carries
// the stash key.
func (s *uploadService) persist(ctx context.Context, pending cache.PendingPersist, actorID uuid.UUID) (*model.Asset, error) {
	ctx = context.WithoutCancel(ctx)

	var (
		asset *model.Asset
		err   error
	)
	switch pending.Mode {
	case ModeVersion:
		asset, err = s.assets.UpdateVersion(ctx, pending.TenantID, pending.AssetID, repo.VersionUpdate{
			StorageBucket:     pending.StorageBucket,
			StorageKey:        pending.StorageKey,
			TranslationHandle: pending.TranslationHandle,
			SizeBytes:         pending.SizeBytes,
			ContentType:       pending.ContentType,
			UpdatedBy:         actorID,
		})
	default:
		asset = &model.Asset{
			TenantID:          pending.TenantID,
			ProjectID:         pending.ProjectID,
			DisciplineID:      pending.DisciplineID,
			CompanyID:         pending.CompanyID,
			DisplayName:       pending.DisplayName,
			Version:           1,
			StorageBucket:     pending.StorageBucket,
			StorageKey:        pending.StorageKey,
			TranslationHandle: pending.TranslationHandle,
			SizeBytes:         pending.SizeBytes,
			ContentType:       pending.ContentType,
			Status:            model.AssetStatusDone,
			CreatedBy:         actorID,
			UpdatedBy:         actorID,
		}
		err = s.assets.Create(ctx, asset)
	}

	if err == nil {
		return asset, nil
	}

	// A cross-tenant or vanished target is a caller error, not a persist
	// fault; there is nothing to retry.
	if apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}

	s.observeFailure(PhasePersisting)

	stashKey, stashErr := s.stash.Put(ctx, pending.TenantID, pending)
	if stashErr != nil {
		s.log.Error("failed to stash pending persist",
			zap.String("storage_key", pending.StorageKey),
			zap.Error(stashErr))
		return nil, apperr.Persist("catalog write failed and stash unavailable", err)
	}

	return nil, &PersistFailure{
		StashKey: stashKey,
		Err:      apperr.Persist(fmt.Sprintf("catalog write failed, retry with stash key %s", stashKey), err),
	}
}

func (s *uploadService) publish(ctx context.Context, eventType string, asset *model.Asset, actorID uuid.UUID) {
	if s.events == nil {
		return
	}
	ev := mq.AssetEvent{
		Type:         eventType,
		TenantID:     asset.TenantID,
		AssetID:      asset.ID,
		ProjectID:    asset.ProjectID,
		DisciplineID: asset.DisciplineID,
		Version:      asset.Version,
		ActorID:      actorID,
	}
	if err := s.events.PublishAssetEvent(ctx, ev); err != nil {
		s.log.Warn("failed to publish asset event",
			zap.String("type", eventType),
			zap.String("asset_id", asset.ID.String()),
			zap.Error(err))
	}
}

func (s *uploadService) observeFailure(phase string) {
	if s.metrics != nil {
		s.metrics.ObserveUploadFailure(phase)
	}
}

func (s *uploadService) observeSuccess(mode string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveUploadSuccess(mode, time.Since(start))
	}
}
