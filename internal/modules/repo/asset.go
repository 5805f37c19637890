package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildvault/bimlibrary/internal/modules/model"
	"github.com/buildvault/bimlibrary/internal/pkg/apperr"
)

// AssetRepo is the tenant-scoped catalog store for assets. Every method
// filters by tenant id; an id that exists under another tenant is
// indistinguishable from one that does not exist at all.
type AssetRepo interface {
	Create(ctx context.Context, a *model.Asset) error
	GetByID(ctx context.Context, tenantID, assetID uuid.UUID) (*model.Asset, error)
	UpdateVersion(ctx context.Context, tenantID, assetID uuid.UUID, up VersionUpdate) (*model.Asset, error)
	Move(ctx context.Context, tenantID, assetID uuid.UUID, mv MoveUpdate) (*model.Asset, error)
	SetTrashed(ctx context.Context, tenantID, assetID, actorID uuid.UUID, trashed bool) error
	List(ctx context.Context, tenantID uuid.UUID, includeTrashed bool) ([]*model.Asset, error)
	ListByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*model.Asset, error)
}

// VersionUpdate carries the replacement pointer/handle for a version bump.
// The version column itself is incremented in SQL, never set from Go.
type VersionUpdate struct {
	StorageBucket     string
	StorageKey        string
	TranslationHandle string
	SizeBytes         int64
	ContentType       string
	UpdatedBy         uuid.UUID
}

// MoveUpdate relocates an asset to a new (project, discipline) pair.
// CompanyID follows the target project; the caller resolves it.
type MoveUpdate struct {
	ProjectID    *uuid.UUID
	DisciplineID *uuid.UUID
	CompanyID    *uuid.UUID
	UpdatedBy    uuid.UUID
}

type assetRepo struct{ db *gorm.DB }

func NewAssetRepo(db *gorm.DB) AssetRepo {
	return &assetRepo{db: db}
}

func (r *assetRepo) Create(ctx context.Context, a *model.Asset) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *assetRepo) GetByID(ctx context.Context, tenantID, assetID uuid.UUID) (*model.Asset, error) {
	var asset model.Asset
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", assetID, tenantID).
		First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("asset not found")
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepo) UpdateVersion(ctx context.Context, tenantID, assetID uuid.UUID, up VersionUpdate) (*model.Asset, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Asset{}).
		Where("id = ? AND tenant_id = ?", assetID, tenantID).
		Updates(map[string]interface{}{
			"version":            gorm.Expr("version + 1"),
			"storage_bucket":     up.StorageBucket,
			"storage_key":        up.StorageKey,
			"translation_handle": up.TranslationHandle,
			"size_bytes":         up.SizeBytes,
			"content_type":       up.ContentType,
			"status":             model.AssetStatusDone,
			"updated_by":         up.UpdatedBy,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("asset not found")
	}
	return r.GetByID(ctx, tenantID, assetID)
}

func (r *assetRepo) Move(ctx context.Context, tenantID, assetID uuid.UUID, mv MoveUpdate) (*model.Asset, error) {
	updates := map[string]interface{}{"updated_by": mv.UpdatedBy}
	if mv.ProjectID != nil {
		updates["project_id"] = *mv.ProjectID
	}
	if mv.DisciplineID != nil {
		updates["discipline_id"] = *mv.DisciplineID
	}
	if mv.CompanyID != nil {
		updates["company_id"] = *mv.CompanyID
	}

	res := r.db.WithContext(ctx).
		Model(&model.Asset{}).
		Where("id = ? AND tenant_id = ?", assetID, tenantID).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("asset not found")
	}
	return r.GetByID(ctx, tenantID, assetID)
}

func (r *assetRepo) SetTrashed(ctx context.Context, tenantID, assetID, actorID uuid.UUID, trashed bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.Asset{}).
		Where("id = ? AND tenant_id = ?", assetID, tenantID).
		Updates(map[string]interface{}{
			"is_trashed": trashed,
			"updated_by": actorID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("asset not found")
	}
	return nil
}

func (r *assetRepo) List(ctx context.Context, tenantID uuid.UUID, includeTrashed bool) ([]*model.Asset, error) {
	var assets []*model.Asset
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if !includeTrashed {
		query = query.Where("is_trashed = ?", false)
	}
	if err := query.Order("created_at DESC").Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

// ListByIDs returns the non-trashed assets among ids, in no particular
// order. Missing ids are simply absent from the result.
func (r *assetRepo) ListByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*model.Asset, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var assets []*model.Asset
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ? AND is_trashed = ?", tenantID, ids, false).
		Find(&assets).Error
	if err != nil {
		return nil, err
	}
	return assets, nil
}
