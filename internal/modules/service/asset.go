package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	mq "github.com/buildvault/bimlibrary/internal/infra/queue"
	"github.com/buildvault/bimlibrary/internal/modules/model"
	"github.com/buildvault/bimlibrary/internal/modules/repo"
	"github.com/buildvault/bimlibrary/internal/pkg/apperr"
)

type MoveInput struct {
	TenantID     uuid.UUID
	ActorID      uuid.UUID
	AssetID      uuid.UUID
	ProjectID    *uuid.UUID
	DisciplineID *uuid.UUID
}

// AssetService covers the single-row asset mutations outside the upload
// pipeline: relocation within the hierarchy and the trash flag.
type AssetService interface {
	Get(ctx context.Context, tenantID, assetID uuid.UUID) (*model.Asset, error)
	Move(ctx context.Context, in MoveInput) (*model.Asset, error)
	SoftDelete(ctx context.Context, tenantID, actorID, assetID uuid.UUID) error
	Restore(ctx context.Context, tenantID, actorID, assetID uuid.UUID) error
}

type assetService struct {
	assets repo.AssetRepo
	refs   repo.ReferenceRepo
	events EventPublisher
	log    *zap.Logger
}

func NewAssetService(assets repo.AssetRepo, refs repo.ReferenceRepo, events EventPublisher, log *zap.Logger) AssetService {
	return &assetService{assets: assets, refs: refs, events: events, log: log}
}

func (s *assetService) Get(ctx context.Context, tenantID, assetID uuid.UUID) (*model.Asset, error) {
	if tenantID == uuid.Nil {
		return nil, apperr.Validation("tenant id is required")
	}
	return s.assets.GetByID(ctx, tenantID, assetID)
}

// Move relocates an asset to a new (project, discipline) pair. It is a
// move, never a duplication: version, pointer and handle are untouched.
func (s *assetService) Move(ctx context.Context, in MoveInput) (*model.Asset, error) {
	if in.TenantID == uuid.Nil || in.ActorID == uuid.Nil {
		return nil, apperr.Validation("tenant id and actor id are required")
	}
	if in.AssetID == uuid.Nil {
		return nil, apperr.Validation("asset id is required")
	}
	if in.ProjectID == nil && in.DisciplineID == nil {
		return nil, apperr.Validation("a target project id or discipline id is required")
	}

	mv := repo.MoveUpdate{UpdatedBy: in.ActorID}

	// Both targets must exist in-tenant before any row is touched.
	if in.ProjectID != nil {
		project, err := s.refs.GetProject(ctx, in.TenantID, *in.ProjectID)
		if err != nil {
			return nil, err
		}
		mv.ProjectID = in.ProjectID
		// The denormalized company follows the new project.
		mv.CompanyID = &project.CompanyID
	}
	if in.DisciplineID != nil {
		if _, err := s.refs.GetDiscipline(ctx, in.TenantID, *in.DisciplineID); err != nil {
			return nil, err
		}
		mv.DisciplineID = in.DisciplineID
	}

	asset, err := s.assets.Move(ctx, in.TenantID, in.AssetID, mv)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, mq.EventAssetMoved, asset, in.ActorID)
	return asset, nil
}

// SoftDelete sets the trash flag. Trashing an already-trashed asset is a
// no-op success. View sets referencing the asset are left untouched.
func (s *assetService) SoftDelete(ctx context.Context, tenantID, actorID, assetID uuid.UUID) error {
	return s.setTrashed(ctx, tenantID, actorID, assetID, true, mq.EventAssetTrashed)
}

// Restore clears the trash flag, reinstating the asset at its original
// project/discipline location.
func (s *assetService) Restore(ctx context.Context, tenantID, actorID, assetID uuid.UUID) error {
	return s.setTrashed(ctx, tenantID, actorID, assetID, false, mq.EventAssetRestored)
}

func (s *assetService) setTrashed(ctx context.Context, tenantID, actorID, assetID uuid.UUID, trashed bool, eventType string) error {
	if tenantID == uuid.Nil || actorID == uuid.Nil {
		return apperr.Validation("tenant id and actor id are required")
	}
	if assetID == uuid.Nil {
		return apperr.Validation("asset id is required")
	}

	if err := s.assets.SetTrashed(ctx, tenantID, assetID, actorID, trashed); err != nil {
		return err
	}

	if s.events != nil {
		asset, err := s.assets.GetByID(ctx, tenantID, assetID)
		if err == nil {
			s.publish(ctx, eventType, asset, actorID)
		}
	}
	return nil
}

func (s *assetService) publish(ctx context.Context, eventType string, asset *model.Asset, actorID uuid.UUID) {
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
