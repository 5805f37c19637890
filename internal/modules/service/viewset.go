package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/buildvault/bimlibrary/internal/modules/model"
	"github.com/buildvault/bimlibrary/internal/modules/repo"
	"github.com/buildvault/bimlibrary/internal/pkg/apperr"
)

type CreateViewSetInput struct {
	TenantID  uuid.UUID
	ActorID   uuid.UUID
	ProjectID uuid.UUID
	Name      string
	AssetIDs  []uuid.UUID
}

// ViewSetService manages federated sets: named, frozen snapshots of asset
// ids meant to be loaded together. A set is a bookmark, not an owning
// relation; members may be trashed or vanish after creation, and resolution
// simply skips them.
type ViewSetService interface {
	Create(ctx context.Context, in CreateViewSetInput) (*model.ViewSet, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*model.ViewSet, error)
	Resolve(ctx context.Context, tenantID, setID uuid.UUID) ([]*model.Asset, error)
}

type viewSetService struct {
	sets   repo.ViewSetRepo
	assets repo.AssetRepo
	refs   repo.ReferenceRepo
}

func NewViewSetService(sets repo.ViewSetRepo, assets repo.AssetRepo, refs repo.ReferenceRepo) ViewSetService {
	return &viewSetService{sets: sets, assets: assets, refs: refs}
}

func (s *viewSetService) Create(ctx context.Context, in CreateViewSetInput) (*model.ViewSet, error) {
	if in.TenantID == uuid.Nil || in.ActorID == uuid.Nil {
		return nil, apperr.Validation("tenant id and actor id are required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("name cannot be blank")
	}
	if len(in.AssetIDs) == 0 {
		return nil, apperr.Validation("asset id list cannot be empty")
	}
	if in.ProjectID == uuid.Nil {
		return nil, apperr.Validation("project id is required")
	}

	if _, err := s.refs.GetProject(ctx, in.TenantID, in.ProjectID); err != nil {
		return nil, err
	}

	// Every member must resolve in-tenant at creation time; dangling
	// references are tolerated later, not at birth.
	for _, id := range in.AssetIDs {
		if _, err := s.assets.GetByID(ctx, in.TenantID, id); err != nil {
			return nil, err
		}
	}

	vs := &model.ViewSet{
		TenantID:  in.TenantID,
		ProjectID: in.ProjectID,
		Name:      strings.TrimSpace(in.Name),
		AssetIDs:  datatypes.NewJSONSlice(in.AssetIDs),
		CreatedBy: in.ActorID,
	}
	if err := s.sets.Create(ctx, vs); err != nil {
		return nil, err
	}
	return vs, nil
}

func (s *viewSetService) List(ctx context.Context, tenantID uuid.UUID) ([]*model.ViewSet, error) {
	if tenantID == uuid.Nil {
		return nil, apperr.Validation("tenant id is required")
	}
	return s.sets.List(ctx, tenantID)
}

// Resolve filters the frozen snapshot against current non-trashed assets,
// preserving the original relative order. Missing or trashed members are
// silently dropped; that is expected, not exceptional.
func (s *viewSetService) Resolve(ctx context.Context, tenantID, setID uuid.UUID) ([]*model.Asset, error) {
	if tenantID == uuid.Nil {
		return nil, apperr.Validation("tenant id is required")
	}

	vs, err := s.sets.GetByID(ctx, tenantID, setID)
	if err != nil {
		return nil, err
	}

	ids := []uuid.UUID(vs.AssetIDs)
	found, err := s.assets.ListByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*model.Asset, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}

	resolved := make([]*model.Asset, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			resolved = append(resolved, a)
		}
	}
	return resolved, nil
}
