package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildvault/bimlibrary/internal/modules/model"
	"github.com/buildvault/bimlibrary/internal/pkg/apperr"
)

type ViewSetRepo interface {
	Create(ctx context.Context, vs *model.ViewSet) error
	GetByID(ctx context.Context, tenantID, setID uuid.UUID) (*model.ViewSet, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*model.ViewSet, error)
}

type viewSetRepo struct{ db *gorm.DB }

func NewViewSetRepo(db *gorm.DB) ViewSetRepo {
	return &viewSetRepo{db: db}
}

func (r *viewSetRepo) Create(ctx context.Context, vs *model.ViewSet) error {
	return r.db.WithContext(ctx).Create(vs).Error
}

func (r *viewSetRepo) GetByID(ctx context.Context, tenantID, setID uuid.UUID) (*model.ViewSet, error) {
	var vs model.ViewSet
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", setID, tenantID).
		First(&vs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("view set not found")
	}
	if err != nil {
		return nil, err
	}
	return &vs, nil
}

func (r *viewSetRepo) List(ctx context.Context, tenantID uuid.UUID) ([]*model.ViewSet, error) {
	var sets []*model.ViewSet
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&sets).Error
	if err != nil {
		return nil, err
	}
	return sets, nil
}
