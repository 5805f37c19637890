package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildvault/bimlibrary/internal/modules/model"
	"github.com/buildvault/bimlibrary/internal/pkg/apperr"
)

// ReferenceRepo reads the Company/Project/Discipline reference tables.
// Those tables are written by other modules of the application; the BIM
// library only consumes them.
type ReferenceRepo interface {
	GetProject(ctx context.Context, tenantID, projectID uuid.UUID) (*model.Project, error)
	GetDiscipline(ctx context.Context, tenantID, disciplineID uuid.UUID) (*model.Discipline, error)
	ListCompanies(ctx context.Context, tenantID uuid.UUID) ([]*model.Company, error)
	ListProjects(ctx context.Context, tenantID uuid.UUID) ([]*model.Project, error)
	ListDisciplines(ctx context.Context, tenantID uuid.UUID) ([]*model.Discipline, error)
}

type referenceRepo struct{ db *gorm.DB }

func NewReferenceRepo(db *gorm.DB) ReferenceRepo {
	return &referenceRepo{db: db}
}

func (r *referenceRepo) GetProject(ctx context.Context, tenantID, projectID uuid.UUID) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", projectID, tenantID).
		First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("project not found")
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *referenceRepo) GetDiscipline(ctx context.Context, tenantID, disciplineID uuid.UUID) (*model.Discipline, error) {
	var discipline model.Discipline
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", disciplineID, tenantID).
		First(&discipline).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("discipline not found")
	}
	if err != nil {
		return nil, err
	}
	return &discipline, nil
}

func (r *referenceRepo) ListCompanies(ctx context.Context, tenantID uuid.UUID) ([]*model.Company, error) {
	var companies []*model.Company
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&companies).Error
	if err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *referenceRepo) ListProjects(ctx context.Context, tenantID uuid.UUID) ([]*model.Project, error) {
	var projects []*model.Project
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *referenceRepo) ListDisciplines(ctx context.Context, tenantID uuid.UUID) ([]*model.Discipline, error) {
	var disciplines []*model.Discipline
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("code ASC").
		Find(&disciplines).Error
	if err != nil {
		return nil, err
	}
	return disciplines, nil
}
