package model

import (
	"time"

	"github.com/google/uuid"
)

// Company, Project and Discipline are reference data owned by other modules
// of the application. The BIM library reads them to place assets in the
// Company → Project → Discipline hierarchy; it never writes them.

type Company struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Company) TableName() string { return "companies" }

type Project struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Project <-> Company
	Company *Company `gorm:"foreignKey:CompanyID;references:ID" json:"company,omitempty"`
}

func (Project) TableName() string { return "projects" }

// Discipline is a tenant-wide classification folder (structural, electrical,
// plumbing, ...) under which assets are grouped per project. It is not
// project-specific.
type Discipline struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Code     string    `gorm:"type:varchar(32);not null" json:"code"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Discipline) TableName() string { return "disciplines" }
