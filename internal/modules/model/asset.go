package model

import (
	"time"

	"github.com/google/uuid"
)

// AssetStatus tracks where a model is in its translation lifecycle.
type AssetStatus string

const (
	AssetStatusProcessing AssetStatus = "processing"
	AssetStatusDone       AssetStatus = "done"
	AssetStatusError      AssetStatus = "error"
)

// Asset is a single versioned CAD/BIM model file tracked by the catalog.
// Only the current version's storage pointer and translation handle are
// kept; a version bump replaces both in place.
type Asset struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ProjectID    uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	DisciplineID uuid.UUID `gorm:"type:uuid;not null;index" json:"discipline_id"`
	// Denormalized from the project so hierarchy reads avoid a join.
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`

	DisplayName string `gorm:"type:varchar(255);not null" json:"display_name"`
	Version     int    `gorm:"not null;default:1" json:"version"`

	StorageBucket     string `gorm:"type:varchar(255);not null" json:"storage_bucket"`
	StorageKey        string `gorm:"type:varchar(1024);not null" json:"storage_key"`
	TranslationHandle string `gorm:"type:varchar(1024);not null" json:"translation_handle"`
	SizeBytes         int64  `gorm:"not null" json:"size_bytes"`
	ContentType       string `gorm:"type:varchar(255)" json:"content_type"`

	Status    AssetStatus `gorm:"type:varchar(16);not null;default:'processing'" json:"status"`
	IsTrashed bool        `gorm:"not null;default:false;index" json:"is_trashed"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	UpdatedBy uuid.UUID `gorm:"type:uuid;not null" json:"updated_by"`

	// Asset <-> Project / Discipline
	Project    *Project    `gorm:"foreignKey:ProjectID;references:ID" json:"project,omitempty"`
	Discipline *Discipline `gorm:"foreignKey:DisciplineID;references:ID" json:"discipline,omitempty"`
}

func (Asset) TableName() string { return "assets" }
