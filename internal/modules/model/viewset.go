package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ViewSet is a named, frozen snapshot of asset ids intended to be loaded
// together ("federated set"). Membership is captured at creation time and
// never recomputed: trashed or vanished members are dropped at resolution
// time, the stored list stays untouched.
type ViewSet struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`

	AssetIDs datatypes.JSONSlice[uuid.UUID] `gorm:"type:jsonb;not null" json:"asset_ids"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`

	// ViewSet <-> Project
	Project *Project `gorm:"foreignKey:ProjectID;references:ID" json:"project,omitempty"`
}

func (ViewSet) TableName() string { return "view_sets" }
