package database

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/buildvault/bimlibrary/internal/config"
	"github.com/buildvault/bimlibrary/internal/modules/model"
)

func New(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if cfg.Telemetry.Enabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			return nil, fmt.Errorf("install gorm tracing: %w", err)
		}
	}

	return db, nil
}

// Migrate creates/updates the subsystem's tables. Reference tables
// (companies, projects, disciplines) are owned by other application modules;
// they are included here so the service can run standalone in development.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Company{},
		&model.Project{},
		&model.Discipline{},
		&model.Asset{},
		&model.ViewSet{},
	)
}

// SeedDev inserts a sample tenant's reference data when the companies table
// is empty. Development only; the reference tables belong to other modules
// in a full deployment.
func SeedDev(db *gorm.DB, tenantID uuid.UUID) error {
	var count int64
	if err := db.Model(&model.Company{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count companies: %w", err)
	}
	if count > 0 {
		return nil
	}

	company := model.Company{TenantID: tenantID, Name: "Demo Construction"}
	if err := db.Create(&company).Error; err != nil {
		return fmt.Errorf("seed company: %w", err)
	}

	project := model.Project{TenantID: tenantID, CompanyID: company.ID, Name: "Tower A"}
	if err := db.Create(&project).Error; err != nil {
		return fmt.Errorf("seed project: %w", err)
	}

	disciplines := []model.Discipline{
		{TenantID: tenantID, Code: "ARCH", Name: "Architecture"},
		{TenantID: tenantID, Code: "STR", Name: "Structural"},
		{TenantID: tenantID, Code: "MEP", Name: "Mechanical/Electrical/Plumbing"},
	}
	if err := db.Create(&disciplines).Error; err != nil {
		return fmt.Errorf("seed disciplines: %w", err)
	}
	return nil
}
