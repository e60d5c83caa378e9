package database

import (
	"fmt"
	"time"

	"github.com/clearhaven/claimdesk/internal/config"
	"github.com/clearhaven/claimdesk/internal/domain"
	"github.com/clearhaven/claimdesk/internal/domain/annotation"
	"github.com/clearhaven/claimdesk/internal/domain/claim"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:      gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt: true,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: cfg.DSN(),
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	models := []any{
		&domain.User{},
		&domain.AuditLog{},
		&domain.DataUpload{},
		&claim.Claim{},
		&claim.ClaimDetail{},
		&annotation.ClaimFlag{},
		&annotation.ClaimNote{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []struct {
		name  string
		query string
	}{
		// Claims list default ordering and the status+insurer filter combo
		{
			name:  "idx_claims_discharge_order",
			query: `CREATE INDEX IF NOT EXISTS idx_claims_discharge_order ON claims (discharge_date DESC, claim_id)`,
		},
		{
			name:  "idx_claims_status_insurer",
			query: `CREATE INDEX IF NOT EXISTS idx_claims_status_insurer ON claims (status, insurer_name)`,
		},
		// Amount-range filters and the top-underpaid dashboard query
		{
			name:  "idx_claims_billed",
			query: `CREATE INDEX IF NOT EXISTS idx_claims_billed ON claims (billed_amount)`,
		},
		{
			name:  "idx_claims_underpayment",
			query: `CREATE INDEX IF NOT EXISTS idx_claims_underpayment ON claims ((billed_amount - paid_amount) DESC) WHERE billed_amount > paid_amount`,
		},
		// Flagged-only filter and flagged-claims count
		{
			name:  "idx_claim_flags_active",
			query: `CREATE INDEX IF NOT EXISTS idx_claim_flags_active ON claim_flags (claim_ref) WHERE is_active`,
		},
		// Free-text search over id, patient and insurer
		{
			name:  "idx_claims_search_trgm",
			query: `CREATE INDEX IF NOT EXISTS idx_claims_search_trgm ON claims USING gin ((claim_id || ' ' || patient_name || ' ' || insurer_name) gin_trgm_ops)`,
		},
	}

	_ = db.Exec("CREATE EXTENSION IF NOT EXISTS pg_trgm").Error

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}

	return nil
}
