package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// CreateQualityTables creates quality_reviews, transactions and jobs
func CreateQualityTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_quality_tables",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS quality_reviews (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					lead_id UUID NOT NULL UNIQUE REFERENCES leads(id),
					status VARCHAR(20) NOT NULL DEFAULT 'pending',
					operator_comment TEXT,
					qc_comment TEXT,
					reviewer_id UUID REFERENCES users(id),
					reviewed_at TIMESTAMP WITH TIME ZONE,
					locked_by UUID REFERENCES users(id),
					locked_at TIMESTAMP WITH TIME ZONE,
					lock_expires_at TIMESTAMP WITH TIME ZONE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE INDEX idx_quality_reviews_status ON quality_reviews(status);
				CREATE INDEX idx_quality_reviews_locked_by ON quality_reviews(locked_by);

				CREATE TABLE IF NOT EXISTS transactions (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					user_id UUID NOT NULL REFERENCES users(id),
					amount DECIMAL(20,2) NOT NULL,
					type VARCHAR(20) NOT NULL,
					category VARCHAR(20) NOT NULL DEFAULT 'other',
					description TEXT,
					lead_id UUID REFERENCES leads(id),
					-- one settlement per event: the reference encodes the lead or
					-- review the credit belongs to, so retries cannot double-credit
					reference VARCHAR(100) NOT NULL UNIQUE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE INDEX idx_transactions_user_id ON transactions(user_id);
				CREATE INDEX idx_transactions_category ON transactions(category);
				CREATE INDEX idx_transactions_lead_id ON transactions(lead_id);

				CREATE TABLE IF NOT EXISTS jobs (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					type VARCHAR(100) NOT NULL,
					payload JSONB,
					status VARCHAR(20) NOT NULL DEFAULT 'pending',
					retry_count INTEGER DEFAULT 0,
					max_retries INTEGER DEFAULT 3,
					next_retry TIMESTAMP WITH TIME ZONE,
					error TEXT,
					result JSONB,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE INDEX idx_jobs_status ON jobs(status);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec(`
				DROP TABLE IF EXISTS jobs;
				DROP TABLE IF EXISTS transactions;
				DROP TABLE IF EXISTS quality_reviews;
			`).Error
		},
	}
}
