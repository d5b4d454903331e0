package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// CreateLeadTables creates projects, scripts, leads and call_sessions
func CreateLeadTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_lead_tables",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS projects (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					name VARCHAR(255) NOT NULL,
					slug VARCHAR(255) NOT NULL UNIQUE,
					success_price DECIMAL(20,2) NOT NULL DEFAULT 0,
					is_active BOOLEAN DEFAULT TRUE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE TABLE IF NOT EXISTS scripts (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					project_id UUID NOT NULL REFERENCES projects(id),
					title VARCHAR(255) NOT NULL,
					body TEXT,
					position INTEGER DEFAULT 0,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_scripts_project_id ON scripts(project_id);

				CREATE TABLE IF NOT EXISTS leads (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					name VARCHAR(255) NOT NULL,
					phone VARCHAR(32) NOT NULL,
					project_id UUID NOT NULL REFERENCES projects(id),
					status VARCHAR(20) NOT NULL DEFAULT 'new',
					approval_status VARCHAR(20) NOT NULL DEFAULT 'none',
					assigned_to UUID REFERENCES users(id),
					comment TEXT,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_leads_status ON leads(status);
				CREATE INDEX idx_leads_assigned_to ON leads(assigned_to);
				CREATE INDEX idx_leads_project_id ON leads(project_id);
				-- claim scans the pool oldest-first
				CREATE INDEX idx_leads_pool ON leads(created_at) WHERE status = 'new' AND assigned_to IS NULL;

				CREATE TABLE IF NOT EXISTS call_sessions (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					lead_id UUID NOT NULL REFERENCES leads(id),
					operator_id UUID NOT NULL REFERENCES users(id),
					vendor_call_id VARCHAR(100) UNIQUE,
					status VARCHAR(20) NOT NULL DEFAULT 'initiated',
					started_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					ended_at TIMESTAMP WITH TIME ZONE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE INDEX idx_call_sessions_lead_id ON call_sessions(lead_id);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec(`
				DROP TABLE IF EXISTS call_sessions;
				DROP TABLE IF EXISTS leads;
				DROP TABLE IF EXISTS scripts;
				DROP TABLE IF EXISTS projects;
			`).Error
		},
	}
}
