package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_quotes_status') THEN
			ALTER TABLE quotes ADD CONSTRAINT chk_quotes_status CHECK (status IN (
				'Draft', 'Submitted', 'Information Requested', 'Quoted', 'Under Discussion',
				'Approved', 'Declined', 'Expired', 'Converted'));
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_quotes_costs') THEN
			ALTER TABLE quotes ADD CONSTRAINT chk_quotes_costs CHECK (
				(estimated_cost IS NULL OR estimated_cost >= 0) AND
				(estimated_hours IS NULL OR estimated_hours >= 0));
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_work_orders_status') THEN
			ALTER TABLE work_orders ADD CONSTRAINT chk_work_orders_status CHECK (status IN (
				'pending', 'in-progress', 'completed', 'cancelled'));
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_clients_code') THEN
			ALTER TABLE clients ADD CONSTRAINT chk_clients_code CHECK (code ~ '^[A-Z0-9_-]+$');
		END IF;
	END
	$$;`,
	`CREATE INDEX IF NOT EXISTS idx_quotes_valid_until_open ON quotes (quote_valid_until)
		WHERE quote_valid_until IS NOT NULL AND status NOT IN ('Declined', 'Expired', 'Converted');`,
	`CREATE INDEX IF NOT EXISTS idx_quote_messages_quote_created ON quote_messages (quote_id, created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_user_unread ON alerts (user_id) WHERE read = FALSE;`,
	`CREATE INDEX IF NOT EXISTS idx_clients_name_lower ON clients (LOWER(name));`,
	`CREATE OR REPLACE FUNCTION quote_messages_append_only() RETURNS trigger AS $$
	BEGIN
		RAISE EXCEPTION 'quote messages are append-only';
	END;
	$$ LANGUAGE plpgsql;`,
	`DROP TRIGGER IF EXISTS trg_quote_messages_append_only ON quote_messages;`,
	`CREATE TRIGGER trg_quote_messages_append_only
		BEFORE UPDATE OR DELETE ON quote_messages
		FOR EACH ROW EXECUTE FUNCTION quote_messages_append_only();`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
