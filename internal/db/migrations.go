package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "btree_gist";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'shift_status') THEN
			CREATE TYPE shift_status AS ENUM ('DRAFT', 'ACTIVE', 'COMPLETED', 'CANCELLED');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'job_status') THEN
			CREATE TYPE job_status AS ENUM ('DRAFT', 'ASSIGNED', 'COMPLETED', 'CANCELLED');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'invoice_status') THEN
			CREATE TYPE invoice_status AS ENUM ('DRAFT', 'ISSUED', 'CANCELLED');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		code VARCHAR(32) NOT NULL,
		full_name VARCHAR(255) NOT NULL,
		phone VARCHAR(32),
		license_number VARCHAR(64),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		code VARCHAR(32) NOT NULL,
		plate_number VARCHAR(32) NOT NULL UNIQUE,
		make VARCHAR(64),
		model VARCHAR(64),
		capacity_tons DOUBLE PRECISION,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS trailers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		code VARCHAR(32) NOT NULL,
		plate_number VARCHAR(32) NOT NULL UNIQUE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS clients (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		code VARCHAR(32) NOT NULL,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		code VARCHAR(32) NOT NULL,
		name VARCHAR(255) NOT NULL,
		unit VARCHAR(16),
		unit_price NUMERIC(12,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_drivers_code ON drivers (code);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_code ON vehicles (code);`,
	`CREATE INDEX IF NOT EXISTS idx_trailers_code ON trailers (code);`,
	`CREATE INDEX IF NOT EXISTS idx_clients_code ON clients (code);`,
	`CREATE INDEX IF NOT EXISTS idx_products_code ON products (code);`,
	`CREATE TABLE IF NOT EXISTS counters (
		year INTEGER NOT NULL,
		type VARCHAR(8) NOT NULL,
		current BIGINT NOT NULL DEFAULT 0 CHECK (current >= 0),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (year, type)
	);`,
	`CREATE TABLE IF NOT EXISTS shifts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		code VARCHAR(32) NOT NULL UNIQUE,
		driver_id UUID NOT NULL REFERENCES drivers(id) ON DELETE RESTRICT,
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL,
		status shift_status NOT NULL DEFAULT 'DRAFT',
		timezone VARCHAR(64) NOT NULL DEFAULT 'UTC',
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT chk_shifts_window CHECK (start_time < end_time)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_shifts_driver_id ON shifts (driver_id);`,
	`CREATE INDEX IF NOT EXISTS idx_shifts_status ON shifts (status);`,
	// Backstop for the driver overlap guard: rejects overlapping non-cancelled
	// windows even if two writers slip past the application check.
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'excl_shifts_driver_window') THEN
			ALTER TABLE shifts
				ADD CONSTRAINT excl_shifts_driver_window
				EXCLUDE USING gist (
					driver_id WITH =,
					tstzrange(start_time, end_time, '[)') WITH &&
				) WHERE (status <> 'CANCELLED');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		code VARCHAR(32) NOT NULL UNIQUE,
		shift_id UUID NOT NULL REFERENCES shifts(id) ON DELETE RESTRICT,
		client_id UUID NOT NULL REFERENCES clients(id) ON DELETE RESTRICT,
		job_date DATE NOT NULL,
		status job_status NOT NULL DEFAULT 'DRAFT',
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_shift_id ON jobs (shift_id);`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_client_id ON jobs (client_id);`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs (status);`,
	`CREATE TABLE IF NOT EXISTS job_lines (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		job_id UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
		pickup_time TIME NOT NULL,
		delivery_time TIME NOT NULL,
		driver_id UUID REFERENCES drivers(id) ON DELETE RESTRICT,
		vehicle_id UUID REFERENCES vehicles(id) ON DELETE RESTRICT,
		trailer_id UUID REFERENCES trailers(id) ON DELETE RESTRICT,
		product_id UUID REFERENCES products(id) ON DELETE RESTRICT,
		qty NUMERIC(12,3) NOT NULL DEFAULT 0,
		docket_no VARCHAR(64),
		pickup_site VARCHAR(255),
		delivery_site VARCHAR(255),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT chk_job_lines_window CHECK (pickup_time < delivery_time)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_job_lines_job_id ON job_lines (job_id);`,
	`CREATE INDEX IF NOT EXISTS idx_job_lines_driver_id ON job_lines (driver_id);`,
	`CREATE INDEX IF NOT EXISTS idx_job_lines_vehicle_id ON job_lines (vehicle_id);`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		job_id UUID NOT NULL REFERENCES jobs(id) ON DELETE RESTRICT,
		client_id UUID NOT NULL REFERENCES clients(id) ON DELETE RESTRICT,
		number VARCHAR(32) NOT NULL UNIQUE,
		status invoice_status NOT NULL DEFAULT 'DRAFT',
		total_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		currency VARCHAR(3) NOT NULL DEFAULT 'EUR',
		notes TEXT,
		due_date DATE,
		metadata JSONB,
		issued_at TIMESTAMPTZ,
		cancelled_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_invoices_job_id ON invoices (job_id) WHERE deleted_at IS NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_client_id ON invoices (client_id);`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_deleted_at ON invoices (deleted_at);`,
	`CREATE TABLE IF NOT EXISTS invoice_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		invoice_id UUID NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		job_line_id UUID REFERENCES job_lines(id) ON DELETE SET NULL,
		product_id UUID,
		product_name_snap VARCHAR(255) NOT NULL,
		qty NUMERIC(12,3) NOT NULL,
		unit_price NUMERIC(12,2) NOT NULL,
		amount NUMERIC(14,2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_invoice_items_invoice_id ON invoice_items (invoice_id);`,
	`CREATE OR REPLACE FUNCTION set_updated_at()
	RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;`,
	updatedAtTrigger("drivers"),
	updatedAtTrigger("vehicles"),
	updatedAtTrigger("trailers"),
	updatedAtTrigger("clients"),
	updatedAtTrigger("products"),
	updatedAtTrigger("counters"),
	updatedAtTrigger("shifts"),
	updatedAtTrigger("jobs"),
	updatedAtTrigger("job_lines"),
	updatedAtTrigger("invoices"),
}

func updatedAtTrigger(table string) string {
	return fmt.Sprintf(`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_%[1]s_updated_at') THEN
			CREATE TRIGGER trg_%[1]s_updated_at
				BEFORE UPDATE ON %[1]s
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`, table)
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
