package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("🔌 Connecting to Postgres...")

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Printf("❌ sqlx.Connect() failed: %v", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		log.Printf("❌ Ping() failed: %v", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Database connection established")
	return db, nil
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Create users table
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL CHECK(role IN ('field', 'admin')),
			state TEXT NOT NULL DEFAULT '',
			district TEXT NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create work_sessions table (one officer's workday)
		`CREATE TABLE IF NOT EXISTS work_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			date TEXT NOT NULL,
			start_time BIGINT NOT NULL,
			start_lat DOUBLE PRECISION NOT NULL,
			start_lng DOUBLE PRECISION NOT NULL,
			end_time BIGINT,
			end_lat DOUBLE PRECISION,
			end_lng DOUBLE PRECISION,
			total_distance DOUBLE PRECISION NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			CHECK (total_distance >= 0)
		)`,

		// One active session per officer per calendar day. Start-day races
		// from multiple server processes resolve here, not in application code.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_work_sessions_one_active
			ON work_sessions(user_id, date) WHERE is_active`,

		// Create meetings table
		`CREATE TABLE IF NOT EXISTS meetings (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL CHECK(type IN ('one-on-one', 'group')),
			person_name TEXT NOT NULL DEFAULT '',
			village TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT 'farmer' CHECK(category IN ('farmer', 'seller', 'distributor', 'other')),
			attendees_count INT NOT NULL DEFAULT 1,
			lat DOUBLE PRECISION,
			lng DOUBLE PRECISION,
			photos TEXT[] NOT NULL DEFAULT '{}',
			notes TEXT NOT NULL DEFAULT '',
			timestamp BIGINT NOT NULL,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Create samples table
		`CREATE TABLE IF NOT EXISTS samples (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			product TEXT NOT NULL,
			quantity INT NOT NULL,
			receiver_name TEXT NOT NULL,
			purpose TEXT NOT NULL DEFAULT '',
			recorded_at BIGINT NOT NULL,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Create sales table
		`CREATE TABLE IF NOT EXISTS sales (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			product TEXT NOT NULL,
			quantity INT NOT NULL,
			amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			type TEXT NOT NULL CHECK(type IN ('B2C', 'B2B')),
			buyer_name TEXT NOT NULL,
			recorded_at BIGINT NOT NULL,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Create FCM tokens table
		`CREATE TABLE IF NOT EXISTS fcm_tokens (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			device_type TEXT NOT NULL CHECK(device_type IN ('ios', 'android')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Create indexes
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_work_sessions_user_date ON work_sessions(user_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_work_sessions_created_at ON work_sessions(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_meetings_user_id ON meetings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_meetings_timestamp ON meetings(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_user_id ON samples(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_recorded_at ON samples(recorded_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_user_id ON sales(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_recorded_at ON sales(recorded_at)`,
		`CREATE INDEX IF NOT EXISTS idx_fcm_tokens_user_id ON fcm_tokens(user_id)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
