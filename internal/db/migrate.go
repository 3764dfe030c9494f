package db

import "database/sql"

func Migrate(db *sql.DB) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,

		`CREATE TABLE IF NOT EXISTS users (
			uid TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('admin','practician')),
			created_at TEXT NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS pieces (
			id TEXT PRIMARY KEY,
			photo TEXT NOT NULL,
			temperature_type TEXT NOT NULL CHECK(temperature_type IN ('Haute température','Basse température')),
			clay_type TEXT NOT NULL CHECK(clay_type IN ('Grès','Faïence','Porcelaine')),
			notes TEXT NOT NULL DEFAULT '',
			biscuit_already_done INTEGER NOT NULL DEFAULT 0,
			biscuit_requested INTEGER NOT NULL DEFAULT 0,
			biscuit_completed INTEGER NOT NULL DEFAULT 0,
			biscuit_date TEXT NOT NULL DEFAULT '',
			biscuit_completed_date TEXT NOT NULL DEFAULT '',
			emaillage_requested INTEGER NOT NULL DEFAULT 0,
			emaillage_completed INTEGER NOT NULL DEFAULT 0,
			emaillage_date TEXT NOT NULL DEFAULT '',
			emaillage_completed_date TEXT NOT NULL DEFAULT '',
			submitted_by_uid TEXT NOT NULL,
			submitted_by_email TEXT NOT NULL,
			submitted_by_first_name TEXT NOT NULL DEFAULT '',
			submitted_by_last_name TEXT NOT NULL DEFAULT '',
			submitted_date TEXT NOT NULL
		);`,

		`CREATE INDEX IF NOT EXISTS idx_pieces_owner_submitted ON pieces(submitted_by_uid, submitted_date);`,
		`CREATE INDEX IF NOT EXISTS idx_pieces_submitted ON pieces(submitted_date);`,
		`CREATE INDEX IF NOT EXISTS idx_pieces_biscuit_requested ON pieces(biscuit_requested, biscuit_completed);`,
		`CREATE INDEX IF NOT EXISTS idx_pieces_emaillage_requested ON pieces(emaillage_requested, emaillage_completed);`,
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
