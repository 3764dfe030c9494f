package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type seedPiece struct {
	TemperatureType    string
	ClayType           string
	Notes              string
	BiscuitAlreadyDone bool
	BiscuitRequested   bool
	BiscuitDate        string
	DaysAgo            int
}

// SeedDemo creates a demo practician plus a handful of pieces in mixed
// lifecycle states. Intended for local development only; the caller
// supplies the password hash and decides whether seeding should run.
func SeedDemo(dbh *sql.DB, practicianEmail, passwordHash string) error {
	tx, err := dbh.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	uid := uuid.NewString()
	if _, err := tx.Exec(`
		INSERT INTO users(uid,email,password_hash,first_name,last_name,role,created_at)
		VALUES(?,?,?,?,?,?,?)`,
		uid, practicianEmail, passwordHash, "Claire", "Fontaine", "practician",
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	today := time.Now()
	date := func(days int) string { return today.AddDate(0, 0, days).Format("2006-01-02") }

	pieces := []seedPiece{
		{TemperatureType: TemperatureHigh, ClayType: ClayStoneware, Notes: "Grand bol, émail céladon prévu"},
		{TemperatureType: TemperatureLow, ClayType: ClayEarthenware, Notes: "Assiette décorée", BiscuitRequested: true, BiscuitDate: date(2), DaysAgo: 3},
		{TemperatureType: TemperatureHigh, ClayType: ClayPorcelain, Notes: "Tasse fine", BiscuitRequested: true, BiscuitDate: date(-1), DaysAgo: 9},
		{TemperatureType: TemperatureHigh, ClayType: ClayStoneware, Notes: "Vase tourné, biscuit fait au four perso", BiscuitAlreadyDone: true, DaysAgo: 1},
	}

	for _, p := range pieces {
		submitted := today.AddDate(0, 0, -p.DaysAgo).UTC().Format(time.RFC3339)
		if _, err := tx.Exec(`
			INSERT INTO pieces(
				id,photo,temperature_type,clay_type,notes,
				biscuit_already_done,biscuit_requested,biscuit_completed,biscuit_date,
				emaillage_requested,emaillage_completed,
				submitted_by_uid,submitted_by_email,submitted_by_first_name,submitted_by_last_name,
				submitted_date)
			VALUES(?,?,?,?,?,?,?,?,?,0,0,?,?,?,?,?)`,
			uuid.NewString(), demoPhoto, p.TemperatureType, p.ClayType, p.Notes,
			b2i(p.BiscuitAlreadyDone), b2i(p.BiscuitRequested), b2i(p.BiscuitAlreadyDone), p.BiscuitDate,
			uid, practicianEmail, "Claire", "Fontaine", submitted); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func IsUsersEmpty(dbh *sql.DB, exceptRole string) (bool, error) {
	var n int
	if err := dbh.QueryRow(`SELECT COUNT(1) FROM users WHERE role != ?`, exceptRole).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}

// 1x1 grey JPEG, stands in for a real compressed photo.
const demoPhoto = "data:image/jpeg;base64,/9j/4AAQSkZJRgABAQEAYABgAAD/2wBDAAgGBgcGBQgHBwcJCQgKDBQNDAsLDBkSEw8UHRofHh0aHBwgJC4nICIsIxwcKDcpLDAxNDQ0Hyc5PTgyPC4zNDL/wAALCAABAAEBAREA/8QAFAABAAAAAAAAAAAAAAAAAAAACf/EABQQAQAAAAAAAAAAAAAAAAAAAAD/2gAIAQEAAD8AKp//2Q=="
