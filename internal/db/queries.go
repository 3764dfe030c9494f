package db

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by updates targeting an absent piece or user.
// Reads follow the (nil, nil) convention instead.
var ErrNotFound = errors.New("not found")

type Queries struct {
	db *sql.DB
}

func nowISO() string { return time.Now().UTC().Format(time.RFC3339) }
func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
func i2b(i int) bool { return i != 0 }

/* ---------------- Users ---------------- */

func (q *Queries) HasAnyAdmin() (bool, error) {
	row := q.db.QueryRow(`SELECT COUNT(1) FROM users WHERE role='admin'`)
	var n int
	if err := row.Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

const userCols = `uid,email,password_hash,first_name,last_name,role,created_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	if err := row.Scan(&u.UID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Role, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (q *Queries) GetUserByUID(uid string) (*User, error) {
	return scanUser(q.db.QueryRow(`SELECT `+userCols+` FROM users WHERE uid=?`, uid))
}

func (q *Queries) GetUserByEmail(email string) (*User, error) {
	return scanUser(q.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email=?`, email))
}

func (q *Queries) CreateUser(p CreateUserParams) (string, error) {
	uid := uuid.NewString()
	_, err := q.db.Exec(`
		INSERT INTO users(uid,email,password_hash,first_name,last_name,role,created_at)
		VALUES(?,?,?,?,?,?,?)`,
		uid, p.Email, p.PasswordHash, p.FirstName, p.LastName, p.Role, nowISO())
	if err != nil {
		return "", err
	}
	return uid, nil
}

// UpdateUser rewrites the profile fields; role is immutable here.
func (q *Queries) UpdateUser(p UpdateUserParams) error {
	res, err := q.db.Exec(`
		UPDATE users SET email=?, first_name=?, last_name=? WHERE uid=?`,
		p.Email, p.FirstName, p.LastName, p.UID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *Queries) SetUserPassword(uid string, hash string) error {
	res, err := q.db.Exec(`UPDATE users SET password_hash=? WHERE uid=?`, hash, uid)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

/* ---------------- Pieces ---------------- */

const pieceCols = `id,photo,temperature_type,clay_type,notes,
	biscuit_already_done,biscuit_requested,biscuit_completed,biscuit_date,biscuit_completed_date,
	emaillage_requested,emaillage_completed,emaillage_date,emaillage_completed_date,
	submitted_by_uid,submitted_by_email,submitted_by_first_name,submitted_by_last_name,
	submitted_date`

func scanPiece(row interface{ Scan(...any) error }) (*Piece, error) {
	var p Piece
	var already, bReq, bDone, eReq, eDone int
	if err := row.Scan(
		&p.ID, &p.Photo, &p.TemperatureType, &p.ClayType, &p.Notes,
		&already, &bReq, &bDone, &p.BiscuitDate, &p.BiscuitCompletedDate,
		&eReq, &eDone, &p.EmaillageDate, &p.EmaillageCompletedDate,
		&p.SubmittedBy.UID, &p.SubmittedBy.Email, &p.SubmittedBy.FirstName, &p.SubmittedBy.LastName,
		&p.SubmittedDate,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	p.BiscuitAlreadyDone = i2b(already)
	p.BiscuitRequested = i2b(bReq)
	p.BiscuitCompleted = i2b(bDone)
	p.EmaillageRequested = i2b(eReq)
	p.EmaillageCompleted = i2b(eDone)
	return &p, nil
}

func (q *Queries) collectPieces(rows *sql.Rows) ([]Piece, error) {
	defer rows.Close()
	var out []Piece
	for rows.Next() {
		p, err := scanPiece(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// CreatePiece assigns the id and submission timestamp server-side.
// A piece submitted with the biscuit already done starts with that
// stage completed; the completion timestamp is only ever stamped by an
// explicit stage completion.
func (q *Queries) CreatePiece(p CreatePieceParams) (string, error) {
	id := uuid.NewString()
	_, err := q.db.Exec(`
		INSERT INTO pieces(
			id,photo,temperature_type,clay_type,notes,
			biscuit_already_done,biscuit_requested,biscuit_completed,
			emaillage_requested,emaillage_completed,
			submitted_by_uid,submitted_by_email,submitted_by_first_name,submitted_by_last_name,
			submitted_date)
		VALUES(?,?,?,?,?,?,0,?,0,0,?,?,?,?,?)`,
		id, p.Photo, p.TemperatureType, p.ClayType, p.Notes,
		b2i(p.BiscuitAlreadyDone), b2i(p.BiscuitAlreadyDone),
		p.SubmittedBy.UID, p.SubmittedBy.Email, p.SubmittedBy.FirstName, p.SubmittedBy.LastName,
		nowISO())
	if err != nil {
		return "", err
	}
	return id, nil
}

func (q *Queries) GetPieceByID(id string) (*Piece, error) {
	return scanPiece(q.db.QueryRow(`SELECT `+pieceCols+` FROM pieces WHERE id=?`, id))
}

func (q *Queries) ListPiecesByOwner(uid string) ([]Piece, error) {
	rows, err := q.db.Query(`
		SELECT `+pieceCols+` FROM pieces
		WHERE submitted_by_uid=?
		ORDER BY submitted_date DESC`, uid)
	if err != nil {
		return nil, err
	}
	return q.collectPieces(rows)
}

func (q *Queries) ListAllPieces() ([]Piece, error) {
	rows, err := q.db.Query(`
		SELECT ` + pieceCols + ` FROM pieces
		ORDER BY submitted_date DESC`)
	if err != nil {
		return nil, err
	}
	return q.collectPieces(rows)
}

// UpdatePiece applies a partial update; absent ids return ErrNotFound.
// Business-rule validation happens in the lifecycle engine before this
// call, never here.
func (q *Queries) UpdatePiece(id string, u PieceUpdate) error {
	if u.IsEmpty() {
		return nil
	}

	var set []string
	var args []any
	add := func(col string, v any) {
		set = append(set, col+"=?")
		args = append(args, v)
	}
	if u.BiscuitRequested != nil {
		add("biscuit_requested", b2i(*u.BiscuitRequested))
	}
	if u.BiscuitCompleted != nil {
		add("biscuit_completed", b2i(*u.BiscuitCompleted))
	}
	if u.BiscuitDate != nil {
		add("biscuit_date", *u.BiscuitDate)
	}
	if u.BiscuitCompletedDate != nil {
		add("biscuit_completed_date", *u.BiscuitCompletedDate)
	}
	if u.EmaillageRequested != nil {
		add("emaillage_requested", b2i(*u.EmaillageRequested))
	}
	if u.EmaillageCompleted != nil {
		add("emaillage_completed", b2i(*u.EmaillageCompleted))
	}
	if u.EmaillageDate != nil {
		add("emaillage_date", *u.EmaillageDate)
	}
	if u.EmaillageCompletedDate != nil {
		add("emaillage_completed_date", *u.EmaillageCompletedDate)
	}

	args = append(args, id)
	res, err := q.db.Exec(`UPDATE pieces SET `+strings.Join(set, ", ")+` WHERE id=?`, args...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePiece is idempotent: deleting an absent id is not an error.
func (q *Queries) DeletePiece(id string) error {
	_, err := q.db.Exec(`DELETE FROM pieces WHERE id=?`, id)
	return err
}

// ListPieceIDsByOwner supports the profile-edit cascade, which rewrites
// snapshots one piece at a time so a single failure cannot abort the
// whole batch.
func (q *Queries) ListPieceIDsByOwner(uid string) ([]string, error) {
	rows, err := q.db.Query(`SELECT id FROM pieces WHERE submitted_by_uid=? ORDER BY submitted_date DESC`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// UpdatePieceSubmitter rewrites the denormalized submitter snapshot on
// one piece. The uid never changes; only the profile fields do.
func (q *Queries) UpdatePieceSubmitter(pieceID string, sb Submitter) error {
	res, err := q.db.Exec(`
		UPDATE pieces
		SET submitted_by_email=?, submitted_by_first_name=?, submitted_by_last_name=?
		WHERE id=?`,
		sb.Email, sb.FirstName, sb.LastName, pieceID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
