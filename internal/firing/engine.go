// Package firing holds the piece lifecycle rules: which stage
// transitions are legal for which actor, and what each transition
// records. It is pure; callers persist the returned partial updates
// through the repository.
package firing

import (
	"time"

	"kiln-atelier-go/internal/db"
)

const (
	RoleAdmin      = "admin"
	RolePractician = "practician"
)

// Stage identifies one of the two firing tracks of a piece.
type Stage string

const (
	StageBiscuit   Stage = "biscuit"
	StageEmaillage Stage = "emaillage"
)

func ParseStage(s string) (Stage, bool) {
	switch Stage(s) {
	case StageBiscuit, StageEmaillage:
		return Stage(s), true
	}
	return "", false
}

// State is the derived 3-state machine of one stage.
type State int

const (
	Pending State = iota
	Requested
	Completed
)

func (s State) String() string {
	switch s {
	case Requested:
		return "requested"
	case Completed:
		return "completed"
	default:
		return "pending"
	}
}

// StageState derives the state of one stage from the piece flags.
// Completed wins over Requested: a completed stage stays completed
// even though its requested flag is still set.
func StageState(p db.Piece, stage Stage) State {
	var requested, completed bool
	if stage == StageBiscuit {
		requested, completed = p.BiscuitRequested, p.BiscuitCompleted
	} else {
		requested, completed = p.EmaillageRequested, p.EmaillageCompleted
	}
	switch {
	case completed:
		return Completed
	case requested:
		return Requested
	default:
		return Pending
	}
}

// Principal is the authenticated actor passed explicitly into every
// operation; the engine never reads ambient session state.
type Principal struct {
	UID       string
	Email     string
	FirstName string
	LastName  string
	Role      string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

func (p Principal) owns(piece db.Piece) bool { return piece.SubmittedBy.UID == p.UID }

// MaxPhotoBytes caps the encoded photo payload. The client compresses
// photos to ≤1200px JPEG before upload; anything larger than this is a
// raw upload that slipped past it.
const MaxPhotoBytes = 1_500_000

// Draft is a practician submission before validation.
type Draft struct {
	Photo              string `json:"photo"`
	TemperatureType    string `json:"temperatureType"`
	ClayType           string `json:"clayType"`
	Notes              string `json:"notes"`
	BiscuitAlreadyDone bool   `json:"biscuitAlreadyDone"`
}

func validTemperature(s string) bool {
	return s == db.TemperatureHigh || s == db.TemperatureLow
}

func validClay(s string) bool {
	return s == db.ClayStoneware || s == db.ClayEarthenware || s == db.ClayPorcelain
}

// NewPiece validates a draft into repository create parameters. A
// piece whose biscuit was already fired elsewhere starts with that
// stage completed and never enters the biscuit queue; no completion
// timestamp is recorded for it. The glaze stage always starts pending.
func NewPiece(d Draft, by Principal) (db.CreatePieceParams, error) {
	var bad []string
	if d.Photo == "" {
		bad = append(bad, "photo")
	} else if len(d.Photo) > MaxPhotoBytes {
		bad = append(bad, "photo exceeds maximum size")
	}
	if d.TemperatureType == "" {
		bad = append(bad, "temperatureType")
	} else if !validTemperature(d.TemperatureType) {
		bad = append(bad, "temperatureType must be one of: "+db.TemperatureHigh+", "+db.TemperatureLow)
	}
	if d.ClayType == "" {
		bad = append(bad, "clayType")
	} else if !validClay(d.ClayType) {
		bad = append(bad, "clayType must be one of: "+db.ClayStoneware+", "+db.ClayEarthenware+", "+db.ClayPorcelain)
	}
	if len(bad) > 0 {
		return db.CreatePieceParams{}, &ValidationError{Fields: bad}
	}

	return db.CreatePieceParams{
		Photo:              d.Photo,
		TemperatureType:    d.TemperatureType,
		ClayType:           d.ClayType,
		Notes:              d.Notes,
		BiscuitAlreadyDone: d.BiscuitAlreadyDone,
		SubmittedBy: db.Submitter{
			UID:       by.UID,
			Email:     by.Email,
			FirstName: by.FirstName,
			LastName:  by.LastName,
		},
	}, nil
}

// RequestStage moves a pending stage to requested for the given date.
// Only the owning practician or an admin may request; the glaze stage
// needs a completed biscuit first. The date is caller-supplied and not
// checked against today; the UI constrains the input.
func RequestStage(p db.Piece, stage Stage, date string, by Principal) (db.PieceUpdate, error) {
	if !by.IsAdmin() && !by.owns(p) {
		return db.PieceUpdate{}, &ForbiddenError{Action: "request firing on someone else's piece"}
	}
	if date == "" {
		return db.PieceUpdate{}, &ValidationError{Fields: []string{"date"}}
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return db.PieceUpdate{}, &ValidationError{Fields: []string{"date must be yyyy-mm-dd"}}
	}

	switch StageState(p, stage) {
	case Requested:
		return db.PieceUpdate{}, &PreconditionError{Condition: string(stage) + " firing already requested"}
	case Completed:
		return db.PieceUpdate{}, &PreconditionError{Condition: string(stage) + " firing already completed"}
	}
	if stage == StageEmaillage && StageState(p, StageBiscuit) != Completed {
		return db.PieceUpdate{}, &PreconditionError{Condition: "biscuit firing not completed"}
	}

	t := true
	u := db.PieceUpdate{}
	if stage == StageBiscuit {
		u.BiscuitRequested = &t
		u.BiscuitDate = &date
	} else {
		u.EmaillageRequested = &t
		u.EmaillageDate = &date
	}
	return u, nil
}

// Notification is the intent emitted when a stage completes; delivery
// is the caller's concern.
type Notification struct {
	PieceID    string
	Stage      Stage
	OwnerUID   string
	OwnerEmail string
}

// CompleteStage marks a stage completed, admin only. A pending stage
// may be completed directly when the operator short-circuits the
// request step. Completing an already-completed stage is rejected
// rather than no-oped, so a double submission surfaces instead of
// silently rewriting the completion timestamp.
func CompleteStage(p db.Piece, stage Stage, by Principal, now time.Time) (db.PieceUpdate, Notification, error) {
	if !by.IsAdmin() {
		return db.PieceUpdate{}, Notification{}, &ForbiddenError{Action: "complete firing"}
	}
	if StageState(p, stage) == Completed {
		return db.PieceUpdate{}, Notification{}, &PreconditionError{Condition: string(stage) + " firing already completed"}
	}

	t := true
	stamp := now.UTC().Format(time.RFC3339)
	u := db.PieceUpdate{}
	if stage == StageBiscuit {
		u.BiscuitCompleted = &t
		u.BiscuitCompletedDate = &stamp
	} else {
		u.EmaillageCompleted = &t
		u.EmaillageCompletedDate = &stamp
	}

	n := Notification{
		PieceID:    p.ID,
		Stage:      stage,
		OwnerUID:   p.SubmittedBy.UID,
		OwnerEmail: p.SubmittedBy.Email,
	}
	return u, n, nil
}

// CanDelete reports whether the actor may permanently remove the
// piece. Owners and admins may, at any point in the lifecycle.
func CanDelete(p db.Piece, by Principal) bool {
	return by.IsAdmin() || by.owns(p)
}

// CanView mirrors the dashboard split: owners see their own pieces,
// admins see everything.
func CanView(p db.Piece, by Principal) bool {
	return by.IsAdmin() || by.owns(p)
}

/* ---------------- derived predicates ---------------- */

// IsComplete reports that both firings are done.
func IsComplete(p db.Piece) bool {
	return p.BiscuitCompleted && p.EmaillageCompleted
}

func IsActive(p db.Piece) bool { return !IsComplete(p) }

// Urgency is the number of days between today and the stage's
// requested date; negative means overdue. Defined only while the stage
// is requested and carries a parseable date.
func Urgency(p db.Piece, stage Stage, today time.Time) (int, bool) {
	if StageState(p, stage) != Requested {
		return 0, false
	}
	var date string
	if stage == StageBiscuit {
		date = p.BiscuitDate
	} else {
		date = p.EmaillageDate
	}
	target, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, false
	}
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(target.Sub(midnight).Hours() / 24), true
}
