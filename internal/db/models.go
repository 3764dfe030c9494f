package db

// Temperature classes and clay types are stored exactly as the studio
// labels them; these strings are part of the persisted document contract.
const (
	TemperatureHigh = "Haute température"
	TemperatureLow  = "Basse température"

	ClayStoneware   = "Grès"
	ClayEarthenware = "Faïence"
	ClayPorcelain   = "Porcelaine"
)

type User struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Role         string `json:"role"`
	CreatedAt    string `json:"createdAt"` // ISO-8601
}

// Submitter is the denormalized snapshot of the submitting user taken
// at submission time. Profile edits do not touch it unless an explicit
// cascade is run (see UpdatePieceSubmitter).
type Submitter struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Piece is one ceramic item tracked through the two-stage firing
// workflow. JSON tags follow the persisted document shape; date fields
// are ISO-8601 strings and empty means unset.
type Piece struct {
	ID                     string    `json:"id"`
	Photo                  string    `json:"photo"` // opaque encoded blob
	TemperatureType        string    `json:"temperatureType"`
	ClayType               string    `json:"clayType"`
	Notes                  string    `json:"notes"`
	BiscuitAlreadyDone     bool      `json:"biscuitAlreadyDone"`
	BiscuitRequested       bool      `json:"biscuitRequested"`
	BiscuitCompleted       bool      `json:"biscuitCompleted"`
	BiscuitDate            string    `json:"biscuitDate,omitempty"`
	BiscuitCompletedDate   string    `json:"biscuitCompletedDate,omitempty"`
	EmaillageRequested     bool      `json:"emaillageRequested"`
	EmaillageCompleted     bool      `json:"emaillageCompleted"`
	EmaillageDate          string    `json:"emaillageDate,omitempty"`
	EmaillageCompletedDate string    `json:"emaillageCompletedDate,omitempty"`
	SubmittedBy            Submitter `json:"submittedBy"`
	SubmittedDate          string    `json:"submittedDate"`
}

/* ---------- parameter structs ---------- */

type CreateUserParams struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
}

type UpdateUserParams struct {
	UID       string
	Email     string
	FirstName string
	LastName  string
}

type CreatePieceParams struct {
	Photo              string
	TemperatureType    string
	ClayType           string
	Notes              string
	BiscuitAlreadyDone bool
	SubmittedBy        Submitter
}

// PieceUpdate is a partial/merge update; nil fields are left untouched.
type PieceUpdate struct {
	BiscuitRequested       *bool
	BiscuitCompleted       *bool
	BiscuitDate            *string
	BiscuitCompletedDate   *string
	EmaillageRequested     *bool
	EmaillageCompleted     *bool
	EmaillageDate          *string
	EmaillageCompletedDate *string
}

// IsEmpty reports whether the update would touch nothing.
func (u PieceUpdate) IsEmpty() bool {
	return u.BiscuitRequested == nil && u.BiscuitCompleted == nil &&
		u.BiscuitDate == nil && u.BiscuitCompletedDate == nil &&
		u.EmaillageRequested == nil && u.EmaillageCompleted == nil &&
		u.EmaillageDate == nil && u.EmaillageCompletedDate == nil
}
