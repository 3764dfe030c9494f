package firing

import (
	"errors"
	"strings"
	"testing"
	"time"

	"kiln-atelier-go/internal/db"
)

var (
	owner = Principal{UID: "u-1", Email: "claire@atelier.local", FirstName: "Claire", LastName: "Fontaine", Role: RolePractician}
	other = Principal{UID: "u-2", Email: "marc@atelier.local", Role: RolePractician}
	admin = Principal{UID: "a-1", Email: "four@atelier.local", Role: RoleAdmin}
)

func pendingPiece() db.Piece {
	return db.Piece{
		ID:              "p-1",
		Photo:           "data:image/jpeg;base64,xxx",
		TemperatureType: db.TemperatureHigh,
		ClayType:        db.ClayStoneware,
		SubmittedBy:     db.Submitter{UID: owner.UID, Email: owner.Email, FirstName: owner.FirstName, LastName: owner.LastName},
		SubmittedDate:   "2026-08-01T10:00:00Z",
	}
}

func TestNewPieceValidation(t *testing.T) {
	tests := []struct {
		name    string
		draft   Draft
		missing []string
	}{
		{"all missing", Draft{}, []string{"photo", "temperatureType", "clayType"}},
		{"photo missing", Draft{TemperatureType: db.TemperatureLow, ClayType: db.ClayPorcelain}, []string{"photo"}},
		{"bad temperature", Draft{Photo: "x", TemperatureType: "tiède", ClayType: db.ClayStoneware}, []string{"temperatureType"}},
		{"bad clay", Draft{Photo: "x", TemperatureType: db.TemperatureHigh, ClayType: "plastiline"}, []string{"clayType"}},
		{"oversized photo", Draft{Photo: strings.Repeat("a", MaxPhotoBytes+1), TemperatureType: db.TemperatureHigh, ClayType: db.ClayStoneware}, []string{"photo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPiece(tt.draft, owner)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("NewPiece() error = %v, want ValidationError", err)
			}
			for _, want := range tt.missing {
				found := false
				for _, f := range ve.Fields {
					if strings.Contains(f, want) {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("ValidationError.Fields = %v, want mention of %q", ve.Fields, want)
				}
			}
		})
	}
}

func TestNewPieceSnapshotsSubmitter(t *testing.T) {
	params, err := NewPiece(Draft{
		Photo:           "x",
		TemperatureType: db.TemperatureHigh,
		ClayType:        db.ClayEarthenware,
		Notes:           "bol",
	}, owner)
	if err != nil {
		t.Fatalf("NewPiece() error = %v", err)
	}
	if params.SubmittedBy.UID != owner.UID || params.SubmittedBy.Email != owner.Email ||
		params.SubmittedBy.FirstName != owner.FirstName || params.SubmittedBy.LastName != owner.LastName {
		t.Errorf("SubmittedBy = %+v, want snapshot of %+v", params.SubmittedBy, owner)
	}
	if params.BiscuitAlreadyDone {
		t.Error("BiscuitAlreadyDone = true, want false by default")
	}
}

func TestNewPieceAlreadyDone(t *testing.T) {
	params, err := NewPiece(Draft{
		Photo:              "x",
		TemperatureType:    db.TemperatureLow,
		ClayType:           db.ClayEarthenware,
		BiscuitAlreadyDone: true,
	}, owner)
	if err != nil {
		t.Fatalf("NewPiece() error = %v", err)
	}
	if !params.BiscuitAlreadyDone {
		t.Error("BiscuitAlreadyDone not carried through")
	}
}

func TestStageState(t *testing.T) {
	p := pendingPiece()
	if got := StageState(p, StageBiscuit); got != Pending {
		t.Errorf("StageState(pending biscuit) = %v, want Pending", got)
	}
	p.BiscuitRequested = true
	if got := StageState(p, StageBiscuit); got != Requested {
		t.Errorf("StageState(requested biscuit) = %v, want Requested", got)
	}
	p.BiscuitCompleted = true
	if got := StageState(p, StageBiscuit); got != Completed {
		t.Errorf("StageState(completed biscuit) = %v, want Completed", got)
	}
	if got := StageState(p, StageEmaillage); got != Pending {
		t.Errorf("StageState(emaillage) = %v, want Pending", got)
	}
}

func TestRequestStageBiscuit(t *testing.T) {
	p := pendingPiece()
	u, err := RequestStage(p, StageBiscuit, "2026-09-02", owner)
	if err != nil {
		t.Fatalf("RequestStage() error = %v", err)
	}
	if u.BiscuitRequested == nil || !*u.BiscuitRequested {
		t.Error("update does not set biscuitRequested")
	}
	if u.BiscuitDate == nil || *u.BiscuitDate != "2026-09-02" {
		t.Errorf("update biscuitDate = %v, want 2026-09-02", u.BiscuitDate)
	}
	if u.BiscuitCompleted != nil || u.EmaillageRequested != nil {
		t.Error("update touches fields beyond the biscuit request")
	}
}

func TestRequestStageGlazeNeedsBiscuitCompleted(t *testing.T) {
	p := pendingPiece()
	u, err := RequestStage(p, StageEmaillage, "2026-09-02", owner)
	var pe *PreconditionError
	if !errors.As(err, &pe) {
		t.Fatalf("RequestStage(emaillage) error = %v, want PreconditionError", err)
	}
	if !strings.Contains(pe.Condition, "biscuit") {
		t.Errorf("Condition = %q, want the biscuit ordering rule named", pe.Condition)
	}
	if !u.IsEmpty() {
		t.Error("rejected transition produced a non-empty update")
	}
}

func TestRequestStageGlazeAfterBiscuit(t *testing.T) {
	p := pendingPiece()
	p.BiscuitRequested = true
	p.BiscuitCompleted = true
	u, err := RequestStage(p, StageEmaillage, "2026-09-10", owner)
	if err != nil {
		t.Fatalf("RequestStage() error = %v", err)
	}
	if u.EmaillageRequested == nil || !*u.EmaillageRequested {
		t.Error("update does not set emaillageRequested")
	}
}

func TestRequestStageGlazeWithPreDoneBiscuit(t *testing.T) {
	p := pendingPiece()
	p.BiscuitAlreadyDone = true
	p.BiscuitCompleted = true
	if _, err := RequestStage(p, StageEmaillage, "2026-09-10", owner); err != nil {
		t.Fatalf("RequestStage() with pre-done biscuit error = %v", err)
	}
}

func TestRequestStageNoReRequest(t *testing.T) {
	p := pendingPiece()
	p.BiscuitRequested = true
	p.BiscuitDate = "2026-09-02"
	_, err := RequestStage(p, StageBiscuit, "2026-09-05", owner)
	var pe *PreconditionError
	if !errors.As(err, &pe) {
		t.Fatalf("re-request error = %v, want PreconditionError", err)
	}
}

func TestRequestStageActors(t *testing.T) {
	p := pendingPiece()

	if _, err := RequestStage(p, StageBiscuit, "2026-09-02", other); err == nil {
		t.Error("non-owner practician could request a firing")
	} else {
		var fe *ForbiddenError
		if !errors.As(err, &fe) {
			t.Errorf("non-owner error = %v, want ForbiddenError", err)
		}
	}

	if _, err := RequestStage(p, StageBiscuit, "2026-09-02", admin); err != nil {
		t.Errorf("admin request error = %v, want nil", err)
	}
}

func TestRequestStageDateValidation(t *testing.T) {
	p := pendingPiece()
	for _, date := range []string{"", "02/09/2026", "soon"} {
		_, err := RequestStage(p, StageBiscuit, date, owner)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("RequestStage(date=%q) error = %v, want ValidationError", date, err)
		}
	}
	// Past dates are accepted; the UI constrains the input.
	if _, err := RequestStage(p, StageBiscuit, "2020-01-01", owner); err != nil {
		t.Errorf("RequestStage(past date) error = %v, want nil", err)
	}
}

func TestCompleteStageAdminOnly(t *testing.T) {
	p := pendingPiece()
	p.BiscuitRequested = true
	now := time.Date(2026, 9, 2, 15, 30, 0, 0, time.UTC)

	if _, _, err := CompleteStage(p, StageBiscuit, owner, now); err == nil {
		t.Error("owner practician could complete a firing")
	}

	u, intent, err := CompleteStage(p, StageBiscuit, admin, now)
	if err != nil {
		t.Fatalf("CompleteStage() error = %v", err)
	}
	if u.BiscuitCompleted == nil || !*u.BiscuitCompleted {
		t.Error("update does not set biscuitCompleted")
	}
	if u.BiscuitCompletedDate == nil || *u.BiscuitCompletedDate != "2026-09-02T15:30:00Z" {
		t.Errorf("completion stamp = %v, want 2026-09-02T15:30:00Z", u.BiscuitCompletedDate)
	}
	if intent.OwnerUID != owner.UID || intent.OwnerEmail != owner.Email || intent.Stage != StageBiscuit {
		t.Errorf("notification intent = %+v, want owner %s stage biscuit", intent, owner.UID)
	}
}

func TestCompleteStageShortCircuitsPending(t *testing.T) {
	// Operator may complete a stage that was never requested.
	p := pendingPiece()
	if _, _, err := CompleteStage(p, StageBiscuit, admin, time.Now()); err != nil {
		t.Errorf("CompleteStage(pending) error = %v, want nil", err)
	}
}

func TestCompleteStageRejectsDoubleComplete(t *testing.T) {
	p := pendingPiece()
	p.BiscuitRequested = true
	p.BiscuitCompleted = true
	p.BiscuitCompletedDate = "2026-09-01T10:00:00Z"

	u, _, err := CompleteStage(p, StageBiscuit, admin, time.Now())
	var pe *PreconditionError
	if !errors.As(err, &pe) {
		t.Fatalf("double complete error = %v, want PreconditionError", err)
	}
	if !u.IsEmpty() {
		t.Error("rejected completion produced a non-empty update")
	}
}

func TestCanDelete(t *testing.T) {
	p := pendingPiece()
	if !CanDelete(p, owner) {
		t.Error("owner cannot delete own piece")
	}
	if !CanDelete(p, admin) {
		t.Error("admin cannot delete piece")
	}
	if CanDelete(p, other) {
		t.Error("unrelated practician can delete piece")
	}
}

func TestIsActiveIsComplete(t *testing.T) {
	p := pendingPiece()
	if !IsActive(p) || IsComplete(p) {
		t.Error("fresh piece should be active")
	}
	p.BiscuitCompleted = true
	if !IsActive(p) {
		t.Error("piece with only biscuit done should still be active")
	}
	p.EmaillageCompleted = true
	if IsActive(p) || !IsComplete(p) {
		t.Error("piece with both stages done should be complete")
	}
}

func TestUrgency(t *testing.T) {
	today := time.Date(2026, 8, 31, 14, 0, 0, 0, time.UTC)
	p := pendingPiece()

	if _, ok := Urgency(p, StageBiscuit, today); ok {
		t.Error("urgency defined for a pending stage")
	}

	tests := []struct {
		date string
		want int
	}{
		{"2026-08-29", -2},
		{"2026-08-31", 0},
		{"2026-09-01", 1},
	}
	for _, tt := range tests {
		p.BiscuitRequested = true
		p.BiscuitDate = tt.date
		got, ok := Urgency(p, StageBiscuit, today)
		if !ok {
			t.Fatalf("Urgency(%s) undefined", tt.date)
		}
		if got != tt.want {
			t.Errorf("Urgency(%s) = %d, want %d", tt.date, got, tt.want)
		}
	}
}
