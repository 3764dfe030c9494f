package firing

import (
	"testing"
	"time"

	"kiln-atelier-go/internal/db"
)

func requestedPiece(id, temp, clay, date string) db.Piece {
	return db.Piece{
		ID:               id,
		Photo:            "x",
		TemperatureType:  temp,
		ClayType:         clay,
		BiscuitRequested: true,
		BiscuitDate:      date,
		SubmittedBy:      db.Submitter{UID: "u-1"},
	}
}

func TestSplitOwn(t *testing.T) {
	done := db.Piece{ID: "done", BiscuitCompleted: true, EmaillageCompleted: true}
	half := db.Piece{ID: "half", BiscuitCompleted: true}
	fresh := db.Piece{ID: "fresh"}

	v := SplitOwn([]db.Piece{done, half, fresh})
	if len(v.Active) != 2 || v.Active[0].ID != "half" || v.Active[1].ID != "fresh" {
		t.Errorf("Active = %v, want [half fresh] in repository order", ids(v.Active))
	}
	if len(v.Completed) != 1 || v.Completed[0].ID != "done" {
		t.Errorf("Completed = %v, want [done]", ids(v.Completed))
	}
}

func TestSplitOwnEmpty(t *testing.T) {
	v := SplitOwn(nil)
	if v.Active == nil || v.Completed == nil {
		t.Error("SplitOwn(nil) returned nil slices; dashboards expect empty lists")
	}
}

func TestStageQueueMembership(t *testing.T) {
	today := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	requested := requestedPiece("requested", db.TemperatureHigh, db.ClayStoneware, "2026-09-01")
	pending := db.Piece{ID: "pending", TemperatureType: db.TemperatureHigh, ClayType: db.ClayStoneware}
	completed := requestedPiece("completed", db.TemperatureHigh, db.ClayStoneware, "2026-08-20")
	completed.BiscuitCompleted = true

	q := StageQueue([]db.Piece{requested, pending, completed}, StageBiscuit, QueueFilter{}, today)
	if len(q) != 1 || q[0].ID != "requested" {
		t.Errorf("queue = %v, want only the requested piece", ids(q))
	}

	if q := StageQueue([]db.Piece{requested}, StageEmaillage, QueueFilter{}, today); len(q) != 0 {
		t.Errorf("emaillage queue = %v, want empty", ids(q))
	}
}

func TestStageQueueFilters(t *testing.T) {
	today := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	pieces := []db.Piece{
		requestedPiece("hot-gres", db.TemperatureHigh, db.ClayStoneware, "2026-09-01"),
		requestedPiece("cold-faience", db.TemperatureLow, db.ClayEarthenware, "2026-09-01"),
		requestedPiece("hot-porcelaine", db.TemperatureHigh, db.ClayPorcelain, "2026-09-01"),
	}

	tests := []struct {
		name   string
		filter QueueFilter
		want   []string
	}{
		{"no filter", QueueFilter{}, []string{"hot-gres", "cold-faience", "hot-porcelaine"}},
		{"high temperature", QueueFilter{Temperature: db.TemperatureHigh}, []string{"hot-gres", "hot-porcelaine"}},
		{"low temperature", QueueFilter{Temperature: db.TemperatureLow}, []string{"cold-faience"}},
		{"stoneware", QueueFilter{Clay: db.ClayStoneware}, []string{"hot-gres"}},
		{"combined", QueueFilter{Temperature: db.TemperatureHigh, Clay: db.ClayPorcelain}, []string{"hot-porcelaine"}},
		{"combined empty", QueueFilter{Temperature: db.TemperatureLow, Clay: db.ClayPorcelain}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(StageQueue(pieces, StageBiscuit, tt.filter, today))
			if !equal(got, tt.want) {
				t.Errorf("queue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStageQueueUrgencySort(t *testing.T) {
	today := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	pieces := []db.Piece{
		requestedPiece("today", db.TemperatureHigh, db.ClayStoneware, "2026-08-31"),
		requestedPiece("tomorrow", db.TemperatureHigh, db.ClayStoneware, "2026-09-01"),
		requestedPiece("overdue", db.TemperatureHigh, db.ClayStoneware, "2026-08-29"),
	}

	got := ids(StageQueue(pieces, StageBiscuit, QueueFilter{Sort: SortUrgentFirst}, today))
	if !equal(got, []string{"overdue", "today", "tomorrow"}) {
		t.Errorf("urgent-first = %v, want [overdue today tomorrow]", got)
	}

	got = ids(StageQueue(pieces, StageBiscuit, QueueFilter{Sort: SortUrgentLast}, today))
	if !equal(got, []string{"tomorrow", "today", "overdue"}) {
		t.Errorf("urgent-last = %v, want [tomorrow today overdue]", got)
	}

	// No sort selected: repository order preserved.
	got = ids(StageQueue(pieces, StageBiscuit, QueueFilter{}, today))
	if !equal(got, []string{"today", "tomorrow", "overdue"}) {
		t.Errorf("unsorted = %v, want repository order", got)
	}
}

func TestActivePiecesAndHistory(t *testing.T) {
	done := db.Piece{ID: "done", BiscuitCompleted: true, EmaillageCompleted: true}
	half := db.Piece{ID: "half", BiscuitCompleted: true, EmaillageRequested: true}
	fresh := db.Piece{ID: "fresh"}
	all := []db.Piece{done, half, fresh}

	if got := ids(ActivePieces(all)); !equal(got, []string{"half", "fresh"}) {
		t.Errorf("ActivePieces = %v, want [half fresh]", got)
	}
	if got := ids(History(all)); !equal(got, []string{"done"}) {
		t.Errorf("History = %v, want [done]", got)
	}
}

func TestComputeStats(t *testing.T) {
	today := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	biscuitSoon := requestedPiece("b1", db.TemperatureHigh, db.ClayStoneware, "2026-09-01") // due in 1 day -> urgent
	biscuitLater := requestedPiece("b2", db.TemperatureHigh, db.ClayStoneware, "2026-09-10")
	glazeWaiting := db.Piece{
		ID: "g1", BiscuitRequested: true, BiscuitCompleted: true,
		BiscuitCompletedDate: "2026-08-28T10:00:00Z", // within the week
		EmaillageRequested:   true, EmaillageDate: "2026-09-08",
	}
	oldComplete := db.Piece{
		ID: "old", BiscuitCompleted: true, EmaillageCompleted: true,
		BiscuitCompletedDate:   "2026-07-01T10:00:00Z",
		EmaillageCompletedDate: "2026-07-10T10:00:00Z",
	}

	s := ComputeStats([]db.Piece{biscuitSoon, biscuitLater, glazeWaiting, oldComplete}, today)
	if s.BiscuitWaiting != 2 {
		t.Errorf("BiscuitWaiting = %d, want 2", s.BiscuitWaiting)
	}
	if s.EmaillageWaiting != 1 {
		t.Errorf("EmaillageWaiting = %d, want 1", s.EmaillageWaiting)
	}
	if s.Urgent != 1 {
		t.Errorf("Urgent = %d, want 1", s.Urgent)
	}
	if s.FiredThisWeek != 1 {
		t.Errorf("FiredThisWeek = %d, want 1", s.FiredThisWeek)
	}
}

/* ---- helpers ---- */

func ids(pieces []db.Piece) []string {
	out := []string{}
	for _, p := range pieces {
		out = append(out, p.ID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
