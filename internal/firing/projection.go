package firing

import (
	"sort"
	"time"

	"kiln-atelier-go/internal/db"
)

// Projections are pure, read-only derivations over repository output.
// They never mutate pieces and never write.

// OwnerView is the practician dashboard: own pieces split by lifecycle.
type OwnerView struct {
	Active    []db.Piece `json:"active"`
	Completed []db.Piece `json:"completed"`
}

func SplitOwn(pieces []db.Piece) OwnerView {
	v := OwnerView{Active: []db.Piece{}, Completed: []db.Piece{}}
	for _, p := range pieces {
		if IsComplete(p) {
			v.Completed = append(v.Completed, p)
		} else {
			v.Active = append(v.Active, p)
		}
	}
	return v
}

type SortOrder string

const (
	SortNone        SortOrder = ""             // preserve repository order
	SortUrgentFirst SortOrder = "urgent-first" // ascending urgency, overdue on top
	SortUrgentLast  SortOrder = "urgent-last"
)

func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(s) {
	case SortNone, SortUrgentFirst, SortUrgentLast:
		return SortOrder(s), true
	}
	return SortNone, false
}

// QueueFilter narrows an admin stage queue. Empty filter values mean
// "any".
type QueueFilter struct {
	Temperature string
	Clay        string
	Sort        SortOrder
}

// StageQueue is the admin dashboard for one stage: pieces whose stage
// is requested but not completed, narrowed by the filter, optionally
// ordered by urgency. Without a sort the repository order is kept, and
// the sort is stable so equal urgencies keep that order too.
func StageQueue(pieces []db.Piece, stage Stage, f QueueFilter, today time.Time) []db.Piece {
	out := []db.Piece{}
	for _, p := range pieces {
		if StageState(p, stage) != Requested {
			continue
		}
		if f.Temperature != "" && p.TemperatureType != f.Temperature {
			continue
		}
		if f.Clay != "" && p.ClayType != f.Clay {
			continue
		}
		out = append(out, p)
	}

	if f.Sort == SortNone {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, _ := Urgency(out[i], stage, today)
		dj, _ := Urgency(out[j], stage, today)
		if f.Sort == SortUrgentFirst {
			return di < dj
		}
		return di > dj
	})
	return out
}

// ActivePieces is the admin "all active" view.
func ActivePieces(pieces []db.Piece) []db.Piece {
	out := []db.Piece{}
	for _, p := range pieces {
		if IsActive(p) {
			out = append(out, p)
		}
	}
	return out
}

// History is the admin view of fully fired pieces.
func History(pieces []db.Piece) []db.Piece {
	out := []db.Piece{}
	for _, p := range pieces {
		if IsComplete(p) {
			out = append(out, p)
		}
	}
	return out
}

// Stats summarizes the admin workload.
type Stats struct {
	BiscuitWaiting   int `json:"biscuitWaiting"`
	EmaillageWaiting int `json:"emaillageWaiting"`
	Urgent           int `json:"urgent"`        // requested firings due within 2 days
	FiredThisWeek    int `json:"firedThisWeek"` // stage completions in the last 7 days
}

func ComputeStats(pieces []db.Piece, today time.Time) Stats {
	var s Stats
	weekAgo := today.AddDate(0, 0, -7)

	completedWithin := func(stamp string) bool {
		if stamp == "" {
			return false
		}
		t, err := time.Parse(time.RFC3339, stamp)
		if err != nil {
			return false
		}
		return !t.Before(weekAgo) && !t.After(today)
	}

	for _, p := range pieces {
		for _, stage := range []Stage{StageBiscuit, StageEmaillage} {
			if StageState(p, stage) == Requested {
				if stage == StageBiscuit {
					s.BiscuitWaiting++
				} else {
					s.EmaillageWaiting++
				}
				if d, ok := Urgency(p, stage, today); ok && d <= 2 {
					s.Urgent++
				}
			}
		}
		if completedWithin(p.BiscuitCompletedDate) {
			s.FiredThisWeek++
		}
		if completedWithin(p.EmaillageCompletedDate) {
			s.FiredThisWeek++
		}
	}
	return s
}
