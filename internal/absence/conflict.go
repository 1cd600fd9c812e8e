package absence

import (
	"context"
	"time"

	"go-workforce/internal/calendar"
	"go-workforce/internal/ledger"

	"github.com/google/uuid"
)

// Conflict is one blocking overlap, attributed to its source.
type Conflict struct {
	Kind      string    `json:"kind"` // VACATION, PERMISSION, SICKNESS or LEDGER:<channel>
	WithID    uuid.UUID `json:"with_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Detector aggregates every commitment source that can block an absence
// period: other pending/approved requests, sickness records, and ledger
// days already claimed. All three request kinds share this one scan
// instead of re-implementing their own overlap checks.
type Detector struct {
	requests Repository
	entries  ledger.Repository
}

func NewDetector(requests Repository, entries ledger.Repository) *Detector {
	return &Detector{requests: requests, entries: entries}
}

// FindConflicts collects every overlap, never short-circuiting on the
// first, so the caller can report all blocking days at once. excludeID
// skips the request being re-evaluated and its own ledger claims.
func (d *Detector) FindConflicts(
	ctx context.Context,
	employeeID string,
	period calendar.Period,
	excludeID *uuid.UUID,
) ([]Conflict, error) {
	start := period.Start
	end := period.LastDate()

	var exclude *string
	var excludeUUID uuid.UUID
	if excludeID != nil {
		s := excludeID.String()
		exclude = &s
		excludeUUID = *excludeID
	}

	var conflicts []Conflict

	overlapping, err := d.requests.FindOverlapping(ctx, employeeID, start, end, exclude)
	if err != nil {
		return nil, err
	}
	for _, req := range overlapping {
		conflicts = append(conflicts, Conflict{
			Kind:      req.Kind,
			WithID:    req.ID,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
		})
	}

	sickness, err := d.requests.FindSicknessOverlapping(ctx, employeeID, start, end)
	if err != nil {
		return nil, err
	}
	for _, rec := range sickness {
		conflicts = append(conflicts, Conflict{
			Kind:      "SICKNESS",
			WithID:    rec.ID,
			StartDate: rec.StartDate,
			EndDate:   rec.EndDate,
		})
	}

	occupied, err := d.entries.FindOccupiedInRange(ctx, employeeID, start, end)
	if err != nil {
		return nil, err
	}
	for _, entry := range occupied {
		ch, taken := entry.OccupiedByOther(excludeUUID)
		if !taken {
			continue
		}
		owner := entry.Owner(ch)
		if owner == nil {
			continue
		}
		if containsOwner(overlapping, *owner) {
			// Sudah dilaporkan lewat request yang tumpang tindih.
			continue
		}
		conflicts = append(conflicts, Conflict{
			Kind:      "LEDGER:" + string(ch),
			WithID:    *owner,
			StartDate: entry.EntryDate,
			EndDate:   entry.EntryDate,
		})
	}

	return conflicts, nil
}

func containsOwner(requests []Request, owner uuid.UUID) bool {
	for _, r := range requests {
		if r.ID == owner {
			return true
		}
	}
	return false
}
