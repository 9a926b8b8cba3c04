package domain

import "time"

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Valid reports whether End is strictly after Start.
func (i Interval) Valid() bool {
	return i.End.After(i.Start)
}

// Overlaps is true iff i.Start < o.End && o.Start < i.End.
// Touching endpoints do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Contains reports whether t falls inside [Start, End).
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// FindOverlaps checks candidate against existing approved requests and returns
// the ones it collides with. A request whose ID equals excludeID is ignored.
// The caller filters existing down to approved records and rejects
// candidates with End <= Start before calling.
func FindOverlaps(candidate Interval, existing []AdRequest, excludeID string) (bool, []AdRequest) {
	var conflicts []AdRequest
	for _, req := range existing {
		if excludeID != "" && req.ID == excludeID {
			continue
		}
		if candidate.Overlaps(req.Interval()) {
			conflicts = append(conflicts, req)
		}
	}
	return len(conflicts) > 0, conflicts
}
