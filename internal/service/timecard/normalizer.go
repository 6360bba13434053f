package timecard

import (
	"time"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
)

// NormalizedEntry is an entry plus its effective break. An inferred break is
// carried here only and never written back to Entry.
type NormalizedEntry struct {
	Entry         timecard.TimeEntry
	BreakStart    *time.Time
	BreakEnd      *time.Time
	BreakInferred bool
}

func (n NormalizedEntry) HasBreak() bool {
	return n.BreakStart != nil && n.BreakEnd != nil
}

type Normalizer struct {
	rules Rules
}

func NewNormalizer(rules Rules) *Normalizer {
	return &Normalizer{rules: rules}
}

// Apply turns a punch into the entry to persist. openEntries are the user's
// entries that have a check-in and no check-out.
func (n *Normalizer) Apply(p timecard.Punch, openEntries []timecard.TimeEntry, now time.Time) (NormalizedEntry, error) {
	open := mostRecentOpen(openEntries, p.TenantID, p.UserID)

	switch p.Action {
	case timecard.ActionCheckIn:
		if open != nil {
			return NormalizedEntry{}, timecard.ErrDuplicateOpenEntry
		}
		entry, err := timecard.NewTimeEntry(p.TenantID, p.UserID, p.At, now)
		if err != nil {
			return NormalizedEntry{}, err
		}
		entry.IsManualEntry = p.IsManual
		entry.BreakStart = p.BreakStart
		entry.BreakEnd = p.BreakEnd
		entry.Notes = p.Notes
		entry.Location = p.Location
		if err := entry.CheckBreakWindow(); err != nil {
			return NormalizedEntry{}, err
		}
		return n.Normalize(entry)

	case timecard.ActionCheckOut:
		if open == nil {
			return NormalizedEntry{}, timecard.ErrNoActiveEntry
		}
		entry := *open
		if !p.At.After(*entry.CheckIn) {
			return NormalizedEntry{}, timecard.ErrInvalidSequence
		}
		out := p.At
		entry.CheckOut = &out
		if entry.BreakStart == nil && p.BreakStart != nil {
			entry.BreakStart = p.BreakStart
		}
		if entry.BreakEnd == nil && p.BreakEnd != nil {
			entry.BreakEnd = p.BreakEnd
		}
		if p.IsManual {
			entry.IsManualEntry = true
		}
		if entry.Notes == nil {
			entry.Notes = p.Notes
		}
		if entry.Location == nil {
			entry.Location = p.Location
		}
		entry.UpdatedAt = now
		if err := entry.CheckBreakWindow(); err != nil {
			return NormalizedEntry{}, err
		}
		return n.Normalize(entry)
	}

	return NormalizedEntry{}, timecard.ErrInvalidAction
}

// Normalize derives the effective break of an entry. It is pure and
// idempotent: Normalize(Normalize(e).Entry) equals Normalize(e).
func (n *Normalizer) Normalize(entry timecard.TimeEntry) (NormalizedEntry, error) {
	normalized := NormalizedEntry{
		Entry:      entry,
		BreakStart: entry.BreakStart,
		BreakEnd:   entry.BreakEnd,
	}
	if err := entry.CheckInvariants(); err != nil {
		return normalized, err
	}

	if !entry.IsComplete() || entry.HasExplicitBreak() || n.rules.InferredBreak <= 0 {
		return normalized, nil
	}

	span := ShiftSpan(*entry.CheckIn, *entry.CheckOut)
	if span <= n.rules.LongShiftThreshold {
		return normalized, nil
	}

	midpoint := entry.CheckIn.Add(span / 2)
	half := n.rules.InferredBreak / 2
	start := midpoint.Add(-half)
	end := midpoint.Add(half)
	normalized.BreakStart = &start
	normalized.BreakEnd = &end
	normalized.BreakInferred = true
	return normalized, nil
}

// mostRecentOpen picks the latest created open entry of the user. Ties on
// created_at go to the later check-in, then the greater id.
func mostRecentOpen(entries []timecard.TimeEntry, tenantID, userID string) *timecard.TimeEntry {
	var latest *timecard.TimeEntry
	for i := range entries {
		e := &entries[i]
		if !e.IsOpen() || e.TenantID != tenantID || e.UserID != userID {
			continue
		}
		if latest == nil || newerThan(e, latest) {
			latest = e
		}
	}
	return latest
}

func newerThan(a, b *timecard.TimeEntry) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	if !a.CheckIn.Equal(*b.CheckIn) {
		return a.CheckIn.After(*b.CheckIn)
	}
	return a.ID > b.ID
}
