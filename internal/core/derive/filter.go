// Package derive computes presentation state from already-loaded replica
// collections: filtered transaction subsets, running balances and calendar
// groupings. Everything here is pure and synchronous; nothing reaches out to
// the remote store.
package derive

import (
	"strings"
	"time"

	"github.com/finotbook/cashbook/internal/core/domain"
)

// DatePreset names a relative date range resolved against the evaluation
// instant, never a cached one.
type DatePreset string

const (
	PresetAll       DatePreset = "all"
	PresetToday     DatePreset = "today"
	PresetYesterday DatePreset = "yesterday"
	PresetThisMonth DatePreset = "this_month"
	PresetLastMonth DatePreset = "last_month"
)

// DateRange is an explicit inclusive day range. A zero From means unbounded
// past; a zero To means unbounded future.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Filters is a conjunction of per-dimension predicates: a transaction passes
// only if it satisfies every active one. Zero values mean "no filter" for
// that dimension.
type Filters struct {
	Type        domain.TransactionType
	MemberID    string
	Category    string
	PaymentMode string
	ContactID   string
	Search      string
	Preset      DatePreset
	Range       *DateRange
}

// Filter returns the transactions passing every active predicate, preserving
// input order. now anchors the named date presets; its location defines day
// and month boundaries.
func Filter(ts []domain.Transaction, f Filters, now time.Time) []domain.Transaction {
	from, to, dated := f.bounds(now)
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]domain.Transaction, 0, len(ts))
	for _, t := range ts {
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if f.MemberID != "" && t.UserID != f.MemberID {
			continue
		}
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		if f.PaymentMode != "" && t.PaymentMode != f.PaymentMode {
			continue
		}
		if f.ContactID != "" && t.ContactID != f.ContactID {
			continue
		}
		if search != "" {
			inDescription := strings.Contains(strings.ToLower(t.Description), search)
			inAmount := strings.Contains(t.Amount.String(), search)
			if !inDescription && !inAmount {
				continue
			}
		}
		if dated {
			// A row without a usable date is excluded from date-filtered
			// results rather than aborting the whole computation.
			if t.Date.IsZero() {
				continue
			}
			if !from.IsZero() && t.Date.Before(from) {
				continue
			}
			if !to.IsZero() && t.Date.After(to) {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

func (f Filters) bounds(now time.Time) (from, to time.Time, active bool) {
	if f.Range != nil {
		if !f.Range.From.IsZero() {
			from = startOfDay(f.Range.From, now.Location())
		}
		if !f.Range.To.IsZero() {
			to = endOfDay(f.Range.To, now.Location())
		}
		return from, to, true
	}
	switch f.Preset {
	case PresetToday:
		return startOfDay(now, now.Location()), endOfDay(now, now.Location()), true
	case PresetYesterday:
		y := now.AddDate(0, 0, -1)
		return startOfDay(y, now.Location()), endOfDay(y, now.Location()), true
	case PresetThisMonth:
		return startOfMonth(now), endOfMonth(now), true
	case PresetLastMonth:
		last := startOfMonth(now).AddDate(0, 0, -1)
		return startOfMonth(last), endOfMonth(last), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func endOfDay(t time.Time, loc *time.Location) time.Time {
	return startOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func endOfMonth(t time.Time) time.Time {
	return startOfMonth(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}
