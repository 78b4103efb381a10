package derive

import (
	"sort"

	"github.com/finotbook/cashbook/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Entry is a transaction annotated with the cumulative balance at its point
// in history.
type Entry struct {
	domain.Transaction
	Balance decimal.Decimal `json:"balance"`
}

// WithRunningBalance annotates each transaction with the running balance of
// the list it was given: the accumulation walks oldest to newest, adding
// credits and subtracting debits, and the result is presented newest first.
//
// The engine is agnostic to whether the input is a book's full transaction
// set or a filtered subset; callers choose which list they pass and must not
// mix the two. Input order does not matter: entries are ordered by date,
// creation instant and id before accumulating, so a reversed input yields
// identical per-transaction balances.
func WithRunningBalance(ts []domain.Transaction) []Entry {
	ordered := make([]domain.Transaction, len(ts))
	copy(ordered, ts)
	sort.Slice(ordered, func(i, j int) bool { return olderThan(ordered[i], ordered[j]) })

	running := decimal.Zero
	entries := make([]Entry, len(ordered))
	for i, t := range ordered {
		running = running.Add(t.SignedAmount())
		entries[i] = Entry{Transaction: t, Balance: running}
	}
	// Reverse into newest-first presentation order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries
}

func olderThan(a, b domain.Transaction) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.TransactionID < b.TransactionID
}

// Totals sums the credits and debits of a transaction list and returns the
// net (credits minus debits). This is derived headline state for whichever
// list was passed in; it is not the book-level mirrored balance.
func Totals(ts []domain.Transaction) (credits, debits, net decimal.Decimal) {
	credits, debits = decimal.Zero, decimal.Zero
	for _, t := range ts {
		if t.Type == domain.Debit {
			debits = debits.Add(t.Amount)
		} else {
			credits = credits.Add(t.Amount)
		}
	}
	return credits, debits, credits.Sub(debits)
}
