// Package sqlite persists the replica to a local SQLite file so a restarted
// daemon serves the last synced state before the remote store is reachable.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/finotbook/cashbook/internal/core/domain"
	"github.com/finotbook/cashbook/internal/replica"
)

// Persister writes each replica row as one JSON document keyed by
// (collection, id). Save rewrites only the collections a commit touched.
type Persister struct {
	db *sql.DB
}

var _ replica.Persister = (*Persister)(nil)

// NewPersister wraps an opened cache database.
func NewPersister(db *sql.DB) *Persister {
	return &Persister{db: db}
}

func (p *Persister) Load(ctx context.Context) (replica.Snapshot, error) {
	snap := emptySnapshot()

	rows, err := p.db.QueryContext(ctx, `SELECT collection, id, doc FROM replica_documents;`)
	if err != nil {
		return snap, fmt.Errorf("failed to load replica cache: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var collection, id string
		var doc []byte
		if err := rows.Scan(&collection, &id, &doc); err != nil {
			return snap, fmt.Errorf("failed to scan cached document: %w", err)
		}
		if err := restoreDocument(&snap, replica.Collection(collection), id, doc); err != nil {
			return snap, err
		}
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("failed to load replica cache: %w", err)
	}
	return snap, nil
}

func (p *Persister) Save(ctx context.Context, snapshot replica.Snapshot, dirty []replica.Collection) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin cache transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range dirty {
		if _, err := tx.ExecContext(ctx, `DELETE FROM replica_documents WHERE collection = ?;`, string(c)); err != nil {
			return fmt.Errorf("failed to clear cached collection %s: %w", c, err)
		}
		docs, err := collectionDocuments(snapshot, c)
		if err != nil {
			return err
		}
		for id, doc := range docs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO replica_documents (collection, id, doc) VALUES (?, ?, ?);`,
				string(c), id, doc,
			); err != nil {
				return fmt.Errorf("failed to cache document %s/%s: %w", c, id, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache transaction: %w", err)
	}
	return nil
}

func emptySnapshot() replica.Snapshot {
	return replica.Snapshot{
		Businesses:       map[string]domain.Business{},
		Books:            map[string]domain.Book{},
		Transactions:     map[string]domain.Transaction{},
		Categories:       map[string]domain.Category{},
		PaymentMethods:   map[string]domain.PaymentMethod{},
		BusinessMembers:  map[string]domain.BusinessMember{},
		BookMembers:      map[string]domain.BookMember{},
		BookCustomFields: map[string]domain.BookCustomField{},
		Contacts:         map[string]domain.Contact{},
		Invitations:      map[string]domain.Invitation{},
		Currencies:       map[string]domain.Currency{},
		Profiles:         map[string]domain.Profile{},
	}
}

func marshalAll[T any](m map[string]T) (map[string][]byte, error) {
	out := make(map[string][]byte, len(m))
	for id, v := range m {
		doc, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode cached document %s: %w", id, err)
		}
		out[id] = doc
	}
	return out, nil
}

func collectionDocuments(snap replica.Snapshot, c replica.Collection) (map[string][]byte, error) {
	switch c {
	case replica.ColBusinesses:
		return marshalAll(snap.Businesses)
	case replica.ColBooks:
		return marshalAll(snap.Books)
	case replica.ColTransactions:
		return marshalAll(snap.Transactions)
	case replica.ColCategories:
		return marshalAll(snap.Categories)
	case replica.ColPaymentMethods:
		return marshalAll(snap.PaymentMethods)
	case replica.ColBusinessMembers:
		return marshalAll(snap.BusinessMembers)
	case replica.ColBookMembers:
		return marshalAll(snap.BookMembers)
	case replica.ColBookCustomFields:
		return marshalAll(snap.BookCustomFields)
	case replica.ColContacts:
		return marshalAll(snap.Contacts)
	case replica.ColInvitations:
		return marshalAll(snap.Invitations)
	case replica.ColCurrencies:
		return marshalAll(snap.Currencies)
	case replica.ColProfiles:
		return marshalAll(snap.Profiles)
	}
	return nil, fmt.Errorf("unknown collection %q", c)
}

func restore[T any](m map[string]T, id string, doc []byte) error {
	var v T
	if err := json.Unmarshal(doc, &v); err != nil {
		return fmt.Errorf("failed to decode cached document %s: %w", id, err)
	}
	m[id] = v
	return nil
}

func restoreDocument(snap *replica.Snapshot, c replica.Collection, id string, doc []byte) error {
	switch c {
	case replica.ColBusinesses:
		return restore(snap.Businesses, id, doc)
	case replica.ColBooks:
		return restore(snap.Books, id, doc)
	case replica.ColTransactions:
		return restore(snap.Transactions, id, doc)
	case replica.ColCategories:
		return restore(snap.Categories, id, doc)
	case replica.ColPaymentMethods:
		return restore(snap.PaymentMethods, id, doc)
	case replica.ColBusinessMembers:
		return restore(snap.BusinessMembers, id, doc)
	case replica.ColBookMembers:
		return restore(snap.BookMembers, id, doc)
	case replica.ColBookCustomFields:
		return restore(snap.BookCustomFields, id, doc)
	case replica.ColContacts:
		return restore(snap.Contacts, id, doc)
	case replica.ColInvitations:
		return restore(snap.Invitations, id, doc)
	case replica.ColCurrencies:
		return restore(snap.Currencies, id, doc)
	case replica.ColProfiles:
		return restore(snap.Profiles, id, doc)
	}
	// Unknown collections in an old cache file are skipped, not fatal.
	return nil
}
