package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/finotbook/cashbook/internal/core/domain"
	portsrepo "github.com/finotbook/cashbook/internal/core/ports/repositories"
	portssvc "github.com/finotbook/cashbook/internal/core/ports/services"
	"github.com/finotbook/cashbook/internal/dto"
	"github.com/finotbook/cashbook/internal/replica"
)

// TransactionService coordinates cashbook entry mutations.
type TransactionService struct {
	BaseService
	gw portsrepo.Gateways
}

var _ portssvc.TransactionSvc = (*TransactionService)(nil)

// NewTransactionService creates a new transaction service.
func NewTransactionService(store *replica.Store, gw portsrepo.Gateways, resync func()) *TransactionService {
	return &TransactionService{
		BaseService: BaseService{Replica: store, Resync: resync},
		gw:          gw,
	}
}

// authorName prefers the synced profile row over the token metadata; the
// profile is what other members' replicas will show for this author.
func (s *TransactionService) authorName(who domain.Identity) string {
	if p, ok := s.Replica.Profile(who.UserID); ok && p.FullName != "" {
		return p.FullName
	}
	return who.FullName
}

// AddTransaction records one entry, stamped with the caller as author, and
// mirrors the server-confirmed row.
func (s *TransactionService) AddTransaction(ctx context.Context, who domain.Identity, bookID string, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	row := req.ToDomain(bookID, who)
	row.UserFullName = s.authorName(who)

	confirmed, err := s.gw.Transactions.InsertTransaction(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("failed to add transaction: %w", err)
	}

	s.MirrorConfirmed(ctx, "add transaction", func(tx *replica.Tx) error {
		tx.PutTransaction(*confirmed)
		return nil
	})
	return confirmed, nil
}

// BulkAddTransactions imports entries all-or-nothing: the remote insert is a
// single batch, and on any rejection zero rows are written locally.
func (s *TransactionService) BulkAddTransactions(ctx context.Context, who domain.Identity, bookID string, req dto.BulkCreateTransactionsRequest) ([]domain.Transaction, error) {
	author := s.authorName(who)
	rows := make([]domain.Transaction, 0, len(req.Transactions))
	for _, r := range req.Transactions {
		row := r.ToDomain(bookID, who)
		row.UserFullName = author
		rows = append(rows, row)
	}

	confirmed, err := s.gw.Transactions.BulkInsertTransactions(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to import transactions: %w", err)
	}

	s.MirrorConfirmed(ctx, "bulk add transactions", func(tx *replica.Tx) error {
		tx.PutTransactions(confirmed)
		return nil
	})

	s.LogInfo(ctx, "Transactions imported", slog.String("book_id", bookID), slog.Int("count", len(confirmed)))
	return confirmed, nil
}

// UpdateTransaction applies a partial update and mirrors the full returned
// row so server-computed columns are captured, not guessed.
func (s *TransactionService) UpdateTransaction(ctx context.Context, who domain.Identity, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	confirmed, err := s.gw.Transactions.UpdateTransaction(ctx, transactionID, req.ToDomain())
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	// The gateway returns raw columns; the denormalized author name is a
	// replica-only convenience, so carry it over from the stored row.
	if prev, ok := s.Replica.Transaction(transactionID); ok && confirmed.UserFullName == "" {
		confirmed.UserFullName = prev.UserFullName
	}

	s.MirrorConfirmed(ctx, "update transaction", func(tx *replica.Tx) error {
		tx.PutTransaction(*confirmed)
		return nil
	})
	return confirmed, nil
}

// DeleteTransaction removes one entry.
func (s *TransactionService) DeleteTransaction(ctx context.Context, who domain.Identity, transactionID string) error {
	if err := s.gw.Transactions.DeleteTransaction(ctx, transactionID); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	s.MirrorConfirmed(ctx, "delete transaction", func(tx *replica.Tx) error {
		tx.DeleteTransaction(transactionID)
		return nil
	})
	return nil
}
