package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finotbook/cashbook/internal/core/domain"
	portsrepo "github.com/finotbook/cashbook/internal/core/ports/repositories"
)

type PgxTransactionGateway struct {
	BaseGateway
}

func newPgxTransactionGateway(pool *pgxpool.Pool) portsrepo.TransactionGateway {
	return &PgxTransactionGateway{BaseGateway: BaseGateway{Pool: pool}}
}

var _ portsrepo.TransactionGateway = (*PgxTransactionGateway)(nil)

const transactionColumns = `
	t.id, t.book_id, t.date, t.description, t.amount, t.type, t.created_at,
	t.user_id, COALESCE(t.user_email, ''), COALESCE(t.user_full_name, ''),
	COALESCE(t.category, ''), COALESCE(t.payment_mode, ''), COALESCE(t.contact_id::text, ''),
	COALESCE(t.custom_fields, '{}'::jsonb), COALESCE(t.attachment_urls, '{}')
`

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.TransactionID, &t.BookID, &t.Date, &t.Description, &t.Amount, &t.Type, &t.CreatedAt,
		&t.UserID, &t.UserEmail, &t.UserFullName,
		&t.Category, &t.PaymentMode, &t.ContactID,
		&t.CustomFields, &t.AttachmentURLs,
	)
	return t, err
}

// nullable turns the empty string into NULL for soft-reference columns.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (g *PgxTransactionGateway) InsertTransaction(ctx context.Context, t domain.Transaction) (*domain.Transaction, error) {
	query := `
		INSERT INTO transactions AS t (
			book_id, date, description, amount, type,
			user_id, user_email, user_full_name,
			category, payment_mode, contact_id, custom_fields, attachment_urls
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + transactionColumns + `;
	`
	confirmed, err := scanTransaction(g.Pool.QueryRow(ctx, query,
		t.BookID, t.Date, t.Description, t.Amount, t.Type,
		t.UserID, t.UserEmail, nullable(t.UserFullName),
		nullable(t.Category), nullable(t.PaymentMode), nullable(t.ContactID),
		t.CustomFields, t.AttachmentURLs,
	))
	if err != nil {
		return nil, mapError("insert transaction", err)
	}
	return &confirmed, nil
}

// BulkInsertTransactions inserts the batch inside one remote transaction so
// a single rejected row leaves nothing behind.
func (g *PgxTransactionGateway) BulkInsertTransactions(ctx context.Context, ts []domain.Transaction) ([]domain.Transaction, error) {
	dbTx, err := g.Pool.Begin(ctx)
	if err != nil {
		return nil, mapError("bulk insert transactions", err)
	}
	defer dbTx.Rollback(ctx)

	query := `
		INSERT INTO transactions AS t (
			book_id, date, description, amount, type,
			user_id, user_email, user_full_name,
			category, payment_mode, contact_id, custom_fields, attachment_urls
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + transactionColumns + `;
	`
	confirmed := make([]domain.Transaction, 0, len(ts))
	for _, t := range ts {
		row, err := scanTransaction(dbTx.QueryRow(ctx, query,
			t.BookID, t.Date, t.Description, t.Amount, t.Type,
			t.UserID, t.UserEmail, nullable(t.UserFullName),
			nullable(t.Category), nullable(t.PaymentMode), nullable(t.ContactID),
			t.CustomFields, t.AttachmentURLs,
		))
		if err != nil {
			return nil, mapError("bulk insert transactions", err)
		}
		confirmed = append(confirmed, row)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, mapError("bulk insert transactions", err)
	}
	return confirmed, nil
}

func (g *PgxTransactionGateway) UpdateTransaction(ctx context.Context, transactionID string, upd domain.TransactionUpdate) (*domain.Transaction, error) {
	query := `
		UPDATE transactions AS t SET
			date = COALESCE($2, date),
			description = COALESCE($3, description),
			amount = COALESCE($4, amount),
			type = COALESCE($5, type),
			category = COALESCE($6, category),
			payment_mode = COALESCE($7, payment_mode),
			contact_id = COALESCE($8, contact_id),
			custom_fields = COALESCE($9, custom_fields),
			attachment_urls = COALESCE($10, attachment_urls)
		WHERE t.id = $1
		RETURNING ` + transactionColumns + `;
	`
	var customFields map[string]string
	if upd.CustomFields != nil {
		customFields = *upd.CustomFields
	}
	var attachmentURLs []string
	if upd.AttachmentURLs != nil {
		attachmentURLs = *upd.AttachmentURLs
	}
	confirmed, err := scanTransaction(g.Pool.QueryRow(ctx, query, transactionID,
		upd.Date, upd.Description, upd.Amount, upd.Type,
		upd.Category, upd.PaymentMode, upd.ContactID,
		customFields, attachmentURLs,
	))
	if err != nil {
		return nil, mapError("update transaction", err)
	}
	return &confirmed, nil
}

func (g *PgxTransactionGateway) DeleteTransaction(ctx context.Context, transactionID string) error {
	if _, err := g.Pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1;`, transactionID); err != nil {
		return mapError("delete transaction", err)
	}
	return nil
}

func (g *PgxTransactionGateway) ListTransactionsForBooks(ctx context.Context, bookIDs []string) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		WHERE t.book_id = ANY($1);
	`
	rows, err := g.Pool.Query(ctx, query, bookIDs)
	if err != nil {
		return nil, mapError("list transactions", err)
	}
	defer rows.Close()
	transactions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Transaction, error) {
		return scanTransaction(row)
	})
	if err != nil {
		return nil, mapError("list transactions", err)
	}
	return transactions, nil
}
