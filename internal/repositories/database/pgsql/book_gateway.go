package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finotbook/cashbook/internal/core/domain"
	portsrepo "github.com/finotbook/cashbook/internal/core/ports/repositories"
)

type PgxBookGateway struct {
	BaseGateway
}

func newPgxBookGateway(pool *pgxpool.Pool) portsrepo.BookGateway {
	return &PgxBookGateway{BaseGateway: BaseGateway{Pool: pool}}
}

var _ portsrepo.BookGateway = (*PgxBookGateway)(nil)

const bookColumns = `bk.id, bk.business_id, bk.name, bk.currency, bk.owner_id, bk.created_at`

func scanBook(row pgx.Row) (domain.Book, error) {
	var b domain.Book
	err := row.Scan(&b.BookID, &b.BusinessID, &b.Name, &b.CurrencyCode, &b.OwnerID, &b.CreatedAt)
	return b, err
}

func (g *PgxBookGateway) InsertBook(ctx context.Context, name, businessID, currencyCode, ownerID string) (*domain.Book, error) {
	query := `
		INSERT INTO books AS bk (name, business_id, currency, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + bookColumns + `;
	`
	b, err := scanBook(g.Pool.QueryRow(ctx, query, name, businessID, currencyCode, ownerID))
	if err != nil {
		return nil, mapError("insert book", err)
	}
	return &b, nil
}

func (g *PgxBookGateway) UpdateBook(ctx context.Context, bookID string, name, currencyCode *string) (*domain.Book, error) {
	query := `
		UPDATE books AS bk SET
			name = COALESCE($2, name),
			currency = COALESCE($3, currency)
		WHERE bk.id = $1
		RETURNING ` + bookColumns + `;
	`
	b, err := scanBook(g.Pool.QueryRow(ctx, query, bookID, name, currencyCode))
	if err != nil {
		return nil, mapError("update book", err)
	}
	return &b, nil
}

// ListBooksWithBalance runs the server-side listing procedure; the balance
// column is computed remotely in the same round trip.
func (g *PgxBookGateway) ListBooksWithBalance(ctx context.Context, userID string) ([]domain.Book, error) {
	query := `SELECT id, business_id, name, currency, owner_id, created_at, balance FROM get_user_books_with_balance($1);`
	rows, err := g.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, mapError("list books", err)
	}
	defer rows.Close()
	books, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Book, error) {
		var b domain.Book
		err := row.Scan(&b.BookID, &b.BusinessID, &b.Name, &b.CurrencyCode, &b.OwnerID, &b.CreatedAt, &b.Balance)
		return b, err
	})
	if err != nil {
		return nil, mapError("list books", err)
	}
	return books, nil
}

func (g *PgxBookGateway) DeleteBookCascade(ctx context.Context, bookID string) error {
	if _, err := g.Pool.Exec(ctx, `SELECT delete_book($1);`, bookID); err != nil {
		return mapError("delete book", err)
	}
	return nil
}

func (g *PgxBookGateway) DuplicateBook(ctx context.Context, bookID, newName, actingUserID string) (string, error) {
	var newBookID string
	err := g.Pool.QueryRow(ctx, `SELECT duplicate_book($1, $2, $3);`, bookID, newName, actingUserID).Scan(&newBookID)
	if err != nil {
		return "", mapError("duplicate book", err)
	}
	return newBookID, nil
}

func (g *PgxBookGateway) TransferBook(ctx context.Context, bookID, newBusinessID string) error {
	if _, err := g.Pool.Exec(ctx, `SELECT transfer_book($1, $2);`, bookID, newBusinessID); err != nil {
		return mapError("transfer book", err)
	}
	return nil
}

const customFieldColumns = `f.id, f.book_id, f.field_name, COALESCE(f.field_type, 'text'), f.is_enabled, f.is_required, f.created_at`

func scanCustomField(row pgx.Row) (domain.BookCustomField, error) {
	var f domain.BookCustomField
	err := row.Scan(&f.FieldID, &f.BookID, &f.FieldName, &f.FieldType, &f.IsEnabled, &f.IsRequired, &f.CreatedAt)
	return f, err
}

func (g *PgxBookGateway) InsertCustomField(ctx context.Context, bookID, fieldName string) (*domain.BookCustomField, error) {
	query := `
		INSERT INTO book_custom_fields AS f (book_id, field_name)
		VALUES ($1, $2)
		RETURNING ` + customFieldColumns + `;
	`
	f, err := scanCustomField(g.Pool.QueryRow(ctx, query, bookID, fieldName))
	if err != nil {
		return nil, mapError("insert custom field", err)
	}
	return &f, nil
}

func (g *PgxBookGateway) SetCustomFieldEnabled(ctx context.Context, fieldID string, enabled bool) (*domain.BookCustomField, error) {
	query := `
		UPDATE book_custom_fields AS f SET is_enabled = $2
		WHERE f.id = $1
		RETURNING ` + customFieldColumns + `;
	`
	f, err := scanCustomField(g.Pool.QueryRow(ctx, query, fieldID, enabled))
	if err != nil {
		return nil, mapError("toggle custom field", err)
	}
	return &f, nil
}

func (g *PgxBookGateway) SetCustomFieldRequired(ctx context.Context, fieldID string, required bool) (*domain.BookCustomField, error) {
	query := `
		UPDATE book_custom_fields AS f SET is_required = $2
		WHERE f.id = $1
		RETURNING ` + customFieldColumns + `;
	`
	f, err := scanCustomField(g.Pool.QueryRow(ctx, query, fieldID, required))
	if err != nil {
		return nil, mapError("toggle custom field required", err)
	}
	return &f, nil
}

func (g *PgxBookGateway) DeleteCustomField(ctx context.Context, fieldID string) error {
	if _, err := g.Pool.Exec(ctx, `DELETE FROM book_custom_fields WHERE id = $1;`, fieldID); err != nil {
		return mapError("delete custom field", err)
	}
	return nil
}

func (g *PgxBookGateway) ListCustomFieldsForBooks(ctx context.Context, bookIDs []string) ([]domain.BookCustomField, error) {
	query := `
		SELECT ` + customFieldColumns + `
		FROM book_custom_fields f
		WHERE f.book_id = ANY($1)
		ORDER BY f.created_at;
	`
	rows, err := g.Pool.Query(ctx, query, bookIDs)
	if err != nil {
		return nil, mapError("list custom fields", err)
	}
	defer rows.Close()
	fields, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.BookCustomField, error) {
		return scanCustomField(row)
	})
	if err != nil {
		return nil, mapError("list custom fields", err)
	}
	return fields, nil
}
