package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finotbook/cashbook/internal/core/domain"
	portsrepo "github.com/finotbook/cashbook/internal/core/ports/repositories"
)

type PgxLookupGateway struct {
	BaseGateway
}

func newPgxLookupGateway(pool *pgxpool.Pool) portsrepo.LookupGateway {
	return &PgxLookupGateway{BaseGateway: BaseGateway{Pool: pool}}
}

var _ portsrepo.LookupGateway = (*PgxLookupGateway)(nil)

func (g *PgxLookupGateway) InsertCategory(ctx context.Context, businessID, name string) (*domain.Category, error) {
	query := `
		INSERT INTO transaction_categories (business_id, name)
		VALUES ($1, $2)
		RETURNING id, business_id, name;
	`
	var c domain.Category
	if err := g.Pool.QueryRow(ctx, query, businessID, name).Scan(&c.CategoryID, &c.BusinessID, &c.Name); err != nil {
		return nil, mapError("insert category", err)
	}
	return &c, nil
}

func (g *PgxLookupGateway) DeleteCategory(ctx context.Context, categoryID string) error {
	if _, err := g.Pool.Exec(ctx, `DELETE FROM transaction_categories WHERE id = $1;`, categoryID); err != nil {
		return mapError("delete category", err)
	}
	return nil
}

func (g *PgxLookupGateway) ListCategoriesForBusinesses(ctx context.Context, businessIDs []string) ([]domain.Category, error) {
	query := `
		SELECT id, business_id, name
		FROM transaction_categories
		WHERE business_id = ANY($1)
		ORDER BY name;
	`
	rows, err := g.Pool.Query(ctx, query, businessIDs)
	if err != nil {
		return nil, mapError("list categories", err)
	}
	defer rows.Close()
	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Category, error) {
		var c domain.Category
		err := row.Scan(&c.CategoryID, &c.BusinessID, &c.Name)
		return c, err
	})
	if err != nil {
		return nil, mapError("list categories", err)
	}
	return categories, nil
}

func (g *PgxLookupGateway) InsertPaymentMethod(ctx context.Context, businessID, name string) (*domain.PaymentMethod, error) {
	query := `
		INSERT INTO payment_methods (business_id, name)
		VALUES ($1, $2)
		RETURNING id, business_id, name;
	`
	var p domain.PaymentMethod
	if err := g.Pool.QueryRow(ctx, query, businessID, name).Scan(&p.PaymentMethodID, &p.BusinessID, &p.Name); err != nil {
		return nil, mapError("insert payment method", err)
	}
	return &p, nil
}

func (g *PgxLookupGateway) DeletePaymentMethod(ctx context.Context, paymentMethodID string) error {
	if _, err := g.Pool.Exec(ctx, `DELETE FROM payment_methods WHERE id = $1;`, paymentMethodID); err != nil {
		return mapError("delete payment method", err)
	}
	return nil
}

func (g *PgxLookupGateway) ListPaymentMethodsForBusinesses(ctx context.Context, businessIDs []string) ([]domain.PaymentMethod, error) {
	query := `
		SELECT id, business_id, name
		FROM payment_methods
		WHERE business_id = ANY($1)
		ORDER BY name;
	`
	rows, err := g.Pool.Query(ctx, query, businessIDs)
	if err != nil {
		return nil, mapError("list payment methods", err)
	}
	defer rows.Close()
	methods, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PaymentMethod, error) {
		var p domain.PaymentMethod
		err := row.Scan(&p.PaymentMethodID, &p.BusinessID, &p.Name)
		return p, err
	})
	if err != nil {
		return nil, mapError("list payment methods", err)
	}
	return methods, nil
}

func (g *PgxLookupGateway) InsertContact(ctx context.Context, businessID, name, phoneNumber string) (*domain.Contact, error) {
	query := `
		INSERT INTO contacts (business_id, name, phone_number)
		VALUES ($1, $2, $3)
		RETURNING id, business_id, name, COALESCE(phone_number, ''), created_at;
	`
	var c domain.Contact
	err := g.Pool.QueryRow(ctx, query, businessID, name, nullable(phoneNumber)).
		Scan(&c.ContactID, &c.BusinessID, &c.Name, &c.PhoneNumber, &c.CreatedAt)
	if err != nil {
		return nil, mapError("insert contact", err)
	}
	return &c, nil
}

func (g *PgxLookupGateway) DeleteContact(ctx context.Context, contactID string) error {
	if _, err := g.Pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1;`, contactID); err != nil {
		return mapError("delete contact", err)
	}
	return nil
}

func (g *PgxLookupGateway) ListContactsForBusinesses(ctx context.Context, businessIDs []string) ([]domain.Contact, error) {
	query := `
		SELECT id, business_id, name, COALESCE(phone_number, ''), created_at
		FROM contacts
		WHERE business_id = ANY($1)
		ORDER BY name;
	`
	rows, err := g.Pool.Query(ctx, query, businessIDs)
	if err != nil {
		return nil, mapError("list contacts", err)
	}
	defer rows.Close()
	contacts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Contact, error) {
		var c domain.Contact
		err := row.Scan(&c.ContactID, &c.BusinessID, &c.Name, &c.PhoneNumber, &c.CreatedAt)
		return c, err
	})
	if err != nil {
		return nil, mapError("list contacts", err)
	}
	return contacts, nil
}
