package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finotbook/cashbook/internal/core/domain"
	portsrepo "github.com/finotbook/cashbook/internal/core/ports/repositories"
)

type PgxBusinessGateway struct {
	BaseGateway
}

func newPgxBusinessGateway(pool *pgxpool.Pool) portsrepo.BusinessGateway {
	return &PgxBusinessGateway{BaseGateway: BaseGateway{Pool: pool}}
}

var _ portsrepo.BusinessGateway = (*PgxBusinessGateway)(nil)

const businessColumns = `
	b.id, b.name, b.owner_id, b.currency,
	COALESCE(b.address, ''), COALESCE(b.staff_size, ''),
	COALESCE(b.category, ''), COALESCE(b.subcategory, ''),
	COALESCE(b.business_type, ''), COALESCE(b.registration_type, ''),
	COALESCE(b.phone_number, ''), COALESCE(b.contact_email, ''),
	COALESCE(b.is_verified, false)
`

func scanBusiness(row pgx.Row) (domain.Business, error) {
	var b domain.Business
	err := row.Scan(
		&b.BusinessID, &b.Name, &b.OwnerID, &b.CurrencyCode,
		&b.Address, &b.StaffSize,
		&b.Category, &b.Subcategory,
		&b.BusinessType, &b.RegistrationType,
		&b.PhoneNumber, &b.ContactEmail,
		&b.IsVerified,
	)
	return b, err
}

func (g *PgxBusinessGateway) InsertBusiness(ctx context.Context, name, currencyCode, ownerID string) (*domain.Business, error) {
	query := `
		INSERT INTO businesses AS b (name, currency, owner_id)
		VALUES ($1, $2, $3)
		RETURNING ` + businessColumns + `;
	`
	b, err := scanBusiness(g.Pool.QueryRow(ctx, query, name, currencyCode, ownerID))
	if err != nil {
		return nil, mapError("insert business", err)
	}
	return &b, nil
}

func (g *PgxBusinessGateway) UpdateBusiness(ctx context.Context, businessID string, upd domain.BusinessUpdate) (*domain.Business, error) {
	query := `
		UPDATE businesses AS b SET
			name = COALESCE($2, name),
			currency = COALESCE($3, currency),
			address = COALESCE($4, address),
			staff_size = COALESCE($5, staff_size),
			category = COALESCE($6, category),
			subcategory = COALESCE($7, subcategory),
			business_type = COALESCE($8, business_type),
			registration_type = COALESCE($9, registration_type),
			phone_number = COALESCE($10, phone_number),
			contact_email = COALESCE($11, contact_email)
		WHERE b.id = $1
		RETURNING ` + businessColumns + `;
	`
	b, err := scanBusiness(g.Pool.QueryRow(ctx, query, businessID,
		upd.Name, upd.CurrencyCode, upd.Address, upd.StaffSize,
		upd.Category, upd.Subcategory, upd.BusinessType,
		upd.RegistrationType, upd.PhoneNumber, upd.ContactEmail,
	))
	if err != nil {
		return nil, mapError("update business", err)
	}
	return &b, nil
}

func (g *PgxBusinessGateway) ListBusinessesForUser(ctx context.Context, userID string) ([]domain.Business, error) {
	query := `
		SELECT ` + businessColumns + `
		FROM businesses b
		JOIN business_members bm ON bm.business_id = b.id
		WHERE bm.user_id = $1
		ORDER BY b.name;
	`
	rows, err := g.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, mapError("list businesses", err)
	}
	defer rows.Close()
	businesses, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Business, error) {
		return scanBusiness(row)
	})
	if err != nil {
		return nil, mapError("list businesses", err)
	}
	return businesses, nil
}

func (g *PgxBusinessGateway) DeleteBusinessCascade(ctx context.Context, businessID string) error {
	if _, err := g.Pool.Exec(ctx, `SELECT delete_business($1);`, businessID); err != nil {
		return mapError("delete business", err)
	}
	return nil
}

func (g *PgxBusinessGateway) TransferOwnership(ctx context.Context, businessID, newOwnerID string) error {
	if _, err := g.Pool.Exec(ctx, `SELECT transfer_business_ownership($1, $2);`, businessID, newOwnerID); err != nil {
		return mapError("transfer business ownership", err)
	}
	return nil
}
