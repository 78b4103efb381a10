package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finotbook/cashbook/internal/core/domain"
	portsrepo "github.com/finotbook/cashbook/internal/core/ports/repositories"
)

type PgxProfileGateway struct {
	BaseGateway
}

func newPgxProfileGateway(pool *pgxpool.Pool) portsrepo.ProfileGateway {
	return &PgxProfileGateway{BaseGateway: BaseGateway{Pool: pool}}
}

var _ portsrepo.ProfileGateway = (*PgxProfileGateway)(nil)

const profileColumns = `p.id, COALESCE(p.email, ''), COALESCE(p.full_name, ''), COALESCE(p.last_selected_business_id::text, '')`

func scanProfile(row pgx.Row) (domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(&p.UserID, &p.Email, &p.FullName, &p.LastSelectedBusinessID)
	return p, err
}

func (g *PgxProfileGateway) UpsertProfile(ctx context.Context, p domain.Profile) error {
	query := `
		INSERT INTO profiles (id, email, full_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			full_name = EXCLUDED.full_name;
	`
	if _, err := g.Pool.Exec(ctx, query, p.UserID, p.Email, p.FullName); err != nil {
		return mapError("upsert profile", err)
	}
	return nil
}

func (g *PgxProfileGateway) FindProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles p WHERE p.id = $1;`
	p, err := scanProfile(g.Pool.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, mapError("find profile", err)
	}
	return &p, nil
}

func (g *PgxProfileGateway) ListProfiles(ctx context.Context, userIDs []string) ([]domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles p WHERE p.id = ANY($1);`
	rows, err := g.Pool.Query(ctx, query, userIDs)
	if err != nil {
		return nil, mapError("list profiles", err)
	}
	defer rows.Close()
	profiles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Profile, error) {
		return scanProfile(row)
	})
	if err != nil {
		return nil, mapError("list profiles", err)
	}
	return profiles, nil
}

func (g *PgxProfileGateway) SetLastSelectedBusiness(ctx context.Context, userID, businessID string) error {
	query := `UPDATE profiles SET last_selected_business_id = $2 WHERE id = $1;`
	tag, err := g.Pool.Exec(ctx, query, userID, businessID)
	if err != nil {
		return mapError("set selected business", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("set selected business", pgx.ErrNoRows)
	}
	return nil
}

type PgxCurrencyGateway struct {
	BaseGateway
}

func newPgxCurrencyGateway(pool *pgxpool.Pool) portsrepo.CurrencyGateway {
	return &PgxCurrencyGateway{BaseGateway: BaseGateway{Pool: pool}}
}

var _ portsrepo.CurrencyGateway = (*PgxCurrencyGateway)(nil)

func (g *PgxCurrencyGateway) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	query := `SELECT code, name, COALESCE(symbol, '') FROM currencies ORDER BY code;`
	rows, err := g.Pool.Query(ctx, query)
	if err != nil {
		return nil, mapError("list currencies", err)
	}
	defer rows.Close()
	currencies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Currency, error) {
		var c domain.Currency
		err := row.Scan(&c.Code, &c.Name, &c.Symbol)
		return c, err
	})
	if err != nil {
		return nil, mapError("list currencies", err)
	}
	return currencies, nil
}
