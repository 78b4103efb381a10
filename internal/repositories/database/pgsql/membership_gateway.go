package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finotbook/cashbook/internal/core/domain"
	portsrepo "github.com/finotbook/cashbook/internal/core/ports/repositories"
)

type PgxMembershipGateway struct {
	BaseGateway
}

func newPgxMembershipGateway(pool *pgxpool.Pool) portsrepo.MembershipGateway {
	return &PgxMembershipGateway{BaseGateway: BaseGateway{Pool: pool}}
}

var _ portsrepo.MembershipGateway = (*PgxMembershipGateway)(nil)

func (g *PgxMembershipGateway) InsertBusinessMember(ctx context.Context, businessID, userID string, role domain.MemberRole) error {
	query := `
		INSERT INTO business_members (business_id, user_id, role)
		VALUES ($1, $2, $3);
	`
	if _, err := g.Pool.Exec(ctx, query, businessID, userID, role); err != nil {
		return mapError("insert business member", err)
	}
	return nil
}

func (g *PgxMembershipGateway) DeleteBusinessMember(ctx context.Context, businessID, userID string) error {
	query := `DELETE FROM business_members WHERE business_id = $1 AND user_id = $2;`
	if _, err := g.Pool.Exec(ctx, query, businessID, userID); err != nil {
		return mapError("delete business member", err)
	}
	return nil
}

// ListBusinessMembersForBusinesses returns raw role rows; display identity
// is filled in by the sync orchestrator from a batched profile lookup.
func (g *PgxMembershipGateway) ListBusinessMembersForBusinesses(ctx context.Context, businessIDs []string) ([]domain.BusinessMember, error) {
	query := `
		SELECT user_id, business_id, role
		FROM business_members
		WHERE business_id = ANY($1);
	`
	rows, err := g.Pool.Query(ctx, query, businessIDs)
	if err != nil {
		return nil, mapError("list business members", err)
	}
	defer rows.Close()
	members, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.BusinessMember, error) {
		var m domain.BusinessMember
		err := row.Scan(&m.UserID, &m.BusinessID, &m.Role)
		return m, err
	})
	if err != nil {
		return nil, mapError("list business members", err)
	}
	return members, nil
}

func (g *PgxMembershipGateway) InsertBookMember(ctx context.Context, bookID, userID string) error {
	query := `
		INSERT INTO book_members (book_id, user_id)
		VALUES ($1, $2);
	`
	if _, err := g.Pool.Exec(ctx, query, bookID, userID); err != nil {
		return mapError("insert book member", err)
	}
	return nil
}

func (g *PgxMembershipGateway) DeleteBookMember(ctx context.Context, bookID, userID string) error {
	query := `DELETE FROM book_members WHERE book_id = $1 AND user_id = $2;`
	if _, err := g.Pool.Exec(ctx, query, bookID, userID); err != nil {
		return mapError("delete book member", err)
	}
	return nil
}

func (g *PgxMembershipGateway) ListBookMembersForBooks(ctx context.Context, bookIDs []string) ([]domain.BookMember, error) {
	query := `
		SELECT book_id, user_id
		FROM book_members
		WHERE book_id = ANY($1);
	`
	rows, err := g.Pool.Query(ctx, query, bookIDs)
	if err != nil {
		return nil, mapError("list book members", err)
	}
	defer rows.Close()
	members, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.BookMember, error) {
		var m domain.BookMember
		err := row.Scan(&m.BookID, &m.UserID)
		return m, err
	})
	if err != nil {
		return nil, mapError("list book members", err)
	}
	return members, nil
}
