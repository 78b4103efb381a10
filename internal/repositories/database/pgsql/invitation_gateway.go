package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finotbook/cashbook/internal/core/domain"
	portsrepo "github.com/finotbook/cashbook/internal/core/ports/repositories"
)

type PgxInvitationGateway struct {
	BaseGateway
}

func newPgxInvitationGateway(pool *pgxpool.Pool) portsrepo.InvitationGateway {
	return &PgxInvitationGateway{BaseGateway: BaseGateway{Pool: pool}}
}

var _ portsrepo.InvitationGateway = (*PgxInvitationGateway)(nil)

func (g *PgxInvitationGateway) InsertInvitation(ctx context.Context, businessID, email string, role domain.MemberRole) (*domain.Invitation, error) {
	query := `
		INSERT INTO business_invitations AS i (business_id, email, role)
		VALUES ($1, $2, $3)
		RETURNING i.id, i.business_id, i.email, i.role, i.status, i.created_at;
	`
	var inv domain.Invitation
	err := g.Pool.QueryRow(ctx, query, businessID, email, role).
		Scan(&inv.InvitationID, &inv.BusinessID, &inv.Email, &inv.Role, &inv.Status, &inv.CreatedAt)
	if err != nil {
		return nil, mapError("insert invitation", err)
	}
	return &inv, nil
}

func (g *PgxInvitationGateway) SetInvitationStatus(ctx context.Context, invitationID string, status domain.InvitationStatus) error {
	query := `UPDATE business_invitations SET status = $2 WHERE id = $1;`
	tag, err := g.Pool.Exec(ctx, query, invitationID, status)
	if err != nil {
		return mapError("update invitation", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("update invitation", pgx.ErrNoRows)
	}
	return nil
}

func (g *PgxInvitationGateway) ListPendingInvitationsForEmail(ctx context.Context, email string) ([]domain.Invitation, error) {
	query := `
		SELECT i.id, i.business_id, COALESCE(b.name, ''), i.email, i.role, i.status, i.created_at
		FROM business_invitations i
		LEFT JOIN businesses b ON b.id = i.business_id
		WHERE lower(i.email) = lower($1) AND i.status = 'pending'
		ORDER BY i.created_at DESC;
	`
	rows, err := g.Pool.Query(ctx, query, email)
	if err != nil {
		return nil, mapError("list invitations", err)
	}
	defer rows.Close()
	invitations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Invitation, error) {
		var inv domain.Invitation
		err := row.Scan(&inv.InvitationID, &inv.BusinessID, &inv.BusinessName, &inv.Email, &inv.Role, &inv.Status, &inv.CreatedAt)
		return inv, err
	})
	if err != nil {
		return nil, mapError("list invitations", err)
	}
	return invitations, nil
}
