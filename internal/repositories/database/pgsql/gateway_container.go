package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/finotbook/cashbook/internal/core/ports/repositories"
)

// NewGatewayProvider wires every Postgres-backed gateway onto one pool.
// Reauth is left nil; password verification goes through the auth API
// adapter, not the database.
func NewGatewayProvider(dbPool *pgxpool.Pool) portsrepo.Gateways {
	return portsrepo.Gateways{
		Businesses:   newPgxBusinessGateway(dbPool),
		Books:        newPgxBookGateway(dbPool),
		Transactions: newPgxTransactionGateway(dbPool),
		Lookups:      newPgxLookupGateway(dbPool),
		Memberships:  newPgxMembershipGateway(dbPool),
		Invitations:  newPgxInvitationGateway(dbPool),
		Profiles:     newPgxProfileGateway(dbPool),
		Currencies:   newPgxCurrencyGateway(dbPool),
	}
}
