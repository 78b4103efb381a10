// Package portsrepo declares the Remote Gateway: the typed facade over the
// remote relational store's row operations and atomic server-side procedures.
//
// Row-level authorization is enforced entirely by the remote store; callers
// only ever see the rows the gateway returns. Every method fails with a
// distinguishable error: apperrors.ErrUnavailable when the remote could not
// be reached, or a rejection sentinel (ErrDuplicate, ErrForbidden,
// ErrValidation, ErrNotFound) when it refused the operation. Either way the
// operation did not happen.
package portsrepo

import (
	"context"

	"github.com/finotbook/cashbook/internal/core/domain"
)

// BusinessGateway covers the businesses table and its cascade/transfer
// procedures.
type BusinessGateway interface {
	// InsertBusiness creates the row and returns the server-confirmed state,
	// including the assigned id and any server-defaulted columns.
	InsertBusiness(ctx context.Context, name, currencyCode, ownerID string) (*domain.Business, error)
	UpdateBusiness(ctx context.Context, businessID string, upd domain.BusinessUpdate) (*domain.Business, error)
	// ListBusinessesForUser returns every business the user is a member of,
	// resolved through the membership join.
	ListBusinessesForUser(ctx context.Context, userID string) ([]domain.Business, error)
	// DeleteBusinessCascade runs the atomic delete_business procedure.
	DeleteBusinessCascade(ctx context.Context, businessID string) error
	// TransferOwnership runs the atomic transfer_business_ownership
	// procedure; the "exactly one owner" invariant is enforced server-side.
	TransferOwnership(ctx context.Context, businessID, newOwnerID string) error
}

// BookGateway covers the books table, its custom-field definitions and the
// book-scoped procedures.
type BookGateway interface {
	InsertBook(ctx context.Context, name, businessID, currencyCode, ownerID string) (*domain.Book, error)
	UpdateBook(ctx context.Context, bookID string, name, currencyCode *string) (*domain.Book, error)
	// ListBooksWithBalance returns the user's books with the server-computed
	// balance, via the get_user_books_with_balance procedure.
	ListBooksWithBalance(ctx context.Context, userID string) ([]domain.Book, error)
	DeleteBookCascade(ctx context.Context, bookID string) error
	DuplicateBook(ctx context.Context, bookID, newName, actingUserID string) (string, error)
	TransferBook(ctx context.Context, bookID, newBusinessID string) error

	InsertCustomField(ctx context.Context, bookID, fieldName string) (*domain.BookCustomField, error)
	SetCustomFieldEnabled(ctx context.Context, fieldID string, enabled bool) (*domain.BookCustomField, error)
	SetCustomFieldRequired(ctx context.Context, fieldID string, required bool) (*domain.BookCustomField, error)
	DeleteCustomField(ctx context.Context, fieldID string) error
	ListCustomFieldsForBooks(ctx context.Context, bookIDs []string) ([]domain.BookCustomField, error)
}

// TransactionGateway covers the transactions table.
type TransactionGateway interface {
	InsertTransaction(ctx context.Context, t domain.Transaction) (*domain.Transaction, error)
	// BulkInsertTransactions inserts all rows in one server-side transaction;
	// a single rejected row fails the whole batch and inserts nothing.
	BulkInsertTransactions(ctx context.Context, ts []domain.Transaction) ([]domain.Transaction, error)
	UpdateTransaction(ctx context.Context, transactionID string, upd domain.TransactionUpdate) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, transactionID string) error
	ListTransactionsForBooks(ctx context.Context, bookIDs []string) ([]domain.Transaction, error)
}

// LookupGateway covers the business-scoped lookup tables: categories,
// payment methods and contacts.
type LookupGateway interface {
	InsertCategory(ctx context.Context, businessID, name string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error
	ListCategoriesForBusinesses(ctx context.Context, businessIDs []string) ([]domain.Category, error)

	InsertPaymentMethod(ctx context.Context, businessID, name string) (*domain.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, paymentMethodID string) error
	ListPaymentMethodsForBusinesses(ctx context.Context, businessIDs []string) ([]domain.PaymentMethod, error)

	InsertContact(ctx context.Context, businessID, name, phoneNumber string) (*domain.Contact, error)
	DeleteContact(ctx context.Context, contactID string) error
	ListContactsForBusinesses(ctx context.Context, businessIDs []string) ([]domain.Contact, error)
}

// MembershipGateway covers business-member and book-member link tables.
// List results carry raw role rows; display identity is denormalized by the
// sync orchestrator from a batched profile lookup.
type MembershipGateway interface {
	InsertBusinessMember(ctx context.Context, businessID, userID string, role domain.MemberRole) error
	DeleteBusinessMember(ctx context.Context, businessID, userID string) error
	ListBusinessMembersForBusinesses(ctx context.Context, businessIDs []string) ([]domain.BusinessMember, error)

	InsertBookMember(ctx context.Context, bookID, userID string) error
	DeleteBookMember(ctx context.Context, bookID, userID string) error
	ListBookMembersForBooks(ctx context.Context, bookIDs []string) ([]domain.BookMember, error)
}

// InvitationGateway covers the business_invitations table.
type InvitationGateway interface {
	InsertInvitation(ctx context.Context, businessID, email string, role domain.MemberRole) (*domain.Invitation, error)
	SetInvitationStatus(ctx context.Context, invitationID string, status domain.InvitationStatus) error
	// ListPendingInvitationsForEmail matches by the caller's email with
	// status pending, with the business name joined in.
	ListPendingInvitationsForEmail(ctx context.Context, email string) ([]domain.Invitation, error)
}

// ProfileGateway covers the profiles table.
type ProfileGateway interface {
	UpsertProfile(ctx context.Context, p domain.Profile) error
	FindProfile(ctx context.Context, userID string) (*domain.Profile, error)
	// ListProfiles is the batched lookup used to denormalize member display
	// identity during sync.
	ListProfiles(ctx context.Context, userIDs []string) ([]domain.Profile, error)
	SetLastSelectedBusiness(ctx context.Context, userID, businessID string) error
}

// CurrencyGateway covers the global read-only currency reference table.
type CurrencyGateway interface {
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// Reauthenticator verifies the caller's password with the auth collaborator.
// Ownership transfer is gated on it.
type Reauthenticator interface {
	ReauthenticatePassword(ctx context.Context, email, password string) error
}

// Gateways bundles every gateway port for service wiring.
type Gateways struct {
	Businesses   BusinessGateway
	Books        BookGateway
	Transactions TransactionGateway
	Lookups      LookupGateway
	Memberships  MembershipGateway
	Invitations  InvitationGateway
	Profiles     ProfileGateway
	Currencies   CurrencyGateway
	Reauth       Reauthenticator
}
