package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/finotbook/cashbook/internal/core/domain"
	portsrepo "github.com/finotbook/cashbook/internal/core/ports/repositories"
)

// --- Mock BusinessGateway ---

type MockBusinessGateway struct {
	mock.Mock
}

func (m *MockBusinessGateway) InsertBusiness(ctx context.Context, name, currencyCode, ownerID string) (*domain.Business, error) {
	args := m.Called(ctx, name, currencyCode, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Business), args.Error(1)
}

func (m *MockBusinessGateway) UpdateBusiness(ctx context.Context, businessID string, upd domain.BusinessUpdate) (*domain.Business, error) {
	args := m.Called(ctx, businessID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Business), args.Error(1)
}

func (m *MockBusinessGateway) ListBusinessesForUser(ctx context.Context, userID string) ([]domain.Business, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Business), args.Error(1)
}

func (m *MockBusinessGateway) DeleteBusinessCascade(ctx context.Context, businessID string) error {
	args := m.Called(ctx, businessID)
	return args.Error(0)
}

func (m *MockBusinessGateway) TransferOwnership(ctx context.Context, businessID, newOwnerID string) error {
	args := m.Called(ctx, businessID, newOwnerID)
	return args.Error(0)
}

// --- Mock BookGateway ---

type MockBookGateway struct {
	mock.Mock
}

func (m *MockBookGateway) InsertBook(ctx context.Context, name, businessID, currencyCode, ownerID string) (*domain.Book, error) {
	args := m.Called(ctx, name, businessID, currencyCode, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *MockBookGateway) UpdateBook(ctx context.Context, bookID string, name, currencyCode *string) (*domain.Book, error) {
	args := m.Called(ctx, bookID, name, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *MockBookGateway) ListBooksWithBalance(ctx context.Context, userID string) ([]domain.Book, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Book), args.Error(1)
}

func (m *MockBookGateway) DeleteBookCascade(ctx context.Context, bookID string) error {
	args := m.Called(ctx, bookID)
	return args.Error(0)
}

func (m *MockBookGateway) DuplicateBook(ctx context.Context, bookID, newName, actingUserID string) (string, error) {
	args := m.Called(ctx, bookID, newName, actingUserID)
	return args.String(0), args.Error(1)
}

func (m *MockBookGateway) TransferBook(ctx context.Context, bookID, newBusinessID string) error {
	args := m.Called(ctx, bookID, newBusinessID)
	return args.Error(0)
}

func (m *MockBookGateway) InsertCustomField(ctx context.Context, bookID, fieldName string) (*domain.BookCustomField, error) {
	args := m.Called(ctx, bookID, fieldName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookCustomField), args.Error(1)
}

func (m *MockBookGateway) SetCustomFieldEnabled(ctx context.Context, fieldID string, enabled bool) (*domain.BookCustomField, error) {
	args := m.Called(ctx, fieldID, enabled)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookCustomField), args.Error(1)
}

func (m *MockBookGateway) SetCustomFieldRequired(ctx context.Context, fieldID string, required bool) (*domain.BookCustomField, error) {
	args := m.Called(ctx, fieldID, required)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookCustomField), args.Error(1)
}

func (m *MockBookGateway) DeleteCustomField(ctx context.Context, fieldID string) error {
	args := m.Called(ctx, fieldID)
	return args.Error(0)
}

func (m *MockBookGateway) ListCustomFieldsForBooks(ctx context.Context, bookIDs []string) ([]domain.BookCustomField, error) {
	args := m.Called(ctx, bookIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookCustomField), args.Error(1)
}

// --- Mock TransactionGateway ---

type MockTransactionGateway struct {
	mock.Mock
}

func (m *MockTransactionGateway) InsertTransaction(ctx context.Context, t domain.Transaction) (*domain.Transaction, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionGateway) BulkInsertTransactions(ctx context.Context, ts []domain.Transaction) ([]domain.Transaction, error) {
	args := m.Called(ctx, ts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionGateway) UpdateTransaction(ctx context.Context, transactionID string, upd domain.TransactionUpdate) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionGateway) DeleteTransaction(ctx context.Context, transactionID string) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

func (m *MockTransactionGateway) ListTransactionsForBooks(ctx context.Context, bookIDs []string) ([]domain.Transaction, error) {
	args := m.Called(ctx, bookIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// --- Mock LookupGateway ---

type MockLookupGateway struct {
	mock.Mock
}

func (m *MockLookupGateway) InsertCategory(ctx context.Context, businessID, name string) (*domain.Category, error) {
	args := m.Called(ctx, businessID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockLookupGateway) DeleteCategory(ctx context.Context, categoryID string) error {
	args := m.Called(ctx, categoryID)
	return args.Error(0)
}

func (m *MockLookupGateway) ListCategoriesForBusinesses(ctx context.Context, businessIDs []string) ([]domain.Category, error) {
	args := m.Called(ctx, businessIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockLookupGateway) InsertPaymentMethod(ctx context.Context, businessID, name string) (*domain.PaymentMethod, error) {
	args := m.Called(ctx, businessID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentMethod), args.Error(1)
}

func (m *MockLookupGateway) DeletePaymentMethod(ctx context.Context, paymentMethodID string) error {
	args := m.Called(ctx, paymentMethodID)
	return args.Error(0)
}

func (m *MockLookupGateway) ListPaymentMethodsForBusinesses(ctx context.Context, businessIDs []string) ([]domain.PaymentMethod, error) {
	args := m.Called(ctx, businessIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentMethod), args.Error(1)
}

func (m *MockLookupGateway) InsertContact(ctx context.Context, businessID, name, phoneNumber string) (*domain.Contact, error) {
	args := m.Called(ctx, businessID, name, phoneNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contact), args.Error(1)
}

func (m *MockLookupGateway) DeleteContact(ctx context.Context, contactID string) error {
	args := m.Called(ctx, contactID)
	return args.Error(0)
}

func (m *MockLookupGateway) ListContactsForBusinesses(ctx context.Context, businessIDs []string) ([]domain.Contact, error) {
	args := m.Called(ctx, businessIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contact), args.Error(1)
}

// --- Mock MembershipGateway ---

type MockMembershipGateway struct {
	mock.Mock
}

func (m *MockMembershipGateway) InsertBusinessMember(ctx context.Context, businessID, userID string, role domain.MemberRole) error {
	args := m.Called(ctx, businessID, userID, role)
	return args.Error(0)
}

func (m *MockMembershipGateway) DeleteBusinessMember(ctx context.Context, businessID, userID string) error {
	args := m.Called(ctx, businessID, userID)
	return args.Error(0)
}

func (m *MockMembershipGateway) ListBusinessMembersForBusinesses(ctx context.Context, businessIDs []string) ([]domain.BusinessMember, error) {
	args := m.Called(ctx, businessIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BusinessMember), args.Error(1)
}

func (m *MockMembershipGateway) InsertBookMember(ctx context.Context, bookID, userID string) error {
	args := m.Called(ctx, bookID, userID)
	return args.Error(0)
}

func (m *MockMembershipGateway) DeleteBookMember(ctx context.Context, bookID, userID string) error {
	args := m.Called(ctx, bookID, userID)
	return args.Error(0)
}

func (m *MockMembershipGateway) ListBookMembersForBooks(ctx context.Context, bookIDs []string) ([]domain.BookMember, error) {
	args := m.Called(ctx, bookIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookMember), args.Error(1)
}

// --- Mock InvitationGateway ---

type MockInvitationGateway struct {
	mock.Mock
}

func (m *MockInvitationGateway) InsertInvitation(ctx context.Context, businessID, email string, role domain.MemberRole) (*domain.Invitation, error) {
	args := m.Called(ctx, businessID, email, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invitation), args.Error(1)
}

func (m *MockInvitationGateway) SetInvitationStatus(ctx context.Context, invitationID string, status domain.InvitationStatus) error {
	args := m.Called(ctx, invitationID, status)
	return args.Error(0)
}

func (m *MockInvitationGateway) ListPendingInvitationsForEmail(ctx context.Context, email string) ([]domain.Invitation, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invitation), args.Error(1)
}

// --- Mock ProfileGateway ---

type MockProfileGateway struct {
	mock.Mock
}

func (m *MockProfileGateway) UpsertProfile(ctx context.Context, p domain.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProfileGateway) FindProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileGateway) ListProfiles(ctx context.Context, userIDs []string) ([]domain.Profile, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Profile), args.Error(1)
}

func (m *MockProfileGateway) SetLastSelectedBusiness(ctx context.Context, userID, businessID string) error {
	args := m.Called(ctx, userID, businessID)
	return args.Error(0)
}

// --- Mock CurrencyGateway ---

type MockCurrencyGateway struct {
	mock.Mock
}

func (m *MockCurrencyGateway) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

// --- Mock Reauthenticator ---

type MockReauthenticator struct {
	mock.Mock
}

func (m *MockReauthenticator) ReauthenticatePassword(ctx context.Context, email, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

// --- Shared fixture ---

// mockGateways bundles one mock per gateway port, pre-wired into the
// Gateways struct the services consume.
type mockGateways struct {
	businesses   *MockBusinessGateway
	books        *MockBookGateway
	transactions *MockTransactionGateway
	lookups      *MockLookupGateway
	memberships  *MockMembershipGateway
	invitations  *MockInvitationGateway
	profiles     *MockProfileGateway
	currencies   *MockCurrencyGateway
	reauth       *MockReauthenticator
}

func newMockGateways() *mockGateways {
	return &mockGateways{
		businesses:   new(MockBusinessGateway),
		books:        new(MockBookGateway),
		transactions: new(MockTransactionGateway),
		lookups:      new(MockLookupGateway),
		memberships:  new(MockMembershipGateway),
		invitations:  new(MockInvitationGateway),
		profiles:     new(MockProfileGateway),
		currencies:   new(MockCurrencyGateway),
		reauth:       new(MockReauthenticator),
	}
}

func (g *mockGateways) bundle() portsrepo.Gateways {
	return portsrepo.Gateways{
		Businesses:   g.businesses,
		Books:        g.books,
		Transactions: g.transactions,
		Lookups:      g.lookups,
		Memberships:  g.memberships,
		Invitations:  g.invitations,
		Profiles:     g.profiles,
		Currencies:   g.currencies,
		Reauth:       g.reauth,
	}
}
