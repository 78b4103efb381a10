package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finotbook/cashbook/internal/apperrors"
	"github.com/finotbook/cashbook/internal/core/domain"
	"github.com/finotbook/cashbook/internal/core/services"
	"github.com/finotbook/cashbook/internal/replica"
)

type SyncServiceTestSuite struct {
	suite.Suite
	gw      *mockGateways
	store   *replica.Store
	service *services.SyncService
	who     domain.Identity
}

func (s *SyncServiceTestSuite) SetupTest() {
	s.gw = newMockGateways()
	s.store = replica.NewStore(replica.NewBus(), nil, nil)
	s.service = services.NewSyncService(s.store, s.gw.bundle())
	s.who = domain.Identity{UserID: "me", Email: "me@example.com", FullName: "Me User"}
}

// expectFullDataset wires every pull the orchestrator makes for a dataset of
// one business with one book.
func (s *SyncServiceTestSuite) expectFullDataset() {
	s.gw.currencies.On("ListCurrencies", mock.Anything).
		Return([]domain.Currency{{Code: "USD", Name: "US Dollar", Symbol: "$"}}, nil)
	s.gw.profiles.On("FindProfile", mock.Anything, "me").
		Return(&domain.Profile{UserID: "me", Email: "me@example.com", FullName: "Me User"}, nil)
	s.gw.businesses.On("ListBusinessesForUser", mock.Anything, "me").
		Return([]domain.Business{{BusinessID: "biz-1", Name: "Corner Shop", OwnerID: "me", CurrencyCode: "USD"}}, nil)
	s.gw.memberships.On("ListBusinessMembersForBusinesses", mock.Anything, []string{"biz-1"}).
		Return([]domain.BusinessMember{
			{UserID: "me", BusinessID: "biz-1", Role: domain.RoleOwner},
			{UserID: "other", BusinessID: "biz-1", Role: domain.RoleDataOperator},
		}, nil)
	s.gw.profiles.On("ListProfiles", mock.Anything, []string{"me", "other"}).
		Return([]domain.Profile{
			{UserID: "me", Email: "me@example.com", FullName: "Me User"},
			{UserID: "other", Email: "other@example.com", FullName: "Other User"},
		}, nil)
	s.gw.books.On("ListBooksWithBalance", mock.Anything, "me").
		Return([]domain.Book{{BookID: "book-1", BusinessID: "biz-1", Name: "Till", CurrencyCode: "USD", Balance: decimal.RequireFromString("70")}}, nil)
	s.gw.lookups.On("ListCategoriesForBusinesses", mock.Anything, []string{"biz-1"}).
		Return([]domain.Category{{CategoryID: "cat-1", BusinessID: "biz-1", Name: "Sales"}}, nil)
	s.gw.lookups.On("ListPaymentMethodsForBusinesses", mock.Anything, []string{"biz-1"}).
		Return([]domain.PaymentMethod{{PaymentMethodID: "pm-1", BusinessID: "biz-1", Name: "Cash"}}, nil)
	s.gw.lookups.On("ListContactsForBusinesses", mock.Anything, []string{"biz-1"}).
		Return([]domain.Contact{{ContactID: "con-1", BusinessID: "biz-1", Name: "Supplier"}}, nil)
	s.gw.invitations.On("ListPendingInvitationsForEmail", mock.Anything, "me@example.com").
		Return([]domain.Invitation{}, nil)
	s.gw.transactions.On("ListTransactionsForBooks", mock.Anything, []string{"book-1"}).
		Return([]domain.Transaction{{
			TransactionID: "t1", BookID: "book-1", UserID: "other",
			Amount: decimal.RequireFromString("70"), Type: domain.Credit,
			Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		}}, nil)
	s.gw.books.On("ListCustomFieldsForBooks", mock.Anything, []string{"book-1"}).
		Return([]domain.BookCustomField{}, nil)
	s.gw.memberships.On("ListBookMembersForBooks", mock.Anything, []string{"book-1"}).
		Return([]domain.BookMember{{BookID: "book-1", UserID: "me"}}, nil)
}

func (s *SyncServiceTestSuite) TestSyncAll_FullDataset() {
	s.expectFullDataset()

	err := s.service.SyncAll(context.Background(), s.who)
	s.Require().NoError(err)

	business, ok := s.store.Business("biz-1")
	s.Require().True(ok)
	s.Equal("Corner Shop", business.Name)

	book, ok := s.store.Book("book-1")
	s.Require().True(ok)
	s.True(book.Balance.Equal(decimal.RequireFromString("70")))

	members := s.store.MembersByBusiness("biz-1")
	s.Require().Len(members, 2)
	byUser := map[string]domain.BusinessMember{}
	for _, m := range members {
		byUser[m.UserID] = m
	}
	s.Equal("other@example.com", byUser["other"].Email)
	s.Equal("Other User", byUser["other"].FullName)

	txns := s.store.TransactionsByBook("book-1")
	s.Require().Len(txns, 1)
	s.Equal("Other User", txns[0].UserFullName, "author name is denormalized from profiles")

	s.Len(s.store.BookMembersByBook("book-1"), 1)
	s.Len(s.store.CategoriesByBusiness("biz-1"), 1)
	s.Len(s.store.Currencies(), 1)
}

func (s *SyncServiceTestSuite) TestSyncAll_Idempotent() {
	s.expectFullDataset()

	s.Require().NoError(s.service.SyncAll(context.Background(), s.who))
	first := s.store.Export()
	s.Require().NoError(s.service.SyncAll(context.Background(), s.who))

	s.Equal(first, s.store.Export(), "a second run over the same remote state changes nothing")
}

func (s *SyncServiceTestSuite) TestSyncAll_MissingMemberProfileFallsBack() {
	s.expectFullDataset()
	// Replace the batched profile lookup: "other" has no profile row.
	s.gw.profiles.ExpectedCalls = nil
	s.gw.profiles.On("FindProfile", mock.Anything, "me").
		Return(&domain.Profile{UserID: "me", Email: "me@example.com"}, nil)
	s.gw.profiles.On("ListProfiles", mock.Anything, []string{"me", "other"}).
		Return([]domain.Profile{{UserID: "me", Email: "me@example.com", FullName: "Me User"}}, nil)

	s.Require().NoError(s.service.SyncAll(context.Background(), s.who))

	members := s.store.MembersByBusiness("biz-1")
	s.Require().Len(members, 2)
	var other domain.BusinessMember
	for _, m := range members {
		if m.UserID == "other" {
			other = m
		}
	}
	s.Equal("Unknown Email", other.Email)
	s.Empty(other.FullName)
}

func (s *SyncServiceTestSuite) TestSyncAll_KeepsRowsConfirmedDuringThePull() {
	// Rows mirrored from optimistic writes may land between the remote list
	// fetch and the local commit; the commit upserts the pulled rows and must
	// not sweep anything else away.
	err := s.store.RunExclusive(context.Background(), func(tx *replica.Tx) error {
		tx.PutTransaction(domain.Transaction{TransactionID: "t-fresh", BookID: "book-1", Description: "confirmed mid-sync"})
		tx.PutBusinessMember(domain.BusinessMember{UserID: "third", BusinessID: "biz-1", Role: domain.RoleAdmin})
		return nil
	})
	s.Require().NoError(err)

	s.expectFullDataset()
	s.Require().NoError(s.service.SyncAll(context.Background(), s.who))

	_, ok := s.store.Transaction("t-fresh")
	s.True(ok, "a row absent from the pull must survive the commit")
	_, ok = s.store.Transaction("t1")
	s.True(ok)
	s.Len(s.store.MembersByBusiness("biz-1"), 3)
}

func (s *SyncServiceTestSuite) TestSyncAll_NoBusinessesWipesTenantData() {
	err := s.store.RunExclusive(context.Background(), func(tx *replica.Tx) error {
		tx.PutBusiness(domain.Business{BusinessID: "biz-1"})
		tx.PutBook(domain.Book{BookID: "book-1", BusinessID: "biz-1"})
		tx.PutTransaction(domain.Transaction{TransactionID: "t1", BookID: "book-1"})
		tx.PutProfile(domain.Profile{UserID: "me", Email: "me@example.com"})
		tx.PutProfile(domain.Profile{UserID: "other", Email: "other@example.com"})
		return nil
	})
	s.Require().NoError(err)

	s.gw.currencies.On("ListCurrencies", mock.Anything).
		Return([]domain.Currency{{Code: "USD"}}, nil)
	s.gw.profiles.On("FindProfile", mock.Anything, "me").
		Return(&domain.Profile{UserID: "me", Email: "me@example.com"}, nil)
	s.gw.businesses.On("ListBusinessesForUser", mock.Anything, "me").
		Return([]domain.Business{}, nil)

	s.Require().NoError(s.service.SyncAll(context.Background(), s.who))

	s.Empty(s.store.Businesses())
	_, ok := s.store.Transaction("t1")
	s.False(ok)
	_, ok = s.store.Profile("me")
	s.True(ok, "caller profile survives the wipe")
	_, ok = s.store.Profile("other")
	s.False(ok)
	s.Len(s.store.Currencies(), 1)
}

func (s *SyncServiceTestSuite) TestSyncAll_AbortKeepsCommittedCollections() {
	err := s.store.RunExclusive(context.Background(), func(tx *replica.Tx) error {
		tx.PutBusiness(domain.Business{BusinessID: "biz-old", Name: "Stale But Present"})
		return nil
	})
	s.Require().NoError(err)

	s.gw.currencies.On("ListCurrencies", mock.Anything).
		Return([]domain.Currency{{Code: "USD"}}, nil)
	s.gw.profiles.On("FindProfile", mock.Anything, "me").
		Return(nil, apperrors.ErrNotFound)
	s.gw.businesses.On("ListBusinessesForUser", mock.Anything, "me").
		Return(nil, apperrors.ErrUnavailable)

	err = s.service.SyncAll(context.Background(), s.who)
	s.Require().ErrorIs(err, apperrors.ErrUnavailable)

	// Collections committed before the failure stay; nothing is wiped.
	s.Len(s.store.Currencies(), 1)
	_, ok := s.store.Business("biz-old")
	s.True(ok)
}

func (s *SyncServiceTestSuite) TestSyncAll_ProfileNotFoundIsTolerated() {
	s.expectFullDataset()
	s.gw.profiles.ExpectedCalls = nil
	s.gw.profiles.On("FindProfile", mock.Anything, "me").
		Return(nil, apperrors.ErrNotFound)
	s.gw.profiles.On("ListProfiles", mock.Anything, mock.Anything).
		Return([]domain.Profile{}, nil)

	s.Require().NoError(s.service.SyncAll(context.Background(), s.who))
	_, ok := s.store.Business("biz-1")
	s.True(ok)
}

func TestSyncServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SyncServiceTestSuite))
}
