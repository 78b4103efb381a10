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
	"github.com/finotbook/cashbook/internal/dto"
	"github.com/finotbook/cashbook/internal/replica"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	gw      *mockGateways
	store   *replica.Store
	service *services.TransactionService
	who     domain.Identity
}

func (s *TransactionServiceTestSuite) SetupTest() {
	s.gw = newMockGateways()
	s.store = replica.NewStore(replica.NewBus(), nil, nil)
	s.service = services.NewTransactionService(s.store, s.gw.bundle(), func() {})
	s.who = domain.Identity{UserID: "me", Email: "me@example.com", FullName: "Token Name"}
}

// matchAuthor matches an outgoing transaction row by its stamped author.
func matchAuthor(userID, fullName string) any {
	return mock.MatchedBy(func(t domain.Transaction) bool {
		return t.UserID == userID && t.UserFullName == fullName
	})
}

func (s *TransactionServiceTestSuite) entryRequest(desc, amount string) dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{
		Date:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Type:        "credit",
	}
}

func (s *TransactionServiceTestSuite) TestAddTransaction_MirrorsConfirmedRow() {
	ctx := context.Background()
	confirmed := &domain.Transaction{
		TransactionID: "t1", BookID: "book-1", Description: "Morning sales",
		Amount: decimal.RequireFromString("100"), Type: domain.Credit,
		UserID: "me", UserEmail: "me@example.com", UserFullName: "Token Name",
		CreatedAt: time.Now(),
	}
	s.gw.transactions.On("InsertTransaction", ctx, matchAuthor("me", "Token Name")).Return(confirmed, nil).Once()

	txn, err := s.service.AddTransaction(ctx, s.who, "book-1", s.entryRequest("Morning sales", "100"))
	s.Require().NoError(err)
	s.Equal("t1", txn.TransactionID)

	mirrored, ok := s.store.Transaction("t1")
	s.Require().True(ok)
	s.Equal("Morning sales", mirrored.Description)
	s.gw.transactions.AssertExpectations(s.T())
}

func (s *TransactionServiceTestSuite) TestAddTransaction_AuthorNamePrefersSyncedProfile() {
	ctx := context.Background()
	err := s.store.RunExclusive(ctx, func(tx *replica.Tx) error {
		tx.PutProfile(domain.Profile{UserID: "me", FullName: "Profile Name"})
		return nil
	})
	s.Require().NoError(err)

	confirmed := &domain.Transaction{TransactionID: "t1", BookID: "book-1"}
	s.gw.transactions.On("InsertTransaction", ctx, matchAuthor("me", "Profile Name")).Return(confirmed, nil).Once()

	_, err = s.service.AddTransaction(ctx, s.who, "book-1", s.entryRequest("x", "1"))
	s.Require().NoError(err)
	s.gw.transactions.AssertExpectations(s.T())
}

func (s *TransactionServiceTestSuite) TestAddTransaction_RejectionLeavesReplicaUntouched() {
	ctx := context.Background()
	s.gw.transactions.On("InsertTransaction", ctx, mock.AnythingOfType("domain.Transaction")).Return(nil, apperrors.ErrValidation).Once()

	_, err := s.service.AddTransaction(ctx, s.who, "book-1", s.entryRequest("x", "1"))
	s.Require().ErrorIs(err, apperrors.ErrValidation)
	s.Empty(s.store.TransactionsByBook("book-1"))
}

func (s *TransactionServiceTestSuite) TestAddTransaction_BookBalanceStaysMirrored() {
	ctx := context.Background()
	err := s.store.RunExclusive(ctx, func(tx *replica.Tx) error {
		tx.PutBook(domain.Book{BookID: "book-1", BusinessID: "biz-1", Name: "Till", Balance: decimal.RequireFromString("250")})
		return nil
	})
	s.Require().NoError(err)

	confirmed := &domain.Transaction{
		TransactionID: "t1", BookID: "book-1", Description: "Morning sales",
		Amount: decimal.RequireFromString("100"), Type: domain.Credit,
	}
	s.gw.transactions.On("InsertTransaction", ctx, mock.AnythingOfType("domain.Transaction")).Return(confirmed, nil).Once()

	_, err = s.service.AddTransaction(ctx, s.who, "book-1", s.entryRequest("Morning sales", "100"))
	s.Require().NoError(err)

	// The book's balance is server-mirrored state; a confirmed entry does not
	// recompute it locally. The next full sync pulls the fresh value.
	book, ok := s.store.Book("book-1")
	s.Require().True(ok)
	s.True(book.Balance.Equal(decimal.RequireFromString("250")))
}

func (s *TransactionServiceTestSuite) TestBulkAddTransactions_AllOrNothing() {
	ctx := context.Background()
	req := dto.BulkCreateTransactionsRequest{Transactions: []dto.CreateTransactionRequest{
		s.entryRequest("row 1", "10"),
		s.entryRequest("row 2", "20"),
	}}

	s.gw.transactions.On("BulkInsertTransactions", ctx, mock.AnythingOfType("[]domain.Transaction")).Return(nil, apperrors.ErrValidation).Once()

	_, err := s.service.BulkAddTransactions(ctx, s.who, "book-1", req)
	s.Require().ErrorIs(err, apperrors.ErrValidation)
	s.Empty(s.store.TransactionsByBook("book-1"), "a rejected batch writes zero rows locally")
}

func (s *TransactionServiceTestSuite) TestBulkAddTransactions_MirrorsEveryConfirmedRow() {
	ctx := context.Background()
	req := dto.BulkCreateTransactionsRequest{Transactions: []dto.CreateTransactionRequest{
		s.entryRequest("row 1", "10"),
		s.entryRequest("row 2", "20"),
	}}
	confirmed := []domain.Transaction{
		{TransactionID: "t1", BookID: "book-1", Description: "row 1"},
		{TransactionID: "t2", BookID: "book-1", Description: "row 2"},
	}
	s.gw.transactions.On("BulkInsertTransactions", ctx, mock.AnythingOfType("[]domain.Transaction")).Return(confirmed, nil).Once()

	got, err := s.service.BulkAddTransactions(ctx, s.who, "book-1", req)
	s.Require().NoError(err)
	s.Len(got, 2)
	s.Len(s.store.TransactionsByBook("book-1"), 2)
}

func (s *TransactionServiceTestSuite) TestUpdateTransaction_CarriesAuthorNameForward() {
	ctx := context.Background()
	err := s.store.RunExclusive(ctx, func(tx *replica.Tx) error {
		tx.PutTransaction(domain.Transaction{TransactionID: "t1", BookID: "book-1", UserFullName: "Original Author"})
		return nil
	})
	s.Require().NoError(err)

	desc := "corrected"
	confirmed := &domain.Transaction{TransactionID: "t1", BookID: "book-1", Description: "corrected"}
	s.gw.transactions.On("UpdateTransaction", ctx, "t1", mock.AnythingOfType("domain.TransactionUpdate")).Return(confirmed, nil).Once()

	got, err := s.service.UpdateTransaction(ctx, s.who, "t1", dto.UpdateTransactionRequest{Description: &desc})
	s.Require().NoError(err)
	s.Equal("Original Author", got.UserFullName)

	mirrored, _ := s.store.Transaction("t1")
	s.Equal("corrected", mirrored.Description)
	s.Equal("Original Author", mirrored.UserFullName)
}

func (s *TransactionServiceTestSuite) TestDeleteTransaction() {
	ctx := context.Background()
	err := s.store.RunExclusive(ctx, func(tx *replica.Tx) error {
		tx.PutTransaction(domain.Transaction{TransactionID: "t1", BookID: "book-1"})
		return nil
	})
	s.Require().NoError(err)

	s.gw.transactions.On("DeleteTransaction", ctx, "t1").Return(nil).Once()

	s.Require().NoError(s.service.DeleteTransaction(ctx, s.who, "t1"))
	_, ok := s.store.Transaction("t1")
	s.False(ok)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
