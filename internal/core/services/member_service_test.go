package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finotbook/cashbook/internal/apperrors"
	"github.com/finotbook/cashbook/internal/core/domain"
	"github.com/finotbook/cashbook/internal/core/services"
	"github.com/finotbook/cashbook/internal/dto"
	"github.com/finotbook/cashbook/internal/replica"
)

// MockSyncSvc stubs the full-sync orchestrator for member flows that
// trigger a follow-up sync.
type MockSyncSvc struct {
	mock.Mock
}

func (m *MockSyncSvc) SyncAll(ctx context.Context, who domain.Identity) error {
	args := m.Called(ctx, who)
	return args.Error(0)
}

func (m *MockSyncSvc) InProgress() bool {
	args := m.Called()
	return args.Bool(0)
}

type MemberServiceTestSuite struct {
	suite.Suite
	gw      *mockGateways
	store   *replica.Store
	sync    *MockSyncSvc
	service *services.MemberService
	who     domain.Identity
}

func (s *MemberServiceTestSuite) SetupTest() {
	s.gw = newMockGateways()
	s.store = replica.NewStore(replica.NewBus(), nil, nil)
	s.sync = new(MockSyncSvc)
	s.service = services.NewMemberService(s.store, s.gw.bundle(), s.sync, func() {})
	s.who = domain.Identity{UserID: "me", Email: "me@example.com", FullName: "Me User"}
}

func (s *MemberServiceTestSuite) seed(fn func(tx *replica.Tx)) {
	err := s.store.RunExclusive(context.Background(), func(tx *replica.Tx) error {
		fn(tx)
		return nil
	})
	s.Require().NoError(err)
}

func (s *MemberServiceTestSuite) TestInviteMember_Success() {
	ctx := context.Background()
	s.seed(func(tx *replica.Tx) {
		tx.PutBusinessMember(domain.BusinessMember{UserID: "me", BusinessID: "biz-1", Role: domain.RoleAdmin})
	})

	inv := &domain.Invitation{InvitationID: "i1", BusinessID: "biz-1", Email: "new@example.com", Role: domain.RoleDataOperator, Status: domain.InvitationPending}
	s.gw.invitations.On("InsertInvitation", ctx, "biz-1", "new@example.com", domain.RoleDataOperator).Return(inv, nil).Once()

	err := s.service.InviteMember(ctx, s.who, "biz-1", dto.InviteMemberRequest{Email: "new@example.com", Role: "data_operator"})
	s.Require().NoError(err)
	s.gw.invitations.AssertExpectations(s.T())
}

func (s *MemberServiceTestSuite) TestInviteMember_DuplicateGetsSpecificMessage() {
	ctx := context.Background()
	s.seed(func(tx *replica.Tx) {
		tx.PutBusinessMember(domain.BusinessMember{UserID: "me", BusinessID: "biz-1", Role: domain.RoleOwner})
	})

	s.gw.invitations.On("InsertInvitation", ctx, "biz-1", "new@example.com", domain.RoleAdmin).Return(nil, apperrors.ErrDuplicate).Once()

	err := s.service.InviteMember(ctx, s.who, "biz-1", dto.InviteMemberRequest{Email: "new@example.com", Role: "admin"})
	s.Require().ErrorIs(err, apperrors.ErrDuplicate)
	s.Contains(err.Error(), "already been sent")
}

func (s *MemberServiceTestSuite) TestRemoveMember_OwnerCannotBeRemoved() {
	s.seed(func(tx *replica.Tx) {
		tx.PutBusinessMember(domain.BusinessMember{UserID: "me", BusinessID: "biz-1", Role: domain.RoleAdmin})
		tx.PutBusinessMember(domain.BusinessMember{UserID: "boss", BusinessID: "biz-1", Role: domain.RoleOwner})
	})

	err := s.service.RemoveMember(context.Background(), s.who, "biz-1", "boss")
	s.Require().ErrorIs(err, apperrors.ErrValidation)
	s.gw.memberships.AssertNotCalled(s.T(), "DeleteBusinessMember", mock.Anything, mock.Anything, mock.Anything)
}

func (s *MemberServiceTestSuite) TestRemoveMember_Success() {
	ctx := context.Background()
	s.seed(func(tx *replica.Tx) {
		tx.PutBusinessMember(domain.BusinessMember{UserID: "me", BusinessID: "biz-1", Role: domain.RoleOwner})
		tx.PutBusinessMember(domain.BusinessMember{UserID: "other", BusinessID: "biz-1", Role: domain.RoleDataOperator})
	})

	s.gw.memberships.On("DeleteBusinessMember", ctx, "biz-1", "other").Return(nil).Once()

	s.Require().NoError(s.service.RemoveMember(ctx, s.who, "biz-1", "other"))
	_, ok := s.store.MemberRole("biz-1", "other")
	s.False(ok)
}

func (s *MemberServiceTestSuite) TestAcceptInvitation_JoinsAndResyncs() {
	ctx := context.Background()
	s.seed(func(tx *replica.Tx) {
		tx.PutInvitation(domain.Invitation{
			InvitationID: "i1", BusinessID: "biz-1", Email: "me@example.com",
			Role: domain.RoleDataOperator, Status: domain.InvitationPending,
		})
	})

	s.gw.memberships.On("InsertBusinessMember", ctx, "biz-1", "me", domain.RoleDataOperator).Return(nil).Once()
	s.gw.invitations.On("SetInvitationStatus", ctx, "i1", domain.InvitationAccepted).Return(nil).Once()
	s.sync.On("SyncAll", ctx, s.who).Return(nil).Once()

	s.Require().NoError(s.service.AcceptInvitation(ctx, s.who, "i1"))

	_, ok := s.store.Invitation("i1")
	s.False(ok, "accepted invitation leaves the local pending list")
	s.sync.AssertExpectations(s.T())
}

func (s *MemberServiceTestSuite) TestAcceptInvitation_AlreadyMemberTolerated() {
	ctx := context.Background()
	s.seed(func(tx *replica.Tx) {
		tx.PutInvitation(domain.Invitation{
			InvitationID: "i1", BusinessID: "biz-1", Email: "me@example.com",
			Role: domain.RoleAdmin, Status: domain.InvitationPending,
		})
	})

	s.gw.memberships.On("InsertBusinessMember", ctx, "biz-1", "me", domain.RoleAdmin).Return(apperrors.ErrDuplicate).Once()
	s.gw.invitations.On("SetInvitationStatus", ctx, "i1", domain.InvitationAccepted).Return(nil).Once()
	s.sync.On("SyncAll", ctx, s.who).Return(nil).Once()

	s.Require().NoError(s.service.AcceptInvitation(ctx, s.who, "i1"))
}

func (s *MemberServiceTestSuite) TestAcceptInvitation_NotPending() {
	s.seed(func(tx *replica.Tx) {
		tx.PutInvitation(domain.Invitation{InvitationID: "i1", Status: domain.InvitationDeclined})
	})

	err := s.service.AcceptInvitation(context.Background(), s.who, "i1")
	s.Require().ErrorIs(err, apperrors.ErrConflict)
}

func (s *MemberServiceTestSuite) TestAcceptInvitation_Unknown() {
	err := s.service.AcceptInvitation(context.Background(), s.who, "missing")
	s.Require().ErrorIs(err, apperrors.ErrNotFound)
}

func (s *MemberServiceTestSuite) TestDeclineInvitation() {
	ctx := context.Background()
	s.seed(func(tx *replica.Tx) {
		tx.PutInvitation(domain.Invitation{InvitationID: "i1", Status: domain.InvitationPending})
	})

	s.gw.invitations.On("SetInvitationStatus", ctx, "i1", domain.InvitationDeclined).Return(nil).Once()

	s.Require().NoError(s.service.DeclineInvitation(ctx, s.who, "i1"))
	_, ok := s.store.Invitation("i1")
	s.False(ok)
	s.sync.AssertNotCalled(s.T(), "SyncAll", mock.Anything, mock.Anything)
}

func (s *MemberServiceTestSuite) TestBookMemberLinks() {
	ctx := context.Background()
	s.gw.memberships.On("InsertBookMember", ctx, "book-1", "other").Return(nil).Once()
	s.gw.memberships.On("DeleteBookMember", ctx, "book-1", "other").Return(nil).Once()

	s.Require().NoError(s.service.AddBookMember(ctx, s.who, "book-1", "other"))
	s.Len(s.store.BookMembersByBook("book-1"), 1)

	s.Require().NoError(s.service.RemoveBookMember(ctx, s.who, "book-1", "other"))
	s.Empty(s.store.BookMembersByBook("book-1"))
}

func TestMemberServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MemberServiceTestSuite))
}
