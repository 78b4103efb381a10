package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finotbook/cashbook/internal/apperrors"
	"github.com/finotbook/cashbook/internal/core/domain"
	portsrepo "github.com/finotbook/cashbook/internal/core/ports/repositories"
	portssvc "github.com/finotbook/cashbook/internal/core/ports/services"
	"github.com/finotbook/cashbook/internal/dto"
	"github.com/finotbook/cashbook/internal/replica"
)

// MemberService coordinates memberships and invitations.
type MemberService struct {
	BaseService
	gw   portsrepo.Gateways
	sync portssvc.SyncSvc
}

var _ portssvc.MemberSvc = (*MemberService)(nil)

// NewMemberService creates a new member service.
func NewMemberService(store *replica.Store, gw portsrepo.Gateways, sync portssvc.SyncSvc, resync func()) *MemberService {
	return &MemberService{
		BaseService: BaseService{Replica: store, Resync: resync},
		gw:          gw,
		sync:        sync,
	}
}

// InviteMember records a pending invitation for the email address. One
// pending invitation per email and business; a second attempt is rejected
// with a distinct message.
func (s *MemberService) InviteMember(ctx context.Context, who domain.Identity, businessID string, req dto.InviteMemberRequest) error {
	if err := s.AuthorizeMember(ctx, who.UserID, businessID, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return err
	}

	if _, err := s.gw.Invitations.InsertInvitation(ctx, businessID, req.Email, domain.MemberRole(req.Role)); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return fmt.Errorf("%w: an invitation has already been sent to this user for this business", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to send invitation: %w", err)
	}

	s.LogInfo(ctx, "Invitation sent", slog.String("business_id", businessID), slog.String("email", req.Email))
	return nil
}

// RemoveMember removes a user from the business. The owner cannot be
// removed; ownership moves only through the transfer procedure.
func (s *MemberService) RemoveMember(ctx context.Context, who domain.Identity, businessID, userID string) error {
	if err := s.AuthorizeMember(ctx, who.UserID, businessID, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return err
	}
	if role, ok := s.Replica.MemberRole(businessID, userID); ok && role == domain.RoleOwner {
		return fmt.Errorf("%w: the business owner cannot be removed", apperrors.ErrValidation)
	}

	if err := s.gw.Memberships.DeleteBusinessMember(ctx, businessID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	s.MirrorConfirmed(ctx, "remove member", func(tx *replica.Tx) error {
		tx.DeleteBusinessMember(businessID, userID)
		return nil
	})

	s.LogInfo(ctx, "Member removed", slog.String("business_id", businessID), slog.String("user_id", userID))
	return nil
}

// AddBookMember grants a business member access to a book.
func (s *MemberService) AddBookMember(ctx context.Context, who domain.Identity, bookID, userID string) error {
	if err := s.gw.Memberships.InsertBookMember(ctx, bookID, userID); err != nil {
		return fmt.Errorf("failed to add book member: %w", err)
	}

	s.MirrorConfirmed(ctx, "add book member", func(tx *replica.Tx) error {
		tx.PutBookMember(domain.BookMember{BookID: bookID, UserID: userID})
		return nil
	})
	return nil
}

// RemoveBookMember revokes a user's access to a book.
func (s *MemberService) RemoveBookMember(ctx context.Context, who domain.Identity, bookID, userID string) error {
	if err := s.gw.Memberships.DeleteBookMember(ctx, bookID, userID); err != nil {
		return fmt.Errorf("failed to remove book member: %w", err)
	}

	s.MirrorConfirmed(ctx, "remove book member", func(tx *replica.Tx) error {
		tx.DeleteBookMember(bookID, userID)
		return nil
	})
	return nil
}

// AcceptInvitation joins the caller to the inviting business with the
// invited role, flips the invitation to accepted, then runs a full sync so
// the newly authorized business data appears locally.
func (s *MemberService) AcceptInvitation(ctx context.Context, who domain.Identity, invitationID string) error {
	inv, ok := s.Replica.Invitation(invitationID)
	if !ok {
		return fmt.Errorf("%w: invitation %s", apperrors.ErrNotFound, invitationID)
	}
	if inv.Status != domain.InvitationPending {
		return fmt.Errorf("%w: invitation is no longer pending", apperrors.ErrConflict)
	}

	// A concurrent accept may have inserted the membership already; that is
	// not a failure.
	if err := s.gw.Memberships.InsertBusinessMember(ctx, inv.BusinessID, who.UserID, inv.Role); err != nil && !errors.Is(err, apperrors.ErrDuplicate) {
		return fmt.Errorf("failed to join business: %w", err)
	}

	if err := s.gw.Invitations.SetInvitationStatus(ctx, invitationID, domain.InvitationAccepted); err != nil {
		return fmt.Errorf("failed to update invitation: %w", err)
	}

	s.MirrorConfirmed(ctx, "accept invitation", func(tx *replica.Tx) error {
		tx.DeleteInvitation(invitationID)
		return nil
	})

	if err := s.sync.SyncAll(ctx, who); err != nil {
		s.LogError(ctx, err, "Sync after accepting invitation failed", slog.String("invitation_id", invitationID))
	}

	s.LogInfo(ctx, "Invitation accepted", slog.String("invitation_id", invitationID), slog.String("business_id", inv.BusinessID))
	return nil
}

// DeclineInvitation flips the invitation to declined and drops the local
// row.
func (s *MemberService) DeclineInvitation(ctx context.Context, who domain.Identity, invitationID string) error {
	if err := s.gw.Invitations.SetInvitationStatus(ctx, invitationID, domain.InvitationDeclined); err != nil {
		return fmt.Errorf("failed to decline invitation: %w", err)
	}

	s.MirrorConfirmed(ctx, "decline invitation", func(tx *replica.Tx) error {
		tx.DeleteInvitation(invitationID)
		return nil
	})

	s.LogInfo(ctx, "Invitation declined", slog.String("invitation_id", invitationID))
	return nil
}
