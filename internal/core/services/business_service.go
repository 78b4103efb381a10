package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/finotbook/cashbook/internal/apperrors"
	"github.com/finotbook/cashbook/internal/core/domain"
	portsrepo "github.com/finotbook/cashbook/internal/core/ports/repositories"
	portssvc "github.com/finotbook/cashbook/internal/core/ports/services"
	"github.com/finotbook/cashbook/internal/dto"
	"github.com/finotbook/cashbook/internal/replica"
)

// BusinessService coordinates business-level mutations. Every write goes to
// the remote store first; only server-confirmed rows reach the replica.
type BusinessService struct {
	BaseService
	gw portsrepo.Gateways
}

var _ portssvc.BusinessSvc = (*BusinessService)(nil)

// NewBusinessService creates a new business service.
func NewBusinessService(store *replica.Store, gw portsrepo.Gateways, resync func()) *BusinessService {
	return &BusinessService{
		BaseService: BaseService{Replica: store, Resync: resync},
		gw:          gw,
	}
}

// CreateBusiness creates a business with the caller as sole owner. The
// caller's profile row is upserted first so the membership join resolves a
// display identity, and the new business becomes the caller's selection.
func (s *BusinessService) CreateBusiness(ctx context.Context, who domain.Identity, req dto.CreateBusinessRequest) (*domain.Business, error) {
	if err := s.gw.Profiles.UpsertProfile(ctx, domain.Profile{
		UserID:   who.UserID,
		Email:    who.Email,
		FullName: who.FullName,
	}); err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}

	business, err := s.gw.Businesses.InsertBusiness(ctx, req.Name, req.Currency, who.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to create business: %w", err)
	}

	if err := s.gw.Memberships.InsertBusinessMember(ctx, business.BusinessID, who.UserID, domain.RoleOwner); err != nil {
		return nil, fmt.Errorf("failed to create owner membership: %w", err)
	}

	s.MirrorConfirmed(ctx, "create business", func(tx *replica.Tx) error {
		tx.PutBusiness(*business)
		tx.PutBusinessMember(domain.BusinessMember{
			UserID:     who.UserID,
			BusinessID: business.BusinessID,
			Email:      who.Email,
			FullName:   who.FullName,
			Role:       domain.RoleOwner,
		})
		return nil
	})

	if err := s.SwitchBusiness(ctx, who, business.BusinessID); err != nil {
		s.LogError(ctx, err, "Failed to select newly created business", slog.String("business_id", business.BusinessID))
	}

	s.LogInfo(ctx, "Business created", slog.String("business_id", business.BusinessID), slog.String("name", business.Name))
	return business, nil
}

// UpdateBusiness applies a partial profile update and mirrors the full
// returned row.
func (s *BusinessService) UpdateBusiness(ctx context.Context, who domain.Identity, businessID string, req dto.UpdateBusinessRequest) (*domain.Business, error) {
	if err := s.AuthorizeMember(ctx, who.UserID, businessID, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return nil, err
	}

	business, err := s.gw.Businesses.UpdateBusiness(ctx, businessID, req.ToDomain())
	if err != nil {
		return nil, fmt.Errorf("failed to update business: %w", err)
	}

	s.MirrorConfirmed(ctx, "update business", func(tx *replica.Tx) error {
		tx.PutBusiness(*business)
		return nil
	})
	return business, nil
}

// DeleteBusiness runs the remote cascade procedure, then sweeps the business
// and every descendant row out of the replica in one exclusive block.
func (s *BusinessService) DeleteBusiness(ctx context.Context, who domain.Identity, businessID string) error {
	if err := s.AuthorizeMember(ctx, who.UserID, businessID, domain.RoleOwner); err != nil {
		return err
	}

	if err := s.gw.Businesses.DeleteBusinessCascade(ctx, businessID); err != nil {
		return fmt.Errorf("failed to delete business: %w", err)
	}

	s.MirrorConfirmed(ctx, "delete business", func(tx *replica.Tx) error {
		sweepBusiness(tx, businessID)
		return nil
	})

	s.LogInfo(ctx, "Business deleted", slog.String("business_id", businessID))
	return nil
}

// sweepBusiness removes a business and every row scoped to it, directly or
// through one of its books.
func sweepBusiness(tx *replica.Tx, businessID string) {
	for _, bookID := range tx.BookIDsByBusiness(businessID) {
		tx.DeleteTransactionsByBook(bookID)
		tx.DeleteBookMembersByBook(bookID)
		tx.DeleteCustomFieldsByBook(bookID)
		tx.DeleteBook(bookID)
	}
	tx.DeleteBusinessMembersByBusiness(businessID)
	tx.DeleteCategoriesByBusiness(businessID)
	tx.DeletePaymentMethodsByBusiness(businessID)
	tx.DeleteContactsByBusiness(businessID)
	tx.DeleteBusiness(businessID)
}

// TransferOwnership hands the business to another member. The caller proves
// their identity with a password check first; the role swap itself happens
// in a single remote procedure so the business never has zero or two owners.
func (s *BusinessService) TransferOwnership(ctx context.Context, who domain.Identity, businessID string, req dto.TransferOwnershipRequest) error {
	if err := s.AuthorizeMember(ctx, who.UserID, businessID, domain.RoleOwner); err != nil {
		return err
	}

	if err := s.gw.Reauth.ReauthenticatePassword(ctx, who.Email, req.Password); err != nil {
		return fmt.Errorf("%w: password confirmation failed", apperrors.ErrForbidden)
	}

	if err := s.gw.Businesses.TransferOwnership(ctx, businessID, req.NewOwnerID); err != nil {
		return fmt.Errorf("failed to transfer ownership: %w", err)
	}

	business, haveBusiness := s.Replica.Business(businessID)
	s.MirrorConfirmed(ctx, "transfer ownership", func(tx *replica.Tx) error {
		if haveBusiness {
			business.OwnerID = req.NewOwnerID
			tx.PutBusiness(business)
		}
		tx.SetBusinessMemberRole(businessID, who.UserID, domain.RoleAdmin)
		tx.SetBusinessMemberRole(businessID, req.NewOwnerID, domain.RoleOwner)
		return nil
	})

	s.LogInfo(ctx, "Business ownership transferred", slog.String("business_id", businessID), slog.String("new_owner_id", req.NewOwnerID))
	return nil
}

// SwitchBusiness records the caller's selected business on their profile so
// the next session restores it.
func (s *BusinessService) SwitchBusiness(ctx context.Context, who domain.Identity, businessID string) error {
	if err := s.AuthorizeMember(ctx, who.UserID, businessID, domain.RoleOwner, domain.RoleAdmin, domain.RoleDataOperator); err != nil {
		return err
	}

	if err := s.gw.Profiles.SetLastSelectedBusiness(ctx, who.UserID, businessID); err != nil {
		return fmt.Errorf("failed to save selected business: %w", err)
	}

	s.MirrorConfirmed(ctx, "switch business", func(tx *replica.Tx) error {
		p, ok := tx.Profile(who.UserID)
		if !ok {
			p = domain.Profile{UserID: who.UserID, Email: who.Email, FullName: who.FullName}
		}
		p.LastSelectedBusinessID = businessID
		tx.PutProfile(p)
		return nil
	})
	return nil
}
