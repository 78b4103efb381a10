package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/finotbook/cashbook/internal/apperrors"
	"github.com/finotbook/cashbook/internal/core/domain"
	portsrepo "github.com/finotbook/cashbook/internal/core/ports/repositories"
	portssvc "github.com/finotbook/cashbook/internal/core/ports/services"
	"github.com/finotbook/cashbook/internal/dto"
	"github.com/finotbook/cashbook/internal/replica"
)

// LookupService coordinates the business-scoped lookup lists: categories,
// payment methods and contacts. Names are unique per business; the remote
// rejection is surfaced with a specific message because it is
// self-explanatory to the user.
type LookupService struct {
	BaseService
	gw portsrepo.Gateways
}

var _ portssvc.LookupSvc = (*LookupService)(nil)

// NewLookupService creates a new lookup service.
func NewLookupService(store *replica.Store, gw portsrepo.Gateways, resync func()) *LookupService {
	return &LookupService{
		BaseService: BaseService{Replica: store, Resync: resync},
		gw:          gw,
	}
}

// AddCategory adds a transaction category to the business.
func (s *LookupService) AddCategory(ctx context.Context, who domain.Identity, businessID string, req dto.CreateCategoryRequest) (*domain.Category, error) {
	if err := s.AuthorizeMember(ctx, who.UserID, businessID, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return nil, err
	}

	category, err := s.gw.Lookups.InsertCategory(ctx, businessID, req.Name)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: this category already exists", apperrors.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to add category: %w", err)
	}

	s.MirrorConfirmed(ctx, "add category", func(tx *replica.Tx) error {
		tx.PutCategory(*category)
		return nil
	})
	return category, nil
}

// DeleteCategory removes a category. Transactions referencing it keep their
// stored name; the reference is soft.
func (s *LookupService) DeleteCategory(ctx context.Context, who domain.Identity, categoryID string) error {
	if err := s.gw.Lookups.DeleteCategory(ctx, categoryID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.MirrorConfirmed(ctx, "delete category", func(tx *replica.Tx) error {
		tx.DeleteCategory(categoryID)
		return nil
	})
	return nil
}

// AddPaymentMethod adds a payment method to the business.
func (s *LookupService) AddPaymentMethod(ctx context.Context, who domain.Identity, businessID string, req dto.CreatePaymentMethodRequest) (*domain.PaymentMethod, error) {
	if err := s.AuthorizeMember(ctx, who.UserID, businessID, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return nil, err
	}

	method, err := s.gw.Lookups.InsertPaymentMethod(ctx, businessID, req.Name)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: this payment method already exists", apperrors.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to add payment method: %w", err)
	}

	s.MirrorConfirmed(ctx, "add payment method", func(tx *replica.Tx) error {
		tx.PutPaymentMethod(*method)
		return nil
	})
	return method, nil
}

// DeletePaymentMethod removes a payment method.
func (s *LookupService) DeletePaymentMethod(ctx context.Context, who domain.Identity, paymentMethodID string) error {
	if err := s.gw.Lookups.DeletePaymentMethod(ctx, paymentMethodID); err != nil {
		return fmt.Errorf("failed to delete payment method: %w", err)
	}

	s.MirrorConfirmed(ctx, "delete payment method", func(tx *replica.Tx) error {
		tx.DeletePaymentMethod(paymentMethodID)
		return nil
	})
	return nil
}

// AddContact adds a contact to the business.
func (s *LookupService) AddContact(ctx context.Context, who domain.Identity, businessID string, req dto.CreateContactRequest) (*domain.Contact, error) {
	if err := s.AuthorizeMember(ctx, who.UserID, businessID, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return nil, err
	}

	contact, err := s.gw.Lookups.InsertContact(ctx, businessID, req.Name, req.PhoneNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: this contact already exists", apperrors.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to add contact: %w", err)
	}

	s.MirrorConfirmed(ctx, "add contact", func(tx *replica.Tx) error {
		tx.PutContact(*contact)
		return nil
	})
	return contact, nil
}

// DeleteContact removes a contact.
func (s *LookupService) DeleteContact(ctx context.Context, who domain.Identity, contactID string) error {
	if err := s.gw.Lookups.DeleteContact(ctx, contactID); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	s.MirrorConfirmed(ctx, "delete contact", func(tx *replica.Tx) error {
		tx.DeleteContact(contactID)
		return nil
	})
	return nil
}
