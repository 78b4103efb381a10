package dto

import "github.com/finotbook/cashbook/internal/core/domain"

// CreateBusinessRequest is the payload for creating a business.
type CreateBusinessRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Currency string `json:"currency" binding:"required,len=3"`
}

// UpdateBusinessRequest carries optional profile updates for a business.
type UpdateBusinessRequest struct {
	Name             *string `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	Currency         *string `json:"currency,omitempty" binding:"omitempty,len=3"`
	Address          *string `json:"address,omitempty"`
	StaffSize        *string `json:"staff_size,omitempty"`
	Category         *string `json:"category,omitempty"`
	Subcategory      *string `json:"subcategory,omitempty"`
	BusinessType     *string `json:"business_type,omitempty"`
	RegistrationType *string `json:"registration_type,omitempty"`
	PhoneNumber      *string `json:"phone_number,omitempty"`
	ContactEmail     *string `json:"contact_email,omitempty" binding:"omitempty,email"`
}

// ToDomain maps the request onto the gateway update shape.
func (r UpdateBusinessRequest) ToDomain() domain.BusinessUpdate {
	return domain.BusinessUpdate{
		Name:             r.Name,
		CurrencyCode:     r.Currency,
		Address:          r.Address,
		StaffSize:        r.StaffSize,
		Category:         r.Category,
		Subcategory:      r.Subcategory,
		BusinessType:     r.BusinessType,
		RegistrationType: r.RegistrationType,
		PhoneNumber:      r.PhoneNumber,
		ContactEmail:     r.ContactEmail,
	}
}

// TransferOwnershipRequest carries the new owner and the caller's password
// confirmation; the transfer is refused if reauthentication fails.
type TransferOwnershipRequest struct {
	NewOwnerID string `json:"new_owner_id" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// InviteMemberRequest invites an email address into a business with a
// proposed role. Owners are created by ownership transfer, never by invite.
type InviteMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=admin data_operator"`
}
