package domain

// Business is an isolated workspace owning books, lookup lists and members.
// Rows are assigned their identifiers by the remote store; the local replica
// only ever holds server-confirmed state.
type Business struct {
	BusinessID       string `json:"id"`
	Name             string `json:"name"`
	OwnerID          string `json:"owner_id"`
	CurrencyCode     string `json:"currency"`
	Address          string `json:"address,omitempty"`
	StaffSize        string `json:"staff_size,omitempty"`
	Category         string `json:"category,omitempty"`
	Subcategory      string `json:"subcategory,omitempty"`
	BusinessType     string `json:"business_type,omitempty"`
	RegistrationType string `json:"registration_type,omitempty"`
	PhoneNumber      string `json:"phone_number,omitempty"`
	ContactEmail     string `json:"contact_email,omitempty"`
	IsVerified       bool   `json:"is_verified,omitempty"`
}

// BusinessUpdate carries the updatable profile columns of a business.
// Nil fields are left untouched by the remote update.
type BusinessUpdate struct {
	Name             *string `json:"name,omitempty"`
	CurrencyCode     *string `json:"currency,omitempty"`
	Address          *string `json:"address,omitempty"`
	StaffSize        *string `json:"staff_size,omitempty"`
	Category         *string `json:"category,omitempty"`
	Subcategory      *string `json:"subcategory,omitempty"`
	BusinessType     *string `json:"business_type,omitempty"`
	RegistrationType *string `json:"registration_type,omitempty"`
	PhoneNumber      *string `json:"phone_number,omitempty"`
	ContactEmail     *string `json:"contact_email,omitempty"`
}

// MemberRole defines the possible roles a user can hold within a business.
// The role is the sole authorization signal for capability checks.
type MemberRole string

const (
	RoleOwner        MemberRole = "owner"
	RoleAdmin        MemberRole = "admin"
	RoleDataOperator MemberRole = "data_operator"
)

// BusinessMember associates a user with a business. Email and full name are
// denormalized from the member's profile at sync time so a member list never
// blocks on a second lookup; a later profile rename leaves them stale until
// the next sync, which is accepted.
type BusinessMember struct {
	UserID     string     `json:"user_id"`
	BusinessID string     `json:"business_id"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name"`
	Role       MemberRole `json:"role"`
}

// Key returns the replica primary key: exactly one role per (user, business) pair.
func (m BusinessMember) Key() string { return m.UserID + "/" + m.BusinessID }
