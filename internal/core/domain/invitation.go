package domain

import "time"

// InvitationStatus is the lifecycle state of a business invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Invitation ties an email address to a business and a proposed role. Its
// lifecycle is independent from membership: acceptance creates a membership
// row and flips the status here. BusinessName is denormalized at sync time
// so a notification card renders without a join.
type Invitation struct {
	InvitationID string           `json:"id"`
	BusinessID   string           `json:"business_id"`
	BusinessName string           `json:"business_name"`
	Email        string           `json:"email"`
	Role         MemberRole       `json:"role"`
	Status       InvitationStatus `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
}
