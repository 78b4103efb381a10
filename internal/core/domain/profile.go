package domain

// Profile is a user's display identity plus the last business they had
// selected, used to restore UI state across sessions.
type Profile struct {
	UserID                 string `json:"id"`
	Email                  string `json:"email"`
	FullName               string `json:"full_name"`
	LastSelectedBusinessID string `json:"last_selected_business_id,omitempty"`
}

// Currency is a row of the global, read-only currency reference table.
type Currency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}
