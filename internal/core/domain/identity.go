package domain

// Identity is the authenticated caller as supplied by the auth collaborator:
// user id, email and display-name metadata extracted from the session token.
// It is threaded explicitly through every service call rather than held as
// ambient state.
type Identity struct {
	UserID   string
	Email    string
	FullName string
}
