// Package replica implements the local mirror of the remote store: an
// in-memory indexed collection store with exclusive transactions, change
// notification, and write-through persistence to an embedded cache file.
// All UI reads are served from here; it never contains unconfirmed writes.
package replica

import "github.com/finotbook/cashbook/internal/core/domain"

// Collection names a replica collection. They double as change-event keys and
// as the collection column of the persisted cache.
type Collection string

const (
	ColBusinesses       Collection = "businesses"
	ColBooks            Collection = "books"
	ColTransactions     Collection = "transactions"
	ColCategories       Collection = "categories"
	ColPaymentMethods   Collection = "payment_methods"
	ColBusinessMembers  Collection = "business_members"
	ColBookMembers      Collection = "book_members"
	ColBookCustomFields Collection = "book_custom_fields"
	ColContacts         Collection = "contacts"
	ColInvitations      Collection = "invitations"
	ColCurrencies       Collection = "currencies"
	ColProfiles         Collection = "profiles"
)

// TenantScoped lists every collection owned by a business, directly or through
// a book. These are the collections wiped when the caller turns out to be a
// member of no business at all. Profiles are excluded: the caller's own
// profile row survives the wipe.
func TenantScoped() []Collection {
	return []Collection{
		ColBusinesses, ColBooks, ColTransactions, ColCategories,
		ColPaymentMethods, ColBusinessMembers, ColBookMembers,
		ColBookCustomFields, ColContacts, ColInvitations,
	}
}

// All lists every collection, in persistence order.
func All() []Collection {
	return []Collection{
		ColBusinesses, ColBooks, ColTransactions, ColCategories,
		ColPaymentMethods, ColBusinessMembers, ColBookMembers,
		ColBookCustomFields, ColContacts, ColInvitations,
		ColCurrencies, ColProfiles,
	}
}

// Snapshot is the serialisable representation of the whole replica state.
type Snapshot struct {
	Businesses       map[string]domain.Business        `json:"businesses"`
	Books            map[string]domain.Book            `json:"books"`
	Transactions     map[string]domain.Transaction     `json:"transactions"`
	Categories       map[string]domain.Category        `json:"categories"`
	PaymentMethods   map[string]domain.PaymentMethod   `json:"payment_methods"`
	BusinessMembers  map[string]domain.BusinessMember  `json:"business_members"`
	BookMembers      map[string]domain.BookMember      `json:"book_members"`
	BookCustomFields map[string]domain.BookCustomField `json:"book_custom_fields"`
	Contacts         map[string]domain.Contact         `json:"contacts"`
	Invitations      map[string]domain.Invitation      `json:"invitations"`
	Currencies       map[string]domain.Currency        `json:"currencies"`
	Profiles         map[string]domain.Profile         `json:"profiles"`
}
