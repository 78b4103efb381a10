package replica

import "github.com/finotbook/cashbook/internal/core/domain"

// Tx is the mutable view handed to a RunExclusive block. It operates on a
// private clone of the store state; nothing it does is visible to readers
// until the block returns nil. Upserts are last-write-wins by primary key.
type Tx struct {
	state state
	dirty map[Collection]struct{}
}

func (tx *Tx) touch(c Collection) { tx.dirty[c] = struct{}{} }

func (tx *Tx) dirtyList() []Collection {
	if len(tx.dirty) == 0 {
		return nil
	}
	out := make([]Collection, 0, len(tx.dirty))
	for _, c := range All() {
		if _, ok := tx.dirty[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// --- Businesses ---

func (tx *Tx) PutBusiness(b domain.Business) {
	tx.state.businesses[b.BusinessID] = b
	tx.touch(ColBusinesses)
}

func (tx *Tx) PutBusinesses(bs []domain.Business) {
	for _, b := range bs {
		tx.state.businesses[b.BusinessID] = b
	}
	tx.touch(ColBusinesses)
}

func (tx *Tx) DeleteBusiness(id string) {
	delete(tx.state.businesses, id)
	tx.touch(ColBusinesses)
}

// --- Books ---

func (tx *Tx) PutBook(b domain.Book) {
	tx.state.books[b.BookID] = b
	tx.touch(ColBooks)
}

func (tx *Tx) PutBooks(bs []domain.Book) {
	for _, b := range bs {
		tx.state.books[b.BookID] = b
	}
	tx.touch(ColBooks)
}

func (tx *Tx) DeleteBook(id string) {
	delete(tx.state.books, id)
	tx.touch(ColBooks)
}

// BookIDsByBusiness resolves the book-id sweep index for a business cascade.
func (tx *Tx) BookIDsByBusiness(businessID string) []string {
	var out []string
	for id, b := range tx.state.books {
		if b.BusinessID == businessID {
			out = append(out, id)
		}
	}
	return out
}

// --- Transactions ---

func (tx *Tx) PutTransaction(t domain.Transaction) {
	tx.state.transactions[t.TransactionID] = cloneTransaction(t)
	tx.touch(ColTransactions)
}

func (tx *Tx) PutTransactions(ts []domain.Transaction) {
	for _, t := range ts {
		tx.state.transactions[t.TransactionID] = cloneTransaction(t)
	}
	tx.touch(ColTransactions)
}

func (tx *Tx) DeleteTransaction(id string) {
	delete(tx.state.transactions, id)
	tx.touch(ColTransactions)
}

func (tx *Tx) DeleteTransactionsByBook(bookID string) {
	for id, t := range tx.state.transactions {
		if t.BookID == bookID {
			delete(tx.state.transactions, id)
		}
	}
	tx.touch(ColTransactions)
}

// --- Lookup lists ---

func (tx *Tx) PutCategory(c domain.Category) {
	tx.state.categories[c.CategoryID] = c
	tx.touch(ColCategories)
}

func (tx *Tx) PutCategories(cs []domain.Category) {
	for _, c := range cs {
		tx.state.categories[c.CategoryID] = c
	}
	tx.touch(ColCategories)
}

func (tx *Tx) DeleteCategory(id string) {
	delete(tx.state.categories, id)
	tx.touch(ColCategories)
}

func (tx *Tx) DeleteCategoriesByBusiness(businessID string) {
	for id, c := range tx.state.categories {
		if c.BusinessID == businessID {
			delete(tx.state.categories, id)
		}
	}
	tx.touch(ColCategories)
}

func (tx *Tx) PutPaymentMethod(p domain.PaymentMethod) {
	tx.state.paymentMethods[p.PaymentMethodID] = p
	tx.touch(ColPaymentMethods)
}

func (tx *Tx) PutPaymentMethods(ps []domain.PaymentMethod) {
	for _, p := range ps {
		tx.state.paymentMethods[p.PaymentMethodID] = p
	}
	tx.touch(ColPaymentMethods)
}

func (tx *Tx) DeletePaymentMethod(id string) {
	delete(tx.state.paymentMethods, id)
	tx.touch(ColPaymentMethods)
}

func (tx *Tx) DeletePaymentMethodsByBusiness(businessID string) {
	for id, p := range tx.state.paymentMethods {
		if p.BusinessID == businessID {
			delete(tx.state.paymentMethods, id)
		}
	}
	tx.touch(ColPaymentMethods)
}

func (tx *Tx) PutContact(c domain.Contact) {
	tx.state.contacts[c.ContactID] = c
	tx.touch(ColContacts)
}

func (tx *Tx) PutContacts(cs []domain.Contact) {
	for _, c := range cs {
		tx.state.contacts[c.ContactID] = c
	}
	tx.touch(ColContacts)
}

func (tx *Tx) DeleteContact(id string) {
	delete(tx.state.contacts, id)
	tx.touch(ColContacts)
}

func (tx *Tx) DeleteContactsByBusiness(businessID string) {
	for id, c := range tx.state.contacts {
		if c.BusinessID == businessID {
			delete(tx.state.contacts, id)
		}
	}
	tx.touch(ColContacts)
}

// --- Memberships ---

func (tx *Tx) PutBusinessMember(m domain.BusinessMember) {
	tx.state.businessMembers[m.Key()] = m
	tx.touch(ColBusinessMembers)
}

func (tx *Tx) PutBusinessMembers(ms []domain.BusinessMember) {
	for _, m := range ms {
		tx.state.businessMembers[m.Key()] = m
	}
	tx.touch(ColBusinessMembers)
}

func (tx *Tx) DeleteBusinessMember(businessID, userID string) {
	delete(tx.state.businessMembers, domain.BusinessMember{UserID: userID, BusinessID: businessID}.Key())
	tx.touch(ColBusinessMembers)
}

func (tx *Tx) DeleteBusinessMembersByBusiness(businessID string) {
	for key, m := range tx.state.businessMembers {
		if m.BusinessID == businessID {
			delete(tx.state.businessMembers, key)
		}
	}
	tx.touch(ColBusinessMembers)
}

// SetBusinessMemberRole overwrites the role on an existing membership row.
// Missing rows are ignored: the next sync reconciles them.
func (tx *Tx) SetBusinessMemberRole(businessID, userID string, role domain.MemberRole) {
	key := domain.BusinessMember{UserID: userID, BusinessID: businessID}.Key()
	if m, ok := tx.state.businessMembers[key]; ok {
		m.Role = role
		tx.state.businessMembers[key] = m
		tx.touch(ColBusinessMembers)
	}
}

func (tx *Tx) PutBookMember(m domain.BookMember) {
	tx.state.bookMembers[m.Key()] = m
	tx.touch(ColBookMembers)
}

func (tx *Tx) DeleteBookMember(bookID, userID string) {
	delete(tx.state.bookMembers, domain.BookMember{BookID: bookID, UserID: userID}.Key())
	tx.touch(ColBookMembers)
}

func (tx *Tx) DeleteBookMembersByBook(bookID string) {
	for key, m := range tx.state.bookMembers {
		if m.BookID == bookID {
			delete(tx.state.bookMembers, key)
		}
	}
	tx.touch(ColBookMembers)
}

// ReplaceBookMembers fully replaces the link rows for the given books. Sync
// uses this instead of an upsert so a link removed remotely does not persist
// as a stale local row.
func (tx *Tx) ReplaceBookMembers(bookIDs []string, ms []domain.BookMember) {
	ids := make(map[string]struct{}, len(bookIDs))
	for _, id := range bookIDs {
		ids[id] = struct{}{}
	}
	for key, m := range tx.state.bookMembers {
		if _, ok := ids[m.BookID]; ok {
			delete(tx.state.bookMembers, key)
		}
	}
	for _, m := range ms {
		tx.state.bookMembers[m.Key()] = m
	}
	tx.touch(ColBookMembers)
}

// --- Custom fields ---

func (tx *Tx) PutCustomField(f domain.BookCustomField) {
	tx.state.bookCustomFields[f.FieldID] = f
	tx.touch(ColBookCustomFields)
}

func (tx *Tx) PutCustomFields(fs []domain.BookCustomField) {
	for _, f := range fs {
		tx.state.bookCustomFields[f.FieldID] = f
	}
	tx.touch(ColBookCustomFields)
}

func (tx *Tx) DeleteCustomField(id string) {
	delete(tx.state.bookCustomFields, id)
	tx.touch(ColBookCustomFields)
}

func (tx *Tx) DeleteCustomFieldsByBook(bookID string) {
	for id, f := range tx.state.bookCustomFields {
		if f.BookID == bookID {
			delete(tx.state.bookCustomFields, id)
		}
	}
	tx.touch(ColBookCustomFields)
}

// --- Invitations, currencies, profiles ---

func (tx *Tx) PutInvitation(inv domain.Invitation) {
	tx.state.invitations[inv.InvitationID] = inv
	tx.touch(ColInvitations)
}

func (tx *Tx) PutInvitations(invs []domain.Invitation) {
	for _, inv := range invs {
		tx.state.invitations[inv.InvitationID] = inv
	}
	tx.touch(ColInvitations)
}

func (tx *Tx) DeleteInvitation(id string) {
	delete(tx.state.invitations, id)
	tx.touch(ColInvitations)
}

func (tx *Tx) PutCurrencies(cs []domain.Currency) {
	for _, c := range cs {
		tx.state.currencies[c.Code] = c
	}
	tx.touch(ColCurrencies)
}

func (tx *Tx) PutProfile(p domain.Profile) {
	tx.state.profiles[p.UserID] = p
	tx.touch(ColProfiles)
}

// Profile reads a profile row inside the transaction.
func (tx *Tx) Profile(userID string) (domain.Profile, bool) {
	p, ok := tx.state.profiles[userID]
	return p, ok
}

// Clear empties the named collections. keepProfileUserID, when non-empty,
// preserves that one row if ColProfiles is among the cleared collections.
func (tx *Tx) Clear(cols []Collection, keepProfileUserID string) {
	for _, c := range cols {
		switch c {
		case ColBusinesses:
			tx.state.businesses = map[string]domain.Business{}
		case ColBooks:
			tx.state.books = map[string]domain.Book{}
		case ColTransactions:
			tx.state.transactions = map[string]domain.Transaction{}
		case ColCategories:
			tx.state.categories = map[string]domain.Category{}
		case ColPaymentMethods:
			tx.state.paymentMethods = map[string]domain.PaymentMethod{}
		case ColBusinessMembers:
			tx.state.businessMembers = map[string]domain.BusinessMember{}
		case ColBookMembers:
			tx.state.bookMembers = map[string]domain.BookMember{}
		case ColBookCustomFields:
			tx.state.bookCustomFields = map[string]domain.BookCustomField{}
		case ColContacts:
			tx.state.contacts = map[string]domain.Contact{}
		case ColInvitations:
			tx.state.invitations = map[string]domain.Invitation{}
		case ColCurrencies:
			tx.state.currencies = map[string]domain.Currency{}
		case ColProfiles:
			kept, ok := tx.state.profiles[keepProfileUserID]
			tx.state.profiles = map[string]domain.Profile{}
			if ok && keepProfileUserID != "" {
				tx.state.profiles[keepProfileUserID] = kept
			}
		}
		tx.touch(c)
	}
}
