package replica

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/finotbook/cashbook/internal/core/domain"
)

// Persister is the durable backing of the replica. Save receives only the
// collections touched by a committed transaction; Load rebuilds the full
// state at startup. A nil persister leaves the replica memory-only.
type Persister interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot, dirty []Collection) error
}

type state struct {
	businesses       map[string]domain.Business
	books            map[string]domain.Book
	transactions     map[string]domain.Transaction
	categories       map[string]domain.Category
	paymentMethods   map[string]domain.PaymentMethod
	businessMembers  map[string]domain.BusinessMember
	bookMembers      map[string]domain.BookMember
	bookCustomFields map[string]domain.BookCustomField
	contacts         map[string]domain.Contact
	invitations      map[string]domain.Invitation
	currencies       map[string]domain.Currency
	profiles         map[string]domain.Profile
}

func newState() state {
	return state{
		businesses:       map[string]domain.Business{},
		books:            map[string]domain.Book{},
		transactions:     map[string]domain.Transaction{},
		categories:       map[string]domain.Category{},
		paymentMethods:   map[string]domain.PaymentMethod{},
		businessMembers:  map[string]domain.BusinessMember{},
		bookMembers:      map[string]domain.BookMember{},
		bookCustomFields: map[string]domain.BookCustomField{},
		contacts:         map[string]domain.Contact{},
		invitations:      map[string]domain.Invitation{},
		currencies:       map[string]domain.Currency{},
		profiles:         map[string]domain.Profile{},
	}
}

func cloneTransaction(t domain.Transaction) domain.Transaction {
	cp := t
	if t.CustomFields != nil {
		cp.CustomFields = make(map[string]string, len(t.CustomFields))
		for k, v := range t.CustomFields {
			cp.CustomFields[k] = v
		}
	}
	if len(t.AttachmentURLs) != 0 {
		cp.AttachmentURLs = append([]string(nil), t.AttachmentURLs...)
	}
	return cp
}

func (s state) clone() state {
	cp := newState()
	for k, v := range s.businesses {
		cp.businesses[k] = v
	}
	for k, v := range s.books {
		cp.books[k] = v
	}
	for k, v := range s.transactions {
		cp.transactions[k] = cloneTransaction(v)
	}
	for k, v := range s.categories {
		cp.categories[k] = v
	}
	for k, v := range s.paymentMethods {
		cp.paymentMethods[k] = v
	}
	for k, v := range s.businessMembers {
		cp.businessMembers[k] = v
	}
	for k, v := range s.bookMembers {
		cp.bookMembers[k] = v
	}
	for k, v := range s.bookCustomFields {
		cp.bookCustomFields[k] = v
	}
	for k, v := range s.contacts {
		cp.contacts[k] = v
	}
	for k, v := range s.invitations {
		cp.invitations[k] = v
	}
	for k, v := range s.currencies {
		cp.currencies[k] = v
	}
	for k, v := range s.profiles {
		cp.profiles[k] = v
	}
	return cp
}

func snapshotFromState(s state) Snapshot {
	snap := Snapshot{
		Businesses:       map[string]domain.Business{},
		Books:            map[string]domain.Book{},
		Transactions:     map[string]domain.Transaction{},
		Categories:       map[string]domain.Category{},
		PaymentMethods:   map[string]domain.PaymentMethod{},
		BusinessMembers:  map[string]domain.BusinessMember{},
		BookMembers:      map[string]domain.BookMember{},
		BookCustomFields: map[string]domain.BookCustomField{},
		Contacts:         map[string]domain.Contact{},
		Invitations:      map[string]domain.Invitation{},
		Currencies:       map[string]domain.Currency{},
		Profiles:         map[string]domain.Profile{},
	}
	for k, v := range s.businesses {
		snap.Businesses[k] = v
	}
	for k, v := range s.books {
		snap.Books[k] = v
	}
	for k, v := range s.transactions {
		snap.Transactions[k] = cloneTransaction(v)
	}
	for k, v := range s.categories {
		snap.Categories[k] = v
	}
	for k, v := range s.paymentMethods {
		snap.PaymentMethods[k] = v
	}
	for k, v := range s.businessMembers {
		snap.BusinessMembers[k] = v
	}
	for k, v := range s.bookMembers {
		snap.BookMembers[k] = v
	}
	for k, v := range s.bookCustomFields {
		snap.BookCustomFields[k] = v
	}
	for k, v := range s.contacts {
		snap.Contacts[k] = v
	}
	for k, v := range s.invitations {
		snap.Invitations[k] = v
	}
	for k, v := range s.currencies {
		snap.Currencies[k] = v
	}
	for k, v := range s.profiles {
		snap.Profiles[k] = v
	}
	return snap
}

func stateFromSnapshot(snap Snapshot) state {
	st := newState()
	for k, v := range snap.Businesses {
		st.businesses[k] = v
	}
	for k, v := range snap.Books {
		st.books[k] = v
	}
	for k, v := range snap.Transactions {
		st.transactions[k] = cloneTransaction(v)
	}
	for k, v := range snap.Categories {
		st.categories[k] = v
	}
	for k, v := range snap.PaymentMethods {
		st.paymentMethods[k] = v
	}
	for k, v := range snap.BusinessMembers {
		st.businessMembers[k] = v
	}
	for k, v := range snap.BookMembers {
		st.bookMembers[k] = v
	}
	for k, v := range snap.BookCustomFields {
		st.bookCustomFields[k] = v
	}
	for k, v := range snap.Contacts {
		st.contacts[k] = v
	}
	for k, v := range snap.Invitations {
		st.invitations[k] = v
	}
	for k, v := range snap.Currencies {
		st.currencies[k] = v
	}
	for k, v := range snap.Profiles {
		st.profiles[k] = v
	}
	return st
}

// Store is the local replica of the remote dataset. It is the only shared
// mutable resource in the process: every multi-collection mutation runs
// through RunExclusive so readers never observe a torn cross-collection
// state (a book present with its transactions already gone, mid-delete).
type Store struct {
	mu      sync.RWMutex
	state   state
	bus     *Bus
	persist Persister
	logger  *slog.Logger
}

// NewStore creates an empty store publishing change events on bus. Both bus
// and persister may be nil.
func NewStore(bus *Bus, persist Persister, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{state: newState(), bus: bus, persist: persist, logger: logger}
}

// Open loads the persisted cache into memory. A load failure is not fatal:
// the replica is rebuildable by a full sync, so the store starts empty.
func (s *Store) Open(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	snap, err := s.persist.Load(ctx)
	if err != nil {
		s.logger.Warn("replica cache load failed, starting empty", slog.String("error", err.Error()))
		return nil
	}
	s.mu.Lock()
	s.state = stateFromSnapshot(snap)
	s.mu.Unlock()
	return nil
}

// Bus returns the change-event bus the store publishes on.
func (s *Store) Bus() *Bus { return s.bus }

// Export returns a deep copy of the full replica state.
func (s *Store) Export() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromState(s.state)
}

// RunExclusive executes fn with exclusive access over all collections. fn
// works on a clone of the state; the clone replaces the live state only when
// fn returns nil, so a failed block leaves no partial mutation visible.
// Change events for every touched collection are published after commit.
func (s *Store) RunExclusive(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	tx := &Tx{state: s.state.clone(), dirty: map[Collection]struct{}{}}
	if err := fn(tx); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = tx.state
	dirty := tx.dirtyList()
	var snap Snapshot
	if s.persist != nil && len(dirty) > 0 {
		snap = snapshotFromState(s.state)
	}
	s.mu.Unlock()

	if len(dirty) == 0 {
		return nil
	}
	if s.persist != nil {
		if err := s.persist.Save(ctx, snap, dirty); err != nil {
			// The in-memory commit already happened and the replica is
			// rebuildable by sync, so a persistence failure is logged, not
			// surfaced.
			s.logger.Error("replica cache save failed", slog.String("error", err.Error()))
		}
	}
	if s.bus != nil {
		s.bus.Publish(dirty)
	}
	return nil
}

// --- Reads ---
//
// All reads return clones ordered deterministically, so callers can hold the
// results without racing later commits.

func (s *Store) Business(id string) (domain.Business, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.state.businesses[id]
	return b, ok
}

func (s *Store) Businesses() []domain.Business {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Business, 0, len(s.state.businesses))
	for _, b := range s.state.businesses {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].BusinessID < out[j].BusinessID
	})
	return out
}

func (s *Store) Book(id string) (domain.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.state.books[id]
	return b, ok
}

// BooksByBusiness lists a business's books, newest first.
func (s *Store) BooksByBusiness(businessID string) []domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Book
	for _, b := range s.state.books {
		if b.BusinessID == businessID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].BookID < out[j].BookID
	})
	return out
}

func (s *Store) Transaction(id string) (domain.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.state.transactions[id]
	if !ok {
		return domain.Transaction{}, false
	}
	return cloneTransaction(t), true
}

// TransactionsByBook lists a book's transactions newest first (by date, then
// creation instant, then id), matching how the ledger view presents them.
func (s *Store) TransactionsByBook(bookID string) []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Transaction
	for _, t := range s.state.transactions {
		if t.BookID == bookID {
			out = append(out, cloneTransaction(t))
		}
	}
	sortTransactionsNewestFirst(out)
	return out
}

func sortTransactionsNewestFirst(ts []domain.Transaction) {
	sort.Slice(ts, func(i, j int) bool {
		if !ts[i].Date.Equal(ts[j].Date) {
			return ts[i].Date.After(ts[j].Date)
		}
		if !ts[i].CreatedAt.Equal(ts[j].CreatedAt) {
			return ts[i].CreatedAt.After(ts[j].CreatedAt)
		}
		return ts[i].TransactionID > ts[j].TransactionID
	})
}

func (s *Store) CategoriesByBusiness(businessID string) []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Category
	for _, c := range s.state.categories {
		if c.BusinessID == businessID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessByName(out[i].Name, out[j].Name, out[i].CategoryID, out[j].CategoryID) })
	return out
}

func (s *Store) PaymentMethodsByBusiness(businessID string) []domain.PaymentMethod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.PaymentMethod
	for _, p := range s.state.paymentMethods {
		if p.BusinessID == businessID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return lessByName(out[i].Name, out[j].Name, out[i].PaymentMethodID, out[j].PaymentMethodID)
	})
	return out
}

func (s *Store) ContactsByBusiness(businessID string) []domain.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Contact
	for _, c := range s.state.contacts {
		if c.BusinessID == businessID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessByName(out[i].Name, out[j].Name, out[i].ContactID, out[j].ContactID) })
	return out
}

func lessByName(nameA, nameB, idA, idB string) bool {
	na, nb := strings.ToLower(nameA), strings.ToLower(nameB)
	if na != nb {
		return na < nb
	}
	return idA < idB
}

func (s *Store) MembersByBusiness(businessID string) []domain.BusinessMember {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.BusinessMember
	for _, m := range s.state.businessMembers {
		if m.BusinessID == businessID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessByName(out[i].Email, out[j].Email, out[i].UserID, out[j].UserID) })
	return out
}

func (s *Store) MemberRole(businessID, userID string) (domain.MemberRole, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.state.businessMembers[domain.BusinessMember{UserID: userID, BusinessID: businessID}.Key()]
	if !ok {
		return "", false
	}
	return m.Role, true
}

func (s *Store) BookMembersByBook(bookID string) []domain.BookMember {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.BookMember
	for _, m := range s.state.bookMembers {
		if m.BookID == bookID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// BookIDsForUser lists the ids of every book the user is linked to.
func (s *Store) BookIDsForUser(userID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, m := range s.state.bookMembers {
		if m.UserID == userID {
			out = append(out, m.BookID)
		}
	}
	sort.Strings(out)
	return out
}

// CustomFieldsByBook lists a book's field definitions in creation order,
// which is the order the entry form renders them.
func (s *Store) CustomFieldsByBook(bookID string) []domain.BookCustomField {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.BookCustomField
	for _, f := range s.state.bookCustomFields {
		if f.BookID == bookID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].FieldID < out[j].FieldID
	})
	return out
}

func (s *Store) Invitation(id string) (domain.Invitation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.state.invitations[id]
	return inv, ok
}

func (s *Store) PendingInvitationsForEmail(email string) []domain.Invitation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Invitation
	for _, inv := range s.state.invitations {
		if inv.Status == domain.InvitationPending && strings.EqualFold(inv.Email, email) {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].InvitationID < out[j].InvitationID
	})
	return out
}

func (s *Store) Currencies() []domain.Currency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Currency, 0, len(s.state.currencies))
	for _, c := range s.state.currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (s *Store) Currency(code string) (domain.Currency, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.currencies[code]
	return c, ok
}

func (s *Store) Profile(userID string) (domain.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.profiles[userID]
	return p, ok
}
