package replica_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finotbook/cashbook/internal/core/domain"
	"github.com/finotbook/cashbook/internal/replica"
)

// fakePersister records Save calls and serves a canned snapshot on Load.
type fakePersister struct {
	snapshot  replica.Snapshot
	loadErr   error
	saveErr   error
	saveCalls [][]replica.Collection
}

func (p *fakePersister) Load(ctx context.Context) (replica.Snapshot, error) {
	return p.snapshot, p.loadErr
}

func (p *fakePersister) Save(ctx context.Context, snapshot replica.Snapshot, dirty []replica.Collection) error {
	p.saveCalls = append(p.saveCalls, dirty)
	p.snapshot = snapshot
	return p.saveErr
}

func newTestStore(t *testing.T) *replica.Store {
	t.Helper()
	return replica.NewStore(replica.NewBus(), nil, nil)
}

func seedBusiness(t *testing.T, store *replica.Store, id, name string) {
	t.Helper()
	err := store.RunExclusive(context.Background(), func(tx *replica.Tx) error {
		tx.PutBusiness(domain.Business{BusinessID: id, Name: name, OwnerID: "owner-1", CurrencyCode: "USD"})
		return nil
	})
	require.NoError(t, err)
}

func TestRunExclusive_CommitVisible(t *testing.T) {
	store := newTestStore(t)
	seedBusiness(t, store, "biz-1", "Corner Shop")

	b, ok := store.Business("biz-1")
	require.True(t, ok)
	assert.Equal(t, "Corner Shop", b.Name)
}

func TestRunExclusive_FailedBlockLeavesNoPartialState(t *testing.T) {
	store := newTestStore(t)
	seedBusiness(t, store, "biz-1", "Corner Shop")

	boom := errors.New("boom")
	err := store.RunExclusive(context.Background(), func(tx *replica.Tx) error {
		tx.DeleteBusiness("biz-1")
		tx.PutBook(domain.Book{BookID: "book-1", BusinessID: "biz-1"})
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, ok := store.Business("biz-1")
	assert.True(t, ok, "failed block must not delete anything")
	_, ok = store.Book("book-1")
	assert.False(t, ok, "failed block must not insert anything")
}

func TestRunExclusive_PublishesDirtyCollections(t *testing.T) {
	bus := replica.NewBus()
	store := replica.NewStore(bus, nil, nil)
	sub := bus.Subscribe()
	defer sub.Close()

	err := store.RunExclusive(context.Background(), func(tx *replica.Tx) error {
		tx.PutBusiness(domain.Business{BusinessID: "biz-1"})
		tx.PutBook(domain.Book{BookID: "book-1", BusinessID: "biz-1"})
		return nil
	})
	require.NoError(t, err)

	select {
	case <-sub.Ready():
	case <-time.After(time.Second):
		t.Fatal("no change notification after commit")
	}
	assert.Equal(t, []replica.Collection{replica.ColBusinesses, replica.ColBooks}, sub.Take())
}

func TestRunExclusive_ReadOnlyBlockPublishesNothing(t *testing.T) {
	bus := replica.NewBus()
	store := replica.NewStore(bus, nil, nil)
	sub := bus.Subscribe()
	defer sub.Close()

	err := store.RunExclusive(context.Background(), func(tx *replica.Tx) error { return nil })
	require.NoError(t, err)

	select {
	case <-sub.Ready():
		t.Fatal("read-only block must not notify")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRunExclusive_PersistFailureDoesNotFailCommit(t *testing.T) {
	persist := &fakePersister{saveErr: errors.New("disk full")}
	store := replica.NewStore(replica.NewBus(), persist, nil)

	err := store.RunExclusive(context.Background(), func(tx *replica.Tx) error {
		tx.PutBusiness(domain.Business{BusinessID: "biz-1", Name: "Corner Shop"})
		return nil
	})
	require.NoError(t, err)

	_, ok := store.Business("biz-1")
	assert.True(t, ok, "in-memory commit survives a cache save failure")
	require.Len(t, persist.saveCalls, 1)
	assert.Equal(t, []replica.Collection{replica.ColBusinesses}, persist.saveCalls[0])
}

func TestOpen_LoadsPersistedSnapshot(t *testing.T) {
	seeded := replica.NewStore(nil, &fakePersister{}, nil)
	err := seeded.RunExclusive(context.Background(), func(tx *replica.Tx) error {
		tx.PutBusiness(domain.Business{BusinessID: "biz-1", Name: "Corner Shop"})
		return nil
	})
	require.NoError(t, err)
	persist := &fakePersister{snapshot: seeded.Export()}

	store := replica.NewStore(nil, persist, nil)
	require.NoError(t, store.Open(context.Background()))

	b, ok := store.Business("biz-1")
	require.True(t, ok)
	assert.Equal(t, "Corner Shop", b.Name)
}

func TestOpen_LoadFailureStartsEmpty(t *testing.T) {
	store := replica.NewStore(nil, &fakePersister{loadErr: errors.New("corrupt")}, nil)
	require.NoError(t, store.Open(context.Background()))
	assert.Empty(t, store.Businesses())
}

func TestClear_KeepsCallerProfile(t *testing.T) {
	store := newTestStore(t)
	err := store.RunExclusive(context.Background(), func(tx *replica.Tx) error {
		tx.PutBusiness(domain.Business{BusinessID: "biz-1"})
		tx.PutTransaction(domain.Transaction{TransactionID: "t1", BookID: "book-1"})
		tx.PutProfile(domain.Profile{UserID: "me", Email: "me@example.com"})
		tx.PutProfile(domain.Profile{UserID: "other", Email: "other@example.com"})
		tx.PutCurrencies([]domain.Currency{{Code: "USD"}})
		return nil
	})
	require.NoError(t, err)

	err = store.RunExclusive(context.Background(), func(tx *replica.Tx) error {
		tx.Clear(append(replica.TenantScoped(), replica.ColProfiles), "me")
		return nil
	})
	require.NoError(t, err)

	assert.Empty(t, store.Businesses())
	_, ok := store.Transaction("t1")
	assert.False(t, ok)
	_, ok = store.Profile("me")
	assert.True(t, ok, "caller profile survives the wipe")
	_, ok = store.Profile("other")
	assert.False(t, ok)
	_, ok = store.Currency("USD")
	assert.True(t, ok, "global reference data is not tenant-scoped")
}

func TestReplaceBookMembers_DropsStaleLinks(t *testing.T) {
	store := newTestStore(t)
	err := store.RunExclusive(context.Background(), func(tx *replica.Tx) error {
		tx.PutBookMember(domain.BookMember{BookID: "book-1", UserID: "alice"})
		tx.PutBookMember(domain.BookMember{BookID: "book-1", UserID: "bob"})
		tx.PutBookMember(domain.BookMember{BookID: "book-2", UserID: "carol"})
		return nil
	})
	require.NoError(t, err)

	err = store.RunExclusive(context.Background(), func(tx *replica.Tx) error {
		tx.ReplaceBookMembers([]string{"book-1"}, []domain.BookMember{{BookID: "book-1", UserID: "alice"}})
		return nil
	})
	require.NoError(t, err)

	members := store.BookMembersByBook("book-1")
	require.Len(t, members, 1)
	assert.Equal(t, "alice", members[0].UserID)
	assert.Len(t, store.BookMembersByBook("book-2"), 1, "untouched books keep their links")
}

func TestTransactionsByBook_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	old := domain.Transaction{TransactionID: "t-old", BookID: "book-1", Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	mid := domain.Transaction{TransactionID: "t-mid", BookID: "book-1", Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	new_ := domain.Transaction{TransactionID: "t-new", BookID: "book-1", Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	err := store.RunExclusive(context.Background(), func(tx *replica.Tx) error {
		tx.PutTransactions([]domain.Transaction{old, new_, mid})
		tx.PutTransaction(domain.Transaction{TransactionID: "t-other", BookID: "book-2"})
		return nil
	})
	require.NoError(t, err)

	got := store.TransactionsByBook("book-1")
	require.Len(t, got, 3)
	assert.Equal(t, "t-new", got[0].TransactionID)
	assert.Equal(t, "t-mid", got[1].TransactionID)
	assert.Equal(t, "t-old", got[2].TransactionID)
}

func TestReads_ReturnClones(t *testing.T) {
	store := newTestStore(t)
	err := store.RunExclusive(context.Background(), func(tx *replica.Tx) error {
		tx.PutTransaction(domain.Transaction{
			TransactionID: "t1",
			BookID:        "book-1",
			Amount:        decimal.RequireFromString("10"),
			CustomFields:  map[string]string{"invoice": "A-1"},
		})
		return nil
	})
	require.NoError(t, err)

	got, ok := store.Transaction("t1")
	require.True(t, ok)
	got.CustomFields["invoice"] = "tampered"

	again, _ := store.Transaction("t1")
	assert.Equal(t, "A-1", again.CustomFields["invoice"])
}

func TestMemberRole(t *testing.T) {
	store := newTestStore(t)
	err := store.RunExclusive(context.Background(), func(tx *replica.Tx) error {
		tx.PutBusinessMember(domain.BusinessMember{UserID: "alice", BusinessID: "biz-1", Role: domain.RoleAdmin})
		return nil
	})
	require.NoError(t, err)

	role, ok := store.MemberRole("biz-1", "alice")
	require.True(t, ok)
	assert.Equal(t, domain.RoleAdmin, role)

	_, ok = store.MemberRole("biz-1", "bob")
	assert.False(t, ok)
}

func TestPendingInvitationsForEmail(t *testing.T) {
	store := newTestStore(t)
	err := store.RunExclusive(context.Background(), func(tx *replica.Tx) error {
		tx.PutInvitations([]domain.Invitation{
			{InvitationID: "i1", Email: "Me@Example.com", Status: domain.InvitationPending},
			{InvitationID: "i2", Email: "me@example.com", Status: domain.InvitationDeclined},
			{InvitationID: "i3", Email: "someone@example.com", Status: domain.InvitationPending},
		})
		return nil
	})
	require.NoError(t, err)

	got := store.PendingInvitationsForEmail("me@example.com")
	require.Len(t, got, 1)
	assert.Equal(t, "i1", got[0].InvitationID, "match is case-insensitive and pending-only")
}
