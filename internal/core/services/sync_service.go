package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/finotbook/cashbook/internal/apperrors"
	"github.com/finotbook/cashbook/internal/core/domain"
	portsrepo "github.com/finotbook/cashbook/internal/core/ports/repositories"
	portssvc "github.com/finotbook/cashbook/internal/core/ports/services"
	"github.com/finotbook/cashbook/internal/replica"
)

// SyncService rebuilds the local replica from the remote store for exactly
// the rows the caller is authorized to see. Steps are ordered by dependency:
// a later step's scope comes from an earlier step's result.
type SyncService struct {
	BaseService
	gw portsrepo.Gateways

	flight     singleflight.Group
	inProgress atomic.Bool
	lastWho    atomic.Value // domain.Identity of the most recent SyncAll caller
}

var _ portssvc.SyncSvc = (*SyncService)(nil)

// NewSyncService creates a new sync orchestrator.
func NewSyncService(store *replica.Store, gw portsrepo.Gateways) *SyncService {
	return &SyncService{
		BaseService: BaseService{Replica: store},
		gw:          gw,
	}
}

// InProgress reports whether a sync run is currently executing.
func (s *SyncService) InProgress() bool {
	return s.inProgress.Load()
}

// SyncAll runs the full sync. Re-entrant triggers for the same user coalesce
// onto the in-flight run instead of interleaving a second run with it.
func (s *SyncService) SyncAll(ctx context.Context, who domain.Identity) error {
	s.lastWho.Store(who)
	_, err, _ := s.flight.Do(who.UserID, func() (any, error) {
		s.inProgress.Store(true)
		defer s.inProgress.Store(false)
		return nil, s.run(ctx, who)
	})
	return err
}

// ResyncLast schedules a background full sync for the most recently synced
// identity. It heals the replica after a confirmed remote write could not be
// mirrored locally. Before any sync has run there is no identity to sync
// for, so the request is logged and dropped.
func (s *SyncService) ResyncLast() {
	v := s.lastWho.Load()
	if v == nil {
		slog.Default().Warn("Re-sync requested before any sync has run, skipping")
		return
	}
	who := v.(domain.Identity)
	go func() {
		if err := s.SyncAll(context.Background(), who); err != nil {
			slog.Default().Error("Background re-sync failed",
				slog.String("error", err.Error()), slog.String("user_id", who.UserID))
		}
	}()
}

// mirror commits one collection's pulled rows. A commit failure aborts the
// sync; collections committed before it are retained.
func (s *SyncService) mirror(ctx context.Context, what string, fn func(tx *replica.Tx) error) error {
	if err := s.Replica.RunExclusive(ctx, fn); err != nil {
		return fmt.Errorf("sync aborted storing %s: %w", what, err)
	}
	return nil
}

func (s *SyncService) run(ctx context.Context, who domain.Identity) error {
	logger := s.GetLogger(ctx)
	logger.Info("Starting full data sync", slog.String("user_id", who.UserID))

	// Step 1: global reference data.
	currencies, err := s.gw.Currencies.ListCurrencies(ctx)
	if err != nil {
		return fmt.Errorf("sync aborted pulling currencies: %w", err)
	}
	if err := s.mirror(ctx, "currencies", func(tx *replica.Tx) error {
		tx.PutCurrencies(currencies)
		return nil
	}); err != nil {
		return err
	}

	// Step 2: the caller's own profile. A just-registered user may not have
	// a profile row yet, so not-found is non-fatal.
	profile, err := s.gw.Profiles.FindProfile(ctx, who.UserID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("sync aborted pulling profile: %w", err)
	}
	if profile != nil {
		if err := s.mirror(ctx, "profile", func(tx *replica.Tx) error {
			tx.PutProfile(*profile)
			return nil
		}); err != nil {
			return err
		}
	}

	// Step 3: the authorized businesses. Empty membership is the terminal
	// case: no business-scoped rows are authorized, so they are wiped.
	businesses, err := s.gw.Businesses.ListBusinessesForUser(ctx, who.UserID)
	if err != nil {
		return fmt.Errorf("sync aborted pulling businesses: %w", err)
	}
	if len(businesses) == 0 {
		logger.Info("User has no businesses, clearing business-scoped local data", slog.String("user_id", who.UserID))
		return s.mirror(ctx, "cleared collections", func(tx *replica.Tx) error {
			tx.Clear(append(replica.TenantScoped(), replica.ColProfiles), who.UserID)
			return nil
		})
	}
	if err := s.mirror(ctx, "businesses", func(tx *replica.Tx) error {
		tx.PutBusinesses(businesses)
		return nil
	}); err != nil {
		return err
	}

	businessIDs := make([]string, 0, len(businesses))
	for _, b := range businesses {
		businessIDs = append(businessIDs, b.BusinessID)
	}

	// Step 4: membership rows, denormalized with each member's display
	// identity so member lists never need a second lookup to render.
	members, err := s.gw.Memberships.ListBusinessMembersForBusinesses(ctx, businessIDs)
	if err != nil {
		return fmt.Errorf("sync aborted pulling business members: %w", err)
	}
	profilesByID, err := s.memberProfiles(ctx, members)
	if err != nil {
		return err
	}
	for i := range members {
		p, ok := profilesByID[members[i].UserID]
		if !ok {
			members[i].Email = "Unknown Email"
			continue
		}
		members[i].Email = p.Email
		members[i].FullName = p.FullName
	}
	// Upsert, never clear: a membership confirmed by an optimistic write
	// while this pull was in flight must survive the commit.
	if err := s.mirror(ctx, "business members", func(tx *replica.Tx) error {
		tx.PutBusinessMembers(members)
		return nil
	}); err != nil {
		return err
	}

	// Step 5: business-scoped collections, pulled in parallel. Each commits
	// as it arrives; a failure aborts the rest but keeps what committed.
	var books []domain.Book
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bs, err := s.gw.Books.ListBooksWithBalance(gctx, who.UserID)
		if err != nil {
			return fmt.Errorf("sync aborted pulling books: %w", err)
		}
		books = bs
		return s.mirror(gctx, "books", func(tx *replica.Tx) error {
			tx.PutBooks(bs)
			return nil
		})
	})
	g.Go(func() error {
		cs, err := s.gw.Lookups.ListCategoriesForBusinesses(gctx, businessIDs)
		if err != nil {
			return fmt.Errorf("sync aborted pulling categories: %w", err)
		}
		return s.mirror(gctx, "categories", func(tx *replica.Tx) error {
			tx.PutCategories(cs)
			return nil
		})
	})
	g.Go(func() error {
		ps, err := s.gw.Lookups.ListPaymentMethodsForBusinesses(gctx, businessIDs)
		if err != nil {
			return fmt.Errorf("sync aborted pulling payment methods: %w", err)
		}
		return s.mirror(gctx, "payment methods", func(tx *replica.Tx) error {
			tx.PutPaymentMethods(ps)
			return nil
		})
	})
	g.Go(func() error {
		cs, err := s.gw.Lookups.ListContactsForBusinesses(gctx, businessIDs)
		if err != nil {
			return fmt.Errorf("sync aborted pulling contacts: %w", err)
		}
		return s.mirror(gctx, "contacts", func(tx *replica.Tx) error {
			tx.PutContacts(cs)
			return nil
		})
	})
	g.Go(func() error {
		invs, err := s.gw.Invitations.ListPendingInvitationsForEmail(gctx, who.Email)
		if err != nil {
			return fmt.Errorf("sync aborted pulling invitations: %w", err)
		}
		return s.mirror(gctx, "invitations", func(tx *replica.Tx) error {
			tx.Clear([]replica.Collection{replica.ColInvitations}, "")
			tx.PutInvitations(invs)
			return nil
		})
	})
	if err := g.Wait(); err != nil {
		return err
	}

	// Step 6: book-scoped collections. With no books there is nothing to
	// pull.
	bookIDs := make([]string, 0, len(books))
	for _, b := range books {
		bookIDs = append(bookIDs, b.BookID)
	}
	if len(bookIDs) == 0 {
		logger.Info("Full data sync finished", slog.String("user_id", who.UserID), slog.Int("businesses", len(businesses)), slog.Int("books", 0))
		return nil
	}

	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		ts, err := s.gw.Transactions.ListTransactionsForBooks(gctx, bookIDs)
		if err != nil {
			return fmt.Errorf("sync aborted pulling transactions: %w", err)
		}
		for i := range ts {
			if p, ok := profilesByID[ts[i].UserID]; ok {
				ts[i].UserFullName = p.FullName
			}
		}
		// Upsert, never clear: an entry confirmed by an optimistic write
		// while this pull was in flight must survive the commit.
		return s.mirror(gctx, "transactions", func(tx *replica.Tx) error {
			tx.PutTransactions(ts)
			return nil
		})
	})
	g.Go(func() error {
		fs, err := s.gw.Books.ListCustomFieldsForBooks(gctx, bookIDs)
		if err != nil {
			return fmt.Errorf("sync aborted pulling custom fields: %w", err)
		}
		return s.mirror(gctx, "custom fields", func(tx *replica.Tx) error {
			tx.PutCustomFields(fs)
			return nil
		})
	})
	g.Go(func() error {
		ms, err := s.gw.Memberships.ListBookMembersForBooks(gctx, bookIDs)
		if err != nil {
			return fmt.Errorf("sync aborted pulling book members: %w", err)
		}
		// Links for the pulled books are replaced wholesale so a link
		// removed remotely cannot persist as a stale local row.
		return s.mirror(gctx, "book members", func(tx *replica.Tx) error {
			tx.ReplaceBookMembers(bookIDs, ms)
			return nil
		})
	})
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Full data sync finished", slog.String("user_id", who.UserID), slog.Int("businesses", len(businesses)), slog.Int("books", len(books)))
	return nil
}

// memberProfiles resolves the display identity of every distinct member via
// one batched profile lookup.
func (s *SyncService) memberProfiles(ctx context.Context, members []domain.BusinessMember) (map[string]domain.Profile, error) {
	seen := make(map[string]struct{}, len(members))
	userIDs := make([]string, 0, len(members))
	for _, m := range members {
		if _, ok := seen[m.UserID]; ok {
			continue
		}
		seen[m.UserID] = struct{}{}
		userIDs = append(userIDs, m.UserID)
	}
	if len(userIDs) == 0 {
		return map[string]domain.Profile{}, nil
	}
	profiles, err := s.gw.Profiles.ListProfiles(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("sync aborted pulling member profiles: %w", err)
	}
	byID := make(map[string]domain.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.UserID] = p
	}
	return byID, nil
}
