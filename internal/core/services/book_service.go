package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/finotbook/cashbook/internal/apperrors"
	"github.com/finotbook/cashbook/internal/core/domain"
	portsrepo "github.com/finotbook/cashbook/internal/core/ports/repositories"
	portssvc "github.com/finotbook/cashbook/internal/core/ports/services"
	"github.com/finotbook/cashbook/internal/dto"
	"github.com/finotbook/cashbook/internal/replica"
)

// BookService coordinates book-level mutations, including the per-book
// custom field definitions.
type BookService struct {
	BaseService
	gw   portsrepo.Gateways
	sync portssvc.SyncSvc
}

var _ portssvc.BookSvc = (*BookService)(nil)

// NewBookService creates a new book service.
func NewBookService(store *replica.Store, gw portsrepo.Gateways, sync portssvc.SyncSvc, resync func()) *BookService {
	return &BookService{
		BaseService: BaseService{Replica: store, Resync: resync},
		gw:          gw,
		sync:        sync,
	}
}

// CreateBook creates a book in the business with the caller as owner and
// first member. The book inherits the business currency; its mirrored
// balance starts at zero because the server computes balances on listing.
func (s *BookService) CreateBook(ctx context.Context, who domain.Identity, businessID string, req dto.CreateBookRequest) (*domain.Book, error) {
	if err := s.AuthorizeMember(ctx, who.UserID, businessID, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return nil, err
	}
	business, ok := s.Replica.Business(businessID)
	if !ok {
		return nil, fmt.Errorf("%w: business %s", apperrors.ErrNotFound, businessID)
	}

	if err := s.gw.Profiles.UpsertProfile(ctx, domain.Profile{
		UserID:   who.UserID,
		Email:    who.Email,
		FullName: who.FullName,
	}); err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}

	book, err := s.gw.Books.InsertBook(ctx, req.Name, businessID, business.CurrencyCode, who.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	// The creator may already hold a member link when the server adds one
	// itself, so a duplicate here is not an error.
	if err := s.gw.Memberships.InsertBookMember(ctx, book.BookID, who.UserID); err != nil && !errors.Is(err, apperrors.ErrDuplicate) {
		return nil, fmt.Errorf("failed to create book membership: %w", err)
	}

	book.Balance = decimal.Zero
	s.MirrorConfirmed(ctx, "create book", func(tx *replica.Tx) error {
		tx.PutBook(*book)
		tx.PutBookMember(domain.BookMember{BookID: book.BookID, UserID: who.UserID})
		return nil
	})

	s.LogInfo(ctx, "Book created", slog.String("book_id", book.BookID), slog.String("business_id", businessID))
	return book, nil
}

// UpdateBook renames a book and/or changes its currency, mirroring the full
// returned row so the replica keeps any server-computed columns. The
// mirrored balance survives the update.
func (s *BookService) UpdateBook(ctx context.Context, who domain.Identity, bookID string, req dto.UpdateBookRequest) (*domain.Book, error) {
	book, err := s.gw.Books.UpdateBook(ctx, bookID, req.Name, req.Currency)
	if err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	if prev, ok := s.Replica.Book(bookID); ok {
		book.Balance = prev.Balance
	}
	s.MirrorConfirmed(ctx, "update book", func(tx *replica.Tx) error {
		tx.PutBook(*book)
		return nil
	})
	return book, nil
}

// DuplicateBook copies a book with its structure via the remote procedure,
// then runs a full sync so the copy and its rows appear locally.
func (s *BookService) DuplicateBook(ctx context.Context, who domain.Identity, bookID string, req dto.DuplicateBookRequest) (string, error) {
	newBookID, err := s.gw.Books.DuplicateBook(ctx, bookID, req.NewName, who.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to duplicate book: %w", err)
	}

	if err := s.sync.SyncAll(ctx, who); err != nil {
		s.LogError(ctx, err, "Sync after book duplication failed", slog.String("book_id", bookID))
	}

	s.LogInfo(ctx, "Book duplicated", slog.String("book_id", bookID), slog.String("new_book_id", newBookID))
	return newBookID, nil
}

// TransferBook moves a book to another business via the remote procedure.
// The moved book's rows leave the caller's authorized set, so they are swept
// locally.
func (s *BookService) TransferBook(ctx context.Context, who domain.Identity, bookID string, req dto.TransferBookRequest) error {
	if err := s.gw.Books.TransferBook(ctx, bookID, req.NewBusinessID); err != nil {
		return fmt.Errorf("failed to transfer book: %w", err)
	}

	s.MirrorConfirmed(ctx, "transfer book", func(tx *replica.Tx) error {
		sweepBook(tx, bookID)
		return nil
	})

	s.LogInfo(ctx, "Book transferred", slog.String("book_id", bookID), slog.String("new_business_id", req.NewBusinessID))
	return nil
}

// DeleteBook runs the remote cascade procedure, then removes the book and
// every row scoped to it in one exclusive block.
func (s *BookService) DeleteBook(ctx context.Context, who domain.Identity, bookID string) error {
	if err := s.gw.Books.DeleteBookCascade(ctx, bookID); err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	s.MirrorConfirmed(ctx, "delete book", func(tx *replica.Tx) error {
		sweepBook(tx, bookID)
		return nil
	})

	s.LogInfo(ctx, "Book deleted", slog.String("book_id", bookID))
	return nil
}

// sweepBook removes a book and every row scoped to it.
func sweepBook(tx *replica.Tx, bookID string) {
	tx.DeleteTransactionsByBook(bookID)
	tx.DeleteBookMembersByBook(bookID)
	tx.DeleteCustomFieldsByBook(bookID)
	tx.DeleteBook(bookID)
}

// AddCustomField adds a named entry field definition to a book. Field names
// are unique per book; the remote rejection surfaces as a duplicate error.
func (s *BookService) AddCustomField(ctx context.Context, who domain.Identity, bookID string, req dto.CreateCustomFieldRequest) (*domain.BookCustomField, error) {
	field, err := s.gw.Books.InsertCustomField(ctx, bookID, req.FieldName)
	if err != nil {
		return nil, fmt.Errorf("failed to add custom field: %w", err)
	}

	s.MirrorConfirmed(ctx, "add custom field", func(tx *replica.Tx) error {
		tx.PutCustomField(*field)
		return nil
	})
	return field, nil
}

// SetCustomFieldEnabled flips whether the field shows on the entry form.
func (s *BookService) SetCustomFieldEnabled(ctx context.Context, who domain.Identity, fieldID string, enabled bool) error {
	field, err := s.gw.Books.SetCustomFieldEnabled(ctx, fieldID, enabled)
	if err != nil {
		return fmt.Errorf("failed to update custom field: %w", err)
	}

	s.MirrorConfirmed(ctx, "toggle custom field", func(tx *replica.Tx) error {
		tx.PutCustomField(*field)
		return nil
	})
	return nil
}

// SetCustomFieldRequired flips whether the field must be filled on entry.
func (s *BookService) SetCustomFieldRequired(ctx context.Context, who domain.Identity, fieldID string, required bool) error {
	field, err := s.gw.Books.SetCustomFieldRequired(ctx, fieldID, required)
	if err != nil {
		return fmt.Errorf("failed to update custom field: %w", err)
	}

	s.MirrorConfirmed(ctx, "toggle custom field required", func(tx *replica.Tx) error {
		tx.PutCustomField(*field)
		return nil
	})
	return nil
}

// DeleteCustomField removes a field definition. Values already recorded on
// transactions keep their map entries; only the definition goes away.
func (s *BookService) DeleteCustomField(ctx context.Context, who domain.Identity, fieldID string) error {
	if err := s.gw.Books.DeleteCustomField(ctx, fieldID); err != nil {
		return fmt.Errorf("failed to delete custom field: %w", err)
	}

	s.MirrorConfirmed(ctx, "delete custom field", func(tx *replica.Tx) error {
		tx.DeleteCustomField(fieldID)
		return nil
	})
	return nil
}
