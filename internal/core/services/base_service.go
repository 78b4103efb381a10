package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/finotbook/cashbook/internal/apperrors"
	"github.com/finotbook/cashbook/internal/core/domain"
	"github.com/finotbook/cashbook/internal/middleware"
	"github.com/finotbook/cashbook/internal/replica"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Replica *replica.Store
	// Resync schedules a background full sync. It is invoked when mirroring
	// a confirmed remote write into the replica fails, so the replica heals
	// from the remote store instead of surfacing a failure for a write that
	// already happened.
	Resync func()
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, keyvals...)
}

// AuthorizeMember checks that the user holds one of the allowed roles in the
// business, based on the locally replicated membership rows.
func (s *BaseService) AuthorizeMember(ctx context.Context, userID, businessID string, allowed ...domain.MemberRole) error {
	role, ok := s.Replica.MemberRole(businessID, userID)
	if !ok {
		return fmt.Errorf("%w: user %s is not a member of business %s", apperrors.ErrForbidden, userID, businessID)
	}
	for _, r := range allowed {
		if role == r {
			return nil
		}
	}
	return fmt.Errorf("%w: role %s may not perform this action", apperrors.ErrForbidden, role)
}

// MirrorConfirmed applies a local replica mutation for a write the remote
// store has already confirmed. When the mutation fails the error is not
// returned to the caller: the remote write succeeded, so the replica is
// healed by a background full sync instead.
func (s *BaseService) MirrorConfirmed(ctx context.Context, what string, fn func(tx *replica.Tx) error) {
	if err := s.Replica.RunExclusive(ctx, fn); err != nil {
		s.LogError(ctx, err, "Failed to mirror confirmed remote write, scheduling re-sync", slog.String("write", what))
		if s.Resync != nil {
			s.Resync()
		}
	}
}
