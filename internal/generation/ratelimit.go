package generation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"server/internal/domain"
)

// RateLimitWindow is the trailing window the quota is derived from.
const RateLimitWindow = time.Hour

// DefaultLimit is the number of generations allowed per window.
const DefaultLimit = 5

// RateLimiter derives the per-user quota from the append-only generation
// log. The state is never stored; every check recounts the window.
//
// The check and the later record are separate calls, so two concurrent
// invocations can both pass before either records. That race is accepted:
// this is a soft quota, not a security boundary.
type RateLimiter struct {
	records domain.GenerationRepository
	limit   int
	logger  zerolog.Logger
	now     func() time.Time
}

func NewRateLimiter(records domain.GenerationRepository, limit int, logger zerolog.Logger) *RateLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &RateLimiter{records: records, limit: limit, logger: logger, now: time.Now}
}

// Check counts the user's in-window generations. Store errors fail open:
// the user keeps the full quota rather than being denied on a transient
// infrastructure failure.
func (l *RateLimiter) Check(ctx context.Context, userID string) domain.RateLimitStatus {
	since := l.now().Add(-RateLimitWindow)

	count, err := l.records.CountSince(ctx, userID, since)
	if err != nil {
		l.logger.Error().Err(err).Str("user_id", userID).Msg("rate limit check failed, allowing")
		return domain.RateLimitStatus{Allowed: true, Remaining: l.limit, Limit: l.limit}
	}

	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	status := domain.RateLimitStatus{
		Allowed:   count < l.limit,
		Remaining: remaining,
		Limit:     l.limit,
		Current:   count,
	}

	if !status.Allowed && count > 0 {
		oldest, err := l.records.OldestSince(ctx, userID, since)
		if err == nil {
			reset := oldest.Add(RateLimitWindow)
			status.ResetTime = &reset
		} else if !errors.Is(err, domain.ErrNotFound) {
			l.logger.Error().Err(err).Str("user_id", userID).Msg("reset time lookup failed")
		}
	}

	return status
}

// Record appends one generation record. Recording is best-effort
// bookkeeping: failures are logged and reported, never escalated.
func (l *RateLimiter) Record(ctx context.Context, userID, pdfName string) bool {
	rec := &domain.GenerationRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		PDFName:     pdfName,
		GeneratedAt: l.now(),
	}
	if err := l.records.Insert(ctx, rec); err != nil {
		l.logger.Error().Err(err).Str("user_id", userID).Msg("failed to record generation")
		return false
	}
	return true
}

// History lists the user's in-window generations, newest first. Errors
// degrade to an empty list.
func (l *RateLimiter) History(ctx context.Context, userID string) []domain.GenerationRecord {
	since := l.now().Add(-RateLimitWindow)
	recs, err := l.records.ListSince(ctx, userID, since)
	if err != nil {
		l.logger.Error().Err(err).Str("user_id", userID).Msg("failed to load generation history")
		return nil
	}
	return recs
}
