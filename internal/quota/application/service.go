package application

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/reelgate/internal/quota/domain"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
)

// Service binds a Tracker to the clock so callers work in terms of "today".
type Service struct {
	tracker domain.Tracker
	clock   sharedDomain.Clock
	logger  *slog.Logger
}

// NewService creates a new quota service.
func NewService(tracker domain.Tracker, clock sharedDomain.Clock, logger *slog.Logger) *Service {
	if clock == nil {
		clock = sharedDomain.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{tracker: tracker, clock: clock, logger: logger}
}

// Today returns the current UTC calendar day.
func (s *Service) Today() sharedDomain.Day {
	return sharedDomain.Today(s.clock)
}

// ConsumedToday returns the user's count for today.
func (s *Service) ConsumedToday(ctx context.Context, userID sharedDomain.UserID) (int, error) {
	return s.tracker.ConsumedToday(ctx, userID, s.Today())
}

// ConsumedOn returns the user's count for a specific day. Callers that read
// and then commit pass the same day to both so a request straddling midnight
// is judged against one day.
func (s *Service) ConsumedOn(ctx context.Context, userID sharedDomain.UserID, day sharedDomain.Day) (int, error) {
	return s.tracker.ConsumedToday(ctx, userID, day)
}

// RecordView counts one delivered unit for day and returns the new total.
func (s *Service) RecordView(ctx context.Context, userID sharedDomain.UserID, day sharedDomain.Day) (int, error) {
	total, err := s.tracker.Increment(ctx, userID, day)
	if err != nil {
		return 0, err
	}
	s.logger.Debug("view recorded", "user_id", userID.String(), "day", day.String(), "total", total)
	return total, nil
}

// RecordViewWithin counts one delivered unit only if the day's total is
// below ceiling. ok is false when the ceiling was already reached.
func (s *Service) RecordViewWithin(ctx context.Context, userID sharedDomain.UserID, day sharedDomain.Day, ceiling int) (total int, ok bool, err error) {
	total, ok, err = s.tracker.IncrementIfBelow(ctx, userID, day, ceiling)
	if err != nil {
		return 0, false, err
	}
	if ok {
		s.logger.Debug("view recorded", "user_id", userID.String(), "day", day.String(), "total", total, "ceiling", ceiling)
	}
	return total, ok, nil
}
