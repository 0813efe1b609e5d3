package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/moodjournal/internal/model"
	"github.com/sakif/moodjournal/internal/repository"
	"github.com/sakif/moodjournal/internal/streak"
)

// StreakService feeds every stored date into the streak calculator.
type StreakService struct {
	repo   repository.EntryRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewStreakService(repo repository.EntryRepository, logger *slog.Logger) *StreakService {
	return &StreakService{repo: repo, logger: logger, now: time.Now}
}

// Calculate reports the streaks as of today. Malformed stored date keys are
// skipped with a warning instead of failing the whole calculation.
func (s *StreakService) Calculate(ctx context.Context) (model.StreakResult, error) {
	keys, err := s.repo.DateKeys(ctx)
	if err != nil {
		s.logger.Error("failed to load date keys", slog.String("error", err.Error()))
		return model.StreakResult{}, fmt.Errorf("calculating streaks: %w", err)
	}

	dates := make([]time.Time, 0, len(keys))
	for _, k := range keys {
		d, err := model.ParseDateKey(k)
		if err != nil {
			s.logger.Warn("skipping malformed date key",
				slog.String("key", k),
				slog.String("error", err.Error()),
			)
			continue
		}
		dates = append(dates, d)
	}

	return streak.Calculate(dates, s.now()), nil
}
