// Package service contains the business logic that sits between the host
// surfaces (HTTP, CLI, MCP) and the entry store.
//
// Services validate what the store cannot know about (page size limits,
// date ranges, PIN unlocks), log failures, and wrap errors with the
// operation that failed. Errors created on purpose are *apperror.AppError,
// so callers can still branch with errors.Is.
package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/moodjournal/internal/apperror"
	"github.com/sakif/moodjournal/internal/metrics"
	"github.com/sakif/moodjournal/internal/model"
	"github.com/sakif/moodjournal/internal/repository"
	"github.com/sakif/moodjournal/internal/unlock"
	"github.com/sakif/moodjournal/internal/vocab"
)

const (
	DefaultPageSize    = 10
	DefaultMaxPageSize = 100
	DefaultRecentLimit = 5
)

// JournalConfig tunes a JournalService. Zero values fall back to defaults.
type JournalConfig struct {
	UnlockTTL   time.Duration
	MaxPageSize int
	Metrics     *metrics.Metrics
}

type JournalService struct {
	repo    repository.EntryRepository
	unlocks *unlock.Cache
	cfg     JournalConfig
	logger  *slog.Logger
	now     func() time.Time
}

func NewJournalService(repo repository.EntryRepository, unlocks *unlock.Cache, cfg JournalConfig, logger *slog.Logger) *JournalService {
	if cfg.UnlockTTL <= 0 {
		cfg.UnlockTTL = unlock.DefaultTTL
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = DefaultMaxPageSize
	}
	if unlocks == nil {
		unlocks = unlock.NewCache()
	}
	return &JournalService{
		repo:    repo,
		unlocks: unlocks,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Save creates or replaces the entry for in.Date. When no category is given
// it is taken from the mood taxonomy.
func (s *JournalService) Save(ctx context.Context, in model.EntryInput) (*model.JournalEntry, error) {
	if strings.TrimSpace(in.PrimaryCategory) == "" {
		in.PrimaryCategory = string(model.CategoryFor(in.PrimaryMood))
	}

	entry, err := s.repo.Save(ctx, in)
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			s.cfg.Metrics.CountSave(metrics.SaveInvalid)
			return nil, err
		}
		s.cfg.Metrics.CountSave(metrics.SaveError)
		s.logger.Error("failed to save entry",
			slog.String("date", model.DateKeyOf(in.Date)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving entry: %w", err)
	}

	s.cfg.Metrics.CountSave(metrics.SaveOK)
	s.logger.Info("entry saved",
		slog.String("id", entry.ID),
		slog.String("date", entry.DateKey),
		slog.Bool("pin", entry.HasPin),
	)
	return entry, nil
}

// Get returns the raw entry for date, or nil when there is none. It does not
// enforce PIN protection; host surfaces should use Open.
func (s *JournalService) Get(ctx context.Context, date time.Time) (*model.JournalEntry, error) {
	entry, err := s.repo.GetByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("getting entry: %w", err)
	}
	return entry, nil
}

// Open returns an entry for display. A PIN-protected entry is only returned
// with its content when pin matches or the day is currently unlocked.
func (s *JournalService) Open(ctx context.Context, date time.Time, pin string) (*model.JournalEntry, error) {
	key := model.DateKeyOf(date)

	entry, err := s.Get(ctx, date)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, apperror.NotFound("entry", key)
	}
	if !entry.Locked() {
		return entry, nil
	}

	if pin = strings.TrimSpace(pin); pin != "" {
		if !pinMatches(entry.Pin, pin) {
			s.logger.Warn("wrong PIN for entry", slog.String("date", key))
			return nil, apperror.Forbidden("incorrect PIN")
		}
		s.unlocks.Unlock(key, s.now(), s.cfg.UnlockTTL)
		return entry, nil
	}

	if s.unlocks.IsUnlocked(key, s.now()) {
		return entry, nil
	}
	return nil, apperror.Forbidden("entry is locked")
}

// Unlock verifies pin and keeps the day readable for the configured TTL.
// Entries without a PIN are always readable; the returned expiry is then zero.
func (s *JournalService) Unlock(ctx context.Context, date time.Time, pin string) (time.Time, error) {
	key := model.DateKeyOf(date)

	entry, err := s.Get(ctx, date)
	if err != nil {
		return time.Time{}, err
	}
	if entry == nil {
		return time.Time{}, apperror.NotFound("entry", key)
	}
	if !entry.Locked() {
		return time.Time{}, nil
	}

	if !pinMatches(entry.Pin, strings.TrimSpace(pin)) {
		s.logger.Warn("wrong PIN for entry", slog.String("date", key))
		return time.Time{}, apperror.Forbidden("incorrect PIN")
	}

	until := s.unlocks.Unlock(key, s.now(), s.cfg.UnlockTTL)
	s.logger.Info("entry unlocked", slog.String("date", key), slog.Time("until", until))
	return until, nil
}

// Lock forgets any unlock for date.
func (s *JournalService) Lock(date time.Time) {
	s.unlocks.Lock(model.DateKeyOf(date))
}

func pinMatches(stored, given string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

// Delete removes the entry for date. Deleting a day without an entry is a
// no-op that reports zero rows.
func (s *JournalService) Delete(ctx context.Context, date time.Time) (int64, error) {
	key := model.DateKeyOf(date)

	n, err := s.repo.Delete(ctx, date)
	if err != nil {
		s.logger.Error("failed to delete entry",
			slog.String("date", key),
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("deleting entry: %w", err)
	}
	s.unlocks.Lock(key)

	if n > 0 {
		s.logger.Info("entry deleted", slog.String("date", key))
	}
	return n, nil
}

// Recent returns the latest updated entries with protected content removed.
func (s *JournalService) Recent(ctx context.Context, limit int) ([]model.JournalEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}

	entries, err := s.repo.Recent(ctx, limit)
	if err != nil {
		s.logger.Error("failed to list recent entries", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing recent entries: %w", err)
	}
	return scrubAll(entries), nil
}

// Range returns the entries in [from, to], oldest first, with protected
// content removed.
func (s *JournalService) Range(ctx context.Context, from, to time.Time) ([]model.JournalEntry, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}

	entries, err := s.repo.ByDateRange(ctx, from, to)
	if err != nil {
		s.logger.Error("failed to list entries by range", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing entries by range: %w", err)
	}
	return scrubAll(entries), nil
}

// Export is Range for bulk output.
func (s *JournalService) Export(ctx context.Context, from, to time.Time) ([]model.JournalEntry, error) {
	entries, err := s.Range(ctx, from, to)
	if err != nil {
		return nil, err
	}
	s.logger.Info("entries exported",
		slog.String("from", model.DateKeyOf(from)),
		slog.String("to", model.DateKeyOf(to)),
		slog.Int("count", len(entries)),
	)
	return entries, nil
}

// Search runs a filtered, sorted, paged query. Page size defaults to
// DefaultPageSize and is capped at the configured maximum.
func (s *JournalService) Search(ctx context.Context, spec model.SearchSpec) (*model.SearchResult, error) {
	if spec.PageSize <= 0 {
		spec.PageSize = DefaultPageSize
	}
	if spec.PageSize > s.cfg.MaxPageSize {
		spec.PageSize = s.cfg.MaxPageSize
	}
	if spec.From != nil && spec.To != nil {
		if err := checkRange(*spec.From, *spec.To); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	result, err := s.repo.Search(ctx, spec)
	s.cfg.Metrics.ObserveSearch(time.Since(start))
	if err != nil {
		s.logger.Error("failed to search entries", slog.String("error", err.Error()))
		return nil, fmt.Errorf("searching entries: %w", err)
	}

	s.logger.Debug("search completed",
		slog.Int("total", result.TotalCount),
		slog.Int("page", result.Page),
		slog.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// DistinctMoods returns every primary and secondary mood in use, one casing
// per mood, sorted case-insensitively.
func (s *JournalService) DistinctMoods(ctx context.Context) ([]string, error) {
	labels, err := s.repo.Labels(ctx)
	if err != nil {
		s.logger.Error("failed to scan moods", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing moods: %w", err)
	}

	var set vocab.Set
	for _, l := range labels {
		set.Add(l.PrimaryMood)
		set.Add(l.SecondaryMoods...)
	}
	return set.Values(), nil
}

// DistinctTags returns every tag in use, one casing per tag, sorted
// case-insensitively.
func (s *JournalService) DistinctTags(ctx context.Context) ([]string, error) {
	labels, err := s.repo.Labels(ctx)
	if err != nil {
		s.logger.Error("failed to scan tags", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	var set vocab.Set
	for _, l := range labels {
		set.Add(l.Tags...)
	}
	return set.Values(), nil
}

func checkRange(from, to time.Time) error {
	if model.DateKeyOf(from) > model.DateKeyOf(to) {
		return apperror.ValidationFailed("from", "start date must not be after end date")
	}
	return nil
}

func scrubAll(entries []model.JournalEntry) []model.JournalEntry {
	for i := range entries {
		entries[i] = entries[i].Scrubbed()
	}
	return entries
}
