package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/moodjournal/internal/apperror"
	"github.com/sakif/moodjournal/internal/model"
	"github.com/sakif/moodjournal/internal/repository"
)

// CalendarService manages calendar events shown alongside journal days.
type CalendarService struct {
	repo   repository.CalendarEventRepository
	logger *slog.Logger
}

func NewCalendarService(repo repository.CalendarEventRepository, logger *slog.Logger) *CalendarService {
	return &CalendarService{repo: repo, logger: logger}
}

// List returns events starting in [from, to). With both bounds nil it
// returns every event; a single bound is a validation error.
func (s *CalendarService) List(ctx context.Context, from, to *time.Time) ([]model.CalendarEvent, error) {
	var (
		events []model.CalendarEvent
		err    error
	)
	switch {
	case from == nil && to == nil:
		events, err = s.repo.ListEvents(ctx)
	case from == nil:
		return nil, apperror.ValidationFailed("from", "from is required when to is given")
	case to == nil:
		return nil, apperror.ValidationFailed("to", "to is required when from is given")
	case !from.Before(*to):
		return nil, apperror.ValidationFailed("to", "to must be after from")
	default:
		events, err = s.repo.EventsBetween(ctx, *from, *to)
	}
	if err != nil {
		s.logger.Error("failed to list events", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}

// Month returns the events starting in the given calendar month (UTC).
func (s *CalendarService) Month(ctx context.Context, year int, month time.Month) ([]model.CalendarEvent, error) {
	from, to := model.MonthRange(year, month)
	return s.List(ctx, &from, &to)
}

func (s *CalendarService) Get(ctx context.Context, id string) (*model.CalendarEvent, error) {
	id = strings.TrimSpace(id)
	ev, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		s.logger.Error("failed to get event", slog.String("id", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("getting event: %w", err)
	}
	if ev == nil {
		return nil, apperror.NotFound("event", id)
	}
	return ev, nil
}

// Save creates or replaces an event.
func (s *CalendarService) Save(ctx context.Context, in model.EventInput) (*model.CalendarEvent, error) {
	ev, err := s.repo.SaveEvent(ctx, in)
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			return nil, err
		}
		s.logger.Error("failed to save event",
			slog.String("title", in.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving event: %w", err)
	}

	s.logger.Info("event saved",
		slog.String("id", ev.ID),
		slog.Time("start", ev.Start),
		slog.Bool("allDay", ev.AllDay),
	)
	return ev, nil
}

// Delete removes an event. Deleting an unknown ID reports zero rows.
func (s *CalendarService) Delete(ctx context.Context, id string) (int64, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, apperror.ValidationFailed("id", "event ID is required")
	}

	n, err := s.repo.DeleteEvent(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete event", slog.String("id", id), slog.String("error", err.Error()))
		return 0, fmt.Errorf("deleting event: %w", err)
	}
	return n, nil
}
