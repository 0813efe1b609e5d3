package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/moodjournal/internal/apperror"
	"github.com/sakif/moodjournal/internal/model"
	"github.com/sakif/moodjournal/internal/repository"
	"github.com/sakif/moodjournal/internal/vocab"
)

// CustomTagService manages user-defined tag names.
type CustomTagService struct {
	repo   repository.CustomTagRepository
	logger *slog.Logger
}

func NewCustomTagService(repo repository.CustomTagRepository, logger *slog.Logger) *CustomTagService {
	return &CustomTagService{repo: repo, logger: logger}
}

func (s *CustomTagService) List(ctx context.Context) ([]model.CustomTag, error) {
	tags, err := s.repo.ListCustomTags(ctx)
	if err != nil {
		s.logger.Error("failed to list custom tags", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing custom tags: %w", err)
	}
	return tags, nil
}

func (s *CustomTagService) Add(ctx context.Context, name string) (*model.CustomTag, error) {
	tag, err := s.repo.AddCustomTag(ctx, name)
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) || errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to add custom tag",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("adding custom tag: %w", err)
	}

	s.logger.Info("custom tag added", slog.String("id", tag.ID), slog.String("name", tag.Name))
	return tag, nil
}

func (s *CustomTagService) Delete(ctx context.Context, id string) (int64, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, apperror.ValidationFailed("id", "custom tag ID is required")
	}

	n, err := s.repo.DeleteCustomTag(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete custom tag", slog.String("id", id), slog.String("error", err.Error()))
		return 0, fmt.Errorf("deleting custom tag: %w", err)
	}
	return n, nil
}

func (s *CustomTagService) DeleteByName(ctx context.Context, name string) (int64, error) {
	n, err := s.repo.DeleteCustomTagByName(ctx, name)
	if err != nil {
		s.logger.Error("failed to delete custom tag", slog.String("name", name), slog.String("error", err.Error()))
		return 0, fmt.Errorf("deleting custom tag: %w", err)
	}
	return n, nil
}

// Suggestions merges custom tags with the tags already used on entries.
func (s *CustomTagService) Suggestions(ctx context.Context, inUse []string) ([]string, error) {
	custom, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var set vocab.Set
	for _, t := range custom {
		set.Add(t.Name)
	}
	set.Add(inUse...)
	return set.Values(), nil
}
