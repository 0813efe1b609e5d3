package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/sakif/moodjournal/internal/model"
	"github.com/sakif/moodjournal/internal/repository"
)

// TopN is how many moods or tags the dashboard ranks.
const TopN = 8

// DashboardService aggregates moods and tags over a date range.
type DashboardService struct {
	repo   repository.EntryRepository
	logger *slog.Logger
}

func NewDashboardService(repo repository.EntryRepository, logger *slog.Logger) *DashboardService {
	return &DashboardService{repo: repo, logger: logger}
}

// Summary computes category shares, mood ranking and tag ranking for the
// entries in [from, to].
func (s *DashboardService) Summary(ctx context.Context, from, to time.Time) (*model.MoodSummary, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}

	entries, err := s.repo.ByDateRange(ctx, from, to)
	if err != nil {
		s.logger.Error("failed to load entries for summary", slog.String("error", err.Error()))
		return nil, fmt.Errorf("summarizing entries: %w", err)
	}

	sum := &model.MoodSummary{
		From:           model.DateKeyOf(from),
		To:             model.DateKeyOf(to),
		TopMoods:       []model.LabelStat{},
		TagsByMentions: []model.LabelStat{},
		TopTagsByEntry: []model.LabelStat{},
	}

	moods := newTally()
	tagMentions := newTally()
	tagEntries := newTally()
	tagged := 0

	for _, e := range entries {
		switch e.PrimaryCategory {
		case model.CategoryPositive:
			sum.PositiveCount++
		case model.CategoryNeutral:
			sum.NeutralCount++
		case model.CategoryNegative:
			sum.NegativeCount++
		}

		moods.add(e.PrimaryMood)

		if len(e.Tags) == 0 {
			continue
		}
		tagged++
		for _, t := range e.Tags {
			tagMentions.add(t)
		}
		for _, t := range lo.UniqBy(e.Tags, strings.ToLower) {
			tagEntries.add(t)
		}
	}

	sum.Total = sum.PositiveCount + sum.NeutralCount + sum.NegativeCount
	if sum.Total == 0 {
		return sum, nil
	}

	sum.PositivePercent = percent(sum.PositiveCount, sum.Total)
	sum.NeutralPercent = percent(sum.NeutralCount, sum.Total)
	sum.NegativePercent = 100 - sum.PositivePercent - sum.NeutralPercent

	if ranked := moods.ranked(); len(ranked) > 0 {
		total := moods.total()
		sum.MostFrequentMood = withPercent(ranked[0], total)
		sum.TopMoods = lo.Map(lo.Slice(ranked, 0, TopN), func(st model.LabelStat, _ int) model.LabelStat {
			return withPercent(st, total)
		})
	}

	sum.TagsByMentions = tagMentions.ranked()

	if tagged > 0 {
		sum.TopTagsByEntry = lo.Map(lo.Slice(tagEntries.ranked(), 0, TopN), func(st model.LabelStat, _ int) model.LabelStat {
			return withPercent(st, tagged)
		})
	}

	return sum, nil
}

// percent rounds half to even.
func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.RoundToEven(float64(part) * 100 / float64(total)))
}

func withPercent(st model.LabelStat, total int) model.LabelStat {
	st.Percent = percent(st.Count, total)
	return st
}

// tally counts labels case-insensitively, keeping the first casing seen.
type tally struct {
	order  []string // folded keys, first-seen order
	names  map[string]string
	counts map[string]int
}

func newTally() *tally {
	return &tally{names: map[string]string{}, counts: map[string]int{}}
}

func (t *tally) add(label string) {
	label = strings.TrimSpace(label)
	if label == "" {
		return
	}
	key := strings.ToLower(label)
	if _, ok := t.names[key]; !ok {
		t.names[key] = label
		t.order = append(t.order, key)
	}
	t.counts[key]++
}

func (t *tally) total() int {
	return lo.Sum(lo.Values(t.counts))
}

// ranked orders labels by count, highest first. Ties keep first-seen order.
func (t *tally) ranked() []model.LabelStat {
	out := lo.Map(t.order, func(key string, _ int) model.LabelStat {
		return model.LabelStat{Name: t.names[key], Count: t.counts[key]}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
