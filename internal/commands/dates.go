package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/sakif/moodjournal/internal/model"
)

// clock is swapped in tests.
var clock = time.Now

// parseDay accepts YYYY-MM-DD, "today" and "yesterday".
func parseDay(raw string) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "today":
		return model.ParseDateKey(model.DateKeyOf(clock()))
	case "yesterday":
		return model.ParseDateKey(model.DateKeyOf(clock().AddDate(0, 0, -1)))
	}
	d, err := model.ParseDateKey(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD, today or yesterday", raw)
	}
	return d, nil
}

func optionalDay(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := parseDay(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
