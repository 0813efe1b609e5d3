package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/rs/xid"

	"github.com/sakif/moodjournal/internal/apperror"
	"github.com/sakif/moodjournal/internal/model"
	"github.com/sakif/moodjournal/internal/repository"
	"github.com/sakif/moodjournal/internal/sanitize"
)

var _ repository.CalendarEventRepository = (*DB)(nil)

const calendarEventsTable = "calendar_events"

var eventColumns = []string{"id", "title", "start_at", "end_at", "all_day", "notes", "created_at", "updated_at"}

// eventUpsertSuffix replaces an event in place; id and created_at stay.
const eventUpsertSuffix = `ON CONFLICT(id) DO UPDATE SET
	title = excluded.title,
	start_at = excluded.start_at,
	end_at = excluded.end_at,
	all_day = excluded.all_day,
	notes = excluded.notes,
	updated_at = excluded.updated_at`

type eventRow struct {
	ID        string         `db:"id"`
	Title     string         `db:"title"`
	StartAt   string         `db:"start_at"`
	EndAt     sql.NullString `db:"end_at"`
	AllDay    bool           `db:"all_day"`
	Notes     string         `db:"notes"`
	CreatedAt string         `db:"created_at"`
	UpdatedAt string         `db:"updated_at"`
}

func (r eventRow) toModel() model.CalendarEvent {
	ev := model.CalendarEvent{
		ID:        r.ID,
		Title:     r.Title,
		Start:     parseEventTime(r.StartAt),
		AllDay:    r.AllDay,
		Notes:     r.Notes,
		CreatedAt: parseTimestamp(r.CreatedAt),
		UpdatedAt: parseTimestamp(r.UpdatedAt),
	}
	if r.EndAt.Valid {
		end := parseEventTime(r.EndAt.String)
		ev.End = &end
	}
	return ev
}

func formatEventTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(model.EventTimeLayout)
}

func parseEventTime(s string) time.Time {
	t, err := time.Parse(model.EventTimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// GetEvent returns the event with id, or nil when there is none.
func (db *DB) GetEvent(ctx context.Context, id string) (*model.CalendarEvent, error) {
	id = strings.TrimSpace(id)

	stmt, args, err := sq.Select(eventColumns...).
		From(calendarEventsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, apperror.StorageFailed("building event lookup", err)
	}

	var row eventRow
	if err := db.conn.GetContext(ctx, &row, stmt, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.StorageFailed("getting event "+id, err)
	}

	ev := row.toModel()
	return &ev, nil
}

// ListEvents returns every event, earliest start first.
func (db *DB) ListEvents(ctx context.Context) ([]model.CalendarEvent, error) {
	return db.selectEvents(ctx, sq.Select(eventColumns...).From(calendarEventsTable), "listing events")
}

// EventsBetween returns events starting in [from, to), earliest first. A
// month view asks for [first of month, first of next month).
func (db *DB) EventsBetween(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
	b := sq.Select(eventColumns...).
		From(calendarEventsTable).
		Where(sq.GtOrEq{"start_at": formatEventTime(from)}).
		Where(sq.Lt{"start_at": formatEventTime(to)})

	return db.selectEvents(ctx, b, "listing events in range")
}

// SaveEvent creates an event, or replaces it when in.ID is already stored.
// An unknown non-empty ID is kept as the new event's ID.
func (db *DB) SaveEvent(ctx context.Context, in model.EventInput) (*model.CalendarEvent, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if in.Start.IsZero() {
		return nil, apperror.ValidationFailed("start", "start is required")
	}

	var end sql.NullString
	if in.End != nil {
		if in.End.Before(in.Start) {
			return nil, apperror.ValidationFailed("end", "end must not be before start")
		}
		end = sql.NullString{String: formatEventTime(*in.End), Valid: true}
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = xid.New().String()
	}

	ts := db.timestamp()
	stmt, args, err := sq.Insert(calendarEventsTable).
		Columns(eventColumns...).
		Values(id, title, formatEventTime(in.Start), end, in.AllDay, sanitize.PlainText(in.Notes), ts, ts).
		Suffix(eventUpsertSuffix).
		ToSql()
	if err != nil {
		return nil, apperror.StorageFailed("building event upsert", err)
	}

	if _, err := db.conn.ExecContext(ctx, stmt, args...); err != nil {
		return nil, apperror.StorageFailed("saving event "+id, err)
	}

	saved, err := db.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, apperror.StorageFailed("saving event "+id, errors.New("row missing after upsert"))
	}
	return saved, nil
}

// DeleteEvent removes an event and reports how many rows went away.
func (db *DB) DeleteEvent(ctx context.Context, id string) (int64, error) {
	stmt, args, err := sq.Delete(calendarEventsTable).Where(sq.Eq{"id": strings.TrimSpace(id)}).ToSql()
	if err != nil {
		return 0, apperror.StorageFailed("building event delete", err)
	}

	result, err := db.conn.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, apperror.StorageFailed("deleting event", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperror.StorageFailed("checking rows affected", err)
	}
	return n, nil
}

func (db *DB) selectEvents(ctx context.Context, b sq.SelectBuilder, op string) ([]model.CalendarEvent, error) {
	stmt, args, err := b.OrderBy("start_at ASC", "id ASC").ToSql()
	if err != nil {
		return nil, apperror.StorageFailed("building event query", err)
	}

	var rows []eventRow
	if err := db.conn.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return nil, apperror.StorageFailed(op, err)
	}

	events := make([]model.CalendarEvent, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.toModel())
	}
	return events, nil
}
