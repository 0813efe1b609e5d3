package sqlite

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/rs/xid"

	"github.com/sakif/moodjournal/internal/apperror"
	"github.com/sakif/moodjournal/internal/model"
	"github.com/sakif/moodjournal/internal/repository"
	"github.com/sakif/moodjournal/internal/tagset"
)

var _ repository.CustomTagRepository = (*DB)(nil)

const customTagsTable = "custom_tags"

type customTagRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	CreatedAt string `db:"created_at"`
}

// ListCustomTags returns all custom tags ordered by name, ignoring case.
func (db *DB) ListCustomTags(ctx context.Context) ([]model.CustomTag, error) {
	stmt, args, err := sq.Select("id", "name", "created_at").
		From(customTagsTable).
		OrderBy("name_normalized ASC").
		ToSql()
	if err != nil {
		return nil, apperror.StorageFailed("building custom tag query", err)
	}

	var rows []customTagRow
	if err := db.conn.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return nil, apperror.StorageFailed("listing custom tags", err)
	}

	tags := make([]model.CustomTag, 0, len(rows))
	for _, r := range rows {
		tags = append(tags, model.CustomTag{ID: r.ID, Name: r.Name, CreatedAt: parseTimestamp(r.CreatedAt)})
	}
	return tags, nil
}

// AddCustomTag stores a new tag name. A name that differs from an existing
// one only by case is a conflict.
func (db *DB) AddCustomTag(ctx context.Context, name string) (*model.CustomTag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "tag name is required")
	}
	if _, found := tagset.HasDelimiter(name); found {
		return nil, apperror.ValidationFailed("name", "tag name must not contain a comma")
	}

	ts := db.timestamp()
	tag := &model.CustomTag{ID: xid.New().String(), Name: name, CreatedAt: parseTimestamp(ts)}

	stmt, args, err := sq.Insert(customTagsTable).
		Columns("id", "name", "name_normalized", "created_at").
		Values(tag.ID, tag.Name, strings.ToLower(name), ts).
		Suffix("ON CONFLICT(name_normalized) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, apperror.StorageFailed("building custom tag insert", err)
	}

	result, err := db.conn.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, apperror.StorageFailed("adding custom tag "+name, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, apperror.StorageFailed("checking rows affected", err)
	}
	if n == 0 {
		return nil, apperror.Conflict("custom tag", name)
	}

	return tag, nil
}

// DeleteCustomTag removes a tag by id and reports how many rows went away.
func (db *DB) DeleteCustomTag(ctx context.Context, id string) (int64, error) {
	return db.deleteCustomTags(ctx, sq.Eq{"id": strings.TrimSpace(id)})
}

// DeleteCustomTagByName removes a tag by name, ignoring case.
func (db *DB) DeleteCustomTagByName(ctx context.Context, name string) (int64, error) {
	return db.deleteCustomTags(ctx, sq.Eq{"name_normalized": strings.ToLower(strings.TrimSpace(name))})
}

func (db *DB) deleteCustomTags(ctx context.Context, pred sq.Eq) (int64, error) {
	stmt, args, err := sq.Delete(customTagsTable).Where(pred).ToSql()
	if err != nil {
		return 0, apperror.StorageFailed("building custom tag delete", err)
	}

	result, err := db.conn.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, apperror.StorageFailed("deleting custom tag", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperror.StorageFailed("checking rows affected", err)
	}
	return n, nil
}
