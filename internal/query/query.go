// Package query turns a model.SearchSpec into parameterized SQL.
//
// Caller input only ever reaches the database as bound arguments. Column
// names come from the allow-list below, never from the request.
//
// FILTERS:
// Every active filter becomes one predicate and the predicates are ANDed:
//   - title: substring match, LIKE wildcards in the input are escaped
//   - from / to: inclusive bounds on date_key (zero-padded, so text order
//     is calendar order)
//   - moods: any value equal to primary_mood or present in secondary_moods
//   - tags: any value present in tags
//
// Mood and tag values are split on the column delimiter first, so a caller
// passing "art,work" asks for art OR work, never for the literal token.
//
// CASE FOLDING:
// SQLite's LIKE and NOCASE only fold ASCII. Labels are deduplicated with
// Unicode lowercasing on write, so reads must fold the same way: columns are
// wrapped in FoldFunc and the bound values are lowercased in Go. The store
// registers FoldFunc with the driver before opening a connection.
//
// TOKEN MATCHING:
// Multi-valued columns hold "a,b,c". Wrapping the column as ",a,b,c," and
// matching "%,b,%" finds b as a whole token; "art" never matches "cart".
//
// PAGING:
// Pages are 1-based. A page whose offset does not fit in a signed 64-bit
// integer is past any possible row, see PastEnd.
package query

import (
	"math"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/sakif/moodjournal/internal/model"
	"github.com/sakif/moodjournal/internal/tagset"
)

// FoldFunc is the SQL function that lowercases text with Unicode rules.
const FoldFunc = "casefold"

const (
	Table = "journal_entries"

	ColID              = "id"
	ColDateKey         = "date_key"
	ColTitle           = "title"
	ColContent         = "content"
	ColHasPin          = "has_pin"
	ColPin             = "pin"
	ColPrimaryMood     = "primary_mood"
	ColSecondaryMoods  = "secondary_moods"
	ColPrimaryCategory = "primary_category"
	ColTags            = "tags"
	ColCreatedAt       = "created_at"
	ColUpdatedAt       = "updated_at"
)

// EntryColumns is the full projection of an entry row.
var EntryColumns = []string{
	ColID, ColDateKey, ColTitle, ColContent, ColHasPin, ColPin,
	ColPrimaryMood, ColSecondaryMoods, ColPrimaryCategory, ColTags,
	ColCreatedAt, ColUpdatedAt,
}

// sortColumns maps the public sort names onto real columns.
var sortColumns = map[model.SortColumn]string{
	model.SortDateKey:   ColDateKey,
	model.SortTitle:     ColTitle,
	model.SortCreatedAt: ColCreatedAt,
	model.SortUpdatedAt: ColUpdatedAt,
}

// Normalize clamps the page window to at least one row on page one and
// resolves unknown sort names to DateKey.
func Normalize(spec model.SearchSpec) model.SearchSpec {
	if spec.Page < 1 {
		spec.Page = 1
	}
	if spec.PageSize < 1 {
		spec.PageSize = 1
	}
	if _, ok := sortColumns[spec.Sort]; !ok {
		spec.Sort = model.SortDateKey
	}
	return spec
}

// SortColumn returns the column a (normalized) spec orders by.
func SortColumn(s model.SortColumn) string {
	if col, ok := sortColumns[s]; ok {
		return col
	}
	return ColDateKey
}

// Conditions returns one predicate per active filter. They are meant to be
// ANDed, one Where call each.
func Conditions(spec model.SearchSpec) []sq.Sqlizer {
	var conds []sq.Sqlizer

	if title := strings.TrimSpace(spec.TitleContains); title != "" {
		conds = append(conds, sq.Expr(fold(ColTitle)+` LIKE ? ESCAPE '\'`, "%"+tagset.EscapeLike(strings.ToLower(title))+"%"))
	}
	if spec.From != nil {
		conds = append(conds, sq.GtOrEq{ColDateKey: model.DateKeyOf(*spec.From)})
	}
	if spec.To != nil {
		conds = append(conds, sq.LtOrEq{ColDateKey: model.DateKeyOf(*spec.To)})
	}

	if moods := filterValues(spec.Moods); len(moods) > 0 {
		or := sq.Or{}
		for _, m := range moods {
			or = append(or, sq.Expr(fold(ColPrimaryMood)+" = ?", m))
			or = append(or, sq.Expr(fold(bounded(ColSecondaryMoods))+` LIKE ? ESCAPE '\'`, tagset.LikePattern(m)))
		}
		conds = append(conds, or)
	}

	if tags := filterValues(spec.Tags); len(tags) > 0 {
		or := sq.Or{}
		for _, tag := range tags {
			or = append(or, sq.Expr(fold(bounded(ColTags))+` LIKE ? ESCAPE '\'`, tagset.LikePattern(tag)))
		}
		conds = append(conds, or)
	}

	return conds
}

// filterValues splits mood or tag filters into single lowercased tokens.
func filterValues(values []string) []string {
	tokens := tagset.SplitAll(values)
	for i, v := range tokens {
		tokens[i] = strings.ToLower(v)
	}
	return tokens
}

// bounded wraps a delimited column in delimiters so LIKE can match whole tokens.
func bounded(col string) string {
	return "(',' || IFNULL(" + col + ", '') || ',')"
}

func fold(expr string) string {
	return FoldFunc + "(" + expr + ")"
}

func where(b sq.SelectBuilder, spec model.SearchSpec) sq.SelectBuilder {
	for _, c := range Conditions(spec) {
		b = b.Where(c)
	}
	return b
}

// CountQuery counts every row matching spec, ignoring the page window.
func CountQuery(spec model.SearchSpec) sq.SelectBuilder {
	return where(sq.Select("COUNT(*)").From(Table), spec)
}

// PastEnd reports whether the first row of spec's page lies beyond the
// largest offset SQLite accepts. Such a page is empty whatever the filters.
func PastEnd(spec model.SearchSpec) bool {
	spec = Normalize(spec)
	return int64(spec.Page-1) > math.MaxInt64/int64(spec.PageSize)
}

// offset is the row offset of spec's page, saturated at math.MaxInt64.
func offset(spec model.SearchSpec) uint64 {
	if PastEnd(spec) {
		return math.MaxInt64
	}
	return uint64(int64(spec.Page-1) * int64(spec.PageSize))
}

// PageQuery selects one page of rows matching spec. The date key breaks ties
// so paging is stable.
//
// ORDERING:
// The sort column comes from the allow-list; an unknown name sorts by date.
// Sorting by anything but the date appends date_key in the same direction,
// so rows with equal titles or timestamps never swap between pages.
func PageQuery(spec model.SearchSpec, columns ...string) sq.SelectBuilder {
	spec = Normalize(spec)
	if len(columns) == 0 {
		columns = EntryColumns
	}

	dir := " DESC"
	if spec.Ascending {
		dir = " ASC"
	}
	order := []string{SortColumn(spec.Sort) + dir}
	if SortColumn(spec.Sort) != ColDateKey {
		order = append(order, ColDateKey+dir)
	}

	return where(sq.Select(columns...).From(Table), spec).
		OrderBy(order...).
		Limit(uint64(spec.PageSize)).
		Offset(offset(spec))
}
