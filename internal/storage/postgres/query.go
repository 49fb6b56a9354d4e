package postgres

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/listing"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching every value that contains the given text
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}

// equalFold compares a text column with a value case-insensitively
func equalFold(column, value string) squirrel.Sqlizer {
	return squirrel.Expr("LOWER("+column+") = LOWER(?)", value)
}

// orderBy renders the ORDER BY clauses of a page; the primary key keeps the order stable
func orderBy(column string, order listing.SortOrder, key string) []string {
	direction := "DESC"
	if order == listing.Asc {
		direction = "ASC"
	}
	return []string{column + " " + direction, key + " ASC"}
}

// selectPage counts every row matching the conditions and scans one page of them
func selectPage[T any](ctx context.Context, db *pgxpool.Pool, table string, columns []string, conditions squirrel.And, order []string, offset, limit uint64, scan func(row pgx.Row) (T, error)) ([]T, uint64, error) {
	if limit == 0 {
		limit = 10
	}

	countSQL, countVals, err := squirrel.Select("COUNT(*)").From(table).Where(conditions).PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var n uint64
	if err := db.QueryRow(ctx, countSQL, countVals...).Scan(&n); err != nil {
		return nil, 0, err
	}
	if n == 0 || offset >= n {
		return []T{}, n, nil
	}

	pageSQL, pageVals, err := squirrel.Select(columns...).
		From(table).
		Where(conditions).
		OrderBy(order...).
		Offset(offset).
		Limit(limit).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := db.Query(ctx, pageSQL, pageVals...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	objs := []T{}
	for rows.Next() {
		obj, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		objs = append(objs, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return objs, n, nil
}
