package postgres

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/university"
)

var universityColumns = []string{"university_id", "name", "country", "city", "ranking", "created_at"}

// UniversityRepository implements the university.Repository interface using PostgreSQL
type UniversityRepository struct {
	db *pgxpool.Pool
}

var _ university.Repository = (*UniversityRepository)(nil)

// GetByFilter retrieves one page of universities following a filter together with the total amount of matches
func (repo *UniversityRepository) GetByFilter(ctx context.Context, filter *university.Filter) ([]*university.University, uint64, error) {
	conditions := squirrel.And{}
	if filter.Country != nil {
		conditions = append(conditions, equalFold("country", *filter.Country))
	}
	if filter.City != nil {
		conditions = append(conditions, equalFold("city", *filter.City))
	}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		conditions = append(conditions, squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"city": pattern},
			squirrel.ILike{"country": pattern},
		})
	}

	column, ok := university.SortColumns[filter.SortBy]
	if !ok {
		column = university.SortColumns[university.SortName]
	}
	return selectPage(ctx, repo.db, "universities", universityColumns, conditions,
		orderBy(column, filter.SortOrder, "university_id"), filter.Offset, filter.Limit, repo.rowToUniversity)
}

// GetByID retrieves a university by its ID
func (repo *UniversityRepository) GetByID(ctx context.Context, id uuid.UUID) (*university.University, error) {
	row := repo.db.QueryRow(ctx, "SELECT university_id, name, country, city, ranking, created_at FROM universities WHERE university_id = $1", id)
	obj, err := repo.rowToUniversity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return obj, nil
}

// Create stores a new university
func (repo *UniversityRepository) Create(ctx context.Context, obj *university.University) error {
	_, err := repo.db.Exec(ctx, "INSERT INTO universities VALUES ($1, $2, $3, $4, $5, $6)",
		obj.ID, obj.Name, obj.Country, obj.City, obj.Ranking, obj.CreatedAt)
	return err
}

// Delete deletes a university by its ID; its offers are removed by the foreign key cascade
func (repo *UniversityRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := repo.db.Exec(ctx, "DELETE FROM universities WHERE university_id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (repo *UniversityRepository) rowToUniversity(row pgx.Row) (*university.University, error) {
	obj := new(university.University)
	if err := row.Scan(&obj.ID, &obj.Name, &obj.Country, &obj.City, &obj.Ranking, &obj.CreatedAt); err != nil {
		return nil, err
	}
	obj.CreatedAt = obj.CreatedAt.UTC()
	return obj, nil
}
