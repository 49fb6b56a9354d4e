package postgres

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/offer"
)

var offerColumns = []string{
	"offer_id", "title", "university_id", "category", "country", "city", "language", "tuition", "deadline",
	"scholarship", "tags", "created_at",
}

// OfferRepository implements the offer.Repository interface using PostgreSQL
type OfferRepository struct {
	db *pgxpool.Pool
}

var _ offer.Repository = (*OfferRepository)(nil)

// GetByFilter retrieves one page of offers following a filter together with the total amount of matching offers
func (repo *OfferRepository) GetByFilter(ctx context.Context, filter *offer.Filter) ([]*offer.Offer, uint64, error) {
	conditions := squirrel.And{}
	if filter.Category != nil {
		conditions = append(conditions, squirrel.Eq{"category": string(*filter.Category)})
	}
	if filter.Country != nil {
		conditions = append(conditions, equalFold("country", *filter.Country))
	}
	if filter.City != nil {
		conditions = append(conditions, equalFold("city", *filter.City))
	}
	if filter.Language != nil {
		conditions = append(conditions, equalFold("language", *filter.Language))
	}
	if filter.UniversityID != nil {
		conditions = append(conditions, squirrel.Eq{"university_id": *filter.UniversityID})
	}
	if filter.Scholarship != nil {
		conditions = append(conditions, squirrel.Eq{"scholarship": *filter.Scholarship})
	}
	if filter.MinTuition != nil {
		conditions = append(conditions, squirrel.GtOrEq{"tuition": *filter.MinTuition})
	}
	if filter.MaxTuition != nil {
		conditions = append(conditions, squirrel.LtOrEq{"tuition": *filter.MaxTuition})
	}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		conditions = append(conditions, squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"city": pattern},
			squirrel.ILike{"country": pattern},
		})
	}

	column, ok := offer.SortColumns[filter.SortBy]
	if !ok {
		column = offer.SortColumns[offer.SortCreatedAt]
	}
	return selectPage(ctx, repo.db, "offers", offerColumns, conditions, orderBy(column, filter.SortOrder, "offer_id"),
		filter.Offset, filter.Limit, repo.rowToOffer)
}

// GetByID retrieves an offer by its ID
func (repo *OfferRepository) GetByID(ctx context.Context, id uuid.UUID) (*offer.Offer, error) {
	query, args, err := squirrel.Select(offerColumns...).
		From("offers").
		Where(squirrel.Eq{"offer_id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}
	obj, err := repo.rowToOffer(repo.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return obj, nil
}

// Create stores a new offer
func (repo *OfferRepository) Create(ctx context.Context, obj *offer.Offer) error {
	query, args, err := squirrel.Insert("offers").
		Columns(offerColumns...).
		Values(obj.ID, obj.Title, obj.UniversityID, string(obj.Category), obj.Country, obj.City, obj.Language,
			obj.Tuition, obj.Deadline, obj.Scholarship, obj.Tags, obj.CreatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	_, err = repo.db.Exec(ctx, query, args...)
	return err
}

// Delete deletes an offer by its ID
func (repo *OfferRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := repo.db.Exec(ctx, "DELETE FROM offers WHERE offer_id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (repo *OfferRepository) rowToOffer(row pgx.Row) (*offer.Offer, error) {
	obj := new(offer.Offer)
	var category string
	if err := row.Scan(&obj.ID, &obj.Title, &obj.UniversityID, &category, &obj.Country, &obj.City, &obj.Language,
		&obj.Tuition, &obj.Deadline, &obj.Scholarship, &obj.Tags, &obj.CreatedAt); err != nil {
		return nil, err
	}
	obj.Category = offer.Category(category)
	obj.Deadline = obj.Deadline.UTC()
	obj.CreatedAt = obj.CreatedAt.UTC()
	return obj, nil
}
