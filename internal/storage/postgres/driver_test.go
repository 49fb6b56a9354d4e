package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/listing"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/offer"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/university"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%berlin%", containsPattern("berlin"))
	assert.Equal(t, `%100\%\_off\\%`, containsPattern(`100%_off\`))
}

func TestOrderBy(t *testing.T) {
	assert.Equal(t, []string{"tuition ASC", "offer_id ASC"}, orderBy("tuition", listing.Asc, "offer_id"))
	assert.Equal(t, []string{"created_at DESC", "offer_id ASC"}, orderBy("created_at", "", "offer_id"))
}

func TestDriver(t *testing.T) {
	dsn := os.Getenv("OFFERS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("OFFERS_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	driver := New(dsn)
	require.NoError(t, driver.Initialize(ctx))
	defer driver.Close()

	uni, err := university.OfDraft(&university.Draft{Name: "Test University", Country: "Testland", City: "Testville"}, time.Now())
	require.NoError(t, err)
	require.NoError(t, driver.Universities().Create(ctx, uni))
	defer driver.Universities().Delete(ctx, uni.ID)

	for _, title := range []string{"Alpha 100%", "Beta", "Gamma"} {
		obj, err := offer.OfDraft(&offer.Draft{
			Title:        title,
			UniversityID: uni.ID,
			Category:     offer.CategoryMaster,
			Country:      "Testland",
			Deadline:     time.Now().Add(24 * time.Hour),
			Tags:         []string{"test"},
		}, time.Now())
		require.NoError(t, err)
		require.NoError(t, driver.Offers().Create(ctx, obj))
	}

	filter, err := offer.FilterOfQuery(listing.Query{
		Filters:   listing.Filters{offer.FilterUniversityID: uni.ID.String()},
		Page:      1,
		Limit:     2,
		SortBy:    offer.SortTitle,
		SortOrder: listing.Asc,
	})
	require.NoError(t, err)
	page, total, err := driver.Offers().GetByFilter(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, "Alpha 100%", page[0].Title)
	assert.Equal(t, []string{"test"}, page[0].Tags)

	filter.Search = "100%"
	_, total, err = driver.Offers().GetByFilter(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)

	found, err := driver.Offers().GetByID(ctx, page[1].ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Beta", found.Title)

	deleted, err := driver.Universities().Delete(ctx, uni.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	found, err = driver.Offers().GetByID(ctx, page[1].ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}
