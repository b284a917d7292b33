package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayfinder-api/internal/database"
	"stayfinder-api/internal/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// seedFixtures loads two hotels: Aurora Bay (hotel 1) has a pool image
// and in-window availability; Meridian Garden (hotel 2) has a garden
// image and no availability rows at all.
func seedFixtures(t *testing.T, db *sql.DB) {
	t.Helper()

	statements := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO hotels (hotel_id, hotel_name, latitude, longitude) VALUES (?, ?, ?, ?)`,
			[]any{1, "Aurora Bay Resort", 25.7617, -80.1918}},
		{`INSERT INTO hotels (hotel_id, hotel_name, latitude, longitude) VALUES (?, ?, ?, ?)`,
			[]any{2, "Meridian Garden Inn", 34.0522, -118.2437}},
		{`INSERT INTO images (image_id, hotel_id, storage_key) VALUES (?, ?, ?)`,
			[]any{"img-1", 1, "images/train/img-1.jpg"}},
		{`INSERT INTO images (image_id, hotel_id, storage_key) VALUES (?, ?, ?)`,
			[]any{"img-2", 2, "images/train/img-2.jpg"}},
		{`INSERT INTO image_tags (image_id, tag_name, confidence_score) VALUES (?, ?, ?)`,
			[]any{"img-1", "Swimming Pool", 0.97}},
		{`INSERT INTO image_tags (image_id, tag_name, confidence_score) VALUES (?, ?, ?)`,
			[]any{"img-1", "palm tree", 0.82}},
		{`INSERT INTO image_tags (image_id, tag_name, confidence_score) VALUES (?, ?, ?)`,
			[]any{"img-2", "garden", 0.90}},
	}

	for _, stmt := range statements {
		_, err := db.Exec(stmt.query, stmt.args...)
		require.NoError(t, err)
	}

	// Nightly prices 100, 110, 120, 130 for April 5-8 at hotel 1.
	for i := 0; i < 4; i++ {
		_, err := db.Exec(`
			INSERT INTO availability_price (hotel_id, date, availability, price, currency)
			VALUES (?, ?, ?, ?, 'USD')
		`, 1, time.Date(2025, 4, 5+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), 2, 100+10*i)
		require.NoError(t, err)
	}
}

func window(min, max float64, start, end time.Time) models.SearchQuery {
	return models.SearchQuery{
		MinPrice:  &min,
		MaxPrice:  &max,
		StartDate: &start,
		EndDate:   &end,
	}
}

func TestSearchEmptyTag(t *testing.T) {
	db := openTestDB(t)
	seedFixtures(t, db)
	s := NewImageStore(db)

	records, err := s.Search(context.Background(), models.SearchQuery{Tag: ""})
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = s.Search(context.Background(), models.SearchQuery{Tag: "   "})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearchCaseInsensitiveSubstring(t *testing.T) {
	db := openTestDB(t)
	seedFixtures(t, db)
	s := NewImageStore(db)

	records, err := s.Search(context.Background(), models.SearchQuery{Tag: "POOL"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "img-1", records[0].ImageID)
	assert.Equal(t, "Aurora Bay Resort", records[0].HotelName)
}

func TestSearchReturnsCompleteTagList(t *testing.T) {
	db := openTestDB(t)
	seedFixtures(t, db)
	s := NewImageStore(db)

	records, err := s.Search(context.Background(), models.SearchQuery{Tag: "pool"})
	require.NoError(t, err)
	require.Len(t, records, 1)

	// The palm tree tag did not match the query but must still be in
	// the result.
	names := make([]string, 0, len(records[0].Tags))
	for _, tag := range records[0].Tags {
		names = append(names, tag.TagName)
	}
	assert.ElementsMatch(t, []string{"Swimming Pool", "palm tree"}, names)
}

func TestSearchNoMatch(t *testing.T) {
	db := openTestDB(t)
	seedFixtures(t, db)
	s := NewImageStore(db)

	records, err := s.Search(context.Background(), models.SearchQuery{Tag: "sauna"})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearchWithoutWindowHasNoPrice(t *testing.T) {
	db := openTestDB(t)
	seedFixtures(t, db)
	s := NewImageStore(db)

	records, err := s.Search(context.Background(), models.SearchQuery{Tag: "pool"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].AvgPricePerNight)
}

func TestSearchAvailabilityWindow(t *testing.T) {
	db := openTestDB(t)
	seedFixtures(t, db)
	s := NewImageStore(db)

	q := window(80, 200,
		time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 8, 0, 0, 0, 0, time.UTC))
	q.Tag = "pool"

	records, err := s.Search(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].AvgPricePerNight)
	// Mean of 100, 110, 120, 130.
	assert.InDelta(t, 115.0, *records[0].AvgPricePerNight, 0.001)
}

func TestSearchWindowExcludesHotelsWithoutAvailability(t *testing.T) {
	db := openTestDB(t)
	seedFixtures(t, db)
	s := NewImageStore(db)

	// Hotel 2 matches the tag but has no availability rows, so the
	// windowed search must exclude it.
	q := window(80, 200,
		time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 8, 0, 0, 0, 0, time.UTC))
	q.Tag = "garden"

	records, err := s.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, records)

	// Without the window it is a plain tag match.
	records, err = s.Search(context.Background(), models.SearchQuery{Tag: "garden"})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestSearchWindowExcludesOutOfRangePrices(t *testing.T) {
	db := openTestDB(t)
	seedFixtures(t, db)
	s := NewImageStore(db)

	q := window(500, 900,
		time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 8, 0, 0, 0, 0, time.UTC))
	q.Tag = "pool"

	records, err := s.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGetByID(t *testing.T) {
	db := openTestDB(t)
	seedFixtures(t, db)
	s := NewImageStore(db)

	rec, err := s.GetByID(context.Background(), "img-2")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "images/train/img-2.jpg", rec.StorageKey)
	assert.Equal(t, "Meridian Garden Inn", rec.HotelName)
	require.Len(t, rec.Tags, 1)
	assert.Equal(t, "garden", rec.Tags[0].TagName)
}

func TestGetByIDNotFound(t *testing.T) {
	db := openTestDB(t)
	seedFixtures(t, db)
	s := NewImageStore(db)

	rec, err := s.GetByID(context.Background(), "img-missing")
	require.NoError(t, err)
	assert.Nil(t, rec)
}
