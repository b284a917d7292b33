package handlers_test

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayfinder-api/internal/database"
	"stayfinder-api/internal/handlers"
	"stayfinder-api/internal/models"
	"stayfinder-api/internal/router"
	"stayfinder-api/internal/services"
	"stayfinder-api/internal/store"
)

type stubSigner struct {
	err error
}

func (s *stubSigner) SignedLink(key string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("https://storage.example.com/bucket/%s?X-Goog-Date=%s&X-Goog-Expires=3600&X-Goog-Signature=sig",
		key, time.Now().UTC().Format("20060102T150405Z")), nil
}

func newTestHandler(t *testing.T, signer services.LinkSigner) http.Handler {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	seedScenario(t, db)

	svc := services.NewSearchService(store.NewImageStore(db), signer)
	return router.Setup(handlers.New(svc))
}

// seedScenario sets up the pool scenario: hotel 1 has a pool-tagged
// image and April 5-8 availability priced 100-130; hotel 2 has a
// pool-tagged image but no availability.
func seedScenario(t *testing.T, db *sql.DB) {
	t.Helper()

	for _, q := range []string{
		`INSERT INTO hotels (hotel_id, hotel_name, latitude, longitude) VALUES (1, 'Aurora Bay Resort', 25.7617, -80.1918)`,
		`INSERT INTO hotels (hotel_id, hotel_name, latitude, longitude) VALUES (2, 'Meridian Garden Inn', 34.0522, -118.2437)`,
		`INSERT INTO images (image_id, hotel_id, storage_key) VALUES ('img-1', 1, 'images/train/img-1.jpg')`,
		`INSERT INTO images (image_id, hotel_id, storage_key) VALUES ('img-2', 2, 'images/train/img-2.jpg')`,
		`INSERT INTO image_tags (image_id, tag_name, confidence_score) VALUES ('img-1', 'Pool View', 0.97)`,
		`INSERT INTO image_tags (image_id, tag_name, confidence_score) VALUES ('img-1', 'balcony', 0.71)`,
		`INSERT INTO image_tags (image_id, tag_name, confidence_score) VALUES ('img-2', 'pool', 0.88)`,
	} {
		_, err := db.Exec(q)
		require.NoError(t, err)
	}

	for i := 0; i < 4; i++ {
		_, err := db.Exec(`
			INSERT INTO availability_price (hotel_id, date, availability, price, currency)
			VALUES (1, ?, 2, ?, 'USD')
		`, time.Date(2025, 4, 5+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), 100+10*i)
		require.NoError(t, err)
	}
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleImagesMissingTag(t *testing.T) {
	handler := newTestHandler(t, &stubSigner{})

	rec := get(t, handler, "/api/images")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandleImagesTagSearch(t *testing.T) {
	handler := newTestHandler(t, &stubSigner{})

	rec := get(t, handler, "/api/images?tag=pool")
	require.Equal(t, http.StatusOK, rec.Code)

	var results []models.ImageResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 2)

	// img-1 matched on "Pool View" but carries its full tag list.
	assert.Equal(t, "img-1", results[0].ImageID)
	assert.Len(t, results[0].Tags, 2)
	assert.Contains(t, results[0].ImageURL, "X-Goog-Expires=3600")
	assert.Nil(t, results[0].AvgPricePerNight)
}

func TestHandleImagesScenarioWindow(t *testing.T) {
	handler := newTestHandler(t, &stubSigner{})

	rec := get(t, handler, "/api/images?tag=pool&minPrice=80&maxPrice=200&startDate=2025-04-05&endDate=2025-04-08")
	require.Equal(t, http.StatusOK, rec.Code)

	var results []models.ImageResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))

	// Only the hotel with in-window availability survives the filter,
	// and its mean price is populated.
	require.Len(t, results, 1)
	assert.Equal(t, "img-1", results[0].ImageID)
	require.NotNil(t, results[0].AvgPricePerNight)
	assert.InDelta(t, 115.0, *results[0].AvgPricePerNight, 0.001)
}

func TestHandleImagesInvalidFilters(t *testing.T) {
	handler := newTestHandler(t, &stubSigner{})

	tests := []struct {
		name   string
		target string
	}{
		{"non-numeric price", "/api/images?tag=pool&minPrice=cheap&maxPrice=200&startDate=2025-04-05&endDate=2025-04-08"},
		{"negative price", "/api/images?tag=pool&minPrice=-5&maxPrice=200&startDate=2025-04-05&endDate=2025-04-08"},
		{"unparseable date", "/api/images?tag=pool&minPrice=80&maxPrice=200&startDate=April&endDate=2025-04-08"},
		{"half-supplied window", "/api/images?tag=pool&minPrice=80"},
		{"inverted prices", "/api/images?tag=pool&minPrice=300&maxPrice=200&startDate=2025-04-05&endDate=2025-04-08"},
		{"inverted dates", "/api/images?tag=pool&minPrice=80&maxPrice=200&startDate=2025-04-08&endDate=2025-04-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, handler, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHandleImagesSigningFailure(t *testing.T) {
	handler := newTestHandler(t, &stubSigner{err: errors.New("signer unavailable")})

	rec := get(t, handler, "/api/images?tag=pool")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "Internal Server Error"}`, rec.Body.String())
}

func TestHandleImageRefresh(t *testing.T) {
	handler := newTestHandler(t, &stubSigner{})

	rec := get(t, handler, "/api/image/img-1")
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.ImageResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "img-1", result.ImageID)
	assert.Contains(t, result.ImageURL, "X-Goog-Date=")
}

func TestHandleImageRefreshNotFound(t *testing.T) {
	handler := newTestHandler(t, &stubSigner{})

	rec := get(t, handler, "/api/image/img-missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	handler := newTestHandler(t, &stubSigner{})

	rec := get(t, handler, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}
