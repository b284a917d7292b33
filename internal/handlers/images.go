package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "stayfinder-api/internal/errors"
	"stayfinder-api/internal/models"
)

const dateLayout = "2006-01-02"

// HandleImages serves GET /api/images: a tag search with optional price
// and date filters. A missing tag is not an error; it yields an empty
// result set. Malformed numeric or date filters are rejected with 400
// rather than passed through to the database.
func (h *Handler) HandleImages(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	query, err := parseSearchQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if strings.TrimSpace(query.Tag) == "" {
		writeJSON(w, http.StatusOK, []*models.ImageResult{})
		return
	}

	results, err := h.searchService.Search(r.Context(), query)
	if err != nil {
		log.Printf("[Images] Search failed for tag %q: %v", query.Tag, err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	log.Printf("[Images] Served %d results for tag %q in %v", len(results), query.Tag, time.Since(start))

	writeJSON(w, http.StatusOK, results)
}

// HandleImageRefresh serves GET /api/image/{id}: re-signs a link for a
// single image so clients can replace an expired one without rerunning
// the whole search.
func (h *Handler) HandleImageRefresh(w http.ResponseWriter, r *http.Request) {
	imageID := strings.TrimSpace(r.PathValue("id"))
	if imageID == "" {
		writeError(w, http.StatusBadRequest, "missing image id")
		return
	}

	result, err := h.searchService.Refresh(r.Context(), imageID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			writeError(w, http.StatusNotFound, "image not found")
			return
		}
		log.Printf("[Images] Refresh failed for image %s: %v", imageID, err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// parseSearchQuery validates the filter parameters. The price range and
// date range are optional, but a half-supplied range is rejected: the
// availability filter needs all four bounds to mean anything.
func parseSearchQuery(r *http.Request) (models.SearchQuery, error) {
	values := r.URL.Query()

	query := models.SearchQuery{Tag: values.Get("tag")}

	minPrice, err := parsePrice(values.Get("minPrice"), "minPrice")
	if err != nil {
		return models.SearchQuery{}, err
	}
	maxPrice, err := parsePrice(values.Get("maxPrice"), "maxPrice")
	if err != nil {
		return models.SearchQuery{}, err
	}
	startDate, err := parseDate(values.Get("startDate"), "startDate")
	if err != nil {
		return models.SearchQuery{}, err
	}
	endDate, err := parseDate(values.Get("endDate"), "endDate")
	if err != nil {
		return models.SearchQuery{}, err
	}

	query.MinPrice = minPrice
	query.MaxPrice = maxPrice
	query.StartDate = startDate
	query.EndDate = endDate

	supplied := 0
	for _, present := range []bool{minPrice != nil, maxPrice != nil, startDate != nil, endDate != nil} {
		if present {
			supplied++
		}
	}
	if supplied != 0 && supplied != 4 {
		return models.SearchQuery{}, fmt.Errorf("minPrice, maxPrice, startDate and endDate must be supplied together")
	}

	if query.HasAvailabilityWindow() {
		if *query.MinPrice > *query.MaxPrice {
			return models.SearchQuery{}, fmt.Errorf("minPrice must not exceed maxPrice")
		}
		if query.StartDate.After(*query.EndDate) {
			return models.SearchQuery{}, fmt.Errorf("startDate must not be after endDate")
		}
	}

	return query, nil
}

func parsePrice(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 {
		return nil, fmt.Errorf("invalid %s: must be a non-negative number", name)
	}
	return &value, nil
}

func parseDate(raw, name string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: must be an ISO 8601 date (YYYY-MM-DD)", name)
	}
	return &value, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[Images] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
