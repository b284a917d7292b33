package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"stayfinder-api/internal/models"
)

const dateLayout = "2006-01-02"

// ImageStore is the read-only query layer over the images/hotels/tags/
// availability tables. Rows are written by the offline ingestion
// pipeline; this store never mutates them.
type ImageStore struct {
	db *sql.DB
}

func NewImageStore(db *sql.DB) *ImageStore {
	return &ImageStore{db: db}
}

// Search returns every image with at least one tag containing the query
// tag (case-insensitive), joined with its hotel. When the query carries
// a complete price and date window, availability rows are filtered to
// that window, the per-image mean nightly price is populated, and
// hotels with no matching availability are excluded. Without a window
// no availability filtering happens and the mean price stays nil.
//
// An empty tag always yields an empty result set.
func (s *ImageStore) Search(ctx context.Context, q models.SearchQuery) ([]*models.ImageRecord, error) {
	tag := strings.TrimSpace(q.Tag)
	if tag == "" {
		return []*models.ImageRecord{}, nil
	}

	pattern := "%" + strings.ToLower(tag) + "%"

	var (
		rows *sql.Rows
		err  error
	)

	if q.HasAvailabilityWindow() {
		rows, err = s.db.QueryContext(ctx, `
			SELECT i.image_id, i.storage_key, h.hotel_id, h.hotel_name, h.latitude, h.longitude,
			       AVG(ap.price) AS avg_price_per_night
			FROM images i
			JOIN hotels h ON i.hotel_id = h.hotel_id
			JOIN availability_price ap ON ap.hotel_id = h.hotel_id
			     AND ap.date BETWEEN ? AND ?
			     AND ap.price BETWEEN ? AND ?
			WHERE EXISTS (
			    SELECT 1 FROM image_tags t
			    WHERE t.image_id = i.image_id AND LOWER(t.tag_name) LIKE ?
			)
			GROUP BY i.image_id, i.storage_key, h.hotel_id, h.hotel_name, h.latitude, h.longitude
			ORDER BY i.image_id ASC
		`, q.StartDate.Format(dateLayout), q.EndDate.Format(dateLayout), *q.MinPrice, *q.MaxPrice, pattern)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT i.image_id, i.storage_key, h.hotel_id, h.hotel_name, h.latitude, h.longitude,
			       NULL AS avg_price_per_night
			FROM images i
			JOIN hotels h ON i.hotel_id = h.hotel_id
			WHERE EXISTS (
			    SELECT 1 FROM image_tags t
			    WHERE t.image_id = i.image_id AND LOWER(t.tag_name) LIKE ?
			)
			ORDER BY i.image_id ASC
		`, pattern)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search images: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("[Store] Failed to close rows: %v", err)
		}
	}()

	var records []*models.ImageRecord
	for rows.Next() {
		rec := &models.ImageRecord{}
		var avgPrice sql.NullFloat64
		if err := rows.Scan(&rec.ImageID, &rec.StorageKey, &rec.HotelID, &rec.HotelName,
			&rec.Latitude, &rec.Longitude, &avgPrice); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		if avgPrice.Valid {
			price := avgPrice.Float64
			rec.AvgPricePerNight = &price
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}

	// Each matching image carries its complete tag list, not only the
	// tags that matched the query.
	for _, rec := range records {
		tags, err := s.tagsForImage(ctx, rec.ImageID)
		if err != nil {
			return nil, err
		}
		rec.Tags = tags
	}

	if records == nil {
		records = []*models.ImageRecord{}
	}

	return records, nil
}

// GetByID returns a single image joined with its hotel and full tag
// list, without availability data. Returns nil when no such image
// exists.
func (s *ImageStore) GetByID(ctx context.Context, imageID string) (*models.ImageRecord, error) {
	rec := &models.ImageRecord{}
	err := s.db.QueryRowContext(ctx, `
		SELECT i.image_id, i.storage_key, h.hotel_id, h.hotel_name, h.latitude, h.longitude
		FROM images i
		JOIN hotels h ON i.hotel_id = h.hotel_id
		WHERE i.image_id = ?
	`, imageID).Scan(&rec.ImageID, &rec.StorageKey, &rec.HotelID, &rec.HotelName,
		&rec.Latitude, &rec.Longitude)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}

	tags, err := s.tagsForImage(ctx, rec.ImageID)
	if err != nil {
		return nil, err
	}
	rec.Tags = tags

	return rec, nil
}

func (s *ImageStore) tagsForImage(ctx context.Context, imageID string) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag_name, confidence_score FROM image_tags
		WHERE image_id = ?
		ORDER BY confidence_score DESC, tag_name ASC
	`, imageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("[Store] Failed to close rows: %v", err)
		}
	}()

	tags := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		var score sql.NullFloat64
		if err := rows.Scan(&t.TagName, &score); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		t.ConfidenceScore = score.Float64
		tags = append(tags, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	return tags, nil
}
