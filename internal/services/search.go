package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	apperrors "stayfinder-api/internal/errors"
	"stayfinder-api/internal/models"
	"stayfinder-api/internal/store"
)

// SearchService answers tag searches: it runs the join/aggregate query
// and swaps every row's raw storage key for a fresh signed link before
// the result leaves the service.
type SearchService struct {
	store  *store.ImageStore
	signer LinkSigner
}

func NewSearchService(imageStore *store.ImageStore, signer LinkSigner) *SearchService {
	return &SearchService{
		store:  imageStore,
		signer: signer,
	}
}

// Search returns the images matching the query, each carrying a signed
// link in place of its storage key. A database or signing failure
// yields an error and no partial results.
func (s *SearchService) Search(ctx context.Context, q models.SearchQuery) ([]*models.ImageResult, error) {
	if strings.TrimSpace(q.Tag) == "" {
		return []*models.ImageResult{}, nil
	}

	records, err := s.store.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}

	results := make([]*models.ImageResult, 0, len(records))
	for _, rec := range records {
		result, err := s.toResult(rec)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	log.Printf("[Search] Matched %d images for tag %q", len(results), q.Tag)

	return results, nil
}

// Refresh re-reads one image and signs a new link for it. Used by
// clients that hold a result whose link has expired.
func (s *SearchService) Refresh(ctx context.Context, imageID string) (*models.ImageResult, error) {
	rec, err := s.store.GetByID(ctx, imageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", imageID, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("image %s: %w", imageID, apperrors.ErrNotFound)
	}

	return s.toResult(rec)
}

func (s *SearchService) toResult(rec *models.ImageRecord) (*models.ImageResult, error) {
	link, err := s.signer.SignedLink(rec.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign link for %s: %w", rec.StorageKey, err)
	}

	return &models.ImageResult{
		ImageID:          rec.ImageID,
		ImageURL:         link,
		HotelID:          rec.HotelID,
		HotelName:        rec.HotelName,
		Latitude:         rec.Latitude,
		Longitude:        rec.Longitude,
		Tags:             rec.Tags,
		AvgPricePerNight: rec.AvgPricePerNight,
	}, nil
}
