// Package session holds the in-memory gallery state for one search
// session: the candidate results, the user's selection, and the derived
// per-hotel price summary.
package session

import (
	"math"

	"stayfinder-api/internal/models"
)

// Session keeps every image from the last search in exactly one of two
// ordered galleries. Transfer is the only mutation between them; the
// summary is recomputed whenever the selection changes.
type Session struct {
	candidates []models.ResolvedImage
	selected   []models.ResolvedImage
	summary    []models.HotelSummary
}

func New() *Session {
	return &Session{}
}

// Reset replaces the candidate gallery with a fresh result set and
// clears any prior selection.
func (s *Session) Reset(results []models.ResolvedImage) {
	s.candidates = results
	s.selected = nil
	s.summary = nil
}

// Transfer moves the image with the given id from whichever gallery
// holds it to the other, preserving order, and recomputes the summary.
// Returns false when no gallery holds the image.
func (s *Session) Transfer(imageID string) bool {
	if img, rest, ok := remove(s.candidates, imageID); ok {
		s.candidates = rest
		s.selected = append(s.selected, img)
		s.recomputeSummary()
		return true
	}

	if img, rest, ok := remove(s.selected, imageID); ok {
		s.selected = rest
		s.candidates = append(s.candidates, img)
		s.recomputeSummary()
		return true
	}

	return false
}

// Candidates returns the current candidate gallery in order.
func (s *Session) Candidates() []models.ResolvedImage {
	return s.candidates
}

// Selected returns the current selected gallery in order.
func (s *Session) Selected() []models.ResolvedImage {
	return s.selected
}

// Summary returns one row per distinct hotel in the selection, in
// first-occurrence order, with the mean nightly price rounded to two
// decimals.
func (s *Session) Summary() []models.HotelSummary {
	return s.summary
}

func (s *Session) recomputeSummary() {
	seen := make(map[int64]bool, len(s.selected))
	summary := make([]models.HotelSummary, 0, len(s.selected))

	for _, img := range s.selected {
		if seen[img.HotelID] {
			continue
		}
		seen[img.HotelID] = true

		price := 0.0
		if img.AvgPricePerNight != nil {
			price = math.Round(*img.AvgPricePerNight*100) / 100
		}

		summary = append(summary, models.HotelSummary{
			HotelID:          img.HotelID,
			HotelName:        img.HotelName,
			AvgPricePerNight: price,
		})
	}

	s.summary = summary
}

func remove(images []models.ResolvedImage, imageID string) (models.ResolvedImage, []models.ResolvedImage, bool) {
	for i, img := range images {
		if img.ImageID == imageID {
			rest := make([]models.ResolvedImage, 0, len(images)-1)
			rest = append(rest, images[:i]...)
			rest = append(rest, images[i+1:]...)
			return img, rest, true
		}
	}
	return models.ResolvedImage{}, images, false
}
