package models

import "time"

// Tag is a textual label attached to an image by the offline tagging
// pipeline, with the tagger's confidence score.
type Tag struct {
	TagName         string  `json:"tag_name"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// ImageRecord is an image row joined with its hotel, as read from the
// database. StorageKey is the object path within the bucket and never
// leaves the service; responses carry a signed link instead.
type ImageRecord struct {
	ImageID    string
	StorageKey string
	HotelID    int64
	HotelName  string
	Latitude   float64
	Longitude  float64
	Tags       []Tag

	// AvgPricePerNight is the mean nightly price over the queried
	// availability window. Nil when the search carried no price/date
	// filters.
	AvgPricePerNight *float64
}

// ImageResult is the wire form of a search hit. ImageURL is a freshly
// signed, time-limited link to the image object.
type ImageResult struct {
	ImageID          string   `json:"image_id"`
	ImageURL         string   `json:"image_url"`
	HotelID          int64    `json:"hotel_id"`
	HotelName        string   `json:"hotel_name"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	Tags             []Tag    `json:"tags"`
	AvgPricePerNight *float64 `json:"avg_price_per_night,omitempty"`
}

// ResolvedImage is a search hit after the client has materialized its
// bytes. LocalPath is empty when the download failed and the image must
// be rendered through ImageURL directly.
type ResolvedImage struct {
	ImageResult
	LocalPath string
}

// HotelSummary is one row of the selected gallery's derived summary
// table: one entry per distinct hotel in the selection.
type HotelSummary struct {
	HotelID          int64   `json:"hotel_id"`
	HotelName        string  `json:"hotel_name"`
	AvgPricePerNight float64 `json:"avg_price_per_night"`
}

// SearchQuery holds the search criteria. Tag is required; the price and
// date ranges are optional, and availability filtering only applies
// when both ranges are present in full.
type SearchQuery struct {
	Tag       string
	MinPrice  *float64
	MaxPrice  *float64
	StartDate *time.Time
	EndDate   *time.Time
}

// HasAvailabilityWindow reports whether the query carries a complete
// price range and date range, enabling the availability join.
func (q SearchQuery) HasAvailabilityWindow() bool {
	return q.MinPrice != nil && q.MaxPrice != nil && q.StartDate != nil && q.EndDate != nil
}
