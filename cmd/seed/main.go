// Seeds a local development database with a small fixture dataset of
// hotels, tagged images and April availability, mirroring what the
// offline ingestion pipeline produces.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	"stayfinder-api/internal/database"
)

type hotel struct {
	id        int64
	name      string
	chainID   int64
	latitude  float64
	longitude float64
	basePrice float64
}

type image struct {
	id      string
	hotelID int64
	key     string
	tags    map[string]float64
}

var chains = map[int64]string{
	1: "Aurora Hotels",
	2: "Meridian Stays",
}

var hotels = []hotel{
	{1, "Aurora Bay Resort", 1, 25.7617, -80.1918, 140},
	{2, "Aurora City Central", 1, 40.7128, -74.0060, 260},
	{3, "Meridian Garden Inn", 2, 34.0522, -118.2437, 95},
	{4, "Meridian Lakeside", 2, 47.6062, -122.3321, 175},
}

var images = []image{
	{"img-0001", 1, "images/train/img-0001.jpg", map[string]float64{"pool": 0.97, "palm tree": 0.82, "outdoor": 0.74}},
	{"img-0002", 1, "images/train/img-0002.jpg", map[string]float64{"bedroom": 0.95, "bed": 0.91}},
	{"img-0003", 2, "images/train/img-0003.jpg", map[string]float64{"lobby": 0.88, "chandelier": 0.67}},
	{"img-0004", 2, "images/train/img-0004.jpg", map[string]float64{"rooftop pool": 0.93, "skyline": 0.85}},
	{"img-0005", 3, "images/train/img-0005.jpg", map[string]float64{"garden": 0.90, "patio": 0.78}},
	{"img-0006", 4, "images/train/img-0006.jpg", map[string]float64{"pool": 0.89, "lake": 0.94, "dock": 0.71}},
	{"img-0007", 4, "images/train/img-0007.jpg", map[string]float64{"restaurant": 0.86, "dining": 0.80}},
}

func main() {
	dbPath := flag.String("db", "stayfinder.db", "Path to the SQLite database")
	flag.Parse()

	db, err := database.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	if err := seed(db); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	log.Printf("Seeded %d hotels, %d images into %s", len(hotels), len(images), *dbPath)
}

func seed(db *sql.DB) error {
	for id, name := range chains {
		if _, err := db.Exec(`INSERT OR IGNORE INTO chains (chain_id, chain_name) VALUES (?, ?)`, id, name); err != nil {
			return fmt.Errorf("failed to insert chain %d: %w", id, err)
		}
	}

	for _, h := range hotels {
		_, err := db.Exec(`
			INSERT OR IGNORE INTO hotels (hotel_id, hotel_name, chain_id, latitude, longitude)
			VALUES (?, ?, ?, ?, ?)
		`, h.id, h.name, h.chainID, h.latitude, h.longitude)
		if err != nil {
			return fmt.Errorf("failed to insert hotel %d: %w", h.id, err)
		}
	}

	for _, img := range images {
		_, err := db.Exec(`
			INSERT OR IGNORE INTO images (image_id, hotel_id, storage_key) VALUES (?, ?, ?)
		`, img.id, img.hotelID, img.key)
		if err != nil {
			return fmt.Errorf("failed to insert image %s: %w", img.id, err)
		}

		for tag, score := range img.tags {
			_, err := db.Exec(`
				INSERT OR IGNORE INTO image_tags (image_id, tag_name, confidence_score) VALUES (?, ?, ?)
			`, img.id, tag, score)
			if err != nil {
				return fmt.Errorf("failed to insert tag %q for %s: %w", tag, img.id, err)
			}
		}
	}

	// One April of nightly availability per hotel, prices wobbling
	// around each hotel's base rate.
	start := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	for _, h := range hotels {
		for day := 0; day < 30; day++ {
			date := start.AddDate(0, 0, day)
			price := h.basePrice + float64((day%7)-3)*5
			_, err := db.Exec(`
				INSERT OR IGNORE INTO availability_price (hotel_id, date, availability, price, currency)
				VALUES (?, ?, ?, ?, 'USD')
			`, h.id, date.Format("2006-01-02"), 1+day%5, price)
			if err != nil {
				return fmt.Errorf("failed to insert availability for hotel %d: %w", h.id, err)
			}
		}
	}

	return nil
}
