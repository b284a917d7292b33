package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"stayfinder-api/internal/cache"
	"stayfinder-api/internal/client"
	"stayfinder-api/internal/models"
	"stayfinder-api/internal/session"
)

func main() {
	var (
		tag       = flag.String("tag", "", "Tag substring to search for (required)")
		minPrice  = flag.Float64("min-price", 0, "Minimum nightly price filter")
		maxPrice  = flag.Float64("max-price", 0, "Maximum nightly price filter")
		startDate = flag.String("start-date", "", "Start of the date window (YYYY-MM-DD)")
		endDate   = flag.String("end-date", "", "End of the date window (YYYY-MM-DD)")
		server    = flag.String("server", "http://localhost:8080", "Query service base URL")
		cacheDir  = flag.String("cache-dir", defaultCacheDir(), "Directory for the local image cache")
		selection = flag.String("select", "", "Comma-separated image ids to move into the selection")
	)
	flag.Parse()

	if strings.TrimSpace(*tag) == "" {
		fmt.Fprintln(os.Stderr, "a non-blank -tag is required")
		flag.Usage()
		os.Exit(2)
	}

	query := models.SearchQuery{Tag: *tag}
	windowFlags := 0
	for _, set := range []bool{isFlagSet("min-price"), isFlagSet("max-price"), *startDate != "", *endDate != ""} {
		if set {
			windowFlags++
		}
	}
	if windowFlags != 0 && windowFlags != 4 {
		log.Fatal("-min-price, -max-price, -start-date and -end-date must be supplied together")
	}
	if windowFlags == 4 {
		start, err := time.Parse("2006-01-02", *startDate)
		if err != nil {
			log.Fatalf("Invalid -start-date: %v", err)
		}
		end, err := time.Parse("2006-01-02", *endDate)
		if err != nil {
			log.Fatalf("Invalid -end-date: %v", err)
		}
		query.MinPrice = minPrice
		query.MaxPrice = maxPrice
		query.StartDate = &start
		query.EndDate = &end
	}

	queryClient, err := client.New(client.Config{Address: strings.TrimRight(*server, "/")})
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	linkCache, err := cache.New(*cacheDir, nil)
	if err != nil {
		log.Fatalf("Failed to open cache: %v", err)
	}

	searcher := client.NewSearcher(queryClient, linkCache, session.New(), func(done, total int) {
		fmt.Printf("\rDownloading images: %d/%d", done, total)
		if done == total {
			fmt.Println()
		}
	})

	ctx := context.Background()
	if err := searcher.Search(ctx, query); err != nil {
		log.Fatalf("Search failed: %v", err)
	}

	sess := searcher.Session()
	printGallery("Candidates", sess.Candidates())

	if *selection != "" {
		for _, id := range strings.Split(*selection, ",") {
			if id = strings.TrimSpace(id); id == "" {
				continue
			}
			if !sess.Transfer(id) {
				log.Printf("Image %s is not in the result set", id)
			}
		}

		printGallery("Selected", sess.Selected())
		printSummary(sess.Summary())
	}
}

func printGallery(title string, images []models.ResolvedImage) {
	fmt.Printf("\n%s (%d):\n", title, len(images))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "IMAGE\tHOTEL\tAVG PRICE\tTAGS\tLOCAL COPY")
	for _, img := range images {
		price := "-"
		if img.AvgPricePerNight != nil {
			price = fmt.Sprintf("%.2f", *img.AvgPricePerNight)
		}

		local := img.LocalPath
		if local == "" {
			local = "(direct link)"
		}

		tagNames := make([]string, 0, len(img.Tags))
		for _, t := range img.Tags {
			tagNames = append(tagNames, t.TagName)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			img.ImageID, img.HotelName, price, strings.Join(tagNames, ","), local)
	}
	if err := w.Flush(); err != nil {
		log.Printf("Failed to render table: %v", err)
	}
}

func printSummary(rows []models.HotelSummary) {
	fmt.Printf("\nSelection summary (%d hotels):\n", len(rows))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "HOTEL\tAVG PRICE/NIGHT")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%.2f\n", row.HotelName, row.AvgPricePerNight)
	}
	if err := w.Flush(); err != nil {
		log.Printf("Failed to render table: %v", err)
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stayfinder-cache"
	}
	return filepath.Join(home, ".stayfinder", "cache")
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
