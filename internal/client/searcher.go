package client

import (
	"context"
	"log"
	"strings"
	"time"

	"stayfinder-api/internal/cache"
	"stayfinder-api/internal/models"
	"stayfinder-api/internal/session"
	"stayfinder-api/internal/signedlink"
)

// ProgressFunc is called after each image of a search finishes
// resolving, with the number completed so far and the total. Downloads
// are sequential, so done is strictly monotonic within one search.
type ProgressFunc func(done, total int)

// Searcher runs the whole search flow: query the service, resolve each
// hit through the link cache in result order, and swap the session's
// candidate gallery for the resolved set.
type Searcher struct {
	client     *QueryClient
	cache      *cache.LinkCache
	session    *session.Session
	onProgress ProgressFunc
}

func NewSearcher(queryClient *QueryClient, linkCache *cache.LinkCache, sess *session.Session, onProgress ProgressFunc) *Searcher {
	if onProgress == nil {
		onProgress = func(done, total int) {}
	}

	return &Searcher{
		client:     queryClient,
		cache:      linkCache,
		session:    sess,
		onProgress: onProgress,
	}
}

// Session returns the gallery state the searcher updates.
func (s *Searcher) Session() *session.Session {
	return s.session
}

// Search executes one search. A blank tag is a no-op. A query failure
// aborts the operation, resets progress and leaves the galleries
// untouched. A failure resolving an individual image is non-fatal: that
// image keeps its signed link as its only handle.
func (s *Searcher) Search(ctx context.Context, query models.SearchQuery) error {
	if strings.TrimSpace(query.Tag) == "" {
		return nil
	}

	results, err := s.client.SearchImages(ctx, query)
	if err != nil {
		s.onProgress(0, 0)
		return err
	}

	resolved := make([]models.ResolvedImage, 0, len(results))
	for i, img := range results {
		resolved = append(resolved, s.resolve(ctx, img))
		s.onProgress(i+1, len(results))
	}

	s.session.Reset(resolved)

	return nil
}

// resolve materializes one image's bytes through the cache. When the
// link itself is already past its embedded deadline, a fresh link is
// requested first; refresh failure falls back to the stale link.
func (s *Searcher) resolve(ctx context.Context, img models.ImageResult) models.ResolvedImage {
	if signedlink.Expired(img.ImageURL, time.Now()) && !s.cache.Contains(img.ImageURL) {
		fresh, err := s.client.RefreshImage(ctx, img.ImageID)
		if err != nil {
			log.Printf("[Client] Failed to refresh link for image %s: %v", img.ImageID, err)
		} else {
			img.ImageURL = fresh.ImageURL
		}
	}

	localPath, err := s.cache.Resolve(ctx, img.ImageURL)
	if err != nil {
		log.Printf("[Client] Failed to resolve image %s, falling back to direct link: %v", img.ImageID, err)
		localPath = ""
	}

	return models.ResolvedImage{ImageResult: img, LocalPath: localPath}
}
