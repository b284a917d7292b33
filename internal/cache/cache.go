// Package cache materializes signed-link downloads on local disk and
// remembers them across restarts, so repeated searches do not re-fetch
// unchanged image bytes.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"stayfinder-api/internal/signedlink"
)

const indexFileName = "index.json"

// Entry maps a signed link to its materialized local copy.
type Entry struct {
	FilePath    string    `json:"file_path"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// LinkCache is a persistent map from signed-link string to downloaded
// blob. An entry is served only while the expiry window embedded in the
// link itself has not elapsed; an expired entry is treated as a miss
// and overwritten by a fresh download through the same link.
//
// The cache is not safe for concurrent use. The client is
// single-threaded, and the download path is the only mutator.
type LinkCache struct {
	dir        string
	httpClient *http.Client
	entries    map[string]Entry
}

// New opens the cache rooted at dir, loading the persisted index if one
// exists. Pass nil to use http.DefaultClient for downloads.
func New(dir string, httpClient *http.Client) (*LinkCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := &LinkCache{
		dir:        dir,
		httpClient: httpClient,
		entries:    make(map[string]Entry),
	}

	if err := c.load(); err != nil {
		return nil, err
	}

	return c, nil
}

// Resolve returns the local file path holding the bytes behind link,
// downloading them first on a miss or when the link's embedded expiry
// window has elapsed. A failed download leaves the cache unchanged and
// returns an error; the caller falls back to the link itself.
func (c *LinkCache) Resolve(ctx context.Context, link string) (string, error) {
	if entry, ok := c.entries[link]; ok {
		if !signedlink.Expired(link, time.Now()) {
			return entry.FilePath, nil
		}
		// Expired entries stay on disk but are never served; the
		// download below overwrites them on success.
	}

	data, contentType, err := c.download(ctx, link)
	if err != nil {
		return "", err
	}

	filePath := filepath.Join(c.dir, uuid.New().String())
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}

	if old, ok := c.entries[link]; ok && old.FilePath != filePath {
		// Best effort: the stale blob is unreferenced once the entry
		// is overwritten.
		_ = os.Remove(old.FilePath)
	}

	entry := Entry{
		FilePath:    filePath,
		ContentType: contentType,
		Size:        int64(len(data)),
		FetchedAt:   time.Now().UTC(),
	}
	c.entries[link] = entry

	// The blob and the in-memory entry are already valid; a failed
	// index write only costs persistence across the next restart.
	if err := c.save(); err != nil {
		log.Printf("[Cache] Failed to persist index: %v", err)
	}

	return filePath, nil
}

// Contains reports whether the cache holds an entry for link,
// regardless of expiry.
func (c *LinkCache) Contains(link string) bool {
	_, ok := c.entries[link]
	return ok
}

// Len returns the number of cached entries.
func (c *LinkCache) Len() int {
	return len(c.entries)
}

func (c *LinkCache) download(ctx context.Context, link string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image bytes: %w", err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}

// save serializes the full index after every mutation so the mapping
// survives a process restart.
func (c *LinkCache) save() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache index: %w", err)
	}

	if err := os.WriteFile(filepath.Join(c.dir, indexFileName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache index: %w", err)
	}

	return nil
}

func (c *LinkCache) load() error {
	data, err := os.ReadFile(filepath.Join(c.dir, indexFileName))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read cache index: %w", err)
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		return fmt.Errorf("failed to parse cache index: %w", err)
	}

	return nil
}
