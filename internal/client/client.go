// Package client talks to the query service and orchestrates the
// search flow on behalf of a UI: query, per-image cache resolution with
// progress reporting, and gallery state updates.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"stayfinder-api/internal/models"
)

const dateLayout = "2006-01-02"

var (
	ErrAddressEmpty = errors.New("query service address is required")
	ErrNotFound     = errors.New("image not found")

	errNonSuccessResponse = errors.New("query service responded with a non-success status code")
)

// Config contains settings for the query-service client.
type Config struct {
	// Address is the query service base URL (e.g. http://localhost:8080).
	Address string

	// HTTPClient is used to send requests.
	// (Optional) Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// QueryClient makes requests to the query service.
type QueryClient struct {
	client  *http.Client
	address string
}

// New creates a QueryClient from the given config.
func New(cfg Config) (*QueryClient, error) {
	if cfg.Address == "" {
		return nil, ErrAddressEmpty
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}

	return &QueryClient{
		client:  cfg.HTTPClient,
		address: cfg.Address,
	}, nil
}

// SearchImages runs a tag search with the given filters and returns the
// matching images, each carrying a signed link.
func (c *QueryClient) SearchImages(ctx context.Context, query models.SearchQuery) ([]models.ImageResult, error) {
	values := url.Values{}
	values.Set("tag", query.Tag)
	if query.MinPrice != nil {
		values.Set("minPrice", strconv.FormatFloat(*query.MinPrice, 'f', -1, 64))
	}
	if query.MaxPrice != nil {
		values.Set("maxPrice", strconv.FormatFloat(*query.MaxPrice, 'f', -1, 64))
	}
	if query.StartDate != nil {
		values.Set("startDate", query.StartDate.Format(dateLayout))
	}
	if query.EndDate != nil {
		values.Set("endDate", query.EndDate.Format(dateLayout))
	}

	var results []models.ImageResult
	if err := c.getJSON(ctx, fmt.Sprintf("%s/api/images?%s", c.address, values.Encode()), &results); err != nil {
		return nil, err
	}

	return results, nil
}

// RefreshImage fetches a freshly signed link for a single image.
func (c *QueryClient) RefreshImage(ctx context.Context, imageID string) (*models.ImageResult, error) {
	var result models.ImageResult
	if err := c.getJSON(ctx, fmt.Sprintf("%s/api/image/%s", c.address, url.PathEscape(imageID)), &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *QueryClient) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("%w: received status %d", errNonSuccessResponse, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}
