package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultAPIURL = "https://api.scrapintel.io/v1/profiles/bulk"
	contentType   = "application/json"

	// MaxBatchSize is the provider's hard cap on URLs per request.
	MaxBatchSize = 10
)

// Fetcher turns canonical profile URLs into structured profile records.
// URLs with no returned record are silently absent, never errors.
type Fetcher interface {
	Fetch(ctx context.Context, urls []string) (map[string]*Profile, error)
}

// Client is the HTTP implementation of Fetcher.
type Client struct {
	apiKey string
	logger *zap.Logger

	HTTPClient *http.Client
	APIURL     string
	// Concurrency bounds the number of parallel batch requests in FetchAll.
	Concurrency int
}

type bulkRequest struct {
	URLs []string `json:"urls"`
}

type bulkResponse struct {
	Profiles map[string]*Profile `json:"profiles"`
}

// NewClient creates a profile fetch client. The API key is required.
func NewClient(apiKey string, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("profile fetch api key is required")
	}

	return &Client{
		apiKey: apiKey,
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		APIURL:      defaultAPIURL,
		Concurrency: 3,
	}, nil
}

// Fetch requests up to MaxBatchSize profiles in a single provider call.
func (c *Client) Fetch(ctx context.Context, urls []string) (map[string]*Profile, error) {
	if len(urls) == 0 {
		return map[string]*Profile{}, nil
	}
	if len(urls) > MaxBatchSize {
		return nil, fmt.Errorf("at most %d urls per request, got %d", MaxBatchSize, len(urls))
	}

	body, err := json.Marshal(bulkRequest{URLs: urls})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-API-KEY", c.apiKey)

	c.logger.Debug("fetching profiles", zap.Int("count", len(urls)))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("bad status: %s: %s", resp.Status, payload)
	}

	var parsed bulkResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode bulk profile response: %w", err)
	}

	profiles := make(map[string]*Profile, len(parsed.Profiles))
	for rawURL, profile := range parsed.Profiles {
		if profile == nil {
			continue
		}
		key := rawURL
		if canonical, ok := CanonicalProfileURL(rawURL); ok {
			key = canonical
		}
		profile.URL = key
		profiles[key] = profile
	}

	return profiles, nil
}

// FetchAll splits the URL list into provider-sized batches and fetches them
// concurrently. A failed batch never aborts its siblings: only that batch's
// candidates go missing from the result, which the caller treats as dropped.
// The error is non-nil only when every batch failed.
func FetchAll(ctx context.Context, fetcher Fetcher, urls []string, concurrency int) (map[string]*Profile, error) {
	if len(urls) == 0 {
		return map[string]*Profile{}, nil
	}
	if concurrency <= 0 {
		concurrency = 3
	}

	batches := make([][]string, 0, (len(urls)+MaxBatchSize-1)/MaxBatchSize)
	for start := 0; start < len(urls); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(urls))
		batches = append(batches, urls[start:end])
	}

	results := make([]map[string]*Profile, len(batches))
	errs := make([]error, len(batches))

	var group errgroup.Group
	group.SetLimit(concurrency)

	for i, batch := range batches {
		group.Go(func() error {
			profiles, err := fetcher.Fetch(ctx, batch)
			if err != nil {
				errs[i] = fmt.Errorf("profile batch %d: %w", i+1, err)
				return nil
			}
			results[i] = profiles
			return nil
		})
	}
	_ = group.Wait()

	merged := make(map[string]*Profile)
	failed := 0
	var firstErr error
	for i, profiles := range results {
		if errs[i] != nil {
			failed++
			if firstErr == nil {
				firstErr = errs[i]
			}
			continue
		}
		for url, profile := range profiles {
			merged[url] = profile
		}
	}

	if failed == len(batches) {
		return nil, firstErr
	}

	return merged, nil
}
