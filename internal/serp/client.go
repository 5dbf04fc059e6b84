package serp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	defaultAPIURL = "https://google.serper.dev/search"
	contentType   = "application/json"
	// Max results the provider returns per query.
	resultsPerQuery = 20
)

// Result is one raw web search result.
type Result struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}

// Provider issues a single search query.
type Provider interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Client is the HTTP implementation of Provider for a Serper-style API.
type Client struct {
	apiKey string
	logger *zap.Logger

	HTTPClient *http.Client
	APIURL     string
}

// NewClient creates a search provider client. The API key is required.
func NewClient(apiKey string, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("search api key is required")
	}

	return &Client{
		apiKey: apiKey,
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		APIURL: defaultAPIURL,
	}, nil
}

// Search issues one query and returns the organic results in provider order.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	body, err := json.Marshal(map[string]any{
		"q":   query,
		"num": resultsPerQuery,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-API-KEY", c.apiKey)

	c.logger.Debug("search request", zap.String("query", query))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("bad status: %s: %s", resp.Status, payload)
	}

	var parsed map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	var results []Result
	cfg := &mapstructure.DecoderConfig{
		Result:  &results,
		TagName: "json",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(parsed["organic"]); err != nil {
		return nil, fmt.Errorf("decode organic results: %w", err)
	}

	c.logger.Debug("search response", zap.String("query", query), zap.Int("results", len(results)))

	return results, nil
}
