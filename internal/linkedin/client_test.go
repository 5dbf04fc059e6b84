package linkedin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.uber.org/zap"
)

func TestClientFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-KEY") != "test-key" {
			t.Errorf("missing api key header")
		}

		var req bulkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if len(req.URLs) != 2 {
			t.Errorf("expected 2 urls, got %d", len(req.URLs))
		}

		connections := 120
		resp := bulkResponse{Profiles: map[string]*Profile{
			// One of the requested URLs is silently absent.
			"https://www.linkedin.com/in/jane-doe": {
				Name:        "Jane Doe",
				Title:       "Director of Facilities",
				Company:     "Mayo Clinic",
				Location:    "Rochester, Minnesota",
				Connections: &connections,
			},
		}}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := NewClient("test-key", zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	client.APIURL = server.URL

	profiles, err := client.Fetch(context.Background(), []string{
		"https://www.linkedin.com/in/jane-doe",
		"https://www.linkedin.com/in/gone",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(profiles))
	}

	profile := profiles["https://www.linkedin.com/in/jane-doe"]
	if profile == nil {
		t.Fatalf("expected profile keyed by canonical url")
	}
	if profile.Connections == nil || *profile.Connections != 120 {
		t.Fatalf("unexpected connections: %v", profile.Connections)
	}
}

func TestClientFetchRejectsOversizedBatch(t *testing.T) {
	client, err := NewClient("test-key", zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	urls := make([]string, MaxBatchSize+1)
	if _, err := client.Fetch(context.Background(), urls); err == nil {
		t.Fatalf("expected error for oversized batch")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("", zap.NewNop()); err == nil {
		t.Fatalf("expected error for missing api key")
	}
}

type fakeFetcher struct {
	mu      sync.Mutex
	batches [][]string
	fail    bool
	// failURL makes any batch containing it error.
	failURL string
}

func (f *fakeFetcher) Fetch(_ context.Context, urls []string) (map[string]*Profile, error) {
	f.mu.Lock()
	f.batches = append(f.batches, urls)
	f.mu.Unlock()

	if f.fail {
		return nil, errors.New("provider down")
	}
	for _, url := range urls {
		if f.failURL != "" && url == f.failURL {
			return nil, errors.New("transient provider error")
		}
	}

	profiles := make(map[string]*Profile, len(urls))
	for _, url := range urls {
		profiles[url] = &Profile{URL: url, Name: "someone"}
	}
	return profiles, nil
}

func TestFetchAllChunksRequests(t *testing.T) {
	fetcher := &fakeFetcher{}

	urls := make([]string, 23)
	for i := range urls {
		urls[i] = "https://www.linkedin.com/in/person-" + string(rune('a'+i))
	}

	profiles, err := FetchAll(context.Background(), fetcher, urls, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(profiles) != len(urls) {
		t.Fatalf("expected %d profiles, got %d", len(urls), len(profiles))
	}

	if len(fetcher.batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(fetcher.batches))
	}
	for _, batch := range fetcher.batches {
		if len(batch) > MaxBatchSize {
			t.Fatalf("batch exceeds provider cap: %d", len(batch))
		}
	}
}

func TestFetchAllToleratesSingleBatchFailure(t *testing.T) {
	urls := make([]string, 25)
	for i := range urls {
		urls[i] = "https://www.linkedin.com/in/person-" + string(rune('a'+i))
	}

	// The first batch errors; the other two must still be fetched.
	fetcher := &fakeFetcher{failURL: urls[0]}

	profiles, err := FetchAll(context.Background(), fetcher, urls, 1)
	if err != nil {
		t.Fatalf("a single failed batch must not fail the call: %v", err)
	}

	if len(fetcher.batches) != 3 {
		t.Fatalf("expected all 3 batches attempted, got %d", len(fetcher.batches))
	}
	if len(profiles) != 15 {
		t.Fatalf("expected 15 profiles from the healthy batches, got %d", len(profiles))
	}
	if _, ok := profiles[urls[0]]; ok {
		t.Fatalf("failed batch's urls must be absent from the result")
	}
	if _, ok := profiles[urls[24]]; !ok {
		t.Fatalf("healthy batch's urls must be present in the result")
	}
}

func TestFetchAllFailsWhenEveryBatchFails(t *testing.T) {
	fetcher := &fakeFetcher{fail: true}

	urls := make([]string, 15)
	for i := range urls {
		urls[i] = "https://www.linkedin.com/in/person-" + string(rune('a'+i))
	}

	_, err := FetchAll(context.Background(), fetcher, urls, 2)
	if err == nil {
		t.Fatalf("expected error when every batch fails")
	}
	if len(fetcher.batches) != 2 {
		t.Fatalf("expected both batches attempted, got %d", len(fetcher.batches))
	}
}
