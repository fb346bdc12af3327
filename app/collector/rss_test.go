package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"newsbrief/app/config"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Tech News</title>
  <item>
    <title>Chipmaker announces next-generation accelerator</title>
    <link>https://example.com/accelerator</link>
    <description>Short stub description.</description>
    <author>reporter@example.com (Jane Reporter)</author>
    <pubDate>Fri, 13 Mar 2026 09:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Entry without a link</title>
    <description>Should be skipped.</description>
  </item>
  <item>
    <title>Protocol upgrade goes live</title>
    <link>https://example.com/upgrade</link>
    <description>Second story.</description>
  </item>
</channel>
</rss>`

func rssSource(url string) config.Source {
	return config.Source{Name: "tech-news", Type: config.TypeRSS, URL: url, Category: "ai"}
}

func TestRSSCollector_Collect(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	c := NewRSSCollector(rssSource(server.URL), server.Client(), "newsbrief-test/1.0")

	items, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if gotUserAgent != "newsbrief-test/1.0" {
		t.Errorf("Expected custom user agent, got %q", gotUserAgent)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items (entry without link skipped), got %d", len(items))
	}

	first := items[0]
	if first.Title != "Chipmaker announces next-generation accelerator" {
		t.Errorf("Unexpected title: %q", first.Title)
	}
	if first.URL != "https://example.com/accelerator" {
		t.Errorf("Unexpected URL: %q", first.URL)
	}
	if first.Body == "" {
		t.Error("Expected description carried into the body")
	}
	if first.SourceName != "tech-news" || first.Category != "ai" {
		t.Errorf("Source attribution missing: %+v", first)
	}
	if first.PublishedAt.IsZero() {
		t.Error("Expected parsed publication time")
	}

	// Entry without a pubDate falls back to fetch time.
	if items[1].PublishedAt.IsZero() {
		t.Error("Missing pubDate should fall back to a non-zero time")
	}
}

func TestRSSCollector_Collect_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewRSSCollector(rssSource(server.URL), server.Client(), "newsbrief-test/1.0")

	_, err := c.Collect(context.Background())
	if err == nil {
		t.Fatal("Expected an error for HTTP 502")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("Expected *FetchError, got %T", err)
	}
	if fetchErr.Source != "tech-news" {
		t.Errorf("Fetch error should carry the source name, got %q", fetchErr.Source)
	}
}

func TestRSSCollector_Collect_MalformedFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not xml"))
	}))
	defer server.Close()

	c := NewRSSCollector(rssSource(server.URL), server.Client(), "newsbrief-test/1.0")

	if _, err := c.Collect(context.Background()); err == nil {
		t.Fatal("Expected an error for an unparseable feed")
	}
}

func TestTwitterCollector_FeedURL(t *testing.T) {
	cases := []struct {
		configured string
		expected   string
	}{
		{"VitalikButerin", "https://rsshub.app/twitter/user/VitalikButerin"},
		{"@sama", "https://rsshub.app/twitter/user/sama"},
		{"https://bridge.local/twitter/user/custom", "https://bridge.local/twitter/user/custom"},
	}

	for _, tc := range cases {
		c := NewTwitterCollector(config.Source{Name: "tw", Type: config.TypeTwitter, URL: tc.configured}, nil, "ua")
		if got := c.feedURL(); got != tc.expected {
			t.Errorf("feedURL(%q) = %q, expected %q", tc.configured, got, tc.expected)
		}
	}
}

func TestSearchCollector_Collect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/search" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"results": [
			{"title": "Fund closes new vehicle", "url": "https://example.com/fund", "content": "Details.", "published_date": "2026-03-13"},
			{"title": "", "url": "https://example.com/skip"}
		]}`))
	}))
	defer server.Close()

	c := NewSearchCollector(config.Source{Name: "vc", Type: config.TypeSearch, Query: "fund"}, server.Client(), "key")
	c.baseURL = server.URL

	items, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item (untitled result skipped), got %d", len(items))
	}
	if items[0].URL != "https://example.com/fund" {
		t.Errorf("Unexpected URL: %q", items[0].URL)
	}
}

func TestSearchCollector_Collect_NoAPIKey(t *testing.T) {
	c := NewSearchCollector(config.Source{Name: "vc", Type: config.TypeSearch, Query: "fund"}, nil, "")

	items, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Unconfigured search source should not error, got %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected no items, got %d", len(items))
	}
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(config.Source{Name: "x", Type: "carrier-pigeon"}, nil, "ua", "")
	if err == nil {
		t.Fatal("Unknown source type should return an error")
	}
}
