package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"newsbrief/app/config"
)

const defaultSearchBaseURL = "https://api.tavily.com"

var _ Collector = (*SearchCollector)(nil)

// SearchCollector queries an AI search API and maps its results to items.
type SearchCollector struct {
	source     config.Source
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

func NewSearchCollector(src config.Source, httpClient *http.Client, apiKey string) *SearchCollector {
	return &SearchCollector{
		source:     src,
		httpClient: httpClient,
		apiKey:     apiKey,
		baseURL:    defaultSearchBaseURL,
	}
}

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	Topic       string `json:"topic"`
	Days        int    `json:"days"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type searchResponse struct {
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		PublishedDate string  `json:"published_date"`
		Score         float64 `json:"score"`
	} `json:"results"`
}

func (c *SearchCollector) Collect(ctx context.Context) ([]Item, error) {
	if c.apiKey == "" {
		// No key configured: the source yields nothing rather than failing
		// every run.
		return nil, nil
	}

	payload, err := json.Marshal(searchRequest{
		APIKey:      c.apiKey,
		Query:       c.source.Query,
		Topic:       "news",
		Days:        1,
		MaxResults:  10,
		SearchDepth: "basic",
	})
	if err != nil {
		return nil, &FetchError{Source: c.source.Name, Err: fmt.Errorf("encode search request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, &FetchError{Source: c.source.Name, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Source: c.source.Name, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Source: c.source.Name, Err: fmt.Errorf("read search response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: c.source.Name, Err: fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)}
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &FetchError{Source: c.source.Name, Err: fmt.Errorf("parse search response: %w", err)}
	}

	items := make([]Item, 0, len(parsed.Results))
	for _, result := range parsed.Results {
		if result.URL == "" || result.Title == "" {
			continue
		}

		publishedAt := time.Now().UTC()
		if result.PublishedDate != "" {
			if parsed, err := time.Parse(time.RFC3339, result.PublishedDate); err == nil {
				publishedAt = parsed
			} else if parsed, err := time.Parse("2006-01-02", result.PublishedDate); err == nil {
				publishedAt = parsed
			}
		}

		items = append(items, Item{
			Title:       result.Title,
			URL:         result.URL,
			Body:        result.Content,
			PublishedAt: publishedAt,
			SourceName:  c.source.Name,
			SourceType:  c.source.Type,
			Category:    c.source.Category,
		})
	}

	return items, nil
}
