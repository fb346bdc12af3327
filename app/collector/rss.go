package collector

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"newsbrief/app/config"
)

var _ Collector = (*RSSCollector)(nil)

// RSSCollector fetches and parses an RSS/Atom feed.
type RSSCollector struct {
	source     config.Source
	httpClient *http.Client
	userAgent  string
	parser     *gofeed.Parser
}

func NewRSSCollector(src config.Source, httpClient *http.Client, userAgent string) *RSSCollector {
	return &RSSCollector{
		source:     src,
		httpClient: httpClient,
		userAgent:  userAgent,
		parser:     gofeed.NewParser(),
	}
}

func (c *RSSCollector) Collect(ctx context.Context) ([]Item, error) {
	data, err := fetchURL(ctx, c.httpClient, c.source.URL, c.userAgent)
	if err != nil {
		return nil, &FetchError{Source: c.source.Name, Err: err}
	}

	feed, err := c.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &FetchError{Source: c.source.Name, Err: fmt.Errorf("parse feed: %w", err)}
	}

	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil || entry.Link == "" {
			continue
		}
		items = append(items, feedEntryToItem(entry, c.source))
	}

	return items, nil
}

func feedEntryToItem(entry *gofeed.Item, src config.Source) Item {
	item := Item{
		Title:      entry.Title,
		URL:        entry.Link,
		Body:       cmp.Or(entry.Content, entry.Description),
		SourceName: src.Name,
		SourceType: src.Type,
		Category:   src.Category,
	}

	if entry.PublishedParsed != nil {
		item.PublishedAt = *entry.PublishedParsed
	} else if entry.UpdatedParsed != nil {
		item.PublishedAt = *entry.UpdatedParsed
	} else {
		item.PublishedAt = time.Now().UTC()
	}

	if len(entry.Authors) > 0 && entry.Authors[0] != nil {
		item.Author = entry.Authors[0].Name
	} else if entry.Author != nil {
		item.Author = entry.Author.Name
	}

	return item
}

func fetchURL(ctx context.Context, client *http.Client, url, userAgent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
