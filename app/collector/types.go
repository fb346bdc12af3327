package collector

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"newsbrief/app/config"
)

// Item is one collected candidate before deduplication and annotation.
type Item struct {
	Title       string
	URL         string
	Body        string
	Author      string
	PublishedAt time.Time
	SourceName  string
	SourceType  string
	Category    string
}

// Collector produces a finite batch of candidate items per invocation.
// Zero items is a normal outcome; transport failures return a *FetchError.
type Collector interface {
	Collect(ctx context.Context) ([]Item, error)
}

// FetchError marks a transport-level failure distinguishable from "no new
// content". The orchestrator skips the source for the run and retries on
// the next invocation.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// New selects the collector implementation for a configured source.
func New(src config.Source, httpClient *http.Client, userAgent, searchAPIKey string) (Collector, error) {
	switch src.Type {
	case config.TypeRSS:
		return NewRSSCollector(src, httpClient, userAgent), nil
	case config.TypeTwitter:
		return NewTwitterCollector(src, httpClient, userAgent), nil
	case config.TypeSearch:
		return NewSearchCollector(src, httpClient, searchAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", src.Type)
	}
}
