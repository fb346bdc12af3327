package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	readability "codeberg.org/readeck/go-readability/v2"
)

// ContentExtractor fetches an item's page and extracts readable article text
// for items whose feed entry carried only a stub body.
type ContentExtractor struct {
	httpClient *http.Client
	userAgent  string
}

func NewContentExtractor(httpClient *http.Client, userAgent string) *ContentExtractor {
	return &ContentExtractor{httpClient: httpClient, userAgent: userAgent}
}

// Run fetches the page at rawURL and returns its extracted plain text.
func (e *ContentExtractor) Run(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid page url: %w", err)
	}

	data, err := fetchURL(ctx, e.httpClient, rawURL, e.userAgent)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	var text strings.Builder
	if err := article.RenderText(&text); err != nil {
		return "", fmt.Errorf("failed to render extracted content: %w", err)
	}

	extracted := strings.TrimSpace(text.String())
	if extracted == "" {
		return "", fmt.Errorf("no content extracted from page")
	}

	return extracted, nil
}
