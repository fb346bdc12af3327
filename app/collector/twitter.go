package collector

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"newsbrief/app/config"
)

const defaultRSSHubBaseURL = "https://rsshub.app"

var _ Collector = (*TwitterCollector)(nil)

// TwitterCollector reads a user timeline through an RSSHub bridge, which
// exposes it as an ordinary feed.
type TwitterCollector struct {
	source     config.Source
	httpClient *http.Client
	userAgent  string
	parser     *gofeed.Parser
	baseURL    string
}

func NewTwitterCollector(src config.Source, httpClient *http.Client, userAgent string) *TwitterCollector {
	return &TwitterCollector{
		source:     src,
		httpClient: httpClient,
		userAgent:  userAgent,
		parser:     gofeed.NewParser(),
		baseURL:    defaultRSSHubBaseURL,
	}
}

// feedURL accepts either a bare username or a full bridge URL in the source
// configuration.
func (c *TwitterCollector) feedURL() string {
	ref := strings.TrimSpace(c.source.URL)
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	username := strings.TrimPrefix(ref, "@")
	return fmt.Sprintf("%s/twitter/user/%s", c.baseURL, username)
}

func (c *TwitterCollector) Collect(ctx context.Context) ([]Item, error) {
	data, err := fetchURL(ctx, c.httpClient, c.feedURL(), c.userAgent)
	if err != nil {
		return nil, &FetchError{Source: c.source.Name, Err: err}
	}

	feed, err := c.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &FetchError{Source: c.source.Name, Err: fmt.Errorf("parse timeline feed: %w", err)}
	}

	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil || entry.Link == "" {
			continue
		}
		item := feedEntryToItem(entry, c.source)
		if item.Author == "" {
			item.Author = strings.TrimPrefix(strings.TrimSpace(c.source.URL), "@")
		}
		items = append(items, item)
	}

	return items, nil
}
