package fetch

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"mining-intel/internal/domain"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// RSSSource fetches candidates from a single RSS or Atom feed.
type RSSSource struct {
	sourceID string
	feedURL  string
	client   *http.Client
	parser   *gofeed.Parser
}

// RSSOptions configures an RSSSource.
type RSSOptions struct {
	// HTTPClient overrides the default http.Client.
	HTTPClient *http.Client
	// Timeout applies when HTTPClient is nil.
	Timeout time.Duration
}

// NewRSSSource creates a source that pulls one feed per Fetch call.
func NewRSSSource(sourceID, feedURL string, opts *RSSOptions) *RSSSource {
	var client *http.Client
	if opts != nil && opts.HTTPClient != nil {
		client = opts.HTTPClient
	} else {
		timeout := 30 * time.Second
		if opts != nil && opts.Timeout > 0 {
			timeout = opts.Timeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &RSSSource{
		sourceID: sourceID,
		feedURL:  feedURL,
		client:   client,
		parser:   gofeed.NewParser(),
	}
}

var _ CandidateSource = (*RSSSource)(nil)

// Fetch downloads and parses the feed, returning one candidate per item.
// Items without a title are skipped; items without a parseable publish
// date carry a zero PublishedAt and are timestamped downstream.
func (s *RSSSource) Fetch(ctx context.Context) ([]domain.RawCandidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", ErrSourceUnavailable, s.feedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: feed %s returned status %d", ErrSourceUnavailable, s.feedURL, resp.StatusCode)
	}

	feed, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", s.feedURL, err)
	}

	candidates := make([]domain.RawCandidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		headline := stripHTML(item.Title)
		if headline == "" {
			continue
		}

		var publishedAt time.Time
		if item.PublishedParsed != nil {
			publishedAt = *item.PublishedParsed
		}

		candidates = append(candidates, domain.RawCandidate{
			SourceID:    s.sourceID,
			Headline:    headline,
			Summary:     stripHTML(item.Description),
			URL:         item.Link,
			PublishedAt: publishedAt,
		})
	}

	return candidates, nil
}

func stripHTML(s string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, ""))
}
