package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/basismind/basismind/internal/contracts"
	"github.com/basismind/basismind/pkg/httputil"
	"github.com/basismind/basismind/pkg/redis"
)

// Scrape quota against the agency page, shared across processes.
var lineupRateLimit = redis.RateLimitConfig{
	Key:    "lineup_scrape",
	Limit:  10,
	Window: time.Minute,
}

// LineupSource scrapes a port agency line-up page and counts vessels by
// status. It only populates the line-up columns; the pipeline uses it to
// enrich rows from the primary sources.
type LineupSource struct {
	client  *httputil.Client
	limiter *redis.RateLimiter
	url     string
}

// NewLineupSource creates a scraper against the given line-up page URL.
func NewLineupSource(client *httputil.Client, url string) *LineupSource {
	return &LineupSource{client: client, url: url}
}

// WithRateLimiter throttles scraping across all processes sharing the
// Redis instance.
func (s *LineupSource) WithRateLimiter(limiter *redis.RateLimiter) *LineupSource {
	s.limiter = limiter
	return s
}

func (s *LineupSource) Name() string { return "lineup:" + s.url }

// Fetch downloads the line-up page and tallies vessel rows. A row's status
// cell decides whether it counts against the gross total.
func (s *LineupSource) Fetch(ctx context.Context, date time.Time) (*contracts.MarketDataRow, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, lineupRateLimit); err != nil {
			return nil, fmt.Errorf("line-up scrape rate limit: %w", err)
		}
	}

	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch line-up page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("line-up page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse line-up page: %w", err)
	}

	gross, cancelled, postponed := 0, 0, 0
	doc.Find("table.lineup tbody tr, table#lineup tbody tr").Each(func(_ int, tr *goquery.Selection) {
		status := strings.ToLower(strings.TrimSpace(tr.Find("td.status").Text()))
		if status == "" {
			// Fall back to the last cell when the page carries no status class.
			status = strings.ToLower(strings.TrimSpace(tr.Find("td").Last().Text()))
		}
		switch {
		case strings.Contains(status, "cancel"):
			cancelled++
			gross++
		case strings.Contains(status, "postpon"):
			postponed++
			gross++
		case status != "":
			gross++
		}
	})

	if gross == 0 {
		return nil, fmt.Errorf("%w: no vessel rows on line-up page", ErrNotFound)
	}

	net := gross - cancelled - postponed
	if net < 0 {
		net = 0
	}
	cancellations := cancelled + postponed

	// Some agencies publish a pre-computed weekly cancellation figure.
	if text := strings.TrimSpace(doc.Find("#cancellations-7d, .cancellations-7d").First().Text()); text != "" {
		if v, err := strconv.Atoi(text); err == nil {
			cancellations = v
		}
	}

	return &contracts.MarketDataRow{
		Date:            date,
		LineupGross:     &gross,
		LineupNet:       &net,
		Cancellations7D: &cancellations,
	}, nil
}
