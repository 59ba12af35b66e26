package immobiliare

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ipg/prezzogiusto/internal/listing"
	"github.com/ipg/prezzogiusto/internal/scrape"
	"github.com/ipg/prezzogiusto/internal/zones"
)

const (
	defaultLimit     = 10000
	defaultPageDelay = 50 * time.Millisecond
)

// Scraper is the mobile-API source adapter.
type Scraper struct {
	client *Client
	logger *slog.Logger
}

func NewScraper(httpClient *http.Client, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{
		client: NewClient(httpClient),
		logger: logger,
	}
}

func (s *Scraper) Name() string {
	return "mobile"
}

// Scrape pages through the properties endpoint for a zone until the limit or
// the end of results, then normalizes every fetched record. The page delay is
// a rate-limiting courtesy, not a correctness requirement.
func (s *Scraper) Scrape(ctx context.Context, zone *zones.Zone, options scrape.Options) (*scrape.Result, error) {
	limit := options.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	pageDelay := defaultPageDelay
	if options.PageDelay > 0 {
		pageDelay = time.Duration(options.PageDelay) * time.Millisecond
	}

	scrapedAt := listing.Timestamp(time.Now())

	params, err := s.client.resolveSearchParams(ctx, zone)
	if err != nil {
		return nil, err
	}

	firstPage, err := s.client.fetchPage(ctx, params, 0)
	if err != nil {
		return nil, err
	}

	totalAvailable := firstPage.TotalActive
	toFetch := totalAvailable
	if toFetch > limit {
		toFetch = limit
	}
	s.logger.Info("zone search resolved",
		"zone", zone.Slug, "totalActive", totalAvailable, "toFetch", toFetch)

	properties := make([]property, 0, toFetch)
	properties = append(properties, firstPage.List...)

	for offset := pageSize; offset < toFetch; offset += pageSize {
		select {
		case <-time.After(pageDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		page, err := s.client.fetchPage(ctx, params, offset)
		if err != nil {
			// A broken page ends the pass; everything fetched so far is kept.
			s.logger.Warn("page fetch failed", "zone", zone.Slug, "offset", offset, "error", err)
			break
		}
		if len(page.List) == 0 {
			break
		}
		properties = append(properties, page.List...)
	}

	listings := make([]listing.Listing, 0, len(properties))
	failed := 0
	for i := range properties {
		l := normalizeProperty(&properties[i], zone, scrapedAt)
		if l == nil {
			failed++
			continue
		}
		listings = append(listings, *l)
	}
	if failed > 0 {
		s.logger.Info("normalized listings", "zone", zone.Slug, "valid", len(listings), "failed", failed)
	}

	return &scrape.Result{
		Listings: listings,
		Metadata: scrape.Metadata{
			RequestedLimit: limit,
			ReturnedCount:  len(properties),
			HitLimit:       totalAvailable > limit,
			ScrapedAt:      scrapedAt,
		},
	}, nil
}
