// Package apify runs a hosted immobiliare actor on the Apify platform and
// normalizes its dataset items. Paid fallback for zones the mobile API can't
// reach; requires APIFY_TOKEN.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ipg/prezzogiusto/internal/httpclient"
	"github.com/ipg/prezzogiusto/internal/listing"
	"github.com/ipg/prezzogiusto/internal/scrape"
	"github.com/ipg/prezzogiusto/internal/zones"
)

const (
	apiBaseURL = "https://api.apify.com/v2"

	// actorID is the hosted immobiliare.it scraper, pay-per-result.
	actorID = "memo23~immobiliare-scraper"

	defaultLimit    = 1000
	defaultMaxPages = 20

	// Actor runs take tens of seconds; the sync endpoint holds the request
	// open until the dataset is ready.
	runTimeout = 5 * time.Minute
)

type Scraper struct {
	httpClient *http.Client
	token      string
	logger     *slog.Logger
}

func NewScraper(httpClient *http.Client, token string, logger *slog.Logger) *Scraper {
	if httpClient == nil {
		httpClient = httpclient.New(runTimeout)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{httpClient: httpClient, token: token, logger: logger}
}

func (s *Scraper) Name() string {
	return "apify"
}

type actorInput struct {
	StartURLs []startURL `json:"startUrls"`
	MaxItems  int        `json:"maxItems"`
	MaxPages  int        `json:"maxPages"`
}

type startURL struct {
	URL string `json:"url"`
}

func searchURL(zone *zones.Zone) string {
	// Newest first, so a limited run still sees recent listings.
	return fmt.Sprintf("https://www.immobiliare.it/vendita-case/%s/%s/?criterio=dataModifica&ordine=desc", zone.City, zone.Slug)
}

// Scrape triggers one synchronous actor run for the zone and returns its
// normalized dataset.
func (s *Scraper) Scrape(ctx context.Context, zone *zones.Zone, options scrape.Options) (*scrape.Result, error) {
	if s.token == "" {
		return nil, fmt.Errorf("apify scraper needs APIFY_TOKEN")
	}

	limit := options.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	maxPages := options.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	input := actorInput{
		StartURLs: []startURL{{URL: searchURL(zone)}},
		MaxItems:  limit,
		MaxPages:  maxPages,
	}

	s.logger.Info("running apify actor", "actor", actorID, "zone", zone.Slug, "limit", limit)
	items, err := s.runActor(ctx, input)
	if err != nil {
		return nil, err
	}

	scrapedAt := listing.Timestamp(time.Now())
	listings := make([]listing.Listing, 0, len(items))
	failed := 0
	for i := range items {
		l := normalizeItem(&items[i], zone, scrapedAt)
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
			ReturnedCount:  len(items),
			HitLimit:       len(items) >= limit,
			ScrapedAt:      scrapedAt,
		},
	}, nil
}

// runActor calls the run-sync-get-dataset-items endpoint: one POST, dataset
// items in the response body.
func (s *Scraper) runActor(ctx context.Context, input actorInput) ([]datasetItem, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("can't marshal actor input: %w", err)
	}

	reqURL := fmt.Sprintf("%s/acts/%s/run-sync-get-dataset-items?token=%s",
		apiBaseURL, actorID, url.QueryEscape(s.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("can't create actor request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("can't run actor: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("can't read actor response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("actor run sent http error: %d, %s", resp.StatusCode, respBody)
	}

	var items []datasetItem
	if err := json.Unmarshal(respBody, &items); err != nil {
		return nil, fmt.Errorf("can't parse actor dataset: %w", err)
	}
	return items, nil
}
