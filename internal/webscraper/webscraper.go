// Package webscraper parses the public immobiliare.it search result pages.
// Legacy fallback adapter: the HTML cards expose fewer fields than the mobile
// API, but need no external ids for the zone.
package webscraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ipg/prezzogiusto/internal/httpclient"
	"github.com/ipg/prezzogiusto/internal/listing"
	"github.com/ipg/prezzogiusto/internal/scrape"
	"github.com/ipg/prezzogiusto/internal/zones"
)

const (
	resultsPerPage   = 25
	defaultMaxPages  = 4
	defaultPageDelay = 500 * time.Millisecond
	defaultTimeout   = 30 * time.Second
)

var (
	listingIDRegexp = regexp.MustCompile(`(\d+)`)
	areaRegexp      = regexp.MustCompile(`(\d+)\s*m`)
	roomsRegexp     = regexp.MustCompile(`(?i)(\d+)\s*local`)
)

type Scraper struct {
	httpClient *http.Client
	logger     *slog.Logger
}

func NewScraper(httpClient *http.Client, logger *slog.Logger) *Scraper {
	if httpClient == nil {
		httpClient = httpclient.New(defaultTimeout)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{httpClient: httpClient, logger: logger}
}

func (s *Scraper) Name() string {
	return "web"
}

func searchURL(zone *zones.Zone, page int) string {
	url := fmt.Sprintf("https://www.immobiliare.it/vendita-case/%s/%s/?criterio=rilevanza", zone.City, zone.Slug)
	if page > 1 {
		url = fmt.Sprintf("%s&pag=%d", url, page)
	}
	return url
}

// Scrape walks the result pages for a zone, extracting one listing per card.
func (s *Scraper) Scrape(ctx context.Context, zone *zones.Zone, options scrape.Options) (*scrape.Result, error) {
	maxPages := options.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	pageDelay := defaultPageDelay
	if options.PageDelay > 0 {
		pageDelay = time.Duration(options.PageDelay) * time.Millisecond
	}

	scrapedAt := listing.Timestamp(time.Now())
	listings := make([]listing.Listing, 0)

	for page := 1; page <= maxPages; page++ {
		doc, err := s.fetchPage(ctx, searchURL(zone, page))
		if err != nil {
			if page == 1 {
				return nil, err
			}
			s.logger.Warn("page fetch failed", "zone", zone.Slug, "page", page, "error", err)
			break
		}

		pageListings := extractListings(doc, zone, scrapedAt)
		if len(pageListings) == 0 {
			break
		}
		listings = append(listings, pageListings...)

		if options.Limit > 0 && len(listings) >= options.Limit {
			listings = listings[:options.Limit]
			break
		}
		if len(pageListings) < resultsPerPage {
			break
		}

		select {
		case <-time.After(pageDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	limit := options.Limit
	if limit <= 0 {
		limit = maxPages * resultsPerPage
	}

	return &scrape.Result{
		Listings: listings,
		Metadata: scrape.Metadata{
			RequestedLimit: limit,
			ReturnedCount:  len(listings),
			HitLimit:       len(listings) >= limit,
			ScrapedAt:      scrapedAt,
		},
	}, nil
}

func (s *Scraper) fetchPage(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("can't create search request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("can't fetch search page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("search page sent http error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("can't parse search page: %w", err)
	}
	return doc, nil
}

func extractListings(doc *goquery.Document, zone *zones.Zone, scrapedAt string) []listing.Listing {
	listings := make([]listing.Listing, 0)

	doc.Find(".in-realEstateResults__item").Each(func(_ int, card *goquery.Selection) {
		l := extractCard(card, zone, scrapedAt)
		if l != nil {
			listings = append(listings, *l)
		}
	})

	return listings
}

// extractCard pulls one listing out of a result card. Nil when the card has
// no resolvable id or no disclosed price.
func extractCard(card *goquery.Selection, zone *zones.Zone, scrapedAt string) *listing.Listing {
	link := card.Find("a.in-card__title").First()
	if link.Length() == 0 {
		return nil
	}

	href, _ := link.Attr("href")
	idMatch := listingIDRegexp.FindStringSubmatch(href)
	if idMatch == nil {
		return nil
	}
	sourceID := idMatch[1]

	price, priceFormatted := parsePrice(card.Find(".in-feat__item--main").First().Text())
	if price == 0 {
		return nil
	}

	title, ok := link.Attr("title")
	if !ok || title == "" {
		title = strings.TrimSpace(link.Text())
	}

	images := make([]string, 0)
	card.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if ref := listing.NormalizeImageRef(src); ref != "" {
			images = append(images, ref)
		}
	})

	var area *float64
	var rooms *int
	card.Find(".in-feat__item").Each(func(_ int, item *goquery.Selection) {
		text := item.Text()
		if m := areaRegexp.FindStringSubmatch(text); m != nil && area == nil {
			if n, err := strconv.ParseFloat(m[1], 64); err == nil {
				area = &n
			}
		}
		if m := roomsRegexp.FindStringSubmatch(text); m != nil && rooms == nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				rooms = &n
			}
		}
	})

	detailURL := href
	if !strings.HasPrefix(detailURL, "http") {
		detailURL = "https://www.immobiliare.it" + detailURL
	}

	address := strings.TrimSpace(card.Find(".in-card__location, .in-card__address").First().Text())

	return &listing.Listing{
		ID:             listing.CompositeID(listing.SourceImmobiliare, sourceID),
		Source:         listing.SourceImmobiliare,
		SourceID:       sourceID,
		Title:          title,
		Price:          price,
		PriceFormatted: priceFormatted,
		Images:         images,
		Location: listing.Location{
			Region:  zone.Region,
			City:    zone.City,
			Zone:    zone.Name,
			ZoneID:  zone.ID,
			Address: address,
		},
		Features: listing.Features{
			Area:  area,
			Rooms: rooms,
		},
		URL:       detailURL,
		ScrapedAt: scrapedAt,
	}
}

// parsePrice handles the card price text, e.g. "€ 350.000" or "da € 350.000".
func parsePrice(text string) (int, string) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(cleaned, "da "), "Da "))
	if cleaned == "" {
		return 0, ""
	}

	numeric := strings.NewReplacer("€", "", ".", "", " ", "", " ", "", ",00", "").Replace(cleaned)
	price, err := strconv.Atoi(numeric)
	if err != nil {
		return 0, cleaned
	}
	return price, cleaned
}
