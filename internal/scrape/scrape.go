// Package scrape defines the contract every listing source adapter
// implements, and the strategy dispatch that picks one by configuration.
package scrape

import (
	"context"
	"fmt"

	"github.com/ipg/prezzogiusto/internal/listing"
	"github.com/ipg/prezzogiusto/internal/zones"
)

// Options tunes one scrape pass for one zone.
type Options struct {
	// Limit caps the number of raw records fetched; 0 means no cap.
	Limit int
	// PageDelay is the courtesy pause between page fetches, in milliseconds.
	PageDelay int
	// MaxPages caps pagination for adapters that page by result page.
	MaxPages int
}

// Metadata describes how a scrape pass went.
type Metadata struct {
	RequestedLimit int
	ReturnedCount  int
	HitLimit       bool
	ScrapedAt      string
}

// Result is the adapter contract's output: normalized listings plus pass
// metadata. Listings are normalized but not yet deduplicated.
type Result struct {
	Listings []listing.Listing
	Metadata Metadata
}

// Scraper produces raw records for a zone and normalizes them. Everything
// downstream (dedup, merge, persistence) is the core's responsibility.
type Scraper interface {
	Name() string
	Scrape(ctx context.Context, zone *zones.Zone, options Options) (*Result, error)
}

// Select returns the scraper registered under the given strategy name.
func Select(name string, scrapers []Scraper) (Scraper, error) {
	for _, s := range scrapers {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("unknown scraper: %s", name)
}
