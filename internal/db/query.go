package db

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/ipg/prezzogiusto/internal/listing"
)

// ListingOptions filters façade reads. PlayableOnly excludes listings with an
// undisclosed price (0): the game needs a price to guess.
type ListingOptions struct {
	PlayableOnly bool
}

// CountOptions filters count queries.
type CountOptions struct {
	PlayableOnly bool
	Source       listing.Source
}

// GetListings returns the union of listings across every source of a zone,
// deduplicated by composite id, latest snapshot per source.
func (db *LocalDB) GetListings(zoneID string, options ListingOptions) ([]listing.Listing, error) {
	snapshots, err := db.GetSnapshots(zoneID)
	if err != nil {
		return nil, err
	}

	// Snapshots arrive most recent first; keep only the latest per source in
	// case more than one ever exists.
	latestBySource := make(map[listing.Source]*listing.Snapshot, len(snapshots))
	order := make([]listing.Source, 0, len(snapshots))
	for i := range snapshots {
		if _, ok := latestBySource[snapshots[i].Source]; ok {
			continue
		}
		latestBySource[snapshots[i].Source] = &snapshots[i]
		order = append(order, snapshots[i].Source)
	}

	seen := make(map[string]struct{})
	listings := make([]listing.Listing, 0)
	for _, source := range order {
		for _, l := range latestBySource[source].Listings {
			key := listing.CompositeID(l.Source, l.SourceID)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			if options.PlayableOnly && l.Price == 0 {
				continue
			}
			listings = append(listings, l)
		}
	}
	return listings, nil
}

// GetListingCount counts stored listings without hydrating them: only the
// sourceId and price of each entry are decoded, which keeps dashboard-style
// polling cheap for large zones.
func (db *LocalDB) GetListingCount(zoneID string, options CountOptions) (int, error) {
	zone, err := db.zones.ByID(zoneID)
	if err != nil {
		return 0, fmt.Errorf("can't look up zone: %w", err)
	}
	if zone == nil {
		return 0, nil
	}

	sources := listing.Sources
	if options.Source != "" {
		sources = []listing.Source{options.Source}
	}

	seen := make(map[string]struct{})
	for _, source := range sources {
		content, err := os.ReadFile(db.listingPath(zone, source))
		if err != nil {
			continue
		}

		var probe struct {
			Listings []struct {
				SourceID string `json:"sourceId"`
				Price    int    `json:"price"`
			} `json:"listings"`
		}
		if err := json.Unmarshal(content, &probe); err != nil {
			continue
		}

		for _, l := range probe.Listings {
			if l.SourceID == "" {
				continue
			}
			if options.PlayableOnly && l.Price == 0 {
				continue
			}
			seen[listing.CompositeID(source, l.SourceID)] = struct{}{}
		}
	}
	return len(seen), nil
}

// GetRandomListing picks one playable listing uniformly at random, or nil
// when the zone has none.
func (db *LocalDB) GetRandomListing(zoneID string) (*listing.Listing, error) {
	listings, err := db.GetListings(zoneID, ListingOptions{PlayableOnly: true})
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, nil
	}
	return &listings[rand.Intn(len(listings))], nil
}

// GetRandomListings returns up to count distinct playable listings via a full
// shuffle, avoiding with-replacement duplicates.
func (db *LocalDB) GetRandomListings(zoneID string, count int) ([]listing.Listing, error) {
	listings, err := db.GetListings(zoneID, ListingOptions{PlayableOnly: true})
	if err != nil {
		return nil, err
	}

	shuffled := make([]listing.Listing, len(listings))
	copy(shuffled, listings)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if count > len(shuffled) {
		count = len(shuffled)
	}
	return shuffled[:count], nil
}
