package db

import (
	"github.com/ipg/prezzogiusto/internal/listing"
	"github.com/ipg/prezzogiusto/internal/zones"
)

// compactListing projects a full listing down to the stored fields. The
// composite id, source tag, detail URL and location are reconstructible from
// the owning zone and the file's source, so they are dropped.
func compactListing(l *listing.Listing) listing.CompactListing {
	return listing.CompactListing{
		SourceID:      l.SourceID,
		Title:         l.Title,
		Price:         l.Price,
		PreviousPrice: l.PreviousPrice,
		Images:        l.Images,
		Features:      l.Features,
	}
}

// hydrateListing rebuilds a full listing from its compact form plus the
// context the compaction dropped. Round-trips losslessly with compactListing
// for every stored field.
func hydrateListing(compact *listing.CompactListing, source listing.Source, zone *zones.Zone, scrapedAt string) listing.Listing {
	province := zone.City
	if zone.City == "roma" {
		province = "Roma"
	}

	return listing.Listing{
		ID:             listing.CompositeID(source, compact.SourceID),
		Source:         source,
		SourceID:       compact.SourceID,
		Title:          compact.Title,
		Price:          compact.Price,
		PriceFormatted: listing.FormatPrice(compact.Price),
		PreviousPrice:  compact.PreviousPrice,
		Images:         compact.Images,
		Location: listing.Location{
			Region:   zone.Region,
			Province: province,
			City:     zone.City,
			Zone:     zone.Name,
			ZoneID:   zone.ID,
		},
		Features:  compact.Features,
		URL:       listing.DetailURL(source, compact.SourceID),
		ScrapedAt: scrapedAt,
	}
}

func hydrateSnapshot(compact *listing.CompactSnapshot, zone *zones.Zone) listing.Snapshot {
	hydrated := make([]listing.Listing, len(compact.Listings))
	for i := range compact.Listings {
		hydrated[i] = hydrateListing(&compact.Listings[i], compact.Source, zone, compact.ScrapedAt)
	}

	return listing.Snapshot{
		ZoneID:       compact.ZoneID,
		ScrapedAt:    compact.ScrapedAt,
		Source:       compact.Source,
		ListingCount: compact.ListingCount,
		Listings:     hydrated,
		Metadata:     compact.Metadata,
	}
}
