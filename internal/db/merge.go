package db

import (
	"reflect"

	"github.com/ipg/prezzogiusto/internal/listing"
)

// MergeCounts summarizes one merge-and-write pass.
type MergeCounts struct {
	Added     int
	Updated   int
	Unchanged int
}

// hasListingChanged reports whether any tracked field differs between the
// stored copy and a freshly scraped one. Features are compared structurally;
// otherFeatures is normalized sorted at ingestion, so the comparison is
// order-independent in practice. Image order is significant.
func hasListingChanged(existing *listing.Listing, updated *listing.Listing) bool {
	if existing.Price != updated.Price {
		return true
	}
	if existing.Title != updated.Title {
		return true
	}
	if !reflect.DeepEqual(existing.Features, updated.Features) {
		return true
	}
	if !imagesEqual(existing.Images, updated.Images) {
		return true
	}
	return false
}

func imagesEqual(a []string, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SaveSnapshotDeduped reconciles a freshly scraped batch against the stored
// listings for the same zone and source, then writes the merged snapshot.
//
// New listings are kept as-is. Changed listings keep the new data but carry
// one step of price history: when the price moved, previousPrice becomes the
// stored price; when the price is flat but other fields changed, an already
// stored previousPrice is propagated forward. Unchanged listings keep the
// stored copy verbatim. Listings absent from the batch are dropped from the
// written set.
//
// The merged snapshot is always written, even when nothing changed, so the
// stored timestamp and metadata reflect the latest scrape.
func (db *LocalDB) SaveSnapshotDeduped(snapshot *listing.Snapshot) (MergeCounts, error) {
	existing, err := db.GetExistingListings(snapshot.ZoneID, snapshot.Source)
	if err != nil {
		return MergeCounts{}, err
	}

	var counts MergeCounts
	merged := make([]listing.Listing, 0, len(snapshot.Listings))

	for _, l := range snapshot.Listings {
		stored, ok := existing[listing.CompositeID(l.Source, l.SourceID)]
		switch {
		case !ok:
			merged = append(merged, l)
			counts.Added++
		case hasListingChanged(&stored, &l):
			if stored.Price != l.Price {
				previous := stored.Price
				l.PreviousPrice = &previous
			} else if stored.PreviousPrice != nil && l.PreviousPrice == nil {
				l.PreviousPrice = stored.PreviousPrice
			}
			merged = append(merged, l)
			counts.Updated++
		default:
			merged = append(merged, stored)
			counts.Unchanged++
		}
	}

	mergedSnapshot := *snapshot
	mergedSnapshot.Listings = merged
	mergedSnapshot.ListingCount = len(merged)

	if err := db.SaveSnapshot(&mergedSnapshot); err != nil {
		return MergeCounts{}, err
	}
	return counts, nil
}
