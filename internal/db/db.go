// Package db implements the file-backed listing store. Snapshots are written
// in a compact per-zone, per-source layout:
//
//	data/
//	├── zones.json
//	└── listings/
//	    └── {region}/{city}/{area}/{slug}/{source}.json
//
// Files hold CompactSnapshots; reads transparently hydrate them back to full
// listings using the owning zone's metadata.
package db

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ipg/prezzogiusto/internal/listing"
	"github.com/ipg/prezzogiusto/internal/zones"
)

type Options struct {
	DataDir string
}

type LocalDB struct {
	dataDir     string
	listingsDir string
	zones       *zones.Registry
}

func New(options Options) *LocalDB {
	return &LocalDB{
		dataDir:     options.DataDir,
		listingsDir: filepath.Join(options.DataDir, "listings"),
		zones:       zones.NewRegistry(filepath.Join(options.DataDir, "zones.json")),
	}
}

// Zones exposes the catalog registry backing this store.
func (db *LocalDB) Zones() *zones.Registry {
	return db.zones
}

func (db *LocalDB) listingPath(zone *zones.Zone, source listing.Source) string {
	return filepath.Join(db.listingsDir, zone.Region, zone.City, zone.Area, zone.Slug, string(source)+".json")
}

// SaveSnapshot writes the snapshot as the complete file contents for its
// (zone, source) pair, in compact form. An unknown zone id is a hard error:
// data written for an untracked zone would be unrecoverable.
func (db *LocalDB) SaveSnapshot(snapshot *listing.Snapshot) error {
	zone, err := db.zones.ByID(snapshot.ZoneID)
	if err != nil {
		return fmt.Errorf("can't look up zone: %w", err)
	}
	if zone == nil {
		return fmt.Errorf("zone not found: %s", snapshot.ZoneID)
	}

	compact := listing.CompactSnapshot{
		ZoneID:       snapshot.ZoneID,
		ScrapedAt:    snapshot.ScrapedAt,
		Source:       snapshot.Source,
		ListingCount: snapshot.ListingCount,
		Listings:     make([]listing.CompactListing, len(snapshot.Listings)),
		Metadata:     snapshot.Metadata,
	}
	for i := range snapshot.Listings {
		compact.Listings[i] = compactListing(&snapshot.Listings[i])
	}

	path := db.listingPath(zone, snapshot.Source)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("can't create listing dir: %w", err)
	}

	content, err := json.MarshalIndent(compact, "", "  ")
	if err != nil {
		return fmt.Errorf("can't marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("can't write snapshot: %w", err)
	}
	return nil
}

// GetSnapshots returns the stored snapshot for each source of a zone, most
// recent first. Missing, unreadable or invalid files are skipped: a corrupt
// file for one source must not block the others.
func (db *LocalDB) GetSnapshots(zoneID string) ([]listing.Snapshot, error) {
	zone, err := db.zones.ByID(zoneID)
	if err != nil {
		return nil, fmt.Errorf("can't look up zone: %w", err)
	}
	if zone == nil {
		return []listing.Snapshot{}, nil
	}

	snapshots := make([]listing.Snapshot, 0, len(listing.Sources))
	for _, source := range listing.Sources {
		snapshot := db.readSnapshot(zone, source)
		if snapshot != nil {
			snapshots = append(snapshots, *snapshot)
		}
	}

	sort.SliceStable(snapshots, func(i, j int) bool {
		return parseScrapedAt(snapshots[i].ScrapedAt).After(parseScrapedAt(snapshots[j].ScrapedAt))
	})
	return snapshots, nil
}

// GetLatestSnapshot returns the most recent snapshot for a zone, optionally
// restricted to one source. Nil when nothing is stored.
func (db *LocalDB) GetLatestSnapshot(zoneID string, source listing.Source) (*listing.Snapshot, error) {
	snapshots, err := db.GetSnapshots(zoneID)
	if err != nil {
		return nil, err
	}

	for i := range snapshots {
		if source != "" && snapshots[i].Source != source {
			continue
		}
		return &snapshots[i], nil
	}
	return nil, nil
}

// GetExistingListings returns the stored listings for a zone keyed by
// composite id, optionally restricted to one source. The change-merger reads
// through this before every write.
func (db *LocalDB) GetExistingListings(zoneID string, source listing.Source) (map[string]listing.Listing, error) {
	snapshots, err := db.GetSnapshots(zoneID)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]listing.Listing)
	for _, snapshot := range snapshots {
		if source != "" && snapshot.Source != source {
			continue
		}
		for _, l := range snapshot.Listings {
			key := listing.CompositeID(l.Source, l.SourceID)
			if _, ok := existing[key]; !ok {
				existing[key] = l
			}
		}
	}
	return existing, nil
}

// readSnapshot loads and, when needed, hydrates one (zone, source) file.
// Returns nil for missing or invalid files.
func (db *LocalDB) readSnapshot(zone *zones.Zone, source listing.Source) *listing.Snapshot {
	content, err := os.ReadFile(db.listingPath(zone, source))
	if err != nil {
		return nil
	}

	if isCompactFile(content) {
		var compact listing.CompactSnapshot
		if err := json.Unmarshal(content, &compact); err != nil {
			return nil
		}
		snapshot := hydrateSnapshot(&compact, zone)
		return &snapshot
	}

	var snapshot listing.Snapshot
	if err := json.Unmarshal(content, &snapshot); err != nil {
		return nil
	}
	return &snapshot
}

// isCompactFile detects the compact format: the first listing has a sourceId
// but no id/url (those are derivable and therefore never stored).
func isCompactFile(content []byte) bool {
	var probe struct {
		Listings []map[string]json.RawMessage `json:"listings"`
	}
	if err := json.Unmarshal(content, &probe); err != nil {
		return false
	}
	if len(probe.Listings) == 0 {
		// Nothing to tell the formats apart; compact is the written format.
		return true
	}

	first := probe.Listings[0]
	_, hasSourceID := first["sourceId"]
	_, hasID := first["id"]
	_, hasURL := first["url"]
	return hasSourceID && !hasID && !hasURL
}

func parseScrapedAt(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
