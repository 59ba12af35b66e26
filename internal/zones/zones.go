// Package zones loads and caches the static zone catalog. The catalog is
// reference data maintained by hand in data/zones.json; the process never
// mutates it.
package zones

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// Coordinates is a zone's representative point (typically its centroid).
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Zone is one named neighborhood in the region > city > area > slug
// hierarchy. ImmobiliareZ2/Z3 are the external macrozone and microzone ids a
// listing source may key on; either granularity can be missing.
type Zone struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Slug          string       `json:"slug"`
	Region        string       `json:"region"`
	City          string       `json:"city"`
	Area          string       `json:"area"`
	Coordinates   *Coordinates `json:"coordinates,omitempty"`
	ImmobiliareZ2 int          `json:"immobiliareZ2,omitempty"`
	ImmobiliareZ3 int          `json:"immobiliareZ3,omitempty"`
}

// Catalog is the zones.json file format.
type Catalog struct {
	Version   int    `json:"version"`
	UpdatedAt string `json:"updatedAt"`
	Zones     []Zone `json:"zones"`
}

// Filters narrows catalog lookups. Empty fields match everything.
type Filters struct {
	Area   string
	Region string
	City   string
}

// Registry caches the catalog for the lifetime of the process. The cache is
// immutable after load; Reset exists for test isolation only.
type Registry struct {
	path string

	mu    sync.Mutex
	zones []Zone
}

func NewRegistry(path string) *Registry {
	return &Registry{path: path}
}

// All returns every zone, loading the catalog on first use. A missing catalog
// file yields an empty registry, not an error.
func (r *Registry) All() ([]Zone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.zones != nil {
		return r.zones, nil
	}

	content, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		r.zones = []Zone{}
		return r.zones, nil
	}
	if err != nil {
		return nil, fmt.Errorf("can't read zones file: %w", err)
	}

	var catalog Catalog
	if err := json.Unmarshal(content, &catalog); err != nil {
		return nil, fmt.Errorf("can't parse zones file: %w", err)
	}

	r.zones = catalog.Zones
	return r.zones, nil
}

// ByID returns the zone with the given stable id, or nil.
func (r *Registry) ByID(id string) (*Zone, error) {
	zones, err := r.All()
	if err != nil {
		return nil, err
	}
	for i := range zones {
		if zones[i].ID == id {
			return &zones[i], nil
		}
	}
	return nil, nil
}

// BySlug returns the zone with the given slug, or nil.
func (r *Registry) BySlug(slug string) (*Zone, error) {
	zones, err := r.All()
	if err != nil {
		return nil, err
	}
	for i := range zones {
		if zones[i].Slug == slug {
			return &zones[i], nil
		}
	}
	return nil, nil
}

// BySlugs returns zones matching any slug in the list, in catalog order.
func (r *Registry) BySlugs(slugs []string) ([]Zone, error) {
	zones, err := r.All()
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(slugs))
	for _, s := range slugs {
		wanted[s] = struct{}{}
	}

	matched := make([]Zone, 0, len(slugs))
	for _, z := range zones {
		if _, ok := wanted[z.Slug]; ok {
			matched = append(matched, z)
		}
	}
	return matched, nil
}

// ByArea returns every zone in an area.
func (r *Registry) ByArea(area string) ([]Zone, error) {
	return r.Filter(Filters{Area: area})
}

// Filter returns zones matching all set fields.
func (r *Registry) Filter(filters Filters) ([]Zone, error) {
	zones, err := r.All()
	if err != nil {
		return nil, err
	}

	matched := make([]Zone, 0, len(zones))
	for _, z := range zones {
		if filters.Area != "" && z.Area != filters.Area {
			continue
		}
		if filters.Region != "" && z.Region != filters.Region {
			continue
		}
		if filters.City != "" && z.City != filters.City {
			continue
		}
		matched = append(matched, z)
	}
	return matched, nil
}

// Areas returns the distinct area names, in catalog order.
func (r *Registry) Areas() ([]string, error) {
	zones, err := r.All()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	areas := make([]string, 0)
	for _, z := range zones {
		if _, ok := seen[z.Area]; ok {
			continue
		}
		seen[z.Area] = struct{}{}
		areas = append(areas, z.Area)
	}
	return areas, nil
}

// Save is unsupported: zones.json is the source of truth and zone identity
// never changes mid-run. Degrades to a warning.
func (r *Registry) Save(zones []Zone) error {
	slog.Warn("zone catalog is read-only, edit zones.json directly", "ignored", len(zones))
	return nil
}

// Reset drops the cache so the next lookup reloads the catalog. Test hook.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.zones = nil
}
