package zones

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Point returns the zone's coordinates as an orb point (lng, lat order), or
// false when the catalog has no coordinates for it.
func (z *Zone) Point() (orb.Point, bool) {
	if z.Coordinates == nil {
		return orb.Point{}, false
	}
	return orb.Point{z.Coordinates.Lng, z.Coordinates.Lat}, true
}

// Near returns zones whose coordinates lie within radiusMeters of the given
// point, closest first. Zones without coordinates are skipped.
func (r *Registry) Near(lat float64, lng float64, radiusMeters float64) ([]Zone, error) {
	zones, err := r.All()
	if err != nil {
		return nil, err
	}

	from := orb.Point{lng, lat}

	type zoneDistance struct {
		zone     Zone
		distance float64
	}

	matched := make([]zoneDistance, 0)
	for _, z := range zones {
		p, ok := z.Point()
		if !ok {
			continue
		}
		d := geo.Distance(from, p)
		if d <= radiusMeters {
			matched = append(matched, zoneDistance{zone: z, distance: d})
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].distance < matched[j].distance
	})

	near := make([]Zone, len(matched))
	for i, m := range matched {
		near[i] = m.zone
	}
	return near, nil
}

// Bound computes the bounding box of every zone with coordinates, for map
// viewports. Reports false when no zone has coordinates.
func Bound(zones []Zone) (orb.Bound, bool) {
	var bound orb.Bound
	found := false

	for i := range zones {
		p, ok := zones[i].Point()
		if !ok {
			continue
		}
		if !found {
			bound = orb.Bound{Min: p, Max: p}
			found = true
			continue
		}
		bound = bound.Extend(p)
	}

	return bound, found
}
