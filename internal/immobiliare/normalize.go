package immobiliare

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ipg/prezzogiusto/internal/listing"
	"github.com/ipg/prezzogiusto/internal/zones"
)

// Amenity keyword lists matched against the normalized otherFeatures tag set.
// A miss yields nil (unknown), never false: the tag list is not exhaustive.
var (
	balconyTags  = []string{"balcone"}
	terraceTags  = []string{"terrazzo"}
	furnitureTag = []string{"arredato"}
	cellarTags   = []string{"cantina"}
	airCondTags  = []string{"aria condizion", "condizion", "climatizz"}
	parkingTags  = []string{"posto auto", "garage", "box", "parcheggio", "autorimessa"}
)

// normalizeProperty maps one raw mobile-API record to a canonical listing.
// Returns nil for records with no resolvable id or no disclosed price; both
// are unusable for the game and are skipped, not errors.
func normalizeProperty(p *property, zone *zones.Zone, scrapedAt string) *listing.Listing {
	sourceID := propertySourceID(p)
	if sourceID == "" {
		return nil
	}

	price := propertyPriceValue(p)
	if price == 0 {
		return nil
	}

	priceFormatted := listing.FormatPrice(price)
	if p.Price != nil && p.Price.Value != "" {
		priceFormatted = p.Price.Value
	}

	typology := typologyName(p)
	titleTypology := "Immobile"
	if typology != nil {
		titleTypology = *typology
	}
	microzone := zone.Name
	if p.Geography != nil && p.Geography.Microzone != nil && p.Geography.Microzone.Name != "" {
		microzone = p.Geography.Microzone.Name
	}
	title := fmt.Sprintf("%s in %s", titleTypology, microzone)

	var topo propertyTopology
	if p.Topology != nil {
		topo = *p.Topology
	}
	var analytics propertyAnalytics
	if p.Analytics != nil {
		analytics = *p.Analytics
	}

	var area *float64
	if topo.Surface != nil {
		area = listing.ParseNumber(topo.Surface.Size)
	}
	rooms := listing.ParseCount(topo.Rooms)
	bathrooms := listing.ParseCount(topo.Bathrooms)
	bedrooms := listing.ParseCount(analytics.NumBedrooms)
	floorValue := topo.Floor
	if floorValue == nil {
		floorValue = analytics.Floor
	}
	floor := listing.ParseFloor(floorValue)

	tags := listing.NormalizeTags(analytics.OtherFeatures)

	elevator := topo.Lift
	if elevator == nil {
		elevator = analytics.Elevator
	}

	location := listing.Location{
		Region: zone.Region,
		City:   zone.City,
		Zone:   microzone,
		ZoneID: zone.ID,
	}
	if p.Geography != nil {
		if p.Geography.Region != nil && p.Geography.Region.Name != "" {
			location.Region = p.Geography.Region.Name
		}
		if p.Geography.Province != nil {
			location.Province = p.Geography.Province.Abbreviation
		}
		if p.Geography.Municipality != nil && p.Geography.Municipality.Name != "" {
			location.City = p.Geography.Municipality.Name
		}
		if p.Geography.Macrozone != nil {
			location.Address = p.Geography.Macrozone.Name
		}
	}

	return &listing.Listing{
		ID:             listing.CompositeID(listing.SourceImmobiliare, sourceID),
		Source:         listing.SourceImmobiliare,
		SourceID:       sourceID,
		Title:          title,
		Price:          price,
		PriceFormatted: priceFormatted,
		Images:         extractImages(p),
		Location:       location,
		Features: listing.Features{
			Area:            area,
			Rooms:           rooms.Value,
			RoomsRaw:        rooms.Raw,
			Bedrooms:        bedrooms.Value,
			BedroomsRaw:     bedrooms.Raw,
			Bathrooms:       bathrooms.Value,
			BathroomsRaw:    bathrooms.Raw,
			Floor:           floor.Value,
			FloorRaw:        floor.Raw,
			Elevator:        elevator,
			Condition:       nonEmpty(analytics.PropertyStatus),
			Typology:        typology,
			Heating:         nonEmpty(analytics.Heating),
			Balcony:         flagOrTag(topo.Balcony, tags, balconyTags),
			Terrace:         flagOrTag(topo.Terrace, tags, terraceTags),
			Furnished:       flagOrTag(topo.Furnished, tags, furnitureTag),
			Cellar:          flagOrTag(topo.Cellar, tags, cellarTags),
			Luxury:          topo.IsLuxury,
			AirConditioning: flagOrTag(nil, tags, airCondTags),
			Parking:         flagOrTag(nil, tags, parkingTags),
			OtherFeatures:   tags,
		},
		URL:       listing.DetailURL(listing.SourceImmobiliare, sourceID),
		ScrapedAt: scrapedAt,
	}
}

func propertySourceID(p *property) string {
	if p.ID == nil || *p.ID == 0 {
		return ""
	}
	return fmt.Sprint(*p.ID)
}

func propertyPriceValue(p *property) int {
	if p.Price != nil && p.Price.Raw != nil && *p.Price.Raw != 0 {
		return int(*p.Price.Raw)
	}
	if p.Analytics != nil {
		if n := listing.ParseNumber(p.Analytics.Price); n != nil {
			return int(*n)
		}
	}
	return 0
}

// typologyName prefers the analytics label; the topology field is either a
// bare string or a {id, name} object depending on the record.
func typologyName(p *property) *string {
	if p.Analytics != nil {
		if t := strings.TrimSpace(p.Analytics.Typology); t != "" {
			return &t
		}
	}

	if p.Topology == nil || len(p.Topology.Typology) == 0 {
		return nil
	}

	var asString string
	if err := json.Unmarshal(p.Topology.Typology, &asString); err == nil {
		if t := strings.TrimSpace(asString); t != "" {
			return &t
		}
		return nil
	}

	var asObject struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(p.Topology.Typology, &asObject); err == nil {
		if t := strings.TrimSpace(asObject.Name); t != "" {
			return &t
		}
	}
	return nil
}

func extractImages(p *property) []string {
	imageIDs := make([]string, 0)
	if p.Media == nil {
		return imageIDs
	}

	for _, img := range p.Media.Images {
		url := img.HD
		if url == "" {
			url = img.SD
		}
		if ref := listing.NormalizeImageRef(url); ref != "" {
			imageIDs = append(imageIDs, ref)
		}
	}
	return imageIDs
}

func flagOrTag(explicit *bool, tags []string, needles []string) *bool {
	if explicit != nil {
		return explicit
	}
	if listing.TagsContainAny(tags, needles) {
		t := true
		return &t
	}
	return nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
