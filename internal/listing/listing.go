package listing

import "fmt"

// Source identifies the external site a listing was collected from.
type Source string

const (
	SourceImmobiliare Source = "immobiliare"
	SourceIdealista   Source = "idealista"
)

// Sources lists every source the store knows how to read.
var Sources = []Source{SourceImmobiliare, SourceIdealista}

// CompositeID builds the storage key for a listing, e.g. "immobiliare-123".
func CompositeID(source Source, sourceID string) string {
	return fmt.Sprintf("%s-%s", source, sourceID)
}

// DetailURL rebuilds the public advertisement URL from the source-native id.
func DetailURL(source Source, sourceID string) string {
	switch source {
	case SourceIdealista:
		return fmt.Sprintf("https://www.idealista.it/immobile/%s/", sourceID)
	default:
		return fmt.Sprintf("https://www.immobiliare.it/annunci/%s/", sourceID)
	}
}

// Location places a listing inside the zone hierarchy.
type Location struct {
	Region   string `json:"region"`
	Province string `json:"province"`
	City     string `json:"city"`
	Zone     string `json:"zone"`
	ZoneID   string `json:"zoneId"`
	Address  string `json:"address,omitempty"`
}

// Features holds the property attributes used by the game. Numeric fields
// carry an optional raw string when the source value couldn't be reduced to a
// bare number (e.g. "5+"). Nil booleans mean "unknown", not "absent".
type Features struct {
	Area            *float64 `json:"area"`
	Rooms           *int     `json:"rooms"`
	RoomsRaw        *string  `json:"roomsRaw"`
	Bedrooms        *int     `json:"bedrooms"`
	BedroomsRaw     *string  `json:"bedroomsRaw"`
	Bathrooms       *int     `json:"bathrooms"`
	BathroomsRaw    *string  `json:"bathroomsRaw"`
	Floor           *int     `json:"floor"`
	FloorRaw        *string  `json:"floorRaw"`
	TotalFloors     *int     `json:"totalFloors"`
	Elevator        *bool    `json:"elevator"`
	EnergyClass     *string  `json:"energyClass"`
	YearBuilt       *int     `json:"yearBuilt"`
	Condition       *string  `json:"condition"`
	Typology        *string  `json:"typology"`
	Heating         *string  `json:"heating"`
	Balcony         *bool    `json:"balcony"`
	Terrace         *bool    `json:"terrace"`
	Furnished       *bool    `json:"furnished"`
	Cellar          *bool    `json:"cellar"`
	Luxury          *bool    `json:"luxury"`
	AirConditioning *bool    `json:"airConditioning"`
	Parking         *bool    `json:"parking"`
	OtherFeatures   []string `json:"otherFeatures"`
}

// Listing is one real-estate advertisement in canonical form. Price 0 means
// "not disclosed"; such listings are never served to the game.
type Listing struct {
	ID             string   `json:"id"`
	Source         Source   `json:"source"`
	SourceID       string   `json:"sourceId"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	Price          int      `json:"price"`
	PriceFormatted string   `json:"priceFormatted"`
	PreviousPrice  *int     `json:"previousPrice,omitempty"`
	Images         []string `json:"images"`
	Location       Location `json:"location"`
	Features       Features `json:"features"`
	URL            string   `json:"url"`
	ScrapedAt      string   `json:"scrapedAt"`
}

// SnapshotMetadata records how a scrape run went.
type SnapshotMetadata struct {
	RequestedLimit int  `json:"requestedLimit"`
	ReturnedCount  int  `json:"returnedCount"`
	HitLimit       bool `json:"hitLimit"`
}

// Snapshot is one scrape run's output for a (zone, source) pair.
type Snapshot struct {
	ZoneID       string            `json:"zoneId"`
	ScrapedAt    string            `json:"scrapedAt"`
	Source       Source            `json:"source"`
	ListingCount int               `json:"listingCount"`
	Listings     []Listing         `json:"listings"`
	Metadata     *SnapshotMetadata `json:"metadata,omitempty"`
}

// CompactListing is the storage projection of Listing: everything derivable
// from the owning zone and the source tag is dropped.
type CompactListing struct {
	SourceID      string   `json:"sourceId"`
	Title         string   `json:"title"`
	Price         int      `json:"price"`
	PreviousPrice *int     `json:"previousPrice,omitempty"`
	Images        []string `json:"images"`
	Features      Features `json:"features"`
}

// CompactSnapshot is the on-disk file format under
// listings/{region}/{city}/{area}/{slug}/{source}.json.
type CompactSnapshot struct {
	ZoneID       string            `json:"zoneId"`
	ScrapedAt    string            `json:"scrapedAt"`
	Source       Source            `json:"source"`
	ListingCount int               `json:"listingCount"`
	Listings     []CompactListing  `json:"listings"`
	Metadata     *SnapshotMetadata `json:"metadata,omitempty"`
}

// DedupeBySourceID drops repeated (source, sourceId) pairs, keeping the first
// occurrence in input order. Source adapters paginating overlapping result
// pages can return the same advertisement more than once.
func DedupeBySourceID(listings []Listing) []Listing {
	seen := make(map[string]struct{}, len(listings))
	unique := make([]Listing, 0, len(listings))

	for _, l := range listings {
		key := CompositeID(l.Source, l.SourceID)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, l)
	}

	return unique
}
