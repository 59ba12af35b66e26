package immobiliare

import (
	"encoding/json"
	"testing"

	"github.com/ipg/prezzogiusto/internal/listing"
	"github.com/ipg/prezzogiusto/internal/zones"
)

var testZone = zones.Zone{
	ID:     "axa",
	Name:   "Axa",
	Slug:   "axa",
	Region: "lazio",
	City:   "roma",
	Area:   "sud",
}

func int64Ptr(v int64) *int64       { return &v }
func floatPtr(v float64) *float64   { return &v }
func boolPtr(v bool) *bool          { return &v }

func testScrapedAt() string { return "2024-05-17T12:00:00.000Z" }

func TestNormalizePropertyFull(t *testing.T) {
	p := &property{
		ID: int64Ptr(123),
		Price: &propertyPrice{
			Raw:   floatPtr(350000),
			Value: "€ 350.000",
		},
		Media: &propertyMedia{Images: []propertyImage{
			{HD: "https://pwm.im-cdn.it/image/111/xl.jpg"},
			{SD: "https://pwm.im-cdn.it/image/222/m.jpg"},
			{HD: "https://cdn.example.com/placeholder.png"},
		}},
		Geography: &propertyGeography{
			Municipality: &namedPlace{Name: "Roma"},
			Province:     &propertyProvince{Abbreviation: "RM", Name: "Roma"},
			Region:       &namedPlace{Name: "Lazio"},
			Macrozone:    &namedPlace{Name: "Axa, Casal Palocco, Infernetto"},
			Microzone:    &propertyMicrozone{Name: "Axa", ID: 10241},
		},
		Topology: &propertyTopology{
			Typology:  json.RawMessage(`{"id":14,"name":"Villa"}`),
			Surface:   &propertySurface{Size: "180 m²"},
			Rooms:     "5+",
			Bathrooms: "3",
			Floor:     "T",
			Lift:      boolPtr(false),
			Terrace:   boolPtr(true),
		},
		Analytics: &propertyAnalytics{
			NumBedrooms:    "4",
			PropertyStatus: "Buono / Abitabile",
			Heating:        "Autonomo",
			OtherFeatures:  []string{"Cantina", "posto auto", "Aria condizionata"},
		},
	}

	got := normalizeProperty(p, &testZone, testScrapedAt())
	if got == nil {
		t.Fatal("expected a listing, got nil")
	}

	if got.ID != "immobiliare-123" {
		t.Errorf("ID = %q", got.ID)
	}
	if got.Source != listing.SourceImmobiliare || got.SourceID != "123" {
		t.Errorf("source identity = %s/%s", got.Source, got.SourceID)
	}
	if got.Price != 350000 {
		t.Errorf("Price = %d; want 350000", got.Price)
	}
	if got.PriceFormatted != "€ 350.000" {
		t.Errorf("PriceFormatted = %q", got.PriceFormatted)
	}
	if got.Title != "Villa in Axa" {
		t.Errorf("Title = %q; want %q", got.Title, "Villa in Axa")
	}
	if got.URL != "https://www.immobiliare.it/annunci/123/" {
		t.Errorf("URL = %q", got.URL)
	}
	if got.ScrapedAt != testScrapedAt() {
		t.Errorf("ScrapedAt = %q", got.ScrapedAt)
	}

	if len(got.Images) != 2 || got.Images[0] != "111" || got.Images[1] != "222" {
		t.Errorf("Images = %v; want the two CDN ids", got.Images)
	}

	if got.Location.Region != "Lazio" || got.Location.Province != "RM" || got.Location.City != "Roma" {
		t.Errorf("Location = %+v", got.Location)
	}
	if got.Location.Zone != "Axa" || got.Location.ZoneID != "axa" {
		t.Errorf("Location zone = %q/%q", got.Location.Zone, got.Location.ZoneID)
	}
	if got.Location.Address != "Axa, Casal Palocco, Infernetto" {
		t.Errorf("Location.Address = %q", got.Location.Address)
	}

	f := got.Features
	if f.Area == nil || *f.Area != 180 {
		t.Errorf("Area = %v; want 180", f.Area)
	}
	if f.Rooms == nil || *f.Rooms != 5 || f.RoomsRaw == nil || *f.RoomsRaw != "5+" {
		t.Errorf("Rooms = %v raw %v; want 5 / 5+", f.Rooms, f.RoomsRaw)
	}
	if f.Bathrooms == nil || *f.Bathrooms != 3 || f.BathroomsRaw != nil {
		t.Errorf("Bathrooms = %v raw %v; want 3 with no raw", f.Bathrooms, f.BathroomsRaw)
	}
	if f.Bedrooms == nil || *f.Bedrooms != 4 {
		t.Errorf("Bedrooms = %v; want 4", f.Bedrooms)
	}
	if f.Floor != nil || f.FloorRaw == nil || *f.FloorRaw != "T" {
		t.Errorf("Floor = %v raw %v; want raw-only T", f.Floor, f.FloorRaw)
	}
	if f.Elevator == nil || *f.Elevator != false {
		t.Errorf("Elevator = %v; want explicit false", f.Elevator)
	}
	if f.Terrace == nil || !*f.Terrace {
		t.Errorf("Terrace = %v; want true", f.Terrace)
	}
	if f.Typology == nil || *f.Typology != "Villa" {
		t.Errorf("Typology = %v; want Villa", f.Typology)
	}
	if f.Condition == nil || *f.Condition != "Buono / Abitabile" {
		t.Errorf("Condition = %v", f.Condition)
	}
	if f.Heating == nil || *f.Heating != "Autonomo" {
		t.Errorf("Heating = %v", f.Heating)
	}

	// Amenity flags derived from the tag list.
	if f.Cellar == nil || !*f.Cellar {
		t.Errorf("Cellar = %v; want true from tag", f.Cellar)
	}
	if f.Parking == nil || !*f.Parking {
		t.Errorf("Parking = %v; want true from tag", f.Parking)
	}
	if f.AirConditioning == nil || !*f.AirConditioning {
		t.Errorf("AirConditioning = %v; want true from tag", f.AirConditioning)
	}
	if f.Balcony != nil {
		t.Errorf("Balcony = %v; want nil (no flag, no tag)", f.Balcony)
	}

	wantTags := []string{"aria condizionata", "cantina", "posto auto"}
	if len(f.OtherFeatures) != len(wantTags) {
		t.Fatalf("OtherFeatures = %v; want %v", f.OtherFeatures, wantTags)
	}
	for i := range wantTags {
		if f.OtherFeatures[i] != wantTags[i] {
			t.Errorf("OtherFeatures[%d] = %q; want %q", i, f.OtherFeatures[i], wantTags[i])
		}
	}
}

func TestNormalizePropertySkipsUnusable(t *testing.T) {
	noID := &property{
		Price: &propertyPrice{Raw: floatPtr(350000), Value: "€ 350.000"},
	}
	if got := normalizeProperty(noID, &testZone, testScrapedAt()); got != nil {
		t.Errorf("record with no id must be skipped, got %+v", got)
	}

	noPrice := &property{ID: int64Ptr(456)}
	if got := normalizeProperty(noPrice, &testZone, testScrapedAt()); got != nil {
		t.Errorf("record with no disclosed price must be skipped, got %+v", got)
	}

	priceOnRequest := &property{
		ID:    int64Ptr(789),
		Price: &propertyPrice{Value: "Prezzo su richiesta"},
	}
	if got := normalizeProperty(priceOnRequest, &testZone, testScrapedAt()); got != nil {
		t.Errorf("price-on-request record must be skipped, got %+v", got)
	}
}

func TestNormalizePropertyFallbacks(t *testing.T) {
	p := &property{
		ID: int64Ptr(321),
		Analytics: &propertyAnalytics{
			Price: "420000",
			Floor: "2",
		},
	}

	got := normalizeProperty(p, &testZone, testScrapedAt())
	if got == nil {
		t.Fatal("expected a listing, got nil")
	}

	if got.Price != 420000 {
		t.Errorf("Price = %d; want 420000 from analytics fallback", got.Price)
	}
	if got.PriceFormatted != "€ 420.000" {
		t.Errorf("PriceFormatted = %q; want synthesized italian format", got.PriceFormatted)
	}
	if got.Title != "Immobile in Axa" {
		t.Errorf("Title = %q; want generic fallback title", got.Title)
	}
	if got.Features.Floor == nil || *got.Features.Floor != 2 {
		t.Errorf("Floor = %v; want 2 from analytics fallback", got.Features.Floor)
	}
	if got.Location.Region != "lazio" || got.Location.City != "roma" {
		t.Errorf("Location = %+v; want zone-derived fallback", got.Location)
	}
	if len(got.Images) != 0 {
		t.Errorf("Images = %v; want empty, not nil-laden", got.Images)
	}
}

func TestTypologyNameStringForm(t *testing.T) {
	p := &property{
		Topology: &propertyTopology{Typology: json.RawMessage(`"Appartamento"`)},
	}
	got := typologyName(p)
	if got == nil || *got != "Appartamento" {
		t.Errorf("typologyName = %v; want Appartamento", got)
	}

	analytics := &property{
		Analytics: &propertyAnalytics{Typology: "Attico"},
		Topology:  &propertyTopology{Typology: json.RawMessage(`"Appartamento"`)},
	}
	got = typologyName(analytics)
	if got == nil || *got != "Attico" {
		t.Errorf("typologyName = %v; analytics label must win", got)
	}

	if got := typologyName(&property{}); got != nil {
		t.Errorf("typologyName on empty record = %v; want nil", got)
	}
}
