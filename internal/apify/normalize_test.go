package apify

import (
	"encoding/json"
	"testing"

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

const fullItem = `{
  "id": 123456789,
  "title": "Villa via delle Gondole",
  "shareUrl": "https://www.immobiliare.it/annunci/123456789/",
  "analytics": {
    "price": "€ 350.000",
    "region": "Lazio",
    "province": "RM",
    "macrozone": "Axa, Casal Palocco, Infernetto",
    "microzone": "Axa",
    "typology": "Villa",
    "numBedrooms": "4",
    "elevator": false,
    "propertyStatus": "Buono / Abitabile"
  },
  "media": {"images": [
    {"hd": "https://pwm.im-cdn.it/image/111/xl.jpg"},
    {"sd": "https://pwm.im-cdn.it/image/222/m.jpg"}
  ]},
  "mainData": [
    {"header": "Caratteristiche", "rows": [
      {"label": "Surface", "value": "180 m²"},
      {"label": "Rooms", "value": "5+"},
      {"label": "Bathrooms", "value": "3"},
      {"label": "Floor", "value": "T"}
    ]}
  ],
  "energyClass": {"value": "G"}
}`

func decodeItem(t *testing.T, raw string) *datasetItem {
	t.Helper()

	var item datasetItem
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		t.Fatalf("can't decode fixture: %v", err)
	}
	return &item
}

func TestNormalizeItemFull(t *testing.T) {
	item := decodeItem(t, fullItem)

	got := normalizeItem(item, &testZone, "2024-05-17T12:00:00.000Z")
	if got == nil {
		t.Fatal("expected a listing, got nil")
	}

	if got.ID != "immobiliare-123456789" || got.SourceID != "123456789" {
		t.Errorf("identity = %s / %s", got.ID, got.SourceID)
	}
	if got.Price != 350000 || got.PriceFormatted != "€ 350.000" {
		t.Errorf("price = %d / %q", got.Price, got.PriceFormatted)
	}
	if got.Title != "Villa in Axa" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.URL != "https://www.immobiliare.it/annunci/123456789/" {
		t.Errorf("URL = %q", got.URL)
	}
	if len(got.Images) != 2 || got.Images[0] != "111" || got.Images[1] != "222" {
		t.Errorf("Images = %v", got.Images)
	}

	if got.Location.Region != "Lazio" || got.Location.Province != "RM" || got.Location.Zone != "Axa" {
		t.Errorf("Location = %+v", got.Location)
	}
	if got.Location.Address != "Axa, Casal Palocco, Infernetto" {
		t.Errorf("Address = %q", got.Location.Address)
	}

	f := got.Features
	if f.Area == nil || *f.Area != 180 {
		t.Errorf("Area = %v; want 180", f.Area)
	}
	if f.Rooms == nil || *f.Rooms != 5 || f.RoomsRaw == nil || *f.RoomsRaw != "5+" {
		t.Errorf("Rooms = %v raw %v", f.Rooms, f.RoomsRaw)
	}
	if f.Bathrooms == nil || *f.Bathrooms != 3 {
		t.Errorf("Bathrooms = %v", f.Bathrooms)
	}
	if f.Bedrooms == nil || *f.Bedrooms != 4 {
		t.Errorf("Bedrooms = %v; want 4 from analytics fallback", f.Bedrooms)
	}
	if f.Floor != nil || f.FloorRaw == nil || *f.FloorRaw != "T" {
		t.Errorf("Floor = %v raw %v; want raw-only T", f.Floor, f.FloorRaw)
	}
	if f.Elevator == nil || *f.Elevator != false {
		t.Errorf("Elevator = %v; want explicit false", f.Elevator)
	}
	if f.EnergyClass == nil || *f.EnergyClass != "G" {
		t.Errorf("EnergyClass = %v", f.EnergyClass)
	}
	if f.Typology == nil || *f.Typology != "Villa" {
		t.Errorf("Typology = %v", f.Typology)
	}
	if f.Condition == nil || *f.Condition != "Buono / Abitabile" {
		t.Errorf("Condition = %v", f.Condition)
	}
}

func TestNormalizeItemSkipsUnusable(t *testing.T) {
	noID := decodeItem(t, `{"analytics": {"price": "€ 350.000"}}`)
	if got := normalizeItem(noID, &testZone, "2024-05-17T12:00:00.000Z"); got != nil {
		t.Errorf("item with no id must be skipped, got %+v", got)
	}

	noPrice := decodeItem(t, `{"id": 1, "price": {"visible": false, "formattedValue": "Prezzo su richiesta"}}`)
	if got := normalizeItem(noPrice, &testZone, "2024-05-17T12:00:00.000Z"); got != nil {
		t.Errorf("price-on-request item must be skipped, got %+v", got)
	}
}

func TestNormalizeItemFallbacks(t *testing.T) {
	item := decodeItem(t, `{"id": 42, "price": {"visible": true, "value": "€ 420.000"}}`)

	got := normalizeItem(item, &testZone, "2024-05-17T12:00:00.000Z")
	if got == nil {
		t.Fatal("expected a listing, got nil")
	}
	if got.Price != 420000 {
		t.Errorf("Price = %d; want 420000 from price.value", got.Price)
	}
	if got.Title != "Immobile in Axa" {
		t.Errorf("Title = %q; want generic fallback", got.Title)
	}
	if got.URL != "https://www.immobiliare.it/annunci/42/" {
		t.Errorf("URL = %q; want rebuilt detail URL", got.URL)
	}
	if got.Location.Region != "lazio" || got.Location.ZoneID != "axa" {
		t.Errorf("Location = %+v; want zone-derived fallback", got.Location)
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		value         string
		wantPrice     int
		wantFormatted string
	}{
		{"€ 350.000", 350000, "€ 350.000"},
		{"da € 290.000", 290000, "€ 290.000"},
		{"€ 1.250.000,00", 1250000, "€ 1.250.000,00"},
		{"Prezzo su richiesta", 0, "Prezzo su richiesta"},
		{"", 0, "N/A"},
	}

	for _, tt := range tests {
		price, formatted := parsePrice(tt.value)
		if price != tt.wantPrice || formatted != tt.wantFormatted {
			t.Errorf("parsePrice(%q) = %d, %q; want %d, %q",
				tt.value, price, formatted, tt.wantPrice, tt.wantFormatted)
		}
	}
}
