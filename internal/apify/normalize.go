package apify

import (
	"fmt"
	"strings"

	"github.com/ipg/prezzogiusto/internal/listing"
	"github.com/ipg/prezzogiusto/internal/zones"
)

// datasetItem is the actor's raw output shape. Feature values live in
// labelled mainData rows rather than typed fields.
type datasetItem struct {
	ID        *int64 `json:"id"`
	Title     string `json:"title"`
	ShareURL  string `json:"shareUrl"`
	Analytics *struct {
		Price          string `json:"price"`
		Region         string `json:"region"`
		Province       string `json:"province"`
		Macrozone      string `json:"macrozone"`
		Microzone      string `json:"microzone"`
		Typology       string `json:"typology"`
		NumBedrooms    string `json:"numBedrooms"`
		Elevator       *bool  `json:"elevator"`
		PropertyStatus string `json:"propertyStatus"`
	} `json:"analytics"`
	Price *struct {
		Visible        bool   `json:"visible"`
		FormattedValue string `json:"formattedValue"`
		Value          string `json:"value"`
	} `json:"price"`
	Media *struct {
		Images []struct {
			HD string `json:"hd"`
			SD string `json:"sd"`
		} `json:"images"`
	} `json:"media"`
	MainData []struct {
		Header string `json:"header"`
		Rows   []struct {
			Label string `json:"label"`
			Value string `json:"value"`
		} `json:"rows"`
	} `json:"mainData"`
	EnergyClass *struct {
		Value string `json:"value"`
	} `json:"energyClass"`
}

func (item *datasetItem) mainDataValue(label string) any {
	for _, section := range item.MainData {
		for _, row := range section.Rows {
			if strings.EqualFold(row.Label, label) && row.Value != "" {
				return row.Value
			}
		}
	}
	return nil
}

// parsePrice handles the free-text price strings the actor returns, e.g.
// "€ 350.000" or "da € 350.000".
func parsePrice(value string) (int, string) {
	cleaned := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(value, "da "), "Da "))
	if cleaned == "" {
		return 0, "N/A"
	}

	numeric := strings.NewReplacer("€", "", ".", "", " ", "", " ", "", ",00", "").Replace(cleaned)
	price := 0
	fmt.Sscanf(numeric, "%d", &price)
	return price, cleaned
}

// normalizeItem maps one dataset item to a canonical listing. Nil for items
// with no id or no disclosed price.
func normalizeItem(item *datasetItem, zone *zones.Zone, scrapedAt string) *listing.Listing {
	if item.ID == nil || *item.ID == 0 {
		return nil
	}
	sourceID := fmt.Sprint(*item.ID)

	priceStr := ""
	if item.Analytics != nil && item.Analytics.Price != "" {
		priceStr = item.Analytics.Price
	} else if item.Price != nil {
		priceStr = item.Price.Value
		if priceStr == "" {
			priceStr = item.Price.FormattedValue
		}
	}
	price, priceFormatted := parsePrice(priceStr)
	if price == 0 {
		return nil
	}

	area := listing.ParseNumber(item.mainDataValue("Surface"))
	rooms := listing.ParseCount(item.mainDataValue("Rooms"))
	bathrooms := listing.ParseCount(item.mainDataValue("Bathrooms"))
	floor := listing.ParseFloor(item.mainDataValue("Floor"))

	bedroomsValue := item.mainDataValue("Bedrooms")
	if bedroomsValue == nil && item.Analytics != nil && item.Analytics.NumBedrooms != "" {
		bedroomsValue = item.Analytics.NumBedrooms
	}
	bedrooms := listing.ParseCount(bedroomsValue)

	var typology, condition *string
	var elevator *bool
	microzone := zone.Name
	location := listing.Location{
		Region: zone.Region,
		City:   zone.City,
		ZoneID: zone.ID,
	}
	if item.Analytics != nil {
		if item.Analytics.Typology != "" {
			t := item.Analytics.Typology
			typology = &t
		}
		if item.Analytics.PropertyStatus != "" {
			c := item.Analytics.PropertyStatus
			condition = &c
		}
		elevator = item.Analytics.Elevator
		if item.Analytics.Microzone != "" {
			microzone = item.Analytics.Microzone
		}
		if item.Analytics.Region != "" {
			location.Region = item.Analytics.Region
		}
		location.Province = item.Analytics.Province
		location.Address = item.Analytics.Macrozone
	}
	location.Zone = microzone

	var energyClass *string
	if item.EnergyClass != nil && item.EnergyClass.Value != "" {
		e := item.EnergyClass.Value
		energyClass = &e
	}

	titleTypology := "Immobile"
	if typology != nil {
		titleTypology = *typology
	} else if item.Title != "" {
		titleTypology = item.Title
	}
	title := fmt.Sprintf("%s in %s", titleTypology, microzone)

	detailURL := item.ShareURL
	if detailURL == "" {
		detailURL = listing.DetailURL(listing.SourceImmobiliare, sourceID)
	}

	return &listing.Listing{
		ID:             listing.CompositeID(listing.SourceImmobiliare, sourceID),
		Source:         listing.SourceImmobiliare,
		SourceID:       sourceID,
		Title:          title,
		Price:          price,
		PriceFormatted: priceFormatted,
		Images:         extractImages(item),
		Location:       location,
		Features: listing.Features{
			Area:         area,
			Rooms:        rooms.Value,
			RoomsRaw:     rooms.Raw,
			Bedrooms:     bedrooms.Value,
			BedroomsRaw:  bedrooms.Raw,
			Bathrooms:    bathrooms.Value,
			BathroomsRaw: bathrooms.Raw,
			Floor:        floor.Value,
			FloorRaw:     floor.Raw,
			Elevator:     elevator,
			EnergyClass:  energyClass,
			Condition:    condition,
			Typology:     typology,
		},
		URL:       detailURL,
		ScrapedAt: scrapedAt,
	}
}

func extractImages(item *datasetItem) []string {
	images := make([]string, 0)
	if item.Media == nil {
		return images
	}

	for _, img := range item.Media.Images {
		url := img.HD
		if url == "" {
			url = img.SD
		}
		if ref := listing.NormalizeImageRef(url); ref != "" {
			images = append(images, ref)
		}
	}
	return images
}
