package immobiliare

import "encoding/json"

// Raw shapes of the immobiliare mobile API. Several numeric fields arrive as
// either JSON numbers or strings depending on the listing, so they decode
// into any and go through the tolerant parsers.

type propertyPrice struct {
	Raw   *float64 `json:"raw"`
	Value string   `json:"value"`
}

type propertyImage struct {
	HD string `json:"hd"`
	SD string `json:"sd"`
}

type propertyMedia struct {
	Images []propertyImage `json:"images"`
}

type namedPlace struct {
	Name string `json:"name"`
}

type propertyProvince struct {
	Abbreviation string `json:"abbreviation"`
	Name         string `json:"name"`
}

type propertyMicrozone struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}

type propertyGeography struct {
	Municipality *namedPlace        `json:"municipality"`
	Province     *propertyProvince  `json:"province"`
	Region       *namedPlace        `json:"region"`
	Macrozone    *namedPlace        `json:"macrozone"`
	Microzone    *propertyMicrozone `json:"microzone"`
}

type propertySurface struct {
	Size any `json:"size"`
}

type propertyTopology struct {
	// Typology is either a plain string or {id, name}.
	Typology  json.RawMessage  `json:"typology"`
	Surface   *propertySurface `json:"surface"`
	Rooms     any              `json:"rooms"`
	Bathrooms any              `json:"bathrooms"`
	Floor     any              `json:"floor"`
	Lift      *bool            `json:"lift"`
	Balcony   *bool            `json:"balcony"`
	Terrace   *bool            `json:"terrace"`
	Cellar    *bool            `json:"cellar"`
	Furnished *bool            `json:"furnished"`
	IsLuxury  *bool            `json:"isLuxury"`
}

type propertyAnalytics struct {
	Price          any      `json:"price"`
	Typology       string   `json:"typology"`
	NumBedrooms    any      `json:"numBedrooms"`
	Elevator       *bool    `json:"elevator"`
	Floor          any      `json:"floor"`
	PropertyStatus string   `json:"propertyStatus"`
	AgencyName     string   `json:"agencyName"`
	Heating        string   `json:"heating"`
	OtherFeatures  []string `json:"otherFeatures"`
}

type property struct {
	ID        *int64             `json:"id"`
	UUID      string             `json:"uuid"`
	Title     string             `json:"title"`
	Price     *propertyPrice     `json:"price"`
	Media     *propertyMedia     `json:"media"`
	Geography *propertyGeography `json:"geography"`
	Topology  *propertyTopology  `json:"topology"`
	Analytics *propertyAnalytics `json:"analytics"`
}

type propertiesResponse struct {
	TotalActive int        `json:"totalActive"`
	Count       int        `json:"count"`
	Offset      int        `json:"offset"`
	List        []property `json:"list"`
}

type resolverResponse struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params"`
}
