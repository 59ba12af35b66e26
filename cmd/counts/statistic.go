package main

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ipg/prezzogiusto/internal/listing"
)

// zoneReport is one row of the counts dashboard: stored vs live listing
// counts plus price statistics over the playable set. WebsiteCount is -1 when
// the live count couldn't be fetched.
type zoneReport struct {
	Slug             string  `json:"slug"`
	Name             string  `json:"name"`
	Area             string  `json:"area"`
	StoredCount      int     `json:"storedCount"`
	PlayableCount    int     `json:"playableCount"`
	WebsiteCount     int     `json:"websiteCount"`
	MedianPrice      float64 `json:"medianPrice"`
	MedianPricePerM2 float64 `json:"medianPricePerM2"`
}

// drift is how far the store lags the site; meaningless without a live count.
func (r *zoneReport) drift() int {
	if r.WebsiteCount < 0 {
		return 0
	}
	return r.WebsiteCount - r.StoredCount
}

// priceStatistics computes the median price and the median price per square
// meter over the playable listings of a zone. Listings without a known area
// contribute to the price median only.
func priceStatistics(listings []listing.Listing) (medianPrice float64, medianPerM2 float64) {
	prices := make([]float64, 0, len(listings))
	perM2 := make([]float64, 0, len(listings))

	for _, l := range listings {
		if l.Price == 0 {
			continue
		}
		prices = append(prices, float64(l.Price))

		if l.Features.Area != nil && *l.Features.Area > 0 {
			perM2 = append(perM2, float64(l.Price) / *l.Features.Area)
		}
	}

	if len(prices) > 0 {
		sort.Float64s(prices)
		medianPrice = stat.Quantile(0.5, stat.Empirical, prices, nil)
	}
	if len(perM2) > 0 {
		sort.Float64s(perM2)
		medianPerM2 = stat.Quantile(0.5, stat.Empirical, perM2, nil)
	}
	return medianPrice, medianPerM2
}
