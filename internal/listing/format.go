package listing

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var italianPrinter = message.NewPrinter(language.Italian)

// FormatPrice renders a price the way immobiliare shows it: "€ 350.000".
func FormatPrice(price int) string {
	return italianPrinter.Sprintf("€ %d", price)
}

// Timestamp renders the scrapedAt wire format (ISO-8601, millisecond UTC).
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
