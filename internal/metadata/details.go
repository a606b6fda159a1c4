package metadata

import "strings"

const (
	// PlaceholderPoster is shown when no poster is available.
	PlaceholderPoster = "https://upload.wikimedia.org/wikipedia/commons/6/65/No-Image-Placeholder.svg"
	// NotAvailable fills every missing text field.
	NotAvailable = "N/A"
)

// Details is the enrichment record for one title.
type Details struct {
	PosterURL string `json:"poster"`
	Plot      string `json:"plot"`
	Actors    string `json:"actors"`
	Director  string `json:"director"`
	Runtime   string `json:"runtime"`
	Rating    string `json:"rating"`
}

// Fallback returns the placeholder record.
func Fallback() Details {
	return FallbackWithPoster(PlaceholderPoster)
}

// FallbackWithPoster returns the placeholder record with a custom poster.
func FallbackWithPoster(poster string) Details {
	return Details{
		PosterURL: poster,
		Plot:      NotAvailable,
		Actors:    NotAvailable,
		Director:  NotAvailable,
		Runtime:   NotAvailable,
		Rating:    NotAvailable,
	}
}

// Complete replaces empty or "N/A" fields with their placeholders so every
// field of the result is populated.
func (d Details) Complete(poster string) Details {
	d.PosterURL = orPlaceholder(d.PosterURL, poster)
	d.Plot = orPlaceholder(d.Plot, NotAvailable)
	d.Actors = orPlaceholder(d.Actors, NotAvailable)
	d.Director = orPlaceholder(d.Director, NotAvailable)
	d.Runtime = orPlaceholder(d.Runtime, NotAvailable)
	d.Rating = orPlaceholder(d.Rating, NotAvailable)
	return d
}

func orPlaceholder(value, placeholder string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, NotAvailable) {
		return placeholder
	}
	return value
}
