// Package preview finds fallback audio preview URLs by title and artist.
package preview

// DefaultCountry is the storefront searched when none is configured.
const DefaultCountry = "US"

// Config holds preview finder configuration.
type Config struct {
	Country string
}
