package spotify

// Track contains the catalog metadata K-Dle stores for a song.
type Track struct {
	ID          string
	Name        string
	Artist      string // Comma-separated artist names
	Album       string
	AlbumImage  string // Largest album image, empty if none
	ReleaseDate string
	ReleaseYear int // 0 when the release date is missing or malformed
	PreviewURL  string
	DurationMs  int
	Popularity  int
	ExternalURL string
}
