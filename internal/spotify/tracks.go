package spotify

import (
	"strconv"
	"strings"

	"github.com/zmb3/spotify/v2"
)

// convertTrack converts a Spotify FullTrack to Track.
func convertTrack(full spotify.FullTrack) Track {
	// Join artist names
	artists := make([]string, len(full.Artists))
	for i, a := range full.Artists {
		artists[i] = a.Name
	}

	var image string
	if len(full.Album.Images) > 0 {
		// Spotify lists images widest first.
		image = full.Album.Images[0].URL
	}

	return Track{
		ID:          full.ID.String(),
		Name:        full.Name,
		Artist:      strings.Join(artists, ", "),
		Album:       full.Album.Name,
		AlbumImage:  image,
		ReleaseDate: full.Album.ReleaseDate,
		ReleaseYear: releaseYear(full.Album.ReleaseDate),
		PreviewURL:  full.PreviewURL,
		DurationMs:  int(full.Duration),
		Popularity:  int(full.Popularity),
		ExternalURL: full.ExternalURLs["spotify"],
	}
}

// releaseYear parses the year prefix of "2006", "2006-01" or "2006-01-02".
func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return 0
	}
	return year
}
