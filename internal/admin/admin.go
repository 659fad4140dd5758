// Package admin implements catalog curation, scheduling and reporting for
// allowlisted operators.
package admin

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/kdle/internal/catalog"
	"github.com/justestif/kdle/internal/dates"
	"github.com/justestif/kdle/internal/db"
	"github.com/justestif/kdle/internal/spotify"
)

// Limits for listings and searches.
const (
	RecentSongs        = 25
	DefaultSearchLimit = 20
)

// Difficulty tags a song may carry.
var DifficultyTags = []string{"easy", "medium", "hard"}

// Sentinel errors.
var (
	// ErrInvalidInput is returned for malformed admin requests.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSongNotFound is returned when a referenced song is not in the catalog.
	ErrSongNotFound = errors.New("song not found")

	// ErrNotScheduled is returned when unscheduling a day with no assignment.
	ErrNotScheduled = errors.New("no song scheduled for date")
)

// SongStore abstracts songs persistence.
type SongStore interface {
	Get(ctx context.Context, id uuid.UUID) (*db.Song, error)
	GetBySpotifyID(ctx context.Context, spotifyID string) (*db.Song, error)
	Upsert(ctx context.Context, song *db.Song) error
	Recent(ctx context.Context, limit int) ([]db.Song, error)
}

// ScheduleStore abstracts daily_song persistence.
type ScheduleStore interface {
	Get(ctx context.Context, day string) (*db.DailySong, error)
	Set(ctx context.Context, day string, songID uuid.UUID) error
	Delete(ctx context.Context, day string) error
	Range(ctx context.Context, first, last string) ([]db.DailySong, error)
}

// Catalog abstracts the catalog service.
type Catalog interface {
	Lookup(ctx context.Context, id string, forcePreview bool) (*spotify.Track, error)
	AdminSearch(ctx context.Context, query string, limit int) ([]spotify.Track, error)
}

// Service implements admin operations.
type Service struct {
	songs     SongStore
	schedule  ScheduleStore
	catalog   Catalog
	analytics AnalyticsStore
	streaks   StreakStore
	clock     *dates.Clock
}

// Deps groups the stores a Service needs.
type Deps struct {
	Songs     SongStore
	Schedule  ScheduleStore
	Catalog   Catalog
	Analytics AnalyticsStore
	Streaks   StreakStore
	Clock     *dates.Clock
}

// NewService creates an admin service.
func NewService(d Deps) *Service {
	return &Service{
		songs:     d.Songs,
		schedule:  d.Schedule,
		catalog:   d.Catalog,
		analytics: d.Analytics,
		streaks:   d.Streaks,
		clock:     d.Clock,
	}
}

// SongList is the admin overview of the catalog.
type SongList struct {
	Songs []SongView     `json:"songs"`
	Today *ScheduledView `json:"today"`
}

// SongView is a song as shown to admins.
type SongView struct {
	ID            uuid.UUID `json:"id"`
	SpotifyID     string    `json:"spotify_id"`
	Title         string    `json:"title"`
	Artist        string    `json:"artist"`
	AlbumImage    *string   `json:"album_image"`
	ReleaseYear   *int      `json:"release_year"`
	PreviewURL    *string   `json:"preview_url"`
	DifficultyTag string    `json:"difficulty_tag"`
}

// ScheduledView is one day's assignment.
type ScheduledView struct {
	Date string    `json:"date"`
	Song *SongView `json:"song"`
}

func songView(s *db.Song) *SongView {
	if s == nil {
		return nil
	}
	return &SongView{
		ID:            s.ID,
		SpotifyID:     s.SpotifyID,
		Title:         s.Title,
		Artist:        s.Artist,
		AlbumImage:    s.AlbumImage,
		ReleaseYear:   s.ReleaseYear,
		PreviewURL:    s.PreviewURL,
		DifficultyTag: s.DifficultyTag,
	}
}

// Songs lists recently added songs and today's assignment.
func (s *Service) Songs(ctx context.Context) (*SongList, error) {
	songs, err := s.songs.Recent(ctx, RecentSongs)
	if err != nil {
		return nil, fmt.Errorf("listing songs: %w", err)
	}
	list := &SongList{Songs: make([]SongView, 0, len(songs))}
	for i := range songs {
		list.Songs = append(list.Songs, *songView(&songs[i]))
	}

	today, err := s.schedule.Get(ctx, s.clock.Today())
	switch {
	case errors.Is(err, db.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("loading today's song: %w", err)
	default:
		list.Today = &ScheduledView{Date: today.Date, Song: songView(today.Song)}
	}
	return list, nil
}

// AddSong imports a track from the catalog, creating or refreshing the song.
func (s *Service) AddSong(ctx context.Context, spotifyID string) (*SongView, error) {
	track, err := s.lookup(ctx, spotifyID, false)
	if err != nil {
		return nil, err
	}
	song := songFromTrack(track)
	if err := s.songs.Upsert(ctx, song); err != nil {
		return nil, fmt.Errorf("saving song: %w", err)
	}
	return songView(song), nil
}

// SongInput is a manually entered song.
type SongInput struct {
	SpotifyID     string  `json:"spotify_id"`
	Title         string  `json:"title"`
	Artist        string  `json:"artist"`
	AlbumImage    *string `json:"album_image"`
	PreviewURL    *string `json:"preview_url"`
	DifficultyTag string  `json:"difficulty_tag"`
	ReleaseYear   *int    `json:"release_year"`
}

// InsertSong stores a manually entered song.
func (s *Service) InsertSong(ctx context.Context, in SongInput) (*SongView, error) {
	song, err := in.song(s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.songs.Upsert(ctx, song); err != nil {
		return nil, fmt.Errorf("saving song: %w", err)
	}
	return songView(song), nil
}

func (in SongInput) song(now time.Time) (*db.Song, error) {
	song := &db.Song{
		SpotifyID:     strings.TrimSpace(in.SpotifyID),
		Title:         strings.TrimSpace(in.Title),
		Artist:        strings.TrimSpace(in.Artist),
		AlbumImage:    nonEmpty(in.AlbumImage),
		PreviewURL:    nonEmpty(in.PreviewURL),
		ReleaseYear:   in.ReleaseYear,
		DifficultyTag: strings.ToLower(strings.TrimSpace(in.DifficultyTag)),
	}
	switch {
	case song.SpotifyID == "" || song.Title == "" || song.Artist == "":
		return nil, fmt.Errorf("%w: spotify_id, title and artist are required", ErrInvalidInput)
	case song.ReleaseYear != nil && (*song.ReleaseYear < 1900 || *song.ReleaseYear > now.Year()+1):
		return nil, fmt.Errorf("%w: release_year %d", ErrInvalidInput, *song.ReleaseYear)
	case song.DifficultyTag != "" && !slices.Contains(DifficultyTags, song.DifficultyTag):
		return nil, fmt.Errorf("%w: difficulty_tag %q", ErrInvalidInput, song.DifficultyTag)
	}
	if song.PreviewURL != nil && !strings.HasPrefix(*song.PreviewURL, "https://") && !strings.HasPrefix(*song.PreviewURL, "http://") {
		return nil, fmt.Errorf("%w: preview_url must be a URL", ErrInvalidInput)
	}
	return song, nil
}

// Enrich re-fetches metadata for an existing song. With overridePreview the
// fallback preview replaces the catalog's.
func (s *Service) Enrich(ctx context.Context, spotifyID string, overridePreview bool) (*SongView, error) {
	existing, err := s.songs.GetBySpotifyID(ctx, strings.TrimSpace(spotifyID))
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrSongNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading song: %w", err)
	}

	track, err := s.lookup(ctx, existing.SpotifyID, overridePreview)
	if err != nil {
		return nil, err
	}
	song := songFromTrack(track)
	song.DifficultyTag = existing.DifficultyTag
	if err := s.songs.Upsert(ctx, song); err != nil {
		return nil, fmt.Errorf("saving song: %w", err)
	}
	return songView(song), nil
}

func (s *Service) lookup(ctx context.Context, spotifyID string, forcePreview bool) (*spotify.Track, error) {
	track, err := s.catalog.Lookup(ctx, spotifyID, forcePreview)
	switch {
	case errors.Is(err, catalog.ErrInvalidID):
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case errors.Is(err, catalog.ErrTrackNotFound):
		return nil, ErrSongNotFound
	case err != nil:
		return nil, fmt.Errorf("fetching track: %w", err)
	}
	return track, nil
}

// ScheduleRequest names a day and the song to play on it. SongID may be a
// song UUID or a Spotify track ID.
type ScheduleRequest struct {
	Date   string `json:"date"`
	SongID string `json:"song_id"`
}

// Schedule assigns a song to a day, replacing any previous assignment.
func (s *Service) Schedule(ctx context.Context, req ScheduleRequest) (*ScheduledView, error) {
	if !dates.Valid(req.Date) {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	ref := strings.TrimSpace(req.SongID)
	if ref == "" {
		return nil, fmt.Errorf("%w: song_id is required", ErrInvalidInput)
	}

	var song *db.Song
	var err error
	if id, perr := uuid.Parse(ref); perr == nil {
		song, err = s.songs.Get(ctx, id)
	} else {
		song, err = s.songs.GetBySpotifyID(ctx, ref)
	}
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrSongNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading song: %w", err)
	}

	if err := s.schedule.Set(ctx, req.Date, song.ID); err != nil {
		return nil, err
	}
	return &ScheduledView{Date: req.Date, Song: songView(song)}, nil
}

// Unschedule removes a day's assignment.
func (s *Service) Unschedule(ctx context.Context, day string) error {
	if !dates.Valid(day) {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	err := s.schedule.Delete(ctx, day)
	if errors.Is(err, db.ErrNotFound) {
		return ErrNotScheduled
	}
	return err
}

// Calendar is one month of assignments.
type Calendar struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Days  []ScheduledView `json:"days"`
}

// Calendar returns the assignments for a month.
func (s *Service) Calendar(ctx context.Context, year, month int) (*Calendar, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: invalid year/month", ErrInvalidInput)
	}
	first, last, err := dates.MonthRange(year, time.Month(month))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid year/month", ErrInvalidInput)
	}
	days, err := s.schedule.Range(ctx, first, last)
	if err != nil {
		return nil, err
	}

	cal := &Calendar{Year: year, Month: month, Days: make([]ScheduledView, 0, len(days))}
	for _, d := range days {
		cal.Days = append(cal.Days, ScheduledView{Date: d.Date, Song: songView(d.Song)})
	}
	return cal, nil
}

// SearchCatalog runs an unfiltered catalog search.
func (s *Service) SearchCatalog(ctx context.Context, query string, limit int) ([]spotify.Track, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	limit = min(limit, spotify.MaxSearchLimit)
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	tracks, err := s.catalog.AdminSearch(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching catalog: %w", err)
	}
	return tracks, nil
}

func songFromTrack(t *spotify.Track) *db.Song {
	song := &db.Song{
		SpotifyID:  t.ID,
		Title:      t.Name,
		Artist:     t.Artist,
		AlbumImage: nonEmpty(&t.AlbumImage),
		PreviewURL: nonEmpty(&t.PreviewURL),
	}
	if t.ReleaseYear > 0 {
		year := t.ReleaseYear
		song.ReleaseYear = &year
	}
	return song
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
