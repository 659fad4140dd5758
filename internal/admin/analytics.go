package admin

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/justestif/kdle/internal/clustering"
	"github.com/justestif/kdle/internal/dates"
	"github.com/justestif/kdle/internal/db"
)

// Reporting windows in days.
const (
	ActiveWindowDays   = 7
	ActivityWindowDays = 30
	TopStreaks         = 10
)

// AnalyticsStore abstracts the reporting queries.
type AnalyticsStore interface {
	GameTotals(ctx context.Context) (db.GameTotals, error)
	ActivePlayers(ctx context.Context, since string) (int, error)
	SongTotals(ctx context.Context) (db.SongTotals, error)
	DailyActivity(ctx context.Context, since string) ([]db.DailyActivity, error)
	PlayerSummaries(ctx context.Context) ([]db.PlayerSummary, error)
}

// StreakStore ranks players by streak.
type StreakStore interface {
	Leaderboard(ctx context.Context, order db.LeaderboardOrder, activeSince string, limit int) ([]db.LeaderboardRow, error)
}

// Analytics is the admin dashboard report.
type Analytics struct {
	Users    UserAnalytics        `json:"users"`
	Games    GameAnalytics        `json:"games"`
	Content  ContentAnalytics     `json:"content"`
	Streaks  StreakAnalytics      `json:"streaks"`
	Activity ActivityAnalytics    `json:"activity"`
	Segments []clustering.Segment `json:"segments"`
}

type UserAnalytics struct {
	Total     int     `json:"total"`
	Active    int     `json:"active"`
	Retention float64 `json:"retention"`
}

type GameAnalytics struct {
	Total   int     `json:"total"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`
}

type ContentAnalytics struct {
	TotalSongs       int `json:"total_songs"`
	ScheduledSongs   int `json:"scheduled_songs"`
	UnscheduledSongs int `json:"unscheduled_songs"`
}

type StreakAnalytics struct {
	Top     []int   `json:"top_streaks"`
	Average float64 `json:"average_streak"`
}

type ActivityAnalytics struct {
	Daily     []DayActivity `json:"daily_activity"`
	TotalDays int           `json:"total_days"`
}

// DayActivity counts finished games on one day.
type DayActivity struct {
	Date  string `json:"date"`
	Games int    `json:"games"`
	Wins  int    `json:"wins"`
}

// Analytics gathers the dashboard report. Queries run concurrently and the
// first failure cancels the rest.
func (s *Service) Analytics(ctx context.Context) (*Analytics, error) {
	today := s.clock.Today()

	var (
		totals   db.GameTotals
		active   int
		songs    db.SongTotals
		daily    []db.DailyActivity
		top      []db.LeaderboardRow
		segments []clustering.Segment
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = s.analytics.GameTotals(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		active, err = s.analytics.ActivePlayers(ctx, dates.AddDays(today, -ActiveWindowDays))
		return err
	})
	g.Go(func() error {
		var err error
		songs, err = s.analytics.SongTotals(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		daily, err = s.analytics.DailyActivity(ctx, dates.AddDays(today, -ActivityWindowDays))
		return err
	})
	g.Go(func() error {
		var err error
		top, err = s.streaks.Leaderboard(ctx, db.OrderLongestStreak, "", TopStreaks)
		return err
	})
	g.Go(func() error {
		players, err := s.analytics.PlayerSummaries(ctx)
		if err != nil {
			return err
		}
		segments = segmentPlayers(players)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("gathering analytics: %w", err)
	}

	a := &Analytics{
		Users: UserAnalytics{
			Total:     totals.Players,
			Active:    active,
			Retention: percent(active, totals.Players),
		},
		Games: GameAnalytics{
			Total:   totals.Games,
			Wins:    totals.Wins,
			WinRate: percent(totals.Wins, totals.Games),
		},
		Content: ContentAnalytics{
			TotalSongs:       songs.Songs,
			ScheduledSongs:   songs.Scheduled,
			UnscheduledSongs: max(songs.Unscheduled, 0),
		},
		Streaks:  streakAnalytics(top),
		Activity: ActivityAnalytics{Daily: make([]DayActivity, 0, len(daily)), TotalDays: len(daily)},
		Segments: segments,
	}
	for _, d := range daily {
		a.Activity.Daily = append(a.Activity.Daily, DayActivity{Date: d.Date, Games: d.Games, Wins: d.Wins})
	}
	if a.Segments == nil {
		a.Segments = []clustering.Segment{}
	}
	return a, nil
}

func segmentPlayers(players []db.PlayerSummary) []clustering.Segment {
	in := make([]clustering.Player, len(players))
	for i, p := range players {
		in[i] = clustering.Player{
			TotalGames:    p.TotalGames,
			TotalWins:     p.TotalWins,
			LongestStreak: p.LongestStreak,
			AvgAttempts:   p.AvgAttempts,
		}
	}
	segments, _ := clustering.SegmentPlayers(in, clustering.DefaultSegmentConfig())
	return segments
}

func streakAnalytics(rows []db.LeaderboardRow) StreakAnalytics {
	sa := StreakAnalytics{Top: make([]int, 0, len(rows))}
	sum := 0
	for _, r := range rows {
		sa.Top = append(sa.Top, r.LongestStreak)
		sum += r.LongestStreak
	}
	if len(rows) > 0 {
		sa.Average = round2(float64(sum) / float64(len(rows)))
	}
	return sa
}

// percent returns part/whole as a percentage rounded to two decimals.
func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return round2(float64(part) * 100 / float64(whole))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
