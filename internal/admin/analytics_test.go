package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/justestif/kdle/internal/db"
)

type fakeAnalytics struct {
	activeSince string
	dailySince  string
	summaryErr  error
}

func (f *fakeAnalytics) GameTotals(context.Context) (db.GameTotals, error) {
	return db.GameTotals{Players: 8, Games: 40, Wins: 30}, nil
}

func (f *fakeAnalytics) ActivePlayers(_ context.Context, since string) (int, error) {
	f.activeSince = since
	return 2, nil
}

func (f *fakeAnalytics) SongTotals(context.Context) (db.SongTotals, error) {
	return db.SongTotals{Songs: 12, Scheduled: 9, Unscheduled: 3}, nil
}

func (f *fakeAnalytics) DailyActivity(_ context.Context, since string) ([]db.DailyActivity, error) {
	f.dailySince = since
	return []db.DailyActivity{{Date: "2026-05-14", Games: 5, Wins: 4}}, nil
}

func (f *fakeAnalytics) PlayerSummaries(context.Context) ([]db.PlayerSummary, error) {
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	return []db.PlayerSummary{
		{UserID: uuid.New(), TotalGames: 10, TotalWins: 9, LongestStreak: 8, AvgAttempts: 2},
	}, nil
}

type fakeStreaks struct{}

func (fakeStreaks) Leaderboard(_ context.Context, order db.LeaderboardOrder, _ string, _ int) ([]db.LeaderboardRow, error) {
	if order != db.OrderLongestStreak {
		return nil, errors.New("unexpected order")
	}
	return []db.LeaderboardRow{{LongestStreak: 9}, {LongestStreak: 4}, {LongestStreak: 4}}, nil
}

func TestAnalytics(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	fa := &fakeAnalytics{}
	svc.analytics = fa
	svc.streaks = fakeStreaks{}

	a, err := svc.Analytics(context.Background())
	if err != nil {
		t.Fatalf("Analytics() error = %v", err)
	}

	if a.Users.Total != 8 || a.Users.Active != 2 || a.Users.Retention != 25 {
		t.Errorf("Users = %+v", a.Users)
	}
	if a.Games.WinRate != 75 {
		t.Errorf("WinRate = %v, want 75", a.Games.WinRate)
	}
	if a.Content.UnscheduledSongs != 3 {
		t.Errorf("Content = %+v", a.Content)
	}
	if len(a.Streaks.Top) != 3 || a.Streaks.Average != 5.67 {
		t.Errorf("Streaks = %+v", a.Streaks)
	}
	if a.Activity.TotalDays != 1 || a.Activity.Daily[0].Wins != 4 {
		t.Errorf("Activity = %+v", a.Activity)
	}
	if len(a.Segments) != 1 || a.Segments[0].Players != 1 {
		t.Errorf("Segments = %+v", a.Segments)
	}
	if fa.activeSince != "2026-05-08" || fa.dailySince != "2026-04-15" {
		t.Errorf("windows = %s, %s", fa.activeSince, fa.dailySince)
	}
}

func TestAnalyticsPropagatesErrors(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	svc.analytics = &fakeAnalytics{summaryErr: errors.New("connection reset")}
	svc.streaks = fakeStreaks{}

	if _, err := svc.Analytics(context.Background()); err == nil {
		t.Error("Analytics() error = nil, want failure")
	}
}
