package stats

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/kdle/internal/dates"
	"github.com/justestif/kdle/internal/db"
	"github.com/justestif/kdle/internal/game"
)

// memStore implements Store and ResultStore in memory.
type memStore struct {
	stats   map[uuid.UUID]*db.UserStats
	results map[string]*db.GameResult
	resets  int
}

func newMemStore() *memStore {
	return &memStore{
		stats:   make(map[uuid.UUID]*db.UserStats),
		results: make(map[string]*db.GameResult),
	}
}

func resultKey(userID uuid.UUID, day string) string {
	return userID.String() + ":" + day
}

func (m *memStore) Get(_ context.Context, userID uuid.UUID) (*db.UserStats, error) {
	s, ok := m.stats[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) ResetStreak(_ context.Context, userID uuid.UUID) error {
	s, ok := m.stats[userID]
	if !ok {
		return db.ErrNotFound
	}
	m.resets++
	s.Streak = 0
	return nil
}

func (m *memStore) GetForDate(_ context.Context, userID uuid.UUID, day string) (*db.GameResult, error) {
	r, ok := m.results[resultKey(userID, day)]
	if !ok {
		return nil, db.ErrNotFound
	}
	return r, nil
}

func (m *memStore) Record(_ context.Context, res *db.GameResult, update func(*db.UserStats)) (*db.UserStats, bool, error) {
	s, ok := m.stats[res.UserID]
	if !ok {
		s = &db.UserStats{UserID: res.UserID}
	}
	key := resultKey(res.UserID, res.Date)
	if _, exists := m.results[key]; exists {
		cp := *s
		return &cp, false, nil
	}
	m.results[key] = res
	update(s)
	m.stats[res.UserID] = s
	cp := *s
	return &cp, true, nil
}

func testClock(t *testing.T, instant time.Time) *dates.Clock {
	t.Helper()
	c, err := dates.NewClock(dates.DefaultZone, dates.WithNow(func() time.Time { return instant }))
	if err != nil {
		t.Fatalf("NewClock() error = %v", err)
	}
	return c
}

func TestServiceCompleteIsIdempotent(t *testing.T) {
	store := newMemStore()
	clock := testClock(t, time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC))
	svc := NewService(store, store, clock)
	user := uuid.New()

	res := Result{
		UserID:   user,
		Date:     clock.Today(),
		SongID:   uuid.New(),
		Attempts: []game.Attempt{{Guess: "Dynamite", TitleCorrect: true}},
		Won:      true,
	}

	first, inserted, err := svc.Complete(context.Background(), res)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if !inserted || first.TotalGames != 1 || first.Streak != 1 {
		t.Errorf("first Complete() = %+v inserted %v, want 1 game streak 1", first, inserted)
	}

	second, inserted, err := svc.Complete(context.Background(), res)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if inserted {
		t.Error("second Complete() inserted = true, want false")
	}
	if second.TotalGames != first.TotalGames || second.Streak != first.Streak {
		t.Errorf("second Complete() = %+v, want unchanged %+v", second, first)
	}
}

func TestServiceCompleteExtendsStreak(t *testing.T) {
	store := newMemStore()
	clock := testClock(t, time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC))
	svc := NewService(store, store, clock)
	user := uuid.New()
	yesterday := clock.Yesterday()
	store.stats[user] = &db.UserStats{UserID: user, TotalGames: 3, TotalWins: 3, Streak: 3, LongestStreak: 3, LastResultDate: &yesterday}

	got, _, err := svc.Complete(context.Background(), Result{UserID: user, Date: clock.Today(), Won: true})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got.Streak != 4 || got.LongestStreak != 4 || got.LastResultDate != clock.Today() {
		t.Errorf("Complete() = %+v, want streak 4 on %s", got, clock.Today())
	}
}

func TestServiceGetAppliesStaleCorrection(t *testing.T) {
	instant := time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC)
	store := newMemStore()
	svc := NewService(store, store, testClock(t, instant))
	user := uuid.New()
	last := "2024-05-08"
	store.stats[user] = &db.UserStats{
		UserID: user, TotalGames: 5, TotalWins: 5, Streak: 5, LongestStreak: 5,
		LastResultDate: &last, UpdatedAt: instant.Add(-48 * time.Hour),
	}

	got, err := svc.Get(context.Background(), user)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Streak != 0 || got.LongestStreak != 5 {
		t.Errorf("Get() = %+v, want streak 0 longest 5", got)
	}
	if store.resets != 1 {
		t.Errorf("resets = %d, want 1", store.resets)
	}
}

func TestServiceGetKeepsStreakAcrossConsecutiveDays(t *testing.T) {
	store := newMemStore()
	user := uuid.New()
	dayOne := time.Date(2024, 5, 9, 15, 0, 0, 0, time.UTC) // 08:00 Pacific
	svc := NewService(store, store, testClock(t, dayOne))
	for i := 0; i < 3; i++ {
		day := addDays("2024-05-07", i)
		svc.clock = testClock(t, dayOne.AddDate(0, 0, i-2))
		if _, _, err := svc.Complete(context.Background(), Result{UserID: user, Date: day, Won: true}); err != nil {
			t.Fatalf("Complete(%s) error = %v", day, err)
		}
	}

	// Next day, 25 hours after the last win and before playing.
	svc.clock = testClock(t, dayOne.Add(25*time.Hour))
	got, err := svc.Get(context.Background(), user)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Streak != 3 || store.resets != 0 {
		t.Errorf("Get() streak = %d resets = %d, want 3 and 0", got.Streak, store.resets)
	}

	got, _, err = svc.Complete(context.Background(), Result{UserID: user, Date: svc.clock.Today(), Won: true})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got.Streak != 4 || got.LongestStreak != 4 {
		t.Errorf("Complete() = %+v, want streak 4", got)
	}
}

func TestServiceGetUnknownUser(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, store, testClock(t, time.Now()))
	got, err := svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != (Stats{}) {
		t.Errorf("Get() = %+v, want zero stats", got)
	}
}
