package clustering

import (
	"testing"
)

func TestSegmentName(t *testing.T) {
	tests := []struct {
		name string
		seg  Segment
		want string
	}{
		{name: "fast winners", seg: Segment{AvgWinRate: 95, AvgAttempts: 2.1}, want: "Sharpshooters"},
		{name: "slow winners", seg: Segment{AvgWinRate: 85, AvgAttempts: 4.8}, want: "Steady Solvers"},
		{name: "boundary 80 is high", seg: Segment{AvgWinRate: 80, AvgAttempts: 3.5}, want: "Steady Solvers"},
		{name: "middle", seg: Segment{AvgWinRate: 55, AvgAttempts: 4}, want: "Regulars"},
		{name: "low", seg: Segment{AvgWinRate: 20, AvgAttempts: 5.9}, want: "Casual Listeners"},
		{name: "streak modifier", seg: Segment{AvgWinRate: 90, AvgAttempts: 2, AvgLongestStreak: 12}, want: "Sharpshooters (Streakers)"},
		{name: "streak below threshold", seg: Segment{AvgWinRate: 50, AvgLongestStreak: 6.9}, want: "Regulars"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := segmentName(tt.seg); got != tt.want {
				t.Errorf("segmentName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSegmentPlayersEmpty(t *testing.T) {
	segments, skipped := SegmentPlayers(nil, DefaultSegmentConfig())
	if segments != nil || skipped != 0 {
		t.Errorf("SegmentPlayers(nil) = %v, %d", segments, skipped)
	}
}

func TestSegmentPlayersSkipsNewPlayers(t *testing.T) {
	players := []Player{
		{TotalGames: 0},
		{TotalGames: 2, TotalWins: 2, AvgAttempts: 1},
		{TotalGames: 10, TotalWins: 10, LongestStreak: 10, AvgAttempts: 2},
	}

	segments, skipped := SegmentPlayers(players, DefaultSegmentConfig())
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if len(segments) != 1 || segments[0].Players != 1 {
		t.Fatalf("segments = %+v, want one segment of one player", segments)
	}
	if segments[0].Name != "Sharpshooters (Streakers)" || segments[0].AvgWinRate != 100 {
		t.Errorf("segment = %+v", segments[0])
	}
}

func TestSegmentPlayers(t *testing.T) {
	var players []Player
	for i := 0; i < 5; i++ {
		players = append(players, Player{TotalGames: 20, TotalWins: 20, LongestStreak: 20, AvgAttempts: 2})
	}
	for i := 0; i < 4; i++ {
		players = append(players, Player{TotalGames: 10, TotalWins: 1, LongestStreak: 1, AvgAttempts: 6})
	}

	segments, skipped := SegmentPlayers(players, SegmentConfig{NumSegments: 2, MinGames: 3})
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}

	total := 0
	for i, s := range segments {
		if s.Players == 0 {
			t.Errorf("segment %d is empty", i)
		}
		if i > 0 && s.Players > segments[i-1].Players {
			t.Errorf("segments not sorted by size: %+v", segments)
		}
		total += s.Players
	}
	if total != len(players) {
		t.Errorf("segments cover %d players, want %d", total, len(players))
	}
}

func TestFeaturesAreScaled(t *testing.T) {
	c := features(&Player{TotalGames: 4, TotalWins: 3, LongestStreak: 90, AvgAttempts: 9})
	want := []float64{0.75, 1, 1}
	for i, w := range want {
		if c[i] != w {
			t.Errorf("features()[%d] = %v, want %v", i, c[i], w)
		}
	}
}
