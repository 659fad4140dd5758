// Package clustering groups players into segments by how they play, using
// k-means over their aggregate stats.
package clustering

import (
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/rs/zerolog/log"
)

// maxGuesses and streakCap scale attempts and streaks into [0, 1].
const (
	maxGuesses = 6
	streakCap  = 30
)

// SegmentConfig holds segmentation parameters.
type SegmentConfig struct {
	NumSegments int // Number of segments to create (default: 3)
	MinGames    int // Players with fewer games are left out
}

// DefaultSegmentConfig returns the recommended default configuration.
func DefaultSegmentConfig() SegmentConfig {
	return SegmentConfig{
		NumSegments: 3,
		MinGames:    3,
	}
}

// Player is one player's aggregate stats.
type Player struct {
	TotalGames    int
	TotalWins     int
	LongestStreak int
	AvgAttempts   float64
}

// Segment is a group of players with similar results.
type Segment struct {
	Name             string  `json:"name"`
	Players          int     `json:"players"`
	AvgWinRate       int     `json:"avg_win_rate"`
	AvgAttempts      float64 `json:"avg_attempts"`
	AvgLongestStreak float64 `json:"avg_longest_streak"`
}

// playerObservation wraps a Player to implement clusters.Observation.
type playerObservation struct {
	player *Player
	coords clusters.Coordinates
}

func (o playerObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o playerObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// SegmentPlayers groups players by win rate, average attempts and longest streak.
// It returns the segments, largest first, and the number of players left
// out for having too few games.
func SegmentPlayers(players []Player, cfg SegmentConfig) ([]Segment, int) {
	if cfg.NumSegments <= 0 {
		cfg.NumSegments = DefaultSegmentConfig().NumSegments
	}

	var eligible []*Player
	for i := range players {
		p := &players[i]
		if p.TotalGames > 0 && p.TotalGames >= cfg.MinGames {
			eligible = append(eligible, p)
		}
	}
	skipped := len(players) - len(eligible)

	if len(eligible) == 0 {
		return nil, skipped
	}
	// Too few players to split: report them as one segment.
	if len(eligible) < cfg.NumSegments {
		return []Segment{summarize(eligible)}, skipped
	}

	var obs clusters.Observations
	for _, p := range eligible {
		obs = append(obs, playerObservation{player: p, coords: features(p)})
	}

	result, err := kmeans.New().Partition(obs, cfg.NumSegments)
	if err != nil {
		log.Warn().Err(err).Int("players", len(eligible)).Msg("k-means segmentation failed")
		return []Segment{summarize(eligible)}, skipped
	}

	var segments []Segment
	for _, cluster := range result {
		var members []*Player
		for _, o := range cluster.Observations {
			if po, ok := o.(playerObservation); ok {
				members = append(members, po.player)
			}
		}
		if len(members) == 0 {
			continue
		}
		segments = append(segments, summarize(members))
	}

	slices.SortFunc(segments, func(a, b Segment) int {
		return b.Players - a.Players
	})
	return segments, skipped
}

// features scales a player's stats into the unit cube.
func features(p *Player) clusters.Coordinates {
	return clusters.Coordinates{
		float64(p.TotalWins) / float64(p.TotalGames),
		min(p.AvgAttempts, maxGuesses) / maxGuesses,
		float64(min(p.LongestStreak, streakCap)) / streakCap,
	}
}

func summarize(members []*Player) Segment {
	var winRate, attempts, streak float64
	for _, p := range members {
		c := features(p)
		winRate += c[0]
		attempts += p.AvgAttempts
		streak += float64(p.LongestStreak)
	}
	n := float64(len(members))
	seg := Segment{
		Players:          len(members),
		AvgWinRate:       int(winRate/n*100 + 0.5),
		AvgAttempts:      round1(attempts / n),
		AvgLongestStreak: round1(streak / n),
	}
	seg.Name = segmentName(seg)
	return seg
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
