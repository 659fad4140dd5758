package clustering

// segmentName describes a segment by its averages.
//
//   - Win rate >= 80% in under 3.5 attempts = "Sharpshooters"
//   - Win rate >= 80% otherwise             = "Steady Solvers"
//   - Win rate >= 40%                       = "Regulars"
//   - Below that                            = "Casual Listeners"
//
// Segments whose average longest streak reaches 7 days get " (Streakers)".
func segmentName(s Segment) string {
	var base string
	switch {
	case s.AvgWinRate >= 80 && s.AvgAttempts < 3.5:
		base = "Sharpshooters"
	case s.AvgWinRate >= 80:
		base = "Steady Solvers"
	case s.AvgWinRate >= 40:
		base = "Regulars"
	default:
		base = "Casual Listeners"
	}

	if s.AvgLongestStreak >= 7 {
		return base + " (Streakers)"
	}
	return base
}
