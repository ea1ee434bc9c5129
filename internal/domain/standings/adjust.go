package standings

// Outcome summarises a single adjustment pass.
type Outcome struct {
	Applied int
	Skipped int
}

// Adjust folds live matches into a copy of base as if every match had ended
// at its current score. The returned rows are not ranked. base is never
// modified.
func Adjust(base []TeamStanding, matches []LiveMatch) []TeamStanding {
	rows, _ := Apply(base, matches)
	return rows
}

// Apply is Adjust that also reports how many matches were applied and how
// many were skipped because a participant is not in the table.
func Apply(base []TeamStanding, matches []LiveMatch) ([]TeamStanding, Outcome) {
	rows := CloneRows(base)
	if rows == nil {
		rows = []TeamStanding{}
	}
	byID := make(map[int]int, len(rows))
	for i, r := range rows {
		byID[r.Team.ID] = i
	}

	var out Outcome
	for _, m := range matches {
		hi, okHome := byID[m.HomeTeamID]
		ai, okAway := byID[m.AwayTeamID]
		if !okHome || !okAway {
			out.Skipped++
			continue
		}
		applyResult(&rows[hi], &rows[ai], m.HomeScore, m.AwayScore)
		out.Applied++
	}
	return rows, out
}

// applyResult records one provisional result for both participants.
func applyResult(home, away *TeamStanding, hs, as int) {
	home.All.Played++
	away.All.Played++
	home.All.Goals.For += hs
	home.All.Goals.Against += as
	away.All.Goals.For += as
	away.All.Goals.Against += hs

	switch {
	case hs > as:
		home.Points += pointsWin
		home.All.Win++
		away.All.Lose++
	case hs < as:
		away.Points += pointsWin
		away.All.Win++
		home.All.Lose++
	default:
		home.Points += pointsDraw
		away.Points += pointsDraw
		home.All.Draw++
		away.All.Draw++
	}

	home.GoalsDiff = home.All.Goals.For - home.All.Goals.Against
	away.GoalsDiff = away.All.Goals.For - away.All.Goals.Against
}
