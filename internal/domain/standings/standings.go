// Package standings holds the canonical league table model together with the
// ranking and live adjustment rules applied to it.
package standings

// PlaceholderLogo is used when an upstream row carries no team crest.
const PlaceholderLogo = "/img/placeholder-crest.svg"

// Match statuses understood by live match sources.
const (
	StatusLive   = "LIVE"
	StatusInPlay = "IN_PLAY"
)

// Points awarded per outcome.
const (
	pointsWin  = 3
	pointsDraw = 1
)

// Team identifies a club by its upstream-stable id.
type Team struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// Goals holds goals scored and conceded.
type Goals struct {
	For     int `json:"for"`
	Against int `json:"against"`
}

// Record is the played/won/drawn/lost breakdown of a row.
type Record struct {
	Played int   `json:"played"`
	Win    int   `json:"win"`
	Draw   int   `json:"draw"`
	Lose   int   `json:"lose"`
	Goals  Goals `json:"goals"`
}

// TeamStanding is one row of the league table.
type TeamStanding struct {
	Rank        int    `json:"rank"`
	Team        Team   `json:"team"`
	Points      int    `json:"points"`
	GoalsDiff   int    `json:"goalsDiff"`
	All         Record `json:"all"`
	GamesInHand int    `json:"gamesInHand"`
}

// LiveMatch is an in-progress match at its current score.
type LiveMatch struct {
	ID         int    `json:"id"`
	Status     string `json:"status"`
	HomeTeamID int    `json:"homeTeamId"`
	AwayTeamID int    `json:"awayTeamId"`
	HomeScore  int    `json:"homeScore"`
	AwayScore  int    `json:"awayScore"`
}

// Season is the adapted output of an upstream standings payload.
type Season struct {
	Competition string
	SeasonYear  *int
	Rows        []TeamStanding
}

// Clone returns a deep copy of the season. Rows hold only value fields, so a
// slice copy is enough to break aliasing with the original.
func (s Season) Clone() Season {
	out := Season{
		Competition: s.Competition,
		Rows:        CloneRows(s.Rows),
	}
	if s.SeasonYear != nil {
		y := *s.SeasonYear
		out.SeasonYear = &y
	}
	return out
}

// CloneRows copies rows into a freshly allocated slice.
func CloneRows(rows []TeamStanding) []TeamStanding {
	if rows == nil {
		return nil
	}
	out := make([]TeamStanding, len(rows))
	copy(out, rows)
	return out
}

// Normalize derives the fields that must agree with the rest of a row rather
// than trusting the upstream copy: GoalsDiff from the goal counts and Played
// from the result counts. GamesInHand is then filled by WithGamesInHand.
func Normalize(rows []TeamStanding) []TeamStanding {
	for i := range rows {
		r := &rows[i]
		r.GoalsDiff = r.All.Goals.For - r.All.Goals.Against
		r.All.Played = r.All.Win + r.All.Draw + r.All.Lose
	}
	return WithGamesInHand(rows)
}

// WithGamesInHand sets GamesInHand on every row to the difference between the
// most matches played by any team and the row's own played count.
func WithGamesInHand(rows []TeamStanding) []TeamStanding {
	maxPlayed := 0
	for _, r := range rows {
		if r.All.Played > maxPlayed {
			maxPlayed = r.All.Played
		}
	}
	for i := range rows {
		rows[i].GamesInHand = maxPlayed - rows[i].All.Played
	}
	return rows
}
