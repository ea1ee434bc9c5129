package footballdata

import "github.com/okian/livetable/internal/adapters/upstream"

// standingsResponse mirrors GET /v4/competitions/{code}/standings.
type standingsResponse struct {
	Competition struct {
		Name string `json:"name"`
	} `json:"competition"`
	Season struct {
		StartDate string `json:"startDate"`
		Year      *int   `json:"year"`
	} `json:"season"`
	Standings []struct {
		Type  string     `json:"type"`
		Table []tableRow `json:"table"`
	} `json:"standings"`
}

type tableRow struct {
	Position int `json:"position"`
	Team     struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		Crest string `json:"crest"`
	} `json:"team"`
	Won          int `json:"won"`
	Draw         int `json:"draw"`
	Lost         int `json:"lost"`
	Points       int `json:"points"`
	GoalsFor     int `json:"goalsFor"`
	GoalsAgainst int `json:"goalsAgainst"`
}

// matchesResponse mirrors GET /v4/competitions/{code}/matches.
type matchesResponse struct {
	Matches []match `json:"matches"`
}

type match struct {
	ID       int    `json:"id"`
	Status   string `json:"status"`
	HomeTeam struct {
		ID int `json:"id"`
	} `json:"homeTeam"`
	AwayTeam struct {
		ID int `json:"id"`
	} `json:"awayTeam"`
	Score struct {
		Duration    string          `json:"duration"`
		FullTime    *upstream.Score `json:"fullTime"`
		HalfTime    *upstream.Score `json:"halfTime"`
		RegularTime *upstream.Score `json:"regularTime"`
	} `json:"score"`
}
