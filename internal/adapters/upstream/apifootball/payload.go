package apifootball

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/okian/livetable/internal/adapters/upstream"
)

// envelope is the common wrapper of every v3 response. Errors arrive with a
// 200 status as either [] or an object keyed by field.
type envelope[T any] struct {
	Errors   jsoniter.RawMessage `json:"errors"`
	Response []T                 `json:"response"`
}

type standingsItem struct {
	League struct {
		ID        int          `json:"id"`
		Name      string       `json:"name"`
		Season    *int         `json:"season"`
		Standings [][]tableRow `json:"standings"`
	} `json:"league"`
}

type tableRow struct {
	Rank int `json:"rank"`
	Team struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		Logo string `json:"logo"`
	} `json:"team"`
	Points int `json:"points"`
	All    struct {
		Win   int `json:"win"`
		Draw  int `json:"draw"`
		Lose  int `json:"lose"`
		Goals struct {
			For     int `json:"for"`
			Against int `json:"against"`
		} `json:"goals"`
	} `json:"all"`
}

type fixtureItem struct {
	Fixture struct {
		ID     int `json:"id"`
		Status struct {
			Short string `json:"short"`
		} `json:"status"`
	} `json:"fixture"`
	Teams struct {
		Home struct {
			ID int `json:"id"`
		} `json:"home"`
		Away struct {
			ID int `json:"id"`
		} `json:"away"`
	} `json:"teams"`
	Goals *upstream.Score `json:"goals"`
	Score struct {
		Halftime *upstream.Score `json:"halftime"`
		Fulltime *upstream.Score `json:"fulltime"`
	} `json:"score"`
}
