package standings

import (
	"sort"
	"strings"
)

// Ordering: points DESC, goal difference DESC, goals for DESC, then team name
// ASC. The name comparison is byte-wise so the result does not depend on the
// host locale, and it leaves no ties between distinct teams.

// Less reports whether a ranks above b.
func Less(a, b TeamStanding) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.GoalsDiff != b.GoalsDiff {
		return a.GoalsDiff > b.GoalsDiff
	}
	if a.All.Goals.For != b.All.Goals.For {
		return a.All.Goals.For > b.All.Goals.For
	}
	return strings.Compare(a.Team.Name, b.Team.Name) < 0
}

// Rank sorts rows in place and assigns contiguous 1-based ranks.
func Rank(rows []TeamStanding) []TeamStanding {
	sort.SliceStable(rows, func(i, j int) bool {
		return Less(rows[i], rows[j])
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
