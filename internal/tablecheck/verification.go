package tablecheck

import (
	"errors"
	"fmt"

	"github.com/okian/livetable/internal/domain/standings"
)

// verifyTable checks the per-row and ordering invariants of one table.
// ordered additionally requires the live ranking order.
func verifyTable(t table, ordered bool) error {
	var errs []error
	for i, r := range t.Rows {
		name := r.Team.Name
		if r.Rank != i+1 {
			errs = append(errs, fmt.Errorf("%s: rank %d at position %d", name, r.Rank, i+1))
		}
		if gd := r.All.Goals.For - r.All.Goals.Against; r.GoalsDiff != gd {
			errs = append(errs, fmt.Errorf("%s: goalsDiff %d, want %d", name, r.GoalsDiff, gd))
		}
		if sum := r.All.Win + r.All.Draw + r.All.Lose; sum != r.All.Played {
			errs = append(errs, fmt.Errorf("%s: win+draw+lose %d, played %d", name, sum, r.All.Played))
		}
		if ordered && i > 0 && standings.Less(r, t.Rows[i-1]) {
			errs = append(errs, fmt.Errorf("%s ranked below %s", name, t.Rows[i-1].Team.Name))
		}
	}
	return errors.Join(errs...)
}

// verifyLive checks the live table against the base table it was built from.
func verifyLive(base, live table) error {
	if len(base.Rows) != len(live.Rows) {
		return fmt.Errorf("live table has %d rows, base has %d", len(live.Rows), len(base.Rows))
	}
	var errs []error
	baseByID := make(map[int]standings.TeamStanding, len(base.Rows))
	basePoints := 0
	for _, r := range base.Rows {
		baseByID[r.Team.ID] = r
		basePoints += r.Points
	}
	livePoints := 0
	for _, r := range live.Rows {
		livePoints += r.Points
		b, ok := baseByID[r.Team.ID]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: not in base table", r.Team.Name))
			continue
		}
		if r.All.Played < b.All.Played || r.Points < b.Points {
			errs = append(errs, fmt.Errorf("%s: live totals below base", r.Team.Name))
		}
	}
	if added := livePoints - basePoints; added < 0 || added > 3*live.LiveCount {
		errs = append(errs, fmt.Errorf("live points added %d for %d live matches", added, live.LiveCount))
	}
	return errors.Join(errs...)
}
