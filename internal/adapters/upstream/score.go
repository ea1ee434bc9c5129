package upstream

// Score is one side-by-side score object of an upstream match payload.
// Either side may be null upstream.
type Score struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

func (s *Score) present() bool {
	return s != nil && (s.Home != nil || s.Away != nil)
}

// PickScore returns the current score of a match from the candidate score
// objects, in precedence order: the first object carrying at least one side
// wins, and a missing side inside it counts as 0. With no usable object the
// score is 0-0.
func PickScore(candidates ...*Score) (home, away int) {
	for _, s := range candidates {
		if !s.present() {
			continue
		}
		if s.Home != nil {
			home = *s.Home
		}
		if s.Away != nil {
			away = *s.Away
		}
		return home, away
	}
	return 0, 0
}
