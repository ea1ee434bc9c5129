// Package tablecheck probes a running livetable server and verifies that the
// tables it serves hold the standings invariants.
package tablecheck

import (
	"time"

	"github.com/okian/livetable/internal/domain/standings"
)

// Config holds configuration for a check run.
type Config struct {
	BaseURL string        // Base URL of the service
	Rounds  int           // Number of base+live fetch rounds
	Workers int           // Number of concurrent workers
	Timeout time.Duration // HTTP request timeout
	Verbose bool          // Log every round
}

// table is the subset of the base and live payloads the checks read.
type table struct {
	League    string                   `json:"league"`
	Source    string                   `json:"source"`
	LiveCount int                      `json:"liveCount"`
	Rows      []standings.TeamStanding `json:"rows"`
}

// Report holds run statistics.
type Report struct {
	Rounds     int
	Passed     int
	Failed     int
	Violations []string
	Duration   time.Duration
}
