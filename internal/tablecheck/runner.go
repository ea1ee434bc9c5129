package tablecheck

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/livetable/pkg/logger"
)

// Run fetches the base and live tables Rounds times across Workers
// goroutines and verifies each pair. It returns an error when the service is
// unreachable or any round failed verification.
func Run(ctx context.Context, config *Config) (*Report, error) {
	if config.Rounds <= 0 {
		config.Rounds = 1
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	report := &Report{Rounds: config.Rounds}
	start := time.Now()
	log := logger.Get()

	log.Info(ctx, "starting livetable check",
		logger.String("baseURL", config.BaseURL),
		logger.Int("rounds", config.Rounds),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	var ping struct {
		OK       bool   `json:"ok"`
		HasKey   bool   `json:"hasKey"`
		Provider string `json:"provider"`
	}
	if err := client.getJSON(ctx, "/api/ping", &ping); err != nil {
		return report, fmt.Errorf("service ping failed: %w", err)
	}
	if !ping.HasKey {
		log.Warn(ctx, "service has no upstream key configured", logger.String("provider", ping.Provider))
	}

	jobs := make(chan int)
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for round := range jobs {
				err := checkRound(ctx, client)
				mu.Lock()
				if err != nil {
					report.Failed++
					report.Violations = append(report.Violations, fmt.Sprintf("round %d: %v", round, err))
				} else {
					report.Passed++
				}
				mu.Unlock()
				if config.Verbose {
					log.Info(ctx, "round finished", logger.Int("round", round), logger.Bool("ok", err == nil))
				}
			}
		}()
	}
	for round := 1; round <= config.Rounds; round++ {
		select {
		case jobs <- round:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()
	report.Duration = time.Since(start)

	log.Info(ctx, "check finished",
		logger.Int("passed", report.Passed),
		logger.Int("failed", report.Failed),
		logger.Duration("duration", report.Duration))

	if report.Failed > 0 {
		return report, fmt.Errorf("%d of %d rounds failed verification", report.Failed, report.Rounds)
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// checkRound verifies one live table. The base table is fetched on both sides
// of the live one because a standings refresh can land between the two calls;
// the live table only has to agree with one of the snapshots.
func checkRound(ctx context.Context, client *httpClient) error {
	var before, live, after table
	if err := client.getJSON(ctx, "/api/standings", &before); err != nil {
		return err
	}
	if err := client.getJSON(ctx, "/api/standings/live", &live); err != nil {
		return err
	}
	if err := client.getJSON(ctx, "/api/standings", &after); err != nil {
		return err
	}
	if err := verifyTable(before, false); err != nil {
		return fmt.Errorf("base table: %w", err)
	}
	if err := verifyTable(live, true); err != nil {
		return fmt.Errorf("live table: %w", err)
	}
	err := verifyLive(before, live)
	if err == nil {
		return nil
	}
	if verifyTable(after, false) == nil && verifyLive(after, live) == nil {
		return nil
	}
	return err
}
