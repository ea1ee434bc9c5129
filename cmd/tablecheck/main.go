package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/livetable/internal/tablecheck"
	"github.com/okian/livetable/pkg/logger"
)

// Default configuration constants.
const (
	defaultRounds      = 20
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 15 * time.Second
	defaultTestTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:3000", "Base URL of the service")
		rounds  = flag.Int("rounds", defaultRounds, "Number of base+live fetch rounds")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose = flag.Bool("verbose", false, "Log every round")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	_, err := tablecheck.Run(ctx, &tablecheck.Config{
		BaseURL: *baseURL,
		Rounds:  *rounds,
		Workers: *workers,
		Timeout: *timeout,
		Verbose: *verbose,
	})
	if err != nil {
		os.Stderr.WriteString("check failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
