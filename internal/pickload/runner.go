package pickload

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/dojo/pkg/logger"
)

// Run executes the complete load run.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting pick load run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("members", len(config.Members)),
		logger.Int("questions", len(config.QuestionIDs)),
		logger.Int("workers", config.Workers),
		logger.Int("openRacers", config.OpenRacers),
		logger.String("openItem", config.OpenItem),
		logger.Duration("timeout", config.Timeout))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate picks
	subs, err := generatePicks(ctx, config, stats)
	if err != nil {
		return stats, fmt.Errorf("pick generation failed: %w", err)
	}

	// Step 3: Submit picks concurrently
	created := submitPicks(ctx, config, subs, stats)
	if stats.PicksFailed > 0 {
		return stats, fmt.Errorf("%d picks failed", stats.PicksFailed)
	}

	// Step 4: Race opens on received picks
	opens := raceOpens(ctx, config, created, stats)
	if stats.OpensFailed > 0 {
		return stats, fmt.Errorf("%d opens failed", stats.OpensFailed)
	}

	// Step 5: Verify ledgers and spaces
	if err := verifyResults(ctx, config, created, opens, stats); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(ctx, stats)

	logger.Get().Info(ctx, "load run completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.BaseURL, config.Timeout)
	status, _, err := client.Do(ctx, http.MethodGet, "/healthz", "", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", status)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var acceptRate, picksPerSecond float64

	if stats.PicksSubmitted > 0 {
		acceptRate = float64(stats.PicksCreated) / float64(stats.PicksSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		picksPerSecond = float64(stats.PicksSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("picksGenerated", stats.PicksGenerated),
		logger.Int("picksSubmitted", stats.PicksSubmitted),
		logger.Int("picksCreated", stats.PicksCreated),
		logger.Int("picksDuplicate", stats.PicksDuplicate),
		logger.Int("opensAttempted", stats.OpensAttempted),
		logger.Int("opensSucceeded", stats.OpensSucceeded),
		logger.Int("opensRejected", stats.OpensRejected),
		logger.Int("membersChecked", stats.MembersChecked),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("picksPerSecond", picksPerSecond))
}
