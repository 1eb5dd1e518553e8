package pickload

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/okian/dojo/pkg/logger"
)

// submitPicks submits picks concurrently using a worker pool and returns the
// picks the service accepted.
func submitPicks(ctx context.Context, config *Config, subs []Submission, stats *Stats) []Created {
	client := newHTTPClient(config.BaseURL, config.Timeout)

	var (
		submitted int64
		duplicate int64
		failed    int64
		mu        sync.Mutex
		created   []Created
	)

	subChan := make(chan Submission, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup
	for range config.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range subChan {
				atomic.AddInt64(&submitted, 1)
				c, result := submitSinglePick(ctx, client, config.Verbose, s)
				switch result {
				case "created":
					mu.Lock()
					created = append(created, c)
					mu.Unlock()
				case "duplicate":
					atomic.AddInt64(&duplicate, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	go func() {
		defer close(subChan)
		for _, s := range subs {
			select {
			case <-ctx.Done():
				return
			case subChan <- s:
			}
		}
	}()
	wg.Wait()

	stats.PicksSubmitted = int(atomic.LoadInt64(&submitted))
	stats.PicksCreated = len(created)
	stats.PicksDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.PicksFailed = int(atomic.LoadInt64(&failed))

	logger.Get().Info(ctx, "pick submission completed",
		logger.Int("created", stats.PicksCreated),
		logger.Int("duplicate", stats.PicksDuplicate),
		logger.Int("failed", stats.PicksFailed))
	return created
}

// submitSinglePick posts one pick and classifies the outcome.
func submitSinglePick(ctx context.Context, client *HTTPClient, verbose bool, s Submission) (Created, string) {
	status, body, err := client.Do(ctx, http.MethodPost, "/picks", s.PickerID, s.Request)
	if err != nil {
		if verbose {
			logger.Get().Warn(ctx, "pick request failed", logger.Error(err))
		}
		return Created{}, "failed"
	}
	switch status {
	case http.StatusCreated:
		var c Created
		if err := json.Unmarshal(body, &c); err != nil {
			return Created{}, "failed"
		}
		c.PickerID = s.PickerID
		return c, "created"
	case http.StatusConflict:
		return Created{}, "duplicate"
	default:
		if verbose {
			logger.Get().Warn(ctx, "pick rejected",
				logger.Int("status", status), logger.String("body", string(body)))
		}
		return Created{}, "failed"
	}
}
