package pickload

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/okian/dojo/pkg/logger"
)

type openRequest struct {
	Item string `json:"item"`
}

// raceOpens has the target of each pick open the same item from several
// goroutines at once. It returns successful opens per member.
func raceOpens(ctx context.Context, config *Config, created []Created, stats *Stats) map[string]int {
	client := newHTTPClient(config.BaseURL, config.Timeout)
	targets := created
	if config.MaxOpens > 0 && len(targets) > config.MaxOpens {
		targets = targets[:config.MaxOpens]
	}

	var (
		attempted int64
		rejected  int64
		failed    int64
		mu        sync.Mutex
		perMember = make(map[string]int)
		perPick   = make(map[string]int)
	)

	sem := make(chan struct{}, config.Workers)
	var wg sync.WaitGroup
	for _, c := range targets {
		for range config.OpenRacers {
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				atomic.AddInt64(&attempted, 1)
				status, body, err := client.Do(ctx, http.MethodPost, "/picks/"+c.PickID+"/open", c.PickedID, openRequest{Item: config.OpenItem})
				switch {
				case err != nil:
					atomic.AddInt64(&failed, 1)
				case status == http.StatusOK:
					mu.Lock()
					perMember[c.PickedID]++
					perPick[c.PickID]++
					mu.Unlock()
				case status == http.StatusConflict || status == http.StatusPaymentRequired:
					atomic.AddInt64(&rejected, 1)
				default:
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						logger.Get().Warn(ctx, "open rejected",
							logger.Int("status", status), logger.String("body", string(body)))
					}
				}
			}()
		}
	}
	wg.Wait()

	stats.OpensAttempted = int(atomic.LoadInt64(&attempted))
	stats.OpensRejected = int(atomic.LoadInt64(&rejected))
	stats.OpensFailed = int(atomic.LoadInt64(&failed))
	for _, n := range perPick {
		stats.OpensSucceeded += n
	}

	logger.Get().Info(ctx, "open race completed",
		logger.Int("picks", len(targets)),
		logger.Int("succeeded", stats.OpensSucceeded),
		logger.Int("rejected", stats.OpensRejected),
		logger.Int("failed", stats.OpensFailed))

	for id, n := range perPick {
		if n > 1 {
			logger.Get().Error(ctx, "pick opened more than once", logger.String("pick_id", id), logger.Int("opens", n))
		}
	}
	return perMember
}
