package pickload

import (
	"context"
	"fmt"

	"github.com/okian/dojo/pkg/logger"
)

type ledgerEntry struct {
	Delta   int64  `json:"delta"`
	Balance int64  `json:"balance"`
	Reason  string `json:"reason"`
}

type coinView struct {
	Amount  int64         `json:"amount"`
	Entries []ledgerEntry `json:"entries"`
}

type spaceView struct {
	PickedCount int `json:"picked_count"`
	Picks       []struct {
		Rank  int `json:"rank"`
		Count int `json:"count"`
	} `json:"picks"`
}

// verifyResults checks every member's ledger against the opens they won and
// their space against the picks they received.
func verifyResults(ctx context.Context, config *Config, created []Created, opens map[string]int, stats *Stats) error {
	client := newHTTPClient(config.BaseURL, config.Timeout)

	received := make(map[string]int, len(config.Members))
	for _, c := range created {
		received[c.PickedID]++
	}
	if stats.OpensSucceeded > len(created) {
		return fmt.Errorf("%d opens succeeded for %d picks", stats.OpensSucceeded, len(created))
	}

	for _, member := range config.Members {
		var coin coinView
		if err := client.getJSON(ctx, "/members/me/coin", member, &coin); err != nil {
			return fmt.Errorf("coin of %s: %w", member, err)
		}
		if err := verifyLedger(member, coin, opens[member]); err != nil {
			return err
		}

		var space spaceView
		if err := client.getJSON(ctx, "/members/me/space/picks", member, &space); err != nil {
			return fmt.Errorf("space of %s: %w", member, err)
		}
		if space.PickedCount != received[member] {
			return fmt.Errorf("%s was picked %d times but space reports %d", member, received[member], space.PickedCount)
		}
		if err := verifyRanks(member, space); err != nil {
			return err
		}
		stats.MembersChecked++
	}

	logger.Get().Info(ctx, "verification passed", logger.Int("members", stats.MembersChecked))
	return nil
}

// verifyLedger checks that entries replay to the balance and that the member
// paid exactly once per successful open.
func verifyLedger(member string, coin coinView, opens int) error {
	var sum int64
	spends := 0
	// Entries are newest first.
	for i := len(coin.Entries) - 1; i >= 0; i-- {
		e := coin.Entries[i]
		sum += e.Delta
		if e.Balance != sum {
			return fmt.Errorf("%s ledger entry balance %d does not match running sum %d", member, e.Balance, sum)
		}
		if e.Balance < 0 {
			return fmt.Errorf("%s balance went negative", member)
		}
		if e.Reason == "OPEN_PICK" {
			spends++
		}
	}
	if sum != coin.Amount {
		return fmt.Errorf("%s balance %d does not match ledger sum %d", member, coin.Amount, sum)
	}
	if spends != opens {
		return fmt.Errorf("%s was charged %d times for %d opens", member, spends, opens)
	}
	return nil
}

// verifyRanks checks competition ranking over the space entries.
func verifyRanks(member string, space spaceView) error {
	for i, p := range space.Picks {
		switch {
		case i == 0 && p.Rank != 1:
			return fmt.Errorf("%s top entry has rank %d", member, p.Rank)
		case i == 0:
		case p.Count > space.Picks[i-1].Count:
			return fmt.Errorf("%s space is not ordered by count", member)
		case p.Count == space.Picks[i-1].Count && p.Rank != space.Picks[i-1].Rank:
			return fmt.Errorf("%s tied entries have different ranks", member)
		case p.Count < space.Picks[i-1].Count && p.Rank != i+1:
			return fmt.Errorf("%s entry %d has rank %d", member, i, p.Rank)
		}
	}
	return nil
}
