package pickload

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/okian/dojo/pkg/logger"
)

// generatePicks has every member answer every question once, picking a
// random other member. Each answer is submitted twice so the service has to
// reject the second one.
func generatePicks(ctx context.Context, config *Config, stats *Stats) ([]Submission, error) {
	if len(config.Members) < 2 {
		return nil, fmt.Errorf("need at least two members, got %d", len(config.Members))
	}
	if len(config.QuestionIDs) == 0 {
		return nil, fmt.Errorf("no questions configured")
	}

	subs := make([]Submission, 0, 2*len(config.Members)*len(config.QuestionIDs))
	for i, picker := range config.Members {
		for _, q := range config.QuestionIDs {
			// Any index but the picker's own.
			j := rand.IntN(len(config.Members) - 1)
			if j >= i {
				j++
			}
			s := Submission{PickerID: picker, Request: PickRequest{
				QuestionSheetID: "load-" + picker,
				QuestionSetID:   config.QuestionSetID,
				QuestionID:      q,
				PickedID:        config.Members[j],
			}}
			subs = append(subs, s, s)
		}
	}
	rand.Shuffle(len(subs), func(a, b int) { subs[a], subs[b] = subs[b], subs[a] })

	stats.PicksGenerated = len(subs)
	logger.Get().Info(ctx, "picks generated",
		logger.Int("submissions", len(subs)),
		logger.Int("members", len(config.Members)),
		logger.Int("questions", len(config.QuestionIDs)))
	return subs, nil
}
