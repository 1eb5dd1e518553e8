// Package notify delivers picked notifications.
package notify

import (
	"context"

	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/pkg/logger"
)

// LogDispatcher writes each notification to the log. It stands in for a push
// gateway.
type LogDispatcher struct {
	logger logger.Logger
}

// NewLogDispatcher creates a dispatcher that logs through l, or the global
// "notify" logger when l is nil.
func NewLogDispatcher(l logger.Logger) *LogDispatcher {
	if l == nil {
		l = logger.Named("notify")
	}
	return &LogDispatcher{logger: l}
}

func (d *LogDispatcher) NotifyPicked(ctx context.Context, n model.PickedNotification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.logger.Info(ctx, "member picked",
		logger.String("pick_id", string(n.PickID)),
		logger.String("picked_id", string(n.PickedID)),
		logger.String("question_id", string(n.QuestionID)),
		logger.Time("created_at", n.CreatedAt),
	)
	return nil
}
