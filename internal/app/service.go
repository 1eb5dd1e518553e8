// Package service composes the pick engine: pick creation, item reveals,
// ranked views, the coin ledger and the pick schedule.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	notifyqueue "github.com/okian/dojo/internal/adapters/mq/queue"
	workerpool "github.com/okian/dojo/internal/adapters/mq/worker"
	"github.com/okian/dojo/internal/adapters/repository"
	"github.com/okian/dojo/internal/domain/dedupe"
	"github.com/okian/dojo/internal/domain/ledger"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/reveal"
	"github.com/okian/dojo/internal/domain/schedule"
	"github.com/okian/dojo/pkg/logger"
	"github.com/okian/dojo/pkg/metrics"
)

const (
	defaultSolvedPickCoin    = 10
	defaultInitialCoin       = 200
	defaultRankSize          = 3
	defaultPageSize          = 10
	defaultMaxPageSize       = 100
	defaultLookupConcurrency = 8
	defaultQueueSize         = 10_000
	defaultWorkerCount       = 4
	defaultDedupeSize        = 50_000
)

// MemberDirectory looks up member profiles.
type MemberDirectory interface {
	Member(ctx context.Context, id model.MemberID) (model.Member, error)
}

// QuestionDirectory looks up questions and question sets.
type QuestionDirectory interface {
	Question(ctx context.Context, id model.QuestionID) (model.Question, error)
	QuestionSet(ctx context.Context, id model.QuestionSetID) (model.QuestionSet, error)
	NextReadyQuestionSet(ctx context.Context) (model.QuestionSet, error)
}

// ImageResolver turns an image id into a URL.
type ImageResolver interface {
	Image(ctx context.Context, id model.ImageID) (model.Image, error)
}

// Dispatcher delivers picked notifications.
type Dispatcher = workerpool.Dispatcher

// Service implements the pick engine.
type Service struct {
	mu sync.RWMutex

	store     repository.Store
	members   MemberDirectory
	questions QuestionDirectory
	images    ImageResolver
	policy    *reveal.Policy
	ledger    *ledger.Ledger
	schedule  *schedule.Resolver
	deduper   dedupe.Deduper

	dispatcher Dispatcher
	queue      notifyqueue.Queue
	pool       *workerpool.Pool

	solvedPickCoin    int64
	initialCoin       int64
	rankSize          int
	maxPageSize       int
	lookupConcurrency int
	queueSize         int
	workerCount       int
	dedupeSize        int

	now   func() time.Time
	newID func() string

	started bool
	logger  logger.Logger
}

// New constructs a Service. Collaborators not supplied through options must
// be set before use; see the With* options.
func New(opts ...Option) *Service {
	s := &Service{
		policy:            reveal.New(),
		schedule:          schedule.New(nil, nil),
		solvedPickCoin:    defaultSolvedPickCoin,
		initialCoin:       defaultInitialCoin,
		rankSize:          defaultRankSize,
		maxPageSize:       defaultMaxPageSize,
		lookupConcurrency: defaultLookupConcurrency,
		queueSize:         defaultQueueSize,
		workerCount:       defaultWorkerCount,
		dedupeSize:        defaultDedupeSize,
		now:               time.Now,
		newID:             uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.logger == nil {
		s.logger = logger.Named("pick")
	}
	if s.deduper == nil {
		s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	}
	s.ledger = ledger.New(s.newID, ledger.WithClock(s.now))
	return s
}

// Start launches the notification workers. Calling it twice is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.dispatcher != nil {
		q := notifyqueue.NewInMemoryQueue(notifyqueue.WithCapacity(s.queueSize))
		s.queue = q
		s.pool = workerpool.NewPool(s.workerCount, q, s.dispatcher)
		// Workers outlive the request that started them; Stop ends them.
		s.pool.Start(context.WithoutCancel(ctx))
	}
	s.started = true
	s.logger.Info(ctx, "pick service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int64("solved_pick_coin", s.solvedPickCoin),
		logger.Int("rank_size", s.rankSize),
	)
	return nil
}

// Stop drains pending notifications until ctx ends.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping pick service...")
	var err error
	if s.pool != nil {
		err = s.pool.Shutdown(ctx)
	}
	s.queue, s.pool = nil, nil
	s.started = false
	s.logger.Info(ctx, "pick service stopped")
	return err
}

// OpenAccount creates a member's coin account and grants the initial coins
// in one transaction.
// ErrAccountExists is returned unchanged for members that already have one.
func (s *Service) OpenAccount(ctx context.Context, member model.MemberID) (model.Balance, error) {
	var b model.Balance
	err := s.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.OpenAccount(ctx, model.Balance{MemberID: member, UpdatedAt: s.now()}); err != nil {
			return err
		}
		var err error
		b, err = s.ledger.Earn(ctx, tx, member, s.initialCoin, model.ReasonInitialGrant)
		return err
	})
	if err != nil {
		return model.Balance{}, err
	}
	metrics.RecordCoinsEarned(s.initialCoin)
	return b, nil
}

// Coin is a member's balance and history.
type Coin struct {
	Balance model.Balance
	Entries []model.LedgerEntry // newest first
}

// Coin returns the member's balance and ledger entries.
func (s *Service) Coin(ctx context.Context, member model.MemberID) (Coin, error) {
	b, err := s.store.Balance(ctx, member)
	if err != nil {
		return Coin{}, err
	}
	entries, err := s.store.LedgerEntries(ctx, member)
	if err != nil {
		return Coin{}, err
	}
	return Coin{Balance: b, Entries: entries}, nil
}

// NextPickTime returns when the next daily pick window opens.
func (s *Service) NextPickTime(_ context.Context) (time.Time, error) {
	return s.schedule.Next(s.now())
}

// NextQuestionSet returns the next READY question set.
func (s *Service) NextQuestionSet(ctx context.Context) (model.QuestionSet, error) {
	return s.questions.NextReadyQuestionSet(ctx)
}

// GetStats reports runtime state for the health endpoint.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := map[string]any{
		"started":      s.started,
		"workers":      s.workerCount,
		"dedupe_size":  s.deduper.Size(),
		"rank_size":    s.rankSize,
		"pick_windows": len(s.schedule.Times()),
	}
	if s.queue != nil {
		stats["notify_queue_length"] = s.queue.Len(ctx)
	}
	return stats
}
