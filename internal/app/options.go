package service

import (
	"time"

	"github.com/okian/dojo/internal/adapters/repository"
	"github.com/okian/dojo/internal/domain/dedupe"
	"github.com/okian/dojo/internal/domain/reveal"
	"github.com/okian/dojo/internal/domain/schedule"
	"github.com/okian/dojo/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the pick and coin store. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithMemberDirectory sets where member profiles come from.
func WithMemberDirectory(d MemberDirectory) Option {
	return func(s *Service) {
		if d != nil {
			s.members = d
		}
	}
}

// WithQuestionDirectory sets where questions and sets come from.
func WithQuestionDirectory(d QuestionDirectory) Option {
	return func(s *Service) {
		if d != nil {
			s.questions = d
		}
	}
}

// WithImageResolver sets the image lookup.
func WithImageResolver(r ImageResolver) Option {
	return func(s *Service) {
		if r != nil {
			s.images = r
		}
	}
}

// WithDispatcher sets the notification dispatcher. Without one, picked
// notifications are dropped.
func WithDispatcher(d Dispatcher) Option {
	return func(s *Service) {
		if d != nil {
			s.dispatcher = d
		}
	}
}

// WithPolicy sets reveal costs and images.
func WithPolicy(p *reveal.Policy) Option {
	return func(s *Service) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithSchedule sets the daily pick windows.
func WithSchedule(r *schedule.Resolver) Option {
	return func(s *Service) {
		if r != nil {
			s.schedule = r
		}
	}
}

// WithDeduper replaces the in-flight create guard.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *Service) {
		if d != nil {
			s.deduper = d
		}
	}
}

// WithDedupeSize bounds the default create guard.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSolvedPickCoin sets the coins a picker earns per real pick.
func WithSolvedPickCoin(coin int64) Option {
	return func(s *Service) {
		if coin >= 0 {
			s.solvedPickCoin = coin
		}
	}
}

// WithInitialCoin sets the grant for new accounts.
func WithInitialCoin(coin int64) Option {
	return func(s *Service) {
		if coin >= 0 {
			s.initialCoin = coin
		}
	}
}

// WithRankSize sets how many entries space views keep.
func WithRankSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.rankSize = n
		}
	}
}

// WithMaxPageSize caps page sizes of paginated views.
func WithMaxPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPageSize = n
		}
	}
}

// WithLookupConcurrency bounds parallel directory lookups per request.
func WithLookupConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.lookupConcurrency = n
		}
	}
}

// WithQueueSize sets the notification queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of notification workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets how pick and ledger entry ids are made.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
