package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/dojo/internal/adapters/directory"
	"github.com/okian/dojo/internal/adapters/http/api"
	"github.com/okian/dojo/internal/adapters/http/swagger"
	"github.com/okian/dojo/internal/adapters/notify"
	"github.com/okian/dojo/internal/adapters/repository"
	app "github.com/okian/dojo/internal/app"
	"github.com/okian/dojo/internal/config"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/reveal"
	"github.com/okian/dojo/internal/domain/schedule"
	"github.com/okian/dojo/pkg/logger"
	"github.com/okian/dojo/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// catalog is where members, questions and images are read and seeded.
type catalog interface {
	app.MemberDirectory
	app.QuestionDirectory
	app.ImageResolver
	directory.Writer
}

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger is not configured yet.
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "dojo exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	store, dir, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	svc, err := newService(cfg, store, dir, log)
	if err != nil {
		return err
	}
	if err := seed(ctx, cfg.SeedFile, dir, svc, log); err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error(ctx, "notification drain incomplete", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// openStore selects persistence by driver. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, catalog, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return repository.NewMemoryStore(), directory.NewMemory(), func() {}, nil
	case config.StorePostgres:
		db, err := repository.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		closeDB := func() { _ = repository.Close(db) }
		return repository.NewGormStore(db), repository.NewGormDirectory(db), closeDB, nil
	default:
		return nil, nil, nil, fmt.Errorf("%w: %q", repository.ErrUnknownDriver, cfg.StoreDriver)
	}
}

func newService(cfg *config.Config, store repository.Store, dir catalog, log logger.Logger) (*app.Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	times, err := cfg.Times()
	if err != nil {
		return nil, err
	}
	costs, err := cfg.Costs()
	if err != nil {
		return nil, err
	}
	policy := reveal.New(
		reveal.WithCosts(costs),
		reveal.WithProfileImages(reveal.ProfileImages{
			Male:    cfg.ProfileImages.Male,
			Female:  cfg.ProfileImages.Female,
			Unknown: cfg.ProfileImages.Unknown,
		}),
		reveal.WithPlatformImages(cfg.Platforms()),
	)

	return app.New(
		app.WithLogger(log.Named("pick")),
		app.WithStore(store),
		app.WithMemberDirectory(dir),
		app.WithQuestionDirectory(dir),
		app.WithImageResolver(dir),
		app.WithDispatcher(notify.NewLogDispatcher(log.Named("notify"))),
		app.WithPolicy(policy),
		app.WithSchedule(schedule.New(times, loc)),
		app.WithSolvedPickCoin(cfg.SolvedPickCoin),
		app.WithInitialCoin(cfg.InitialCoin),
		app.WithRankSize(cfg.RankSize),
		app.WithMaxPageSize(cfg.MaxPageSize),
		app.WithQueueSize(cfg.NotifyQueueSize),
		app.WithWorkerCount(cfg.NotifyWorkerCount),
		app.WithDedupeSize(cfg.DedupeSize),
	), nil
}

// seed loads the seed file into the catalog and opens an account for every
// seeded member. Members that already have an account keep it.
func seed(ctx context.Context, path string, dir catalog, svc *app.Service, log logger.Logger) error {
	if path == "" {
		return nil
	}
	s, err := directory.LoadSeed(path)
	if err != nil {
		return err
	}
	if err := s.Apply(ctx, dir); err != nil {
		return err
	}
	opened := 0
	for _, id := range s.MemberIDs() {
		_, err := svc.OpenAccount(ctx, id)
		switch {
		case err == nil:
			opened++
		case errors.Is(err, model.ErrAccountExists):
		default:
			return fmt.Errorf("open account %s: %w", id, err)
		}
	}
	log.Info(ctx, "seed applied",
		logger.String("file", path),
		logger.Int("members", len(s.Members)),
		logger.Int("questions", len(s.Questions)),
		logger.Int("accounts_opened", opened),
	)
	return nil
}

func newMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(ctx, svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(ctx context.Context, svc *app.Service) {
	stats := svc.GetStats(ctx)
	if queueLen, ok := stats["notify_queue_length"].(int); ok {
		metrics.UpdateNotifyQueueSize(queueLen)
	}
}

var (
	_ catalog = (*directory.Memory)(nil)
	_ catalog = (*repository.GormDirectory)(nil)
)
