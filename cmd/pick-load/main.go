package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/okian/dojo/internal/pickload"
	"github.com/okian/dojo/pkg/logger"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultOpenRacers = 4
	workerMultiplier  = 2
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		members   = flag.String("members", "", "Comma separated member ids")
		setID     = flag.String("set", "", "Question set id")
		questions = flag.String("questions", "", "Comma separated question ids")
		item      = flag.String("item", "GENDER", "Item to open on received picks")
		racers    = flag.Int("racers", defaultOpenRacers, "Concurrent opens per pick")
		maxOpens  = flag.Int("max-opens", 0, "Picks to race opens on, 0 for all")
		workers   = flag.Int("workers", runtime.NumCPU()*workerMultiplier, "Number of concurrent workers")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile   = flag.String("log", "", "Log file for run output")
		verbose   = flag.Bool("verbose", false, "Log every rejected request")
		help      = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		pickload.ShowHelp()
		return
	}

	closer, err := pickload.SetupLogging(*logFile)
	if err != nil {
		os.Stderr.WriteString("failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &pickload.Config{
		BaseURL:       strings.TrimRight(*baseURL, "/"),
		Members:       splitList(*members),
		QuestionSetID: *setID,
		QuestionIDs:   splitList(*questions),
		OpenItem:      *item,
		OpenRacers:    *racers,
		MaxOpens:      *maxOpens,
		Workers:       *workers,
		Timeout:       *timeout,
		Verbose:       *verbose,
	}

	if _, err := pickload.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "load run failed", logger.Error(err))
		closer.Close()
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
