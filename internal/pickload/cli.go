package pickload

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/dojo/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging sends log output to both stdout and a file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) (io.Closer, error) {
	if logFile == "" {
		logFile = "pick_load_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file, nil
}

// ShowHelp prints usage information for the load tool.
func ShowHelp() {
	os.Stdout.WriteString(`Pick Load Tool
==============

Drives concurrent picks and reveals against a running service, then checks
every member's coin ledger and space ranking.

Usage:
  go run ./cmd/pick-load [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -members string
        Comma separated member ids with open accounts
  -set string
        Question set id the picks answer
  -questions string
        Comma separated question ids in the set
  -item string
        Item to open on received picks (default "GENDER")
  -racers int
        Concurrent opens per pick (default 4)
  -max-opens int
        Picks to race opens on, 0 for all (default 0)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file for run output (default: pick_load_TIMESTAMP.log)
  -verbose
        Log every rejected request
  -help
        Show this help message

Example:
  go run ./cmd/pick-load -members m-minjun,m-seoyeon,m-jiho -set set-1 -questions q-1,q-2
`)
}
