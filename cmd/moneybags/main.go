package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/webern/moneybags/internal/config"
	"github.com/webern/moneybags/internal/events/kafka"
	interfaces "github.com/webern/moneybags/internal/interfaces"
	"github.com/webern/moneybags/internal/processor"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s <csv-file>\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(),
			"Processes the transactions found in <csv-file> and writes a CSV summary\nof the final account balances to stdout.")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var notifier interfaces.Notifier
	if len(cfg.KafkaBrokers) > 0 {
		n := kafka.NewNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer n.Close()
		notifier = n
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("unable to open file '%s': %w", path, err)
	}
	defer f.Close()

	return processor.New(logger, notifier).Run(context.Background(), f, os.Stdout)
}

// newLogger builds the diagnostic logger. It writes to stderr only; stdout
// belongs to the summary CSV.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	return cfg.Build()
}
