package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/webern/moneybags/internal/csvio"
	interfaces "github.com/webern/moneybags/internal/interfaces"
	"github.com/webern/moneybags/internal/ledger"
	"github.com/webern/moneybags/internal/models"
	"github.com/webern/moneybags/internal/models/events"
	"github.com/webern/moneybags/internal/storage/memory"
)

// Processor drives one settlement run: it drains an ordered CSV event stream
// through the ledger engine and writes the final account summary.
//
// Per-event failures (malformed rows, rejected events) go to the diagnostic
// channel and processing continues; only an unreadable input stream aborts
// the run.
type Processor struct {
	logger   *zap.Logger
	notifier interfaces.Notifier
	runID    string
}

// New creates a Processor. The notifier may be nil, in which case rejections
// are only logged.
func New(logger *zap.Logger, notifier interfaces.Notifier) *Processor {
	return &Processor{
		logger:   logger,
		notifier: notifier,
		runID:    uuid.New().String(),
	}
}

// Run processes every event in input, in order, and writes the summary CSV
// for all accounts seen to output. Nothing is written to output until the
// whole stream has been consumed.
func (p *Processor) Run(ctx context.Context, input io.Reader, output io.Writer) error {
	engine := ledger.NewEngine(memory.NewTransactionStore())
	reader := csvio.NewReader(input)
	log := p.logger.With(zap.String("run_id", p.runID))

	var applied, rejected int
	for {
		event, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if !errors.Is(err, csvio.ErrMalformedRow) {
				return fmt.Errorf("read input: %w", err)
			}
			rejected++
			log.Warn("skipping malformed row", zap.Error(err))
			p.notifyRejected(ctx, log, models.Event{}, err)
			continue
		}

		if err := engine.Apply(event); err != nil {
			rejected++
			log.Warn("event rejected",
				zap.String("kind", string(event.Kind)),
				zap.Uint32("client", event.Client),
				zap.Uint32("tx", event.Tx),
				zap.Error(err))
			p.notifyRejected(ctx, log, event, err)
			continue
		}
		applied++

		if event.Kind == models.KindChargeback {
			log.Info("account frozen",
				zap.Uint32("client", event.Client),
				zap.Uint32("tx", event.Tx))
			p.notify(ctx, log, events.AccountFrozen{
				RunID:      p.runID,
				Client:     event.Client,
				Tx:         event.Tx,
				OccurredAt: time.Now().UTC(),
			})
		}
	}

	accounts := engine.Accounts()
	log.Info("run complete",
		zap.Int("applied", applied),
		zap.Int("rejected", rejected),
		zap.Int("accounts", len(accounts)))

	return csvio.NewWriter(output).WriteAccounts(accounts)
}

func (p *Processor) notifyRejected(ctx context.Context, log *zap.Logger, event models.Event, cause error) {
	p.notify(ctx, log, events.EventRejected{
		RunID:      p.runID,
		Kind:       string(event.Kind),
		Client:     event.Client,
		Tx:         event.Tx,
		Reason:     cause.Error(),
		OccurredAt: time.Now().UTC(),
	})
}

// notify publishes best-effort: a broken notification channel must not stop
// settlement.
func (p *Processor) notify(ctx context.Context, log *zap.Logger, event any) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Publish(ctx, event); err != nil {
		log.Warn("publish notification", zap.Error(err))
	}
}
