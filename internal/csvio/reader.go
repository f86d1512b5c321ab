package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/webern/moneybags/internal/models"
)

// ErrMalformedRow marks a row that could not be parsed into an event. The
// caller skips such rows and keeps reading; the row never reaches the engine.
var ErrMalformedRow = errors.New("malformed row")

// Reader lazily parses transaction events from CSV input with columns
// `type, client, tx, amount`. The first row is the header and is discarded.
type Reader struct {
	csv    *csv.Reader
	header bool
	line   int
}

// NewReader wraps r in an event reader.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	// Dispute/resolve/chargeback rows may omit the amount column entirely.
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return &Reader{csv: cr}
}

// Read returns the next event in the input. It returns io.EOF at the end of
// the stream, an error wrapping ErrMalformedRow for a bad row (recoverable),
// and the underlying error when the stream itself cannot be read (fatal).
func (r *Reader) Read() (models.Event, error) {
	if !r.header {
		r.header = true
		r.line++
		if _, err := r.csv.Read(); err != nil {
			return models.Event{}, r.classify(err)
		}
	}

	r.line++
	record, err := r.csv.Read()
	if err != nil {
		return models.Event{}, r.classify(err)
	}
	return r.parse(record)
}

// classify maps CSV-level errors: EOF passes through, parse errors become
// recoverable malformed rows, anything else (a broken stream) stays fatal.
func (r *Reader) classify(err error) error {
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Errorf("line %d: %v: %w", r.line, err, ErrMalformedRow)
	}
	return err
}

func (r *Reader) parse(record []string) (models.Event, error) {
	if len(record) < 3 {
		return models.Event{}, fmt.Errorf("line %d: expected at least 3 fields, got %d: %w",
			r.line, len(record), ErrMalformedRow)
	}

	kind, err := models.ParseEventKind(record[0])
	if err != nil {
		return models.Event{}, fmt.Errorf("line %d: %v: %w", r.line, err, ErrMalformedRow)
	}

	client, err := strconv.ParseUint(strings.TrimSpace(record[1]), 10, 32)
	if err != nil {
		return models.Event{}, fmt.Errorf("line %d: invalid client id %q: %w", r.line, record[1], ErrMalformedRow)
	}

	tx, err := strconv.ParseUint(strings.TrimSpace(record[2]), 10, 32)
	if err != nil {
		return models.Event{}, fmt.Errorf("line %d: invalid tx id %q: %w", r.line, record[2], ErrMalformedRow)
	}

	// A blank or missing amount is zero. Dispute, resolve and chargeback rows
	// have no amount of their own.
	amount := decimal.Zero
	if len(record) >= 4 {
		if raw := strings.TrimSpace(record[3]); raw != "" {
			amount, err = decimal.NewFromString(raw)
			if err != nil {
				return models.Event{}, fmt.Errorf("line %d: invalid amount %q: %w", r.line, record[3], ErrMalformedRow)
			}
		}
	}
	if amount.IsNegative() {
		return models.Event{}, fmt.Errorf("line %d: negative amount %s: %w", r.line, amount, ErrMalformedRow)
	}

	return models.Event{
		Kind:   kind,
		Client: uint32(client),
		Tx:     uint32(tx),
		Amount: amount,
	}, nil
}
