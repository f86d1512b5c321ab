package csvio

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/webern/moneybags/internal/models"
)

// Writer renders final account snapshots as CSV with columns
// `client, available, held, total, locked`.
type Writer struct {
	csv *csv.Writer
}

// NewWriter wraps w in an account writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteAccounts writes a header row followed by one row per account, in the
// order given. Decimal fields are rendered in minimal canonical form so the
// output for a fixed set of balances is byte-identical across runs.
func (w *Writer) WriteAccounts(accounts []models.Account) error {
	if err := w.csv.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return err
	}
	for _, account := range accounts {
		record := []string{
			strconv.FormatUint(uint64(account.Client), 10),
			formatDecimal(account.Available),
			formatDecimal(account.Held),
			formatDecimal(account.Total),
			strconv.FormatBool(account.Locked),
		}
		if err := w.csv.Write(record); err != nil {
			return err
		}
	}
	w.csv.Flush()
	return w.csv.Error()
}

// formatDecimal strips trailing fractional zeros so that equal values always
// render identically regardless of the precision they were computed at.
func formatDecimal(d decimal.Decimal) string {
	s := d.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
