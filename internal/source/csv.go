package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/unobtuse/ledgerscope/internal/domain"
)

// CSV column headers expected by LoadTransactions. category is optional.
var requiredColumns = []string{"id", "date", "amount", "description"}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// LoadTransactions reads debit transactions from a CSV file with headers
// id,date,amount,description[,category]. Amounts must be positive debit
// magnitudes. Rows come back sorted ascending by date, which is the
// order the detection engine requires.
func LoadTransactions(path string) ([]domain.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadTransactions: open %q: %w", path, err)
	}
	defer f.Close()

	txs, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("LoadTransactions: %q: %w", path, err)
	}
	return txs, nil
}

// ReadTransactions parses transactions from CSV data.
func ReadTransactions(rd io.Reader) ([]domain.Transaction, error) {
	r := csv.NewReader(rd)
	r.TrimLeadingSpace = true

	headers, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := toIndex(headers)
	for _, k := range requiredColumns {
		if _, ok := col[k]; !ok {
			return nil, fmt.Errorf("missing column: %s", k)
		}
	}
	catIdx, hasCategory := col["category"]

	var txs []domain.Transaction
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		id := rec[col["id"]]

		date, err := parseDateFlexible(rec[col["date"]])
		if err != nil {
			return nil, fmt.Errorf("row id=%s date parse: %w", id, err)
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(rec[col["amount"]]))
		if err != nil {
			return nil, fmt.Errorf("row id=%s amount parse: %w", id, err)
		}
		if !amount.IsPositive() {
			return nil, fmt.Errorf("row id=%s amount must be a positive debit magnitude, got %s", id, amount)
		}

		tx := domain.Transaction{
			ID:             id,
			Date:           date,
			Amount:         amount,
			RawDescription: rec[col["description"]],
		}
		if hasCategory {
			tx.Category = rec[catIdx]
		}
		txs = append(txs, tx)
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date)
	})

	return txs, nil
}

func toIndex(headers []string) map[string]int {
	col := make(map[string]int, len(headers))
	for i, h := range headers {
		col[strings.TrimSpace(h)] = i
	}
	return col
}

func parseDateFlexible(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}
