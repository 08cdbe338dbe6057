package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/statementworks/recon/internal/model"
)

// csvDateLayouts covers the date formats exported by the supported banks.
var csvDateLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2006-01-02",
}

// CSVParser reads bank statement exports with a header row and
// date, description, amount, balance columns.
type CSVParser struct{}

// NewCSVParser creates a new CSV statement parser.
func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// Parse reads a statement CSV. The header row decides column positions;
// unrecognized headers fall back to the date, description, amount, balance
// order.
func (p *CSVParser) Parse(ctx context.Context, r io.Reader) (*ParsedStatement, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	cols := columnIndexes(header)

	parsed := &ParsedStatement{Statement: &model.Statement{}}
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV record: %w", err)
		}
		line++
		if isBlankRecord(record) {
			continue
		}

		txn, err := p.parseRecord(record, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		parsed.Transactions = append(parsed.Transactions, *txn)
	}

	return parsed, nil
}

func (p *CSVParser) parseRecord(record []string, cols columnMap) (*model.Transaction, error) {
	if len(record) <= cols.max() {
		return nil, fmt.Errorf("expected at least %d columns, got %d", cols.max()+1, len(record))
	}

	date, err := parseDate(record[cols.date])
	if err != nil {
		return nil, err
	}

	amount, err := parseAmount(record[cols.amount])
	if err != nil {
		return nil, fmt.Errorf("could not parse amount %q: %w", record[cols.amount], err)
	}

	var balance float64
	if cols.balance >= 0 && cols.balance < len(record) && strings.TrimSpace(record[cols.balance]) != "" {
		balance, err = parseAmount(record[cols.balance])
		if err != nil {
			return nil, fmt.Errorf("could not parse balance %q: %w", record[cols.balance], err)
		}
	}

	return &model.Transaction{
		Date:        date,
		Description: strings.TrimSpace(record[cols.description]),
		Amount:      amount,
		Balance:     balance,
	}, nil
}

type columnMap struct {
	date        int
	description int
	amount      int
	balance     int
}

func (c columnMap) max() int {
	m := c.date
	for _, v := range []int{c.description, c.amount} {
		if v > m {
			m = v
		}
	}
	return m
}

// columnIndexes maps header names to column positions. Unknown headers keep
// the default date, description, amount, balance layout.
func columnIndexes(header []string) columnMap {
	cols := columnMap{date: 0, description: 1, amount: 2, balance: 3}
	if len(header) < 4 {
		cols.balance = -1
	}

	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date", "tarih", "transaction date":
			cols.date = i
		case "description", "aciklama", "açıklama", "narration":
			cols.description = i
		case "amount", "tutar":
			cols.amount = i
		case "balance", "bakiye":
			cols.balance = i
		}
	}
	return cols
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range csvDateLayouts {
		if date, err := time.Parse(layout, value); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse date %q", value)
}

// parseAmount accepts both decimal conventions: "1,234.56" and the
// Turkish-bank style "1.234,56".
func parseAmount(value string) (float64, error) {
	value = strings.TrimSpace(value)

	lastComma := strings.LastIndex(value, ",")
	lastDot := strings.LastIndex(value, ".")
	if lastComma > lastDot {
		// Comma is the decimal separator, dots group thousands.
		value = strings.ReplaceAll(value, ".", "")
		value = strings.Replace(value, ",", ".", 1)
	} else {
		value = strings.ReplaceAll(value, ",", "")
	}

	return strconv.ParseFloat(value, 64)
}

func isBlankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
