// Package importer reads bank statement files into statements and
// transactions ready for the reconciliation engine.
package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/statementworks/recon/internal/common"
	"github.com/statementworks/recon/internal/model"
)

// ParsedStatement is the output of a file parser: the statement metadata and
// its transactions in original file order. Sequence numbers and hashes are
// assigned later by the engine.
type ParsedStatement struct {
	Statement    *model.Statement
	Transactions []model.Transaction
}

// Parser reads a single statement file format.
type Parser interface {
	Parse(ctx context.Context, r io.Reader) (*ParsedStatement, error)
}

// Parse reads one statement from r. The filename's extension picks the
// parser; bank and currency override whatever the file itself declares.
func Parse(ctx context.Context, r io.Reader, filename, bank, currency string) (*ParsedStatement, error) {
	var parser Parser
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		parser = NewCSVParser()
	case ".ofx", ".qfx":
		parser = NewOFXParser()
	default:
		return nil, fmt.Errorf("%s: %w", filename, common.ErrUnsupportedFormat)
	}

	parsed, err := parser.Parse(ctx, r)
	if err != nil {
		return nil, err
	}

	if bank != "" {
		parsed.Statement.Bank = bank
	}
	if currency != "" {
		parsed.Statement.Currency = currency
	}
	fillPeriod(parsed)

	return parsed, nil
}

// ParseFile parses one statement file from disk.
func ParseFile(ctx context.Context, path, bank, currency string) (*ParsedStatement, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open statement file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	return Parse(ctx, file, path, bank, currency)
}

// fillPeriod derives the statement period and balances from the transactions
// when the file format does not declare them.
func fillPeriod(p *ParsedStatement) {
	if len(p.Transactions) == 0 {
		return
	}
	stmt := p.Statement
	first, last := p.Transactions[0], p.Transactions[len(p.Transactions)-1]

	if stmt.PeriodStart.IsZero() || stmt.PeriodEnd.IsZero() {
		start, end := first.Date, first.Date
		for _, txn := range p.Transactions[1:] {
			if txn.Date.Before(start) {
				start = txn.Date
			}
			if txn.Date.After(end) {
				end = txn.Date
			}
		}
		stmt.PeriodStart, stmt.PeriodEnd = start, end
	}

	if stmt.ClosingBalance == 0 {
		stmt.ClosingBalance = last.Balance
	}
	if stmt.OpeningBalance == 0 && first.Balance != 0 {
		stmt.OpeningBalance = first.Balance - first.Amount
	}
}
