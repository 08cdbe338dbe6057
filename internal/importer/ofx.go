package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/statementworks/recon/internal/model"
)

// OFXParser reads OFX/QFX statement files.
type OFXParser struct{}

// NewOFXParser creates a new OFX statement parser.
func NewOFXParser() *OFXParser {
	return &OFXParser{}
}

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX fixes common formatting issues in bank-exported OFX files:
// leading blank lines, mixed-case SEVERITY values, and SGML-style tags
// missing their closing bracket.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	content = tagFixRegex.ReplaceAllString(content, "$1>")
	return content
}

// Parse reads an OFX/QFX statement. Only the first bank statement in the file
// is used; additional statements are logged and skipped.
func (p *OFXParser) Parse(ctx context.Context, r io.Reader) (*ParsedStatement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var parsed *ParsedStatement
	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		if parsed != nil {
			slog.Warn("skipping extra statement in OFX file",
				"account", stmt.BankAcctFrom.AcctID)
			continue
		}
		parsed = p.convertStatement(stmt)
	}
	if parsed == nil {
		return nil, fmt.Errorf("OFX file contains no bank statement")
	}

	slog.Info("parsed OFX statement",
		"account", parsed.Statement.AccountNo,
		"currency", parsed.Statement.Currency,
		"transactions", len(parsed.Transactions))

	return parsed, nil
}

func (p *OFXParser) convertStatement(stmt *ofxgo.StatementResponse) *ParsedStatement {
	parsed := &ParsedStatement{
		Statement: &model.Statement{
			Currency:  stmt.CurDef.String(),
			AccountNo: string(stmt.BankAcctFrom.AcctID),
		},
	}

	balance, _ := stmt.BalAmt.Float64()
	parsed.Statement.ClosingBalance = balance

	if stmt.BankTranList == nil {
		return parsed
	}

	parsed.Statement.PeriodStart = stmt.BankTranList.DtStart.Time
	parsed.Statement.PeriodEnd = stmt.BankTranList.DtEnd.Time

	for _, ofxTx := range stmt.BankTranList.Transactions {
		amount, _ := ofxTx.TrnAmt.Float64()
		parsed.Transactions = append(parsed.Transactions, model.Transaction{
			Date:        ofxTx.DtPosted.Time,
			Description: ofxDescription(ofxTx),
			Amount:      amount,
		})
	}
	return parsed
}

// ofxDescription picks the most useful description field. PAYEE carries the
// cleanest name when present; MEMO often has more detail than a bare NAME.
func ofxDescription(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}
	name := strings.TrimSpace(string(tx.Name))
	if memo := strings.TrimSpace(string(tx.Memo)); memo != "" && len(memo) > len(name) {
		return memo
	}
	return name
}
