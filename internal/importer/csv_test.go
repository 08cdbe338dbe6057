package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVParserParse(t *testing.T) {
	input := strings.Join([]string{
		"Date,Description,Amount,Balance",
		`01/03/2024,ACME LTD Invoice 123,"1.250,00","10.250,00"`,
		`05/03/2024,Netflix Subscription,-42.50,"10.207,50"`,
		",,,",
		`15/03/2024,Rent March,"-3.000,00","7.207,50"`,
	}, "\n")

	parsed, err := NewCSVParser().Parse(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, parsed.Transactions, 3)

	first := parsed.Transactions[0]
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "ACME LTD Invoice 123", first.Description)
	assert.InDelta(t, 1250.00, first.Amount, 0.001)
	assert.InDelta(t, 10250.00, first.Balance, 0.001)

	assert.InDelta(t, -42.50, parsed.Transactions[1].Amount, 0.001)
	assert.InDelta(t, -3000.00, parsed.Transactions[2].Amount, 0.001)
}

func TestCSVParserHeaderOrder(t *testing.T) {
	input := strings.Join([]string{
		"Amount,Date,Balance,Description",
		`-10.00,02/03/2024,90.00,Bank Fee`,
	}, "\n")

	parsed, err := NewCSVParser().Parse(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, parsed.Transactions, 1)

	txn := parsed.Transactions[0]
	assert.Equal(t, "Bank Fee", txn.Description)
	assert.InDelta(t, -10.00, txn.Amount, 0.001)
	assert.InDelta(t, 90.00, txn.Balance, 0.001)
}

func TestCSVParserErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "bad date",
			input: "Date,Description,Amount,Balance\nnot-a-date,X,1.00,1.00",
		},
		{
			name:  "bad amount",
			input: "Date,Description,Amount,Balance\n01/03/2024,X,abc,1.00",
		},
		{
			name:  "too few columns",
			input: "Date,Description,Amount,Balance\n01/03/2024,X",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCSVParser().Parse(context.Background(), strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1.234,56", 1234.56},
		{"1,234.56", 1234.56},
		{"-3.000,00", -3000.00},
		{"42.50", 42.50},
		{"42,50", 42.50},
		{"100", 100},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestFillPeriod(t *testing.T) {
	input := strings.Join([]string{
		"Date,Description,Amount,Balance",
		`05/03/2024,A,-10.00,90.00`,
		`01/03/2024,B,-20.00,110.00`,
		`20/03/2024,C,-30.00,60.00`,
	}, "\n")

	parsed, err := NewCSVParser().Parse(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	fillPeriod(parsed)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), parsed.Statement.PeriodStart)
	assert.Equal(t, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), parsed.Statement.PeriodEnd)
	assert.InDelta(t, 60.00, parsed.Statement.ClosingBalance, 0.001)
	assert.InDelta(t, 100.00, parsed.Statement.OpeningBalance, 0.001)
}
