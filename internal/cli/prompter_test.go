package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/statementworks/recon/internal/engine"
	"github.com/statementworks/recon/internal/model"
	"github.com/statementworks/recon/internal/reconcile"
	"github.com/statementworks/recon/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedReviewStatement(t *testing.T, eng *engine.Engine, db *testutil.TestDB) (*model.Statement, []model.Transaction) {
	t.Helper()
	ctx := context.Background()

	// Active pattern so the Spotify row comes back auto-matched.
	require.NoError(t, db.Storage.CreatePattern(ctx, &model.DescriptionPattern{
		NormalizedKey: "Spotify Premium",
		Type:          model.TypePayment,
		Source:        model.PatternSourceManual,
		Confidence:    0.95,
		IsActive:      true,
	}))

	stmt := &model.Statement{
		Bank:        "garanti",
		Currency:    "TRY",
		PeriodStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	txns := []model.Transaction{
		{Date: stmt.PeriodStart, Description: "ACME LTD Invoice", Amount: -100},
		{Date: stmt.PeriodStart.AddDate(0, 0, 1), Description: "ACME LTD Invoice", Amount: -200},
		{Date: stmt.PeriodStart.AddDate(0, 0, 2), Description: "ACME LTD Invoice", Amount: -300},
		{Date: stmt.PeriodStart.AddDate(0, 0, 3), Description: "Spotify Premium", Amount: -60},
	}

	result, err := eng.ImportStatement(ctx, stmt, txns)
	require.NoError(t, err)
	require.Equal(t, 1, result.AutoMatched)

	saved, err := db.Storage.GetStatementTransactions(ctx, stmt.ID)
	require.NoError(t, err)
	return stmt, saved
}

func TestReviewStatementFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	eng := engine.New(db.Storage)
	stmt, txns := seedReviewStatement(t, eng, db)

	// Classify the first ACME row as transfer, accept the bulk offer, then
	// confirm the Spotify auto-match.
	input := strings.NewReader("6\ny\nc\n")
	var out bytes.Buffer
	p := NewPrompter(eng, db.Storage, input, &out)

	summary, err := p.ReviewStatement(context.Background(), stmt, txns)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Classified)
	assert.Equal(t, 2, summary.BulkApplied)
	assert.Equal(t, 1, summary.Confirmed)
	assert.Equal(t, 0, summary.Skipped)

	ctx := context.Background()
	saved, err := db.Storage.GetStatementTransactions(ctx, stmt.ID)
	require.NoError(t, err)
	for _, txn := range saved[:3] {
		assert.Equal(t, model.TypeTransfer, txn.Type)
		assert.Equal(t, model.StatusCompleted, reconcile.Status(txn))
	}
	assert.True(t, saved[3].MatchConfirmed)

	// Bulk apply with learn creates a pattern for the shared key.
	p2, err := db.Storage.GetPatternByKey(ctx, "ACME LTD Invoice")
	require.NoError(t, err)
	require.NotNil(t, p2)
	assert.Equal(t, model.PatternSourceBulk, p2.Source)
}

func TestReviewStatementQuit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	eng := engine.New(db.Storage)
	stmt, txns := seedReviewStatement(t, eng, db)

	input := strings.NewReader("q\n")
	var out bytes.Buffer
	p := NewPrompter(eng, db.Storage, input, &out)

	summary, err := p.ReviewStatement(context.Background(), stmt, txns)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Classified)
	assert.Equal(t, 0, summary.Confirmed)
}

func TestReviewStatementRejectMatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	eng := engine.New(db.Storage)
	stmt, txns := seedReviewStatement(t, eng, db)

	// Skip the ACME rows, reject the Spotify auto-match, reclassify as other.
	input := strings.NewReader("s\ns\ns\nr\n7\n")
	var out bytes.Buffer
	p := NewPrompter(eng, db.Storage, input, &out)

	summary, err := p.ReviewStatement(context.Background(), stmt, txns)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Skipped)
	assert.Equal(t, 1, summary.Rejected)
	assert.Equal(t, 1, summary.Classified)

	saved, err := db.Storage.GetStatementTransactions(context.Background(), stmt.ID)
	require.NoError(t, err)
	spotify := saved[3]
	assert.Equal(t, model.TypeOther, spotify.Type)
	assert.False(t, spotify.AutoMatched)
}

func TestPromptChoiceRetriesInvalidInput(t *testing.T) {
	input := strings.NewReader("zz\nc\n")
	var out bytes.Buffer
	p := NewPrompter(nil, nil, input, &out)

	choice, err := p.promptChoice(context.Background(), "Choice", []string{"c", "s"})
	require.NoError(t, err)
	assert.Equal(t, "c", choice)
	assert.Contains(t, out.String(), "Valid choices")
}
