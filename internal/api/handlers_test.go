package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/statementworks/recon/internal/engine"
	"github.com/statementworks/recon/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *testutil.TestDB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	srv := NewServer("127.0.0.1:0", engine.New(db.Storage), db.Storage)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, db
}

func importCSV(t *testing.T, ts *httptest.Server, bank, currency, csv string) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "statement.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("bank", bank))
	require.NoError(t, mw.WriteField("currency", currency))
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/api/statements/import", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func decodeResponse(t *testing.T, resp *http.Response, wantStatus int) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, wantStatus, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

const sampleCSV = `Date,Description,Amount,Balance
01/03/2024,ACME LTD Invoice,1000.00,11000.00
05/03/2024,ACME LTD Invoice,2000.00,13000.00
10/03/2024,ACME LTD Invoice,1500.00,14500.00
15/03/2024,Rent March,-3000.00,11500.00
`

func TestImportAndLatestStatement(t *testing.T) {
	ts, _ := newTestServer(t)

	body := importCSV(t, ts, "garanti", "TRY", sampleCSV)
	assert.Equal(t, float64(4), body["imported"])
	assert.Equal(t, float64(0), body["duplicates"])

	resp, err := http.Get(ts.URL + "/api/statements/latest?bank=garanti&currency=TRY")
	require.NoError(t, err)
	got := decodeResponse(t, resp, http.StatusOK)

	txns := got["transactions"].([]any)
	assert.Len(t, txns, 4)
	stats := got["stats"].(map[string]any)
	assert.Equal(t, float64(4), stats["total"])
	assert.Equal(t, float64(4), stats["pending"])
}

func TestLatestStatementValidation(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/statements/latest")
	require.NoError(t, err)
	decodeResponse(t, resp, http.StatusBadRequest)

	resp, err = http.Get(ts.URL + "/api/statements/latest?bank=garanti&currency=USD")
	require.NoError(t, err)
	decodeResponse(t, resp, http.StatusNotFound)
}

func transactionIDs(t *testing.T, ts *httptest.Server) []string {
	t.Helper()

	resp, err := http.Get(ts.URL + "/api/statements/latest?bank=garanti&currency=TRY")
	require.NoError(t, err)
	got := decodeResponse(t, resp, http.StatusOK)

	var ids []string
	for _, raw := range got["transactions"].([]any) {
		ids = append(ids, raw.(map[string]any)["id"].(string))
	}
	return ids
}

func putJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestUpdateTransactionWithBulkOpportunity(t *testing.T) {
	ts, _ := newTestServer(t)
	importCSV(t, ts, "garanti", "TRY", sampleCSV)
	ids := transactionIDs(t, ts)

	resp := putJSON(t, ts.URL+"/api/transactions/"+ids[0],
		map[string]string{"field": "type", "value": "collection"})
	body := decodeResponse(t, resp, http.StatusOK)

	txn := body["transaction"].(map[string]any)
	assert.Equal(t, "collection", txn["type"])

	// The other two ACME rows share the normalized description.
	bulk, ok := body["bulk_opportunity"].(map[string]any)
	require.True(t, ok, "expected a bulk opportunity")
	assert.Equal(t, float64(2), bulk["count"])
	assert.Equal(t, "type", bulk["field"])
}

func TestUpdateTransactionUnknownField(t *testing.T) {
	ts, _ := newTestServer(t)
	importCSV(t, ts, "garanti", "TRY", sampleCSV)
	ids := transactionIDs(t, ts)

	resp := putJSON(t, ts.URL+"/api/transactions/"+ids[0],
		map[string]string{"field": "nonsense", "value": "x"})
	decodeResponse(t, resp, http.StatusBadRequest)
}

func TestBulkUpdate(t *testing.T) {
	ts, _ := newTestServer(t)
	importCSV(t, ts, "garanti", "TRY", sampleCSV)
	ids := transactionIDs(t, ts)

	resp := putJSON(t, ts.URL+"/api/transactions/"+ids[0],
		map[string]string{"field": "type", "value": "collection"})
	body := decodeResponse(t, resp, http.StatusOK)
	bulk := body["bulk_opportunity"].(map[string]any)

	var bulkIDs []string
	for _, raw := range bulk["ids"].([]any) {
		bulkIDs = append(bulkIDs, raw.(string))
	}

	payload, err := json.Marshal(map[string]any{
		"ids":   bulkIDs,
		"field": "type",
		"value": "collection",
	})
	require.NoError(t, err)
	postResp, err := http.Post(ts.URL+"/api/transactions/bulk", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	got := decodeResponse(t, postResp, http.StatusOK)
	assert.Equal(t, float64(2), got["updated"])
}

func TestCompleteStatementConflict(t *testing.T) {
	ts, db := newTestServer(t)
	importCSV(t, ts, "garanti", "TRY", sampleCSV)

	resp, err := http.Get(ts.URL + "/api/statements/latest?bank=garanti&currency=TRY")
	require.NoError(t, err)
	got := decodeResponse(t, resp, http.StatusOK)
	stmtID := got["statement"].(map[string]any)["id"].(string)

	postResp, err := http.Post(ts.URL+"/api/statements/"+stmtID+"/complete", "application/json", nil)
	require.NoError(t, err)
	decodeResponse(t, postResp, http.StatusConflict)

	// Classify every row and retry.
	for _, id := range transactionIDs(t, ts) {
		resp := putJSON(t, ts.URL+"/api/transactions/"+id,
			map[string]string{"field": "type", "value": "transfer"})
		decodeResponse(t, resp, http.StatusOK)
	}

	postResp, err = http.Post(ts.URL+"/api/statements/"+stmtID+"/complete", "application/json", nil)
	require.NoError(t, err)
	final := decodeResponse(t, postResp, http.StatusOK)
	assert.NotNil(t, final["learned_patterns"])

	stmt, err := db.Storage.GetStatement(context.Background(), stmtID)
	require.NoError(t, err)
	assert.Equal(t, "completed", string(stmt.Status))
}

func TestCategoriesEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	payload := strings.NewReader(`{"name": "Operating Expenses"}`)
	resp, err := http.Post(ts.URL+"/api/categories", "application/json", payload)
	require.NoError(t, err)
	created := decodeResponse(t, resp, http.StatusCreated)
	require.NotEmpty(t, created["id"])

	child := strings.NewReader(fmt.Sprintf(`{"name": "Software", "parent_id": %q}`, created["id"]))
	resp, err = http.Post(ts.URL+"/api/categories", "application/json", child)
	require.NoError(t, err)
	decodeResponse(t, resp, http.StatusCreated)

	resp, err = http.Get(ts.URL + "/api/categories")
	require.NoError(t, err)
	list := decodeResponse(t, resp, http.StatusOK)
	assert.Len(t, list["categories"].([]any), 2)
}

func TestImportValidation(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/statements/import", "application/json",
		strings.NewReader("{}"))
	require.NoError(t, err)
	decodeResponse(t, resp, http.StatusBadRequest)
}
