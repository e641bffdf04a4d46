package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rimjhimsingh/smart-financial-coach/internal/logger"
	"github.com/rimjhimsingh/smart-financial-coach/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSources(t *testing.T) {
	path := writeCSV(t, "tx.csv", `transaction_id,posted_date,merchant,amount,currency,category
t1,2025-03-05,Netflix,-15.99,USD,Subscriptions
t2,2025-03-06,Employer,3000.00,USD,Income
t3,2025-02-01,Grocer,-80.00,USD,Groceries
`)

	st := New(logger.Nop())
	stats, err := st.LoadSources([]Source{{AccountID: "checking", Format: "coach-csv", Path: path}})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalRows)
	assert.Equal(t, []string{"checking"}, stats.AccountsLoaded)
	assert.Equal(t, "2025-02-01", stats.DateMin)
	assert.Equal(t, "2025-03-06", stats.DateMax)

	txs := st.Transactions()
	require.Len(t, txs, 3)
	assert.Equal(t, "checking", txs[0].AccountID)
	assert.Equal(t, model.DirectionExpense, txs[0].Direction)
}

func TestLoadSourcesDedupesAcrossFiles(t *testing.T) {
	a := writeCSV(t, "a.csv", `transaction_id,posted_date,merchant,amount,currency,category
t1,2025-03-05,Netflix,-15.99,USD,Subscriptions
`)
	b := writeCSV(t, "b.csv", `transaction_id,posted_date,merchant,amount,currency,category
t1,2025-03-05,Netflix,-17.99,USD,Subscriptions
t2,2025-03-06,Grocer,-40.00,USD,Groceries
`)

	st := New(logger.Nop())
	stats, err := st.LoadSources([]Source{
		{AccountID: "checking", Format: "coach-csv", Path: a},
		{AccountID: "checking", Format: "coach-csv", Path: b},
	})
	require.NoError(t, err)

	// The re-exported t1 keeps its last occurrence.
	assert.Equal(t, 2, stats.TotalRows)
	for _, tx := range st.Transactions() {
		if tx.ID == "t1" {
			assert.Equal(t, -17.99, tx.Amount)
		}
	}
}

func TestLoadSourcesFormatPrefix(t *testing.T) {
	path := writeCSV(t, "tx.csv", `transaction_id,posted_date,merchant,amount,currency,category
t1,2025-03-05,Netflix,-15.99,USD,Subscriptions
`)

	st := New(logger.Nop())
	_, err := st.LoadSources([]Source{{AccountID: "checking", Path: "coach-csv:" + path}})
	require.NoError(t, err)
	assert.Len(t, st.Transactions(), 1)
}

func TestLoadSourcesUnknownFormat(t *testing.T) {
	st := New(logger.Nop())
	_, err := st.LoadSources([]Source{{AccountID: "x", Format: "nope", Path: "f.csv"}})
	assert.Error(t, err)
}

func TestPublishReplacesSnapshot(t *testing.T) {
	st := New(logger.Nop())
	assert.Empty(t, st.Transactions())

	st.Publish([]model.Transaction{{ID: "t1"}})
	assert.Len(t, st.Transactions(), 1)

	st.Publish(nil)
	assert.Empty(t, st.Transactions())
}

func TestListTransactions(t *testing.T) {
	st := New(logger.Nop())
	st.Publish([]model.Transaction{
		{ID: "old", PostedDate: day(2025, 1, 5), AccountID: "a"},
		{ID: "new", PostedDate: day(2025, 3, 5), AccountID: "a"},
		{ID: "mid", PostedDate: day(2025, 2, 5), AccountID: "b"},
	})

	all := st.ListTransactions("", 10)
	require.Len(t, all, 3)
	assert.Equal(t, "new", all[0].ID)
	assert.Equal(t, "mid", all[1].ID)
	assert.Equal(t, "old", all[2].ID)

	onlyA := st.ListTransactions("a", 10)
	require.Len(t, onlyA, 2)
	assert.Equal(t, "new", onlyA[0].ID)

	limited := st.ListTransactions("", 1)
	require.Len(t, limited, 1)
	assert.Equal(t, "new", limited[0].ID)
}

func TestStatsEmpty(t *testing.T) {
	st := New(logger.Nop())
	stats := st.Stats()
	assert.Equal(t, 0, stats.TotalRows)
	assert.Empty(t, stats.DateMin)
	assert.Empty(t, stats.DateMax)
}
