// Package store owns the dataset lifecycle: load, atomic publish, serve.
// Engines read a fully-built snapshot and never observe a partially-written
// dataset; ingestion replaces the snapshot wholesale rather than mutating it.
package store

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/rimjhimsingh/smart-financial-coach/internal/ingest"
	"github.com/rimjhimsingh/smart-financial-coach/internal/model"
)

// Account is basic metadata for a loaded source account.
type Account struct {
	AccountID   string `json:"account_id"`
	Name        string `json:"name"`
	AccountType string `json:"account_type"`
}

// Source names one export file to ingest into an account. An empty Format
// falls back to a `format:path` prefix on Path, then to coach-csv.
type Source struct {
	AccountID string
	Format    string
	Path      string
}

// Stats summarizes the currently loaded dataset.
type Stats struct {
	AccountsLoaded []string `json:"accounts_loaded"`
	TotalRows      int      `json:"total_rows"`
	DateMin        string   `json:"date_min,omitempty"`
	DateMax        string   `json:"date_max,omitempty"`
}

// Store holds the accounts and the published transaction snapshot.
type Store struct {
	log zerolog.Logger

	mu       sync.Mutex
	accounts map[string]Account

	snapshot atomic.Pointer[[]model.Transaction]
}

// New returns an empty store.
func New(log zerolog.Logger) *Store {
	s := &Store{
		log:      log,
		accounts: make(map[string]Account),
	}
	empty := []model.Transaction{}
	s.snapshot.Store(&empty)
	return s
}

// RegisterAccount records account metadata, replacing any previous entry.
func (s *Store) RegisterAccount(a Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.AccountID] = a
}

// Publish atomically swaps in a new dataset snapshot. The slice is copied so
// later caller mutations cannot leak into readers.
func (s *Store) Publish(txs []model.Transaction) {
	snapshot := make([]model.Transaction, len(txs))
	copy(snapshot, txs)
	s.snapshot.Store(&snapshot)
	s.log.Info().Int("rows", len(snapshot)).Msg("published dataset snapshot")
}

// Transactions returns the current snapshot. Callers must treat it as
// read-only.
func (s *Store) Transactions() []model.Transaction {
	return *s.snapshot.Load()
}

// LoadSources parses, normalizes and merges the given export files, then
// publishes the result as the new snapshot. Duplicate transaction IDs across
// files keep the last occurrence, matching re-export semantics.
func (s *Store) LoadSources(sources []Source) (Stats, error) {
	var merged []model.Transaction
	for _, src := range sources {
		format, path := src.Format, src.Path
		if format == "" {
			format, path = ingest.ParseFileArg(src.Path)
			if format == "" {
				format = "coach-csv"
			}
		}
		parser, err := ingest.Get(format)
		if err != nil {
			return Stats{}, err
		}

		raw, err := parser.Parse(path)
		if err != nil {
			return Stats{}, fmt.Errorf("parsing %s: %w", path, err)
		}
		raw = ingest.EnsureIDs(raw, src.AccountID)
		rows, err := model.Normalize(raw, src.AccountID)
		if err != nil {
			return Stats{}, fmt.Errorf("normalizing %s: %w", path, err)
		}

		s.RegisterAccount(Account{
			AccountID:   src.AccountID,
			Name:        src.AccountID,
			AccountType: "unknown",
		})
		merged = append(merged, rows...)
		s.log.Info().
			Str("account", src.AccountID).
			Str("format", format).
			Int("rows", len(rows)).
			Msg("ingested source file")
	}

	merged = model.DedupeByID(merged)
	s.Publish(merged)
	return s.Stats(), nil
}

// Stats returns a lightweight summary of the loaded dataset.
func (s *Store) Stats() Stats {
	txs := s.Transactions()

	s.mu.Lock()
	accounts := make([]string, 0, len(s.accounts))
	for id := range s.accounts {
		accounts = append(accounts, id)
	}
	s.mu.Unlock()
	sort.Strings(accounts)

	stats := Stats{AccountsLoaded: accounts, TotalRows: len(txs)}
	if len(txs) == 0 {
		return stats
	}
	min, max := txs[0].PostedDate, txs[0].PostedDate
	for _, tx := range txs[1:] {
		if tx.PostedDate.Before(min) {
			min = tx.PostedDate
		}
		if tx.PostedDate.After(max) {
			max = tx.PostedDate
		}
	}
	stats.DateMin = min.Format(model.DateFormat)
	stats.DateMax = max.Format(model.DateFormat)
	return stats
}

// ListTransactions returns up to limit transactions, newest first, optionally
// filtered by account.
func (s *Store) ListTransactions(accountID string, limit int) []model.Transaction {
	txs := s.Transactions()

	filtered := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if accountID == "" || tx.AccountID == accountID {
			filtered = append(filtered, tx)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].PostedDate.After(filtered[j].PostedDate)
	})
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}
