package analytics

import (
	"errors"
	"testing"

	"github.com/rimjhimsingh/smart-financial-coach/internal/model"
)

func TestMonthlyDeltasEmptyDataset(t *testing.T) {
	got, err := MonthlyDeltas(nil, "", 3, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Month != nil || got.PreviousMonth != nil {
		t.Errorf("expected nil months, got %+v", got)
	}
	if len(got.TopCategoryIncreases) != 0 {
		t.Errorf("expected empty increases, got %+v", got.TopCategoryIncreases)
	}
}

func TestMonthlyDeltasEarliestMonth(t *testing.T) {
	txs := []model.Transaction{
		tx("2025-01-05", "Grocer", -100, "Groceries"),
		tx("2025-02-05", "Grocer", -120, "Groceries"),
	}

	_, err := MonthlyDeltas(txs, "2025-01", 3, 5)
	if !errors.Is(err, ErrNoPreviousMonth) {
		t.Errorf("expected ErrNoPreviousMonth, got %v", err)
	}
}

func TestMonthlyDeltasRanking(t *testing.T) {
	txs := []model.Transaction{
		tx("2025-02-05", "Grocer", -100, "Groceries"),
		tx("2025-02-10", "Cafe", -80, "Dining"),
		tx("2025-02-12", "Cinema", -40, "Fun"),
		tx("2025-03-05", "Grocer", -150, "Groceries"), // +50
		tx("2025-03-10", "Cafe", -200, "Dining"),      // +120
		tx("2025-03-12", "Cinema", -30, "Fun"),        // -10, excluded
	}

	got, err := MonthlyDeltas(txs, "2025-03", 3, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *got.Month != "2025-03" || *got.PreviousMonth != "2025-02" {
		t.Errorf("unexpected months: %+v", got)
	}
	if len(got.TopCategoryIncreases) != 2 {
		t.Fatalf("expected 2 increases, got %d", len(got.TopCategoryIncreases))
	}
	top := got.TopCategoryIncreases[0]
	if top.Category != "Dining" || top.Delta != 120 || top.Current != 200 || top.Previous != 80 {
		t.Errorf("unexpected top increase: %+v", top)
	}

	// Deltas are strictly positive by construction.
	for _, cd := range got.TopCategoryIncreases {
		if cd.Delta <= 0 {
			t.Errorf("non-positive category delta: %+v", cd)
		}
	}
}

func TestMonthlyDeltasNewCategoryFullDelta(t *testing.T) {
	txs := []model.Transaction{
		tx("2025-02-05", "Grocer", -100, "Groceries"),
		tx("2025-03-05", "Grocer", -100, "Groceries"),
		tx("2025-03-12", "Vet", -300, "Pets"),
	}

	got, err := MonthlyDeltas(txs, "", 3, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.TopCategoryIncreases) != 1 {
		t.Fatalf("expected 1 increase, got %d", len(got.TopCategoryIncreases))
	}
	pets := got.TopCategoryIncreases[0]
	if pets.Category != "Pets" || pets.Delta != 300 || pets.Previous != 0 {
		t.Errorf("unexpected new-category delta: %+v", pets)
	}
}

func TestMonthlyDeltasMerchantContributions(t *testing.T) {
	txs := []model.Transaction{
		tx("2025-02-05", "Cafe A", -50, "Dining"),
		tx("2025-02-10", "Cafe B", -30, "Dining"),
		tx("2025-03-05", "Cafe A", -150, "Dining"), // +100
		tx("2025-03-10", "Cafe B", -20, "Dining"),  // -10, kept (merchant deltas may be negative)
	}

	got, err := MonthlyDeltas(txs, "", 3, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.TopCategoryIncreases) != 1 {
		t.Fatalf("expected 1 increase, got %d", len(got.TopCategoryIncreases))
	}
	merchants := got.TopCategoryIncreases[0].TopMerchants
	if len(merchants) != 2 {
		t.Fatalf("expected 2 merchants, got %d", len(merchants))
	}
	if merchants[0].Merchant != "Cafe A" || merchants[0].Delta != 100 {
		t.Errorf("unexpected top merchant: %+v", merchants[0])
	}
	if merchants[1].Merchant != "Cafe B" || merchants[1].Delta != -10 {
		t.Errorf("unexpected second merchant: %+v", merchants[1])
	}
}

func TestMonthlyDeltasTopK(t *testing.T) {
	txs := []model.Transaction{
		tx("2025-02-05", "A", -10, "Cat1"),
		tx("2025-02-05", "B", -10, "Cat2"),
		tx("2025-02-05", "C", -10, "Cat3"),
		tx("2025-03-05", "A", -40, "Cat1"),
		tx("2025-03-05", "B", -30, "Cat2"),
		tx("2025-03-05", "C", -20, "Cat3"),
	}

	got, err := MonthlyDeltas(txs, "", 2, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.TopCategoryIncreases) != 2 {
		t.Fatalf("expected 2 increases after topK, got %d", len(got.TopCategoryIncreases))
	}
	if got.TopCategoryIncreases[0].Category != "Cat1" || got.TopCategoryIncreases[1].Category != "Cat2" {
		t.Errorf("unexpected ordering: %+v", got.TopCategoryIncreases)
	}
}
