package recurring

import (
	"testing"
	"time"

	"github.com/rimjhimsingh/smart-financial-coach/internal/model"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// charges builds expense rows for one merchant, one charge per amount,
// spaced gapDays apart starting at start.
func charges(merchant, start string, gapDays int, amounts ...float64) []model.Transaction {
	d := date(start)
	txs := make([]model.Transaction, len(amounts))
	for i, a := range amounts {
		txs[i] = model.Transaction{
			Merchant:   merchant,
			PostedDate: d,
			Amount:     -a,
			Direction:  model.DirectionExpense,
		}
		d = d.AddDate(0, 0, gapDays)
	}
	return txs
}

func TestDetectMonthlySubscription(t *testing.T) {
	txs := charges("Netflix", "2025-01-05", 30, 15.99, 15.99, 15.99, 15.99, 15.99, 15.99)

	results := DetectByMerchant(txs, Options{MinOccurrences: 2})

	if len(results) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(results))
	}
	got := results[0]
	if got.Cadence != CadenceMonthly {
		t.Errorf("expected monthly cadence, got %s", got.Cadence)
	}
	if got.AvgAmount != 15.99 {
		t.Errorf("expected avg 15.99, got %.2f", got.AvgAmount)
	}
	if got.AnnualizedCost != 191.88 {
		t.Errorf("expected annualized 191.88, got %.2f", got.AnnualizedCost)
	}
	if got.OccurrencesCount != 6 {
		t.Errorf("expected 6 occurrences, got %d", got.OccurrencesCount)
	}
	// 6 perfectly regular charges: 6/6 * 1.0 = 1.0
	if got.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0, got %.2f", got.Confidence)
	}
	if got.Flags.TrialToPaid || got.Flags.PriceIncrease {
		t.Errorf("unexpected flags: %+v", got.Flags)
	}
	if got.LastChargedDate != "2025-06-04" {
		t.Errorf("unexpected last charged date %s", got.LastChargedDate)
	}
}

func TestDetectTrialToPaid(t *testing.T) {
	txs := charges("StreamPlus", "2025-01-01", 30, 0, 12.99, 12.99, 12.99, 12.99, 12.99)

	// Zero-amount rows are dropped unless explicitly admitted.
	results := DetectByMerchant(txs, Options{MinOccurrences: 2, IncludeZeroTrials: true})

	if len(results) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(results))
	}
	got := results[0]
	if !got.Flags.TrialToPaid {
		t.Error("expected trial_to_paid flag")
	}
	// Average excludes the trial charge.
	if got.AvgAmount != 12.99 {
		t.Errorf("expected avg 12.99, got %.2f", got.AvgAmount)
	}
	if got.Flags.PriceIncrease {
		t.Error("unexpected price_increase flag")
	}
}

func TestTrialToPaidCheapFirstCharge(t *testing.T) {
	// $1 intro followed by $9.99: rest median >= 2.5x first.
	txs := charges("NewsDaily", "2025-01-01", 30, 1.00, 9.99, 9.99, 9.99)

	results := DetectByMerchant(txs, Options{MinOccurrences: 2})
	if len(results) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(results))
	}
	if !results[0].Flags.TrialToPaid {
		t.Error("expected trial_to_paid flag")
	}
}

func TestDetectPriceIncrease(t *testing.T) {
	txs := charges("MusicBox", "2025-01-10", 30, 20, 20, 20, 25, 25)

	results := DetectByMerchant(txs, Options{MinOccurrences: 2})

	if len(results) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(results))
	}
	if !results[0].Flags.PriceIncrease {
		t.Error("expected price_increase flag")
	}
}

func TestNoPriceIncreaseWhenUnsettled(t *testing.T) {
	// Last two charges disagree, so no settled new price.
	txs := charges("WobblyCo", "2025-01-10", 30, 20, 20, 20, 25, 31)

	results := DetectByMerchant(txs, Options{MinOccurrences: 2})
	for _, r := range results {
		if r.Flags.PriceIncrease {
			t.Error("unexpected price_increase flag for unsettled series")
		}
	}
}

func TestCadenceBands(t *testing.T) {
	tests := []struct {
		name    string
		gapDays int
		want    Cadence
	}{
		{"weekly", 7, CadenceWeekly},
		{"weekly upper edge", 10, CadenceWeekly}, // 10 matches weekly before biweekly
		{"biweekly", 14, CadenceBiweekly},
		{"monthly short", 28, CadenceMonthly},
		{"monthly", 30, CadenceMonthly},
		{"monthly long", 39, CadenceMonthly},
		{"annual", 365, CadenceAnnual},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := charges("Acme", "2024-01-01", tt.gapDays, 9.99, 9.99, 9.99, 9.99)
			results := DetectByMerchant(txs, Options{MinOccurrences: 2})
			if len(results) != 1 {
				t.Fatalf("expected 1 candidate, got %d", len(results))
			}
			if results[0].Cadence != tt.want {
				t.Errorf("gap %d days: expected %s, got %s", tt.gapDays, tt.want, results[0].Cadence)
			}
		})
	}
}

func TestNoCadenceMatchExcluded(t *testing.T) {
	// 50-day gaps fall between monthly and annual bands.
	txs := charges("OddShop", "2025-01-01", 50, 30, 30, 30)

	results := DetectByMerchant(txs, Options{MinOccurrences: 2})
	if len(results) != 0 {
		t.Errorf("expected no candidates, got %d", len(results))
	}
}

func TestUnstableWeeklyExcluded(t *testing.T) {
	// Weekly gaps but wildly varying amounts: groceries, not a subscription.
	txs := charges("MegaMart", "2025-01-04", 7, 34.12, 112.50, 18.31, 76.09)

	results := DetectByMerchant(txs, Options{MinOccurrences: 2})
	if len(results) != 0 {
		t.Errorf("expected no candidates, got %d", len(results))
	}
}

func TestMinOccurrences(t *testing.T) {
	txs := charges("Netflix", "2025-01-05", 30, 15.99, 15.99)

	if got := DetectByMerchant(txs, Options{MinOccurrences: 3}); len(got) != 0 {
		t.Errorf("expected no candidates below min occurrences, got %d", len(got))
	}
	if got := DetectByMerchant(txs, Options{MinOccurrences: 2}); len(got) != 1 {
		t.Errorf("expected 1 candidate at min occurrences, got %d", len(got))
	}
}

func TestIrregularGapsLowerConfidence(t *testing.T) {
	// Monthly-ish but sloppy gaps: regularity factor drops to 0.6.
	var txs []model.Transaction
	// Gaps of 20, 30 and 45 days: median 30, std just over the 10-day band.
	for _, d := range []string{"2025-01-03", "2025-01-23", "2025-02-22", "2025-04-08"} {
		txs = append(txs, model.Transaction{Merchant: "GymCo", PostedDate: date(d), Amount: -45})
	}

	results := DetectByMerchant(txs, Options{MinOccurrences: 2})
	if len(results) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(results))
	}
	regular := charges("Netflix", "2025-01-05", 30, 45, 45, 45, 45)
	baseline := DetectByMerchant(regular, Options{MinOccurrences: 2})
	if results[0].Confidence >= baseline[0].Confidence {
		t.Errorf("irregular confidence %.2f should be below regular %.2f",
			results[0].Confidence, baseline[0].Confidence)
	}
}

func TestResultsSortedByAnnualizedCost(t *testing.T) {
	txs := append(
		charges("CheapApp", "2025-01-01", 30, 4.99, 4.99, 4.99),
		charges("BigGym", "2025-01-02", 30, 89.99, 89.99, 89.99)...,
	)

	results := DetectByMerchant(txs, Options{MinOccurrences: 2})
	if len(results) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(results))
	}
	if results[0].Merchant != "BigGym" || results[1].Merchant != "CheapApp" {
		t.Errorf("unexpected order: %s, %s", results[0].Merchant, results[1].Merchant)
	}
}

func TestIncomeIgnored(t *testing.T) {
	var txs []model.Transaction
	d := date("2025-01-15")
	for i := 0; i < 4; i++ {
		txs = append(txs, model.Transaction{Merchant: "Employer", PostedDate: d, Amount: 3000})
		d = d.AddDate(0, 0, 30)
	}

	if got := DetectByMerchant(txs, Options{MinOccurrences: 2}); len(got) != 0 {
		t.Errorf("expected no candidates from income rows, got %d", len(got))
	}
}

func TestAnnualCadence(t *testing.T) {
	txs := charges("DomainReg", "2023-03-01", 365, 12.99, 12.99, 12.99)

	results := DetectByMerchant(txs, Options{MinOccurrences: 2})
	if len(results) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(results))
	}
	if results[0].Cadence != CadenceAnnual {
		t.Errorf("expected annual cadence, got %s", results[0].Cadence)
	}
	if results[0].AnnualizedCost != 12.99 {
		t.Errorf("expected annualized 12.99, got %.2f", results[0].AnnualizedCost)
	}
}
