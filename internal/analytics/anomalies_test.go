package analytics

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/rimjhimsingh/smart-financial-coach/internal/model"
)

func TestDetectAnomaliesFirstLargeCharge(t *testing.T) {
	txs := []model.Transaction{
		tx("2025-03-20", "Anchor", -1, "Misc"),
		tx("2025-03-15", "TV Store", -600, "Shopping"),
	}

	got := DetectAnomalies(txs, 30, 10)

	if len(got.Anomalies) != 1 {
		t.Fatalf("expected 1 anomaly, got %d", len(got.Anomalies))
	}
	a := got.Anomalies[0]
	if a.Merchant != "TV Store" {
		t.Errorf("expected TV Store, got %s", a.Merchant)
	}
	if a.Reason != "First time large outgoing charge for this merchant" {
		t.Errorf("unexpected reason: %s", a.Reason)
	}
}

func TestDetectAnomaliesLongGap(t *testing.T) {
	txs := []model.Transaction{
		tx("2025-01-01", "Airline", -550, "Travel"),
		tx("2025-03-15", "Airline", -700, "Travel"), // 73 days later
	}

	got := DetectAnomalies(txs, 0, 10)

	if len(got.Anomalies) != 2 {
		t.Fatalf("expected 2 anomalies, got %d", len(got.Anomalies))
	}
	// Newest first.
	if got.Anomalies[0].Reason != "Large outgoing charge after 73 day gap" {
		t.Errorf("unexpected reason: %s", got.Anomalies[0].Reason)
	}
	if got.Anomalies[1].Reason != "First time large outgoing charge for this merchant" {
		t.Errorf("unexpected reason: %s", got.Anomalies[1].Reason)
	}
}

func TestDetectAnomaliesRecurringSuppressed(t *testing.T) {
	// Three charges with a ~30 day median gap look like rent: never flagged,
	// no matter how large.
	txs := []model.Transaction{
		tx("2025-01-01", "Landlord", -1800, "Housing"),
		tx("2025-02-01", "Landlord", -1800, "Housing"),
		tx("2025-03-01", "Landlord", -1800, "Housing"),
	}

	got := DetectAnomalies(txs, 0, 10)

	if len(got.Anomalies) != 0 {
		t.Errorf("expected recurring merchant suppressed, got %+v", got.Anomalies)
	}
}

func TestDetectAnomaliesTwoChargesNotSuppressed(t *testing.T) {
	// Only two occurrences: below the suppression minimum, so the first large
	// charge is still flagged.
	txs := []model.Transaction{
		tx("2025-02-01", "Landlord", -1800, "Housing"),
		tx("2025-03-01", "Landlord", -1800, "Housing"),
	}

	got := DetectAnomalies(txs, 0, 10)

	if len(got.Anomalies) != 1 {
		t.Fatalf("expected 1 anomaly, got %d", len(got.Anomalies))
	}
}

func TestDetectAnomaliesWindow(t *testing.T) {
	// Window anchors to the data's max date, not the wall clock.
	txs := []model.Transaction{
		tx("2025-03-30", "Anchor", -1, "Misc"),
		tx("2025-03-15", "TV Store", -600, "Shopping"),
		tx("2025-01-05", "Old Buy", -2000, "Shopping"), // outside 30 days
	}

	got := DetectAnomalies(txs, 30, 10)

	if got.Days != 30 {
		t.Errorf("expected days 30 echoed, got %d", got.Days)
	}
	if len(got.Anomalies) != 1 || got.Anomalies[0].Merchant != "TV Store" {
		t.Errorf("expected only the in-window charge, got %+v", got.Anomalies)
	}
}

func TestDetectAnomaliesOrderingAndLimit(t *testing.T) {
	txs := []model.Transaction{
		tx("2025-03-10", "Shop A", -600, "Shopping"),
		tx("2025-03-12", "Shop B", -900, "Shopping"),
		tx("2025-03-12", "Shop C", -700, "Shopping"),
	}

	got := DetectAnomalies(txs, 0, 2)

	if len(got.Anomalies) != 2 {
		t.Fatalf("expected 2 anomalies after limit, got %d", len(got.Anomalies))
	}
	// Same date: larger absolute amount first.
	if got.Anomalies[0].Merchant != "Shop B" || got.Anomalies[1].Merchant != "Shop C" {
		t.Errorf("unexpected ordering: %s, %s",
			got.Anomalies[0].Merchant, got.Anomalies[1].Merchant)
	}
}

func TestDetectAnomaliesEmptyDataset(t *testing.T) {
	got := DetectAnomalies(nil, 30, 10)

	if got.Anomalies == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(got.Anomalies) != 0 {
		t.Errorf("expected no anomalies, got %d", len(got.Anomalies))
	}
}

func TestDetectAnomaliesIdempotent(t *testing.T) {
	txs := []model.Transaction{
		tx("2025-03-10", "Shop A", -600, "Shopping"),
		tx("2025-03-12", "Shop B", -900, "Shopping"),
		tx("2025-03-12", "Shop C", -700, "Shopping"),
		tx("2025-02-01", "Landlord", -1800, "Housing"),
		tx("2025-03-01", "Landlord", -1800, "Housing"),
	}

	first := DetectAnomalies(txs, 0, 10)
	for i := 0; i < 5; i++ {
		again := DetectAnomalies(txs, 0, 10)
		if len(again.Anomalies) != len(first.Anomalies) {
			t.Fatalf("run %d: length changed", i)
		}
		for j := range first.Anomalies {
			if again.Anomalies[j].Merchant != first.Anomalies[j].Merchant {
				t.Fatalf("run %d: ordering changed at %d", i, j)
			}
		}
	}
}

func TestAnomalyJSONFlattened(t *testing.T) {
	a := Anomaly{
		Transaction: model.Transaction{
			ID:         "t1",
			PostedDate: date("2025-03-15"),
			Merchant:   "TV Store",
			Amount:     -600,
			Currency:   "USD",
			Category:   "Shopping",
		},
		Reason: "First time large outgoing charge for this merchant",
	}

	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"reason"`, `"merchant":"TV Store"`, `"posted_date":"2025-03-15"`} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}
}
