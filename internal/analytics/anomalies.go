package analytics

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rimjhimsingh/smart-financial-coach/internal/model"
)

// longGapDays is the minimum gap after which a merchant's reappearance with a
// large charge is flagged.
const longGapDays = 60

// Monthly-recurring suppression band: merchants with at least 3 in-window
// occurrences and a median inter-charge gap in this range look like ordinary
// monthly spend (rent-like) and are never flagged.
const (
	recurringMinOccurrences = 3
	recurringGapMin         = 20.0
	recurringGapMax         = 45.0
)

// Anomaly is a flagged transaction with a human-readable reason.
type Anomaly struct {
	model.Transaction
	Reason string `json:"reason"`
}

// MarshalJSON flattens the transaction fields and appends the reason, matching
// the dashboard's row shape.
func (a Anomaly) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(a.Transaction)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	m["reason"] = a.Reason
	return json.Marshal(m)
}

// Anomalies is the anomaly detection result. The list is empty, never nil,
// when nothing is flagged.
type Anomalies struct {
	Days      int       `json:"days"`
	Anomalies []Anomaly `json:"anomalies"`
}

// DetectAnomalies flags large outgoing charges that are either the first ever
// seen for their merchant within the window, or follow a gap of at least 60
// days since that merchant's previous in-window charge. Merchants whose
// in-window cadence looks monthly recurring are exempt. days <= 0 means all
// time; the window is anchored to the dataset's max date, not the wall clock.
// Results are ordered newest first, ties broken by larger absolute amount,
// truncated to limit.
func DetectAnomalies(txs []model.Transaction, days, limit int) Anomalies {
	result := Anomalies{Days: days, Anomalies: []Anomaly{}}

	var outgoing []model.Transaction
	for _, tx := range txs {
		if tx.Amount < 0 && !tx.PostedDate.IsZero() {
			outgoing = append(outgoing, tx)
		}
	}
	if len(outgoing) == 0 {
		return result
	}

	if days > 0 {
		today := todayFromData(outgoing)
		start := today.AddDate(0, 0, -days)
		var windowed []model.Transaction
		for _, tx := range outgoing {
			if !tx.PostedDate.Before(start) {
				windowed = append(windowed, tx)
			}
		}
		outgoing = windowed
	}

	byMerchant := make(map[string][]model.Transaction)
	for _, tx := range outgoing {
		if strings.TrimSpace(tx.Merchant) == "" {
			continue
		}
		byMerchant[tx.Merchant] = append(byMerchant[tx.Merchant], tx)
	}

	var flagged []Anomaly
	for _, group := range byMerchant {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].PostedDate.Before(group[j].PostedDate)
		})

		// In-window day gaps between consecutive charges.
		gaps := make([]float64, 0, len(group)-1)
		for i := 1; i < len(group); i++ {
			gaps = append(gaps, group[i].PostedDate.Sub(group[i-1].PostedDate).Hours()/24)
		}

		if len(group) >= recurringMinOccurrences && len(gaps) > 0 {
			if med := median(gaps); med >= recurringGapMin && med <= recurringGapMax {
				continue
			}
		}

		for i, tx := range group {
			if math.Abs(tx.Amount) <= largeAmountThreshold {
				continue
			}
			if i == 0 {
				flagged = append(flagged, Anomaly{
					Transaction: tx,
					Reason:      "First time large outgoing charge for this merchant",
				})
				continue
			}
			if gap := int(gaps[i-1]); gap >= longGapDays {
				flagged = append(flagged, Anomaly{
					Transaction: tx,
					Reason:      fmt.Sprintf("Large outgoing charge after %d day gap", gap),
				})
			}
		}
	}
	if len(flagged) == 0 {
		return result
	}

	sort.SliceStable(flagged, func(i, j int) bool {
		if !flagged[i].PostedDate.Equal(flagged[j].PostedDate) {
			return flagged[i].PostedDate.After(flagged[j].PostedDate)
		}
		if ai, aj := math.Abs(flagged[i].Amount), math.Abs(flagged[j].Amount); ai != aj {
			return ai > aj
		}
		return flagged[i].Merchant < flagged[j].Merchant
	})
	if len(flagged) > limit {
		flagged = flagged[:limit]
	}
	result.Anomalies = flagged
	return result
}

// median of a non-empty slice; averages the middle pair for even lengths.
func median(vals []float64) float64 {
	s := make([]float64, len(vals))
	copy(s, vals)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
