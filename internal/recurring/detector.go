// Package recurring infers subscription-like charges from transaction
// history. Merchants are grouped, a cadence is matched from the day gaps
// between their charges, and each candidate gets an annualized cost, a
// confidence score, and trial-to-paid / price-increase flags.
//
// The thresholds here are empirically tuned for plausible results on noisy
// real-world data; they are part of the engine's contract and must not be
// retuned casually.
package recurring

import (
	"math"
	"sort"

	"github.com/rimjhimsingh/smart-financial-coach/internal/model"
)

// Cadence is the inferred recurrence period class for a merchant's charges.
type Cadence string

const (
	CadenceWeekly   Cadence = "weekly"
	CadenceBiweekly Cadence = "biweekly"
	CadenceMonthly  Cadence = "monthly"
	CadenceAnnual   Cadence = "annual"
)

// cadenceRule matches a median day-gap against a target within a tolerance.
// Rules are tried in order; the first match wins.
type cadenceRule struct {
	name             Cadence
	targetDays       float64
	toleranceDays    float64
	annualMultiplier float64
}

var cadenceRules = []cadenceRule{
	{CadenceWeekly, 7, 3, 52},
	{CadenceBiweekly, 14, 4, 26},
	{CadenceMonthly, 30, 10, 12},
	{CadenceAnnual, 365, 20, 1},
}

// Amount thresholds for the heuristics below.
const (
	trialMaxAmount      = 1.00 // charges at or below this count as trial/noise
	trialPaidMinMedian  = 5.00 // median of post-trial charges for the free-trial rule
	trialPaidRatio      = 2.5  // post-trial median vs first charge for the cheap-trial rule
	weeklyStabilityCV   = 0.20 // max CV for weekly/biweekly paid charges
	increaseSeriesCV    = 0.12 // series must be this stable before claiming an increase
	increaseLastPairTol = 0.05 // last two charges must be within 5% (a settled new price)
	increaseMinPct      = 0.15 // later-half median must exceed earlier-half by 15%...
	increaseMinAbs      = 2.00 // ...and by at least $2
)

// Flags are the qualitative signals attached to a recurring candidate.
type Flags struct {
	TrialToPaid   bool `json:"trial_to_paid"`
	PriceIncrease bool `json:"price_increase"`
}

// Candidate is one inferred recurring charge, produced fresh on each call.
type Candidate struct {
	Merchant         string  `json:"merchant"`
	Cadence          Cadence `json:"cadence"`
	AvgAmount        float64 `json:"avg_amount"`
	LastChargedDate  string  `json:"last_charged_date"`
	OccurrencesCount int     `json:"occurrences_count"`
	AnnualizedCost   float64 `json:"annualized_cost"`
	Confidence       float64 `json:"confidence"`
	Flags            Flags   `json:"flags"`
}

// Options controls the detection scan.
type Options struct {
	// MinOccurrences is the minimum number of qualifying charges per
	// merchant; values below 2 are raised to 2.
	MinOccurrences int
	// IncludeZeroTrials admits zero-amount rows so free trial charges can
	// anchor a trial-to-paid pattern.
	IncludeZeroTrials bool
}

// DetectByMerchant scans the dataset and returns recurring candidates sorted
// by annualized cost, highest first. Merchants whose gap pattern matches no
// cadence band are simply excluded, not reported as non-recurring.
func DetectByMerchant(txs []model.Transaction, opts Options) []Candidate {
	minOcc := opts.MinOccurrences
	if minOcc < 2 {
		minOcc = 2
	}

	groups := make(map[string][]model.Transaction)
	for _, tx := range txs {
		if tx.PostedDate.IsZero() {
			continue
		}
		if opts.IncludeZeroTrials {
			if tx.Amount > 0 {
				continue
			}
		} else if tx.Amount >= 0 {
			continue
		}
		groups[tx.Merchant] = append(groups[tx.Merchant], tx)
	}

	var results []Candidate
	for merchant, group := range groups {
		if len(group) < minOcc {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].PostedDate.Before(group[j].PostedDate)
		})

		gaps := make([]float64, 0, len(group)-1)
		for i := 1; i < len(group); i++ {
			gaps = append(gaps, group[i].PostedDate.Sub(group[i-1].PostedDate).Hours()/24)
		}
		match := pickCadence(gaps)
		if match == nil {
			continue
		}

		amounts := make([]float64, len(group))
		for i, tx := range group {
			amounts[i] = math.Abs(tx.Amount)
		}

		trialToPaid := flagTrialToPaid(amounts)
		paidAmounts := filterAbove(amounts, trialMaxAmount)

		// Irregular weekly-ish charges are not trustworthy subscriptions.
		if len(paidAmounts) >= 3 && (match.rule.name == CadenceWeekly || match.rule.name == CadenceBiweekly) {
			if !isAmountStable(paidAmounts, weeklyStabilityCV) {
				continue
			}
		}

		priceIncrease := false
		if match.rule.name == CadenceMonthly || match.rule.name == CadenceAnnual {
			series := amounts
			if trialToPaid {
				series = paidAmounts
			}
			series = filterAbove(series, trialMaxAmount)
			// Only a stable, subscription-like series can claim an increase.
			if len(series) >= 3 && isAmountStable(series, increaseSeriesCV) {
				priceIncrease = flagPriceIncreaseStrict(series)
			}
		}

		avgBase := amounts
		if trialToPaid && len(paidAmounts) > 0 {
			avgBase = paidAmounts
		}
		avgBase = filterAbove(avgBase, 0)
		if len(avgBase) == 0 {
			avgBase = amounts
		}
		avgAmount := round2(mean(avgBase))

		regularity := 0.6
		if match.stdGap <= match.rule.toleranceDays {
			regularity = 1.0
		}
		confidence := math.Min(1.0, round2(float64(len(group))/6.0*regularity))

		results = append(results, Candidate{
			Merchant:         merchant,
			Cadence:          match.rule.name,
			AvgAmount:        avgAmount,
			LastChargedDate:  group[len(group)-1].PostedDate.Format(model.DateFormat),
			OccurrencesCount: len(group),
			AnnualizedCost:   round2(avgAmount * match.rule.annualMultiplier),
			Confidence:       confidence,
			Flags: Flags{
				TrialToPaid:   trialToPaid,
				PriceIncrease: priceIncrease,
			},
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].AnnualizedCost != results[j].AnnualizedCost {
			return results[i].AnnualizedCost > results[j].AnnualizedCost
		}
		return results[i].Merchant < results[j].Merchant
	})
	return results
}

// cadenceMatch carries the matched rule plus the gap statistics it was
// derived from.
type cadenceMatch struct {
	rule      cadenceRule
	medianGap float64
	stdGap    float64
}

// pickCadence matches the median day-gap against the cadence bands in listed
// order. Nil when no band matches or there are no gaps. The gap standard
// deviation is rounded to 2 decimals before the regularity comparison, same
// as the reported value.
func pickCadence(gaps []float64) *cadenceMatch {
	if len(gaps) == 0 {
		return nil
	}
	med := median(gaps)
	std := 0.0
	if len(gaps) > 1 {
		std = stdDev(gaps)
	}
	for _, rule := range cadenceRules {
		if math.Abs(med-rule.targetDays) <= rule.toleranceDays {
			return &cadenceMatch{
				rule:      rule,
				medianGap: round2(med),
				stdGap:    round2(std),
			}
		}
	}
	return nil
}

// flagTrialToPaid reports whether the first charge looks like a trial that
// converted: a free/near-free first charge followed by materially higher
// charges, or a cheap first charge followed by charges at 2.5x or more.
func flagTrialToPaid(amounts []float64) bool {
	if len(amounts) < 2 {
		return false
	}
	first := amounts[0]
	restMedian := median(amounts[1:])

	if first <= trialMaxAmount && restMedian >= trialPaidMinMedian {
		return true
	}
	if first > 0 && restMedian >= first*trialPaidRatio {
		return true
	}
	return false
}

// isAmountStable reports whether the coefficient of variation (std/mean) is
// within maxCV. Requires at least 3 points and a positive mean.
func isAmountStable(amounts []float64, maxCV float64) bool {
	if len(amounts) < 3 {
		return false
	}
	m := mean(amounts)
	if m <= 0 {
		return false
	}
	return stdDev(amounts)/m <= maxCV
}

// stableNewPrice requires the last two charges to be close to each other,
// indicating a settled new price rather than random variance.
func stableNewPrice(amounts []float64) bool {
	if len(amounts) < 3 {
		return false
	}
	last := amounts[len(amounts)-1]
	prev := amounts[len(amounts)-2]
	if last <= 0 || prev <= 0 {
		return false
	}
	denom := math.Max(prev, 1.0)
	return math.Abs(last-prev)/denom <= increaseLastPairTol
}

// flagPriceIncreaseStrict splits the series at its midpoint and flags an
// increase only when the later half's median exceeds the earlier half's by
// both the relative and absolute thresholds, and the last two charges agree
// on the new price.
func flagPriceIncreaseStrict(amounts []float64) bool {
	if len(amounts) < 3 {
		return false
	}
	if !stableNewPrice(amounts) {
		return false
	}

	mid := len(amounts) / 2
	if mid < 1 {
		mid = 1
	}
	m1 := median(amounts[:mid])
	m2 := median(amounts[mid:])
	if m1 <= 0 {
		return false
	}
	return (m2-m1)/m1 >= increaseMinPct && m2-m1 >= increaseMinAbs
}

// filterAbove returns the amounts strictly greater than threshold.
func filterAbove(amounts []float64, threshold float64) []float64 {
	var out []float64
	for _, a := range amounts {
		if a > threshold {
			out = append(out, a)
		}
	}
	return out
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// stdDev is the population standard deviation.
func stdDev(vals []float64) float64 {
	m := mean(vals)
	variance := 0.0
	for _, v := range vals {
		d := v - m
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(vals)))
}

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

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
