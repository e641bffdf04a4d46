// Package output renders report results as terminal tables or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/rimjhimsingh/smart-financial-coach/internal/analytics"
	"github.com/rimjhimsingh/smart-financial-coach/internal/insights"
	"github.com/rimjhimsingh/smart-financial-coach/internal/model"
	"github.com/rimjhimsingh/smart-financial-coach/internal/recurring"
)

// PrintJSON writes any report result as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	return t
}

// PrintSummary renders the KPI summary as a key/value table.
func PrintSummary(w io.Writer, s analytics.Summary, c Currency) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRow(table.Row{"MTD total spend", c.Format(s.MTDTotalSpend)})
	t.AppendRow(table.Row{"MTD net cashflow", c.FormatSigned(s.MTDNetCashflow)})
	t.AppendRow(table.Row{"MTD recurring total", c.Format(s.MTDRecurringTotal)})
	t.AppendRow(table.Row{"Subscriptions", fmt.Sprintf("%d", s.SubscriptionsCount)})
	t.AppendRow(table.Row{"Large charges (30d)", fmt.Sprintf("%d", s.AnomaliesCount30d)})

	driver := "-"
	if s.BiggestSpendDriver.Category != nil {
		driver = fmt.Sprintf("%s (%s)", *s.BiggestSpendDriver.Category,
			c.FormatSigned(s.BiggestSpendDriver.Delta))
	}
	t.AppendRow(table.Row{"Biggest spend driver", driver})

	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	t.Render()
}

// PrintCharts renders the three chart datasets as tables.
func PrintCharts(w io.Writer, charts analytics.Charts, c Currency) {
	monthLabel := "all"
	if charts.Month != nil {
		monthLabel = *charts.Month
	}
	fmt.Fprintf(w, "Spend by category (%s)\n", monthLabel)
	t := newTable(w)
	t.AppendHeader(table.Row{"Category", "Spend"})
	for _, cv := range charts.SpendByCategoryMonth {
		t.AppendRow(table.Row{cv.Category, c.Format(cv.Value)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	t.Render()

	fmt.Fprintln(w, "\nMoney in vs out by month")
	t = newTable(w)
	t.AppendHeader(table.Row{"Month", "In", "Out", "Net"})
	for _, mf := range charts.InVsOutMonth {
		t.AppendRow(table.Row{mf.Month, c.Format(mf.MoneyIn), c.Format(mf.MoneyOut), c.FormatSigned(mf.Net)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	t.Render()

	fmt.Fprintf(w, "\nDaily spend trend (%s)\n", monthLabel)
	t = newTable(w)
	t.AppendHeader(table.Row{"Day", "Spend"})
	for _, ds := range charts.DailySpendTrend {
		t.AppendRow(table.Row{ds.Day, c.Format(ds.Spend)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	t.Render()
}

// PrintBreakdown renders a category drilldown: top merchants and the largest
// transactions in the month.
func PrintBreakdown(w io.Writer, b analytics.Breakdown, c Currency) {
	monthLabel := "-"
	if b.Month != nil {
		monthLabel = *b.Month
	}
	fmt.Fprintf(w, "Category %q in %s\n", b.Category, monthLabel)

	t := newTable(w)
	t.AppendHeader(table.Row{"Merchant", "Total Spend"})
	for _, m := range b.TopMerchants {
		t.AppendRow(table.Row{m.Merchant, c.Format(m.TotalSpend)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	t.Render()

	fmt.Fprintln(w, "\nTop transactions")
	t = newTable(w)
	t.AppendHeader(table.Row{"Date", "Merchant", "Amount"})
	for _, tx := range b.TopTransactions {
		t.AppendRow(table.Row{tx.PostedDate.Format(model.DateFormat), tx.Merchant, c.FormatSigned(tx.Amount)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})
	t.Render()
}

// PrintDeltas renders month-over-month category increases with their merchant
// contributions indented under each category.
func PrintDeltas(w io.Writer, d analytics.Deltas, c Currency) {
	if d.Month == nil || d.PreviousMonth == nil {
		fmt.Fprintln(w, "No months available to compare")
		return
	}
	fmt.Fprintf(w, "Spending increases: %s vs %s\n", *d.Month, *d.PreviousMonth)

	t := newTable(w)
	t.AppendHeader(table.Row{"Category / Merchant", "Delta", "Current", "Previous"})
	for _, cd := range d.TopCategoryIncreases {
		t.AppendRow(table.Row{cd.Category, c.FormatSigned(cd.Delta), c.Format(cd.Current), c.Format(cd.Previous)})
		for _, md := range cd.TopMerchants {
			t.AppendRow(table.Row{"  " + md.Merchant, c.FormatSigned(md.Delta), c.Format(md.Current), c.Format(md.Previous)})
		}
		t.AppendSeparator()
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	t.Render()
}

// PrintAnomalies renders unusual outgoing charges, newest first.
func PrintAnomalies(w io.Writer, a analytics.Anomalies, c Currency) {
	fmt.Fprintf(w, "Found %d unusual charges in the last %d days\n", len(a.Anomalies), a.Days)

	t := newTable(w)
	t.AppendHeader(table.Row{"Date", "Merchant", "Amount", "Reason"})
	for _, an := range a.Anomalies {
		t.AppendRow(table.Row{
			an.PostedDate.Format(model.DateFormat),
			an.Merchant,
			c.FormatSigned(an.Amount),
			an.Reason,
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})
	t.Render()
}

// PrintRecurring renders detected recurring charges with an annualized total
// footer.
func PrintRecurring(w io.Writer, cands []recurring.Candidate, c Currency) {
	fmt.Fprintf(w, "Found %d recurring charges\n", len(cands))

	var annualTotal float64
	t := newTable(w)
	t.AppendHeader(table.Row{"Merchant", "Cadence", "Avg", "Last Charged", "Count", "Yearly", "Confidence", "Flags"})
	for _, cand := range cands {
		annualTotal += cand.AnnualizedCost

		flags := ""
		if cand.Flags.TrialToPaid {
			flags = "trial-to-paid"
		}
		if cand.Flags.PriceIncrease {
			if flags != "" {
				flags += ", "
			}
			flags += text.FgYellow.Sprint("price increase")
		}

		t.AppendRow(table.Row{
			cand.Merchant,
			string(cand.Cadence),
			c.Format(cand.AvgAmount),
			cand.LastChargedDate,
			cand.OccurrencesCount,
			c.Format(cand.AnnualizedCost),
			fmt.Sprintf("%.2f", cand.Confidence),
			flags,
		})
	}

	t.AppendSeparator()
	t.AppendFooter(table.Row{"", "", "", "", text.Bold.Sprint("Total"),
		text.Bold.Sprint(c.Format(annualTotal)), "", ""})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	t.Render()
}

// PrintInsights renders the insight cards as readable blocks rather than a
// table, one block per card.
func PrintInsights(w io.Writer, cards []insights.Card) {
	for i, card := range cards {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, text.Bold.Sprint(card.Title))
		fmt.Fprintf(w, "  %s\n", card.Metric)
		fmt.Fprintf(w, "  why: %s\n", card.Why)
		fmt.Fprintf(w, "  action: %s\n", card.Action)
		if card.Drilldown.Type != "none" && card.Drilldown.Type != "" {
			fmt.Fprintf(w, "  see: %s %s\n", card.Drilldown.Type, card.Drilldown.Value)
		}
	}
}

// PrintTransactions renders a transaction listing.
func PrintTransactions(w io.Writer, txs []model.Transaction, c Currency) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Date", "Merchant", "Category", "Account", "Amount"})
	var net float64
	for _, tx := range txs {
		net += tx.Amount
		t.AppendRow(table.Row{
			tx.PostedDate.Format(model.DateFormat),
			tx.Merchant,
			tx.Category,
			tx.AccountID,
			c.FormatSigned(tx.Amount),
		})
	}
	t.AppendSeparator()
	t.AppendFooter(table.Row{"", "", "", text.Bold.Sprint("Net"),
		text.Bold.Sprint(c.FormatSigned(math.Round(net*100) / 100))})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 5, Align: text.AlignRight}})
	t.Render()
}

// PrintMonths lists the months present in the dataset.
func PrintMonths(w io.Writer, months []string) {
	if len(months) == 0 {
		fmt.Fprintln(w, "No months available")
		return
	}
	for _, m := range months {
		fmt.Fprintln(w, m)
	}
}
