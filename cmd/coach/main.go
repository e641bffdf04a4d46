package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"

	"github.com/rimjhimsingh/smart-financial-coach/internal/analytics"
	"github.com/rimjhimsingh/smart-financial-coach/internal/config"
	"github.com/rimjhimsingh/smart-financial-coach/internal/ingest"
	"github.com/rimjhimsingh/smart-financial-coach/internal/insights"
	"github.com/rimjhimsingh/smart-financial-coach/internal/logger"
	"github.com/rimjhimsingh/smart-financial-coach/internal/model"
	"github.com/rimjhimsingh/smart-financial-coach/internal/output"
	"github.com/rimjhimsingh/smart-financial-coach/internal/recurring"
	"github.com/rimjhimsingh/smart-financial-coach/internal/store"
)

type Params struct {
	Files  []string `descr:"Transaction export files, optionally prefixed format: (e.g. bank-xlsx:export.xlsx)" positional:"true"`
	Report string   `descr:"Report to run" alts:"summary,charts,breakdown,deltas,anomalies,recurring,insights,transactions,months" strict:"true"`

	Month    string `descr:"Month to analyze (YYYY-MM, default latest)"`
	Category string `descr:"Category for the breakdown report"`
	Account  string `descr:"Filter transactions by account id"`

	MerchantLimit        int `descr:"Max merchants in the breakdown report (1-200)"`
	TxLimit              int `descr:"Max transactions in the breakdown report (1-500)"`
	TopK                 int `descr:"Max category increases in the deltas report (1-50)"`
	MerchantsPerCategory int `descr:"Max merchants per category in the deltas report (1-50)"`
	Days                 int `descr:"Anomaly lookback window in days (1-365)"`
	Limit                int `descr:"Max rows for anomalies and transactions (1-200)"`
	MinOccurrences       int `descr:"Min charges before a merchant counts as recurring (2-24)"`

	IncludeZeroTrials bool   `descr:"Keep all-zero charge groups in recurring detection"`
	JSON              bool   `descr:"Output JSON instead of tables"`
	Currency          string `descr:"Display currency code for tables"`
	Config            string `descr:"Path to config file"`
	Verbose           bool   `descr:"Enable debug logging"`
}

func main() {
	boa.NewCmdT[Params]("coach").
		WithShort("Analyze personal finance transactions").
		WithLong("Loads bank transaction exports and runs spending reports: month summaries, category drilldowns, month-over-month deltas, unusual charge detection and recurring subscription detection.").
		WithRunFunc(func(params *Params) {
			if err := run(params); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}).
		Run()
}

func run(params *Params) error {
	log := logger.New(params.Verbose)

	cfg, err := loadConfig(params.Config)
	if err != nil {
		return err
	}
	applyDefaults(params, cfg)

	st := store.New(log)
	sources := collectSources(params, cfg)
	if len(sources) > 0 {
		stats, err := st.LoadSources(sources)
		if err != nil {
			return err
		}
		log.Info().
			Int("rows", stats.TotalRows).
			Strs("accounts", stats.AccountsLoaded).
			Str("from", stats.DateMin).
			Str("to", stats.DateMax).
			Msg("dataset loaded")
	}

	txs := st.Transactions()
	cur := output.GetCurrency(displayCurrency(params, cfg, txs))
	w := os.Stdout

	switch params.Report {
	case "", "summary":
		result := analytics.Summarize(txs)
		if params.JSON {
			return output.PrintJSON(w, result)
		}
		output.PrintSummary(w, result, cur)

	case "charts":
		result, err := analytics.BuildCharts(txs, params.Month)
		if err != nil {
			return err
		}
		if params.JSON {
			return output.PrintJSON(w, result)
		}
		output.PrintCharts(w, result, cur)

	case "breakdown":
		result, err := analytics.CategoryBreakdown(txs, params.Month, params.Category,
			params.MerchantLimit, params.TxLimit)
		if err != nil {
			return err
		}
		if params.JSON {
			return output.PrintJSON(w, result)
		}
		output.PrintBreakdown(w, result, cur)

	case "deltas":
		result, err := analytics.MonthlyDeltas(txs, params.Month, params.TopK,
			params.MerchantsPerCategory)
		if err != nil {
			return err
		}
		if params.JSON {
			return output.PrintJSON(w, result)
		}
		output.PrintDeltas(w, result, cur)

	case "anomalies":
		result := analytics.DetectAnomalies(txs, params.Days, params.Limit)
		if params.JSON {
			return output.PrintJSON(w, result)
		}
		output.PrintAnomalies(w, result, cur)

	case "recurring":
		result := recurring.DetectByMerchant(txs, recurring.Options{
			MinOccurrences:    params.MinOccurrences,
			IncludeZeroTrials: params.IncludeZeroTrials,
		})
		if params.JSON {
			return output.PrintJSON(w, result)
		}
		output.PrintRecurring(w, result, cur)

	case "insights":
		cards := insights.FallbackCards(txs, params.Month)
		if params.JSON {
			return output.PrintJSON(w, cards)
		}
		output.PrintInsights(w, cards)

	case "transactions":
		rows := st.ListTransactions(params.Account, params.Limit)
		if params.JSON {
			return output.PrintJSON(w, rows)
		}
		output.PrintTransactions(w, rows, cur)

	case "months":
		months := analytics.AvailableMonths(txs)
		if params.JSON {
			return output.PrintJSON(w, months)
		}
		output.PrintMonths(w, months)

	default:
		return fmt.Errorf("unknown report: %s", params.Report)
	}

	return nil
}

// loadConfig loads the explicit config path, or the default path when it
// exists. A missing default config is not an error.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	def := config.DefaultConfigPath()
	if def == "" {
		return &config.Config{}, nil
	}
	if _, err := os.Stat(def); err != nil {
		return &config.Config{}, nil
	}
	return config.Load(def)
}

// applyDefaults fills unset report parameters from the config defaults,
// clamping everything to valid ranges.
func applyDefaults(params *Params, cfg *config.Config) {
	d := config.Defaults{
		MerchantLimit:        params.MerchantLimit,
		TxLimit:              params.TxLimit,
		TopK:                 params.TopK,
		MerchantsPerCategory: params.MerchantsPerCategory,
		Days:                 params.Days,
		Limit:                params.Limit,
		MinOccurrences:       params.MinOccurrences,
	}
	if d.MerchantLimit == 0 {
		d.MerchantLimit = cfg.Defaults.MerchantLimit
	}
	if d.TxLimit == 0 {
		d.TxLimit = cfg.Defaults.TxLimit
	}
	if d.TopK == 0 {
		d.TopK = cfg.Defaults.TopK
	}
	if d.MerchantsPerCategory == 0 {
		d.MerchantsPerCategory = cfg.Defaults.MerchantsPerCategory
	}
	if d.Days == 0 {
		d.Days = cfg.Defaults.Days
	}
	if d.Limit == 0 {
		d.Limit = cfg.Defaults.Limit
	}
	if d.MinOccurrences == 0 {
		d.MinOccurrences = cfg.Defaults.MinOccurrences
	}
	d = d.Clamped()

	params.MerchantLimit = d.MerchantLimit
	params.TxLimit = d.TxLimit
	params.TopK = d.TopK
	params.MerchantsPerCategory = d.MerchantsPerCategory
	params.Days = d.Days
	params.Limit = d.Limit
	params.MinOccurrences = d.MinOccurrences
}

// collectSources merges config accounts with positional file args. Positional
// files land in a synthetic "cli" account named after their position.
func collectSources(params *Params, cfg *config.Config) []store.Source {
	var sources []store.Source
	for _, acct := range cfg.Accounts {
		sources = append(sources, store.Source{
			AccountID: acct.ID,
			Format:    acct.Format,
			Path:      acct.File,
		})
	}
	for i, file := range params.Files {
		format, path := ingest.ParseFileArg(file)
		sources = append(sources, store.Source{
			AccountID: fmt.Sprintf("cli-%d", i+1),
			Format:    format,
			Path:      path,
		})
	}
	return sources
}

// displayCurrency picks the table currency: flag, then config, then the
// dataset's first row, then USD.
func displayCurrency(params *Params, cfg *config.Config, txs []model.Transaction) string {
	if params.Currency != "" {
		return strings.ToUpper(params.Currency)
	}
	if cfg.Currency != "" {
		return strings.ToUpper(cfg.Currency)
	}
	for _, tx := range txs {
		if tx.Currency != "" {
			return tx.Currency
		}
	}
	return model.DefaultCurrency
}
