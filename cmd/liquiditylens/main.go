// LiquidityLens — US dollar liquidity conditions tracker.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/macrolens/liquiditylens/api"
	"github.com/macrolens/liquiditylens/internal/config"
	"github.com/macrolens/liquiditylens/internal/datasource"
	"github.com/macrolens/liquiditylens/internal/liquidity"
	"github.com/macrolens/liquiditylens/internal/provider"
	"github.com/macrolens/liquiditylens/internal/providers"
	"github.com/macrolens/liquiditylens/internal/report"
	"github.com/macrolens/liquiditylens/pkg/models"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "liquiditylens",
	Short: "LiquidityLens — US dollar liquidity conditions tracker",
	Long: `LiquidityLens tracks US dollar liquidity conditions from public data:
the effective federal funds rate, the Treasury yield curve, the 3-month
T-bill funding spread, and reserve balances held at the Fed. Each run
merges the series into a CSV frame, renders SVG charts, and prints a
daily conditions report. A built-in dashboard serves the results.

Running without a subcommand runs 'report'.`,
	RunE: runReport,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(releasesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// buildRegistry wires the data providers: FRED as primary for every
// series, NY Fed as fallback for the federal funds rate.
func buildRegistry() (*provider.Registry, error) {
	reg := provider.NewRegistry()
	err := providers.RegisterAll(reg, providers.Options{
		FREDAPIKey:  cfg.FRED.APIKey,
		FREDBaseURL: cfg.FRED.BaseURL,
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// collectRange returns the [start, end] window for a run, lookback
// days back from today.
func collectRange() (string, string) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -cfg.Range.LookbackDays)
	return start.Format("2006-01-02"), end.Format("2006-01-02")
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("LiquidityLens %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Report Command ---

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetch all indicators and write the CSV, charts, and daily report",
	Long: `Run a full collection pass: fetch the federal funds rate, the
Treasury yield curve, the 3-month T-bill, and reserve balances; merge
them into a date-aligned frame; write the CSV and SVG charts; and print
the daily liquidity conditions report.`,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reg, err := buildRegistry()
	if err != nil {
		return err
	}
	tracker := liquidity.NewTracker(reg, models.MaturityLabels())

	start, end := collectRange()
	fmt.Printf("📡 Collecting indicators %s → %s\n", start, end)

	res, err := tracker.Collect(ctx, start, end)
	if err != nil {
		return err
	}
	if !res.HasData() {
		return fmt.Errorf("no indicator data available: all %d fetches failed", len(res.Gaps))
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	out := report.Outputs{CSVPath: cfg.CSVPath(), ChartPath: cfg.ChartPath()}
	if err := report.WriteCSV(res.Frame, out.CSVPath); err != nil {
		return err
	}
	if err := writeCharts(res, out.ChartPath); err != nil {
		return err
	}

	releases := fetchReleases(ctx, 5)
	fmt.Print(report.Render(res, out, releases))
	return nil
}

// writeCharts renders the yield curve chart plus a per-indicator chart
// for the spread and reserve balances next to it.
func writeCharts(res *liquidity.Result, curvePath string) error {
	chartCfg := report.DefaultChartConfig()

	svg := report.YieldCurveChart(res.Snapshot, res.CurveStats, chartCfg)
	if err := os.WriteFile(curvePath, []byte(svg), 0o644); err != nil {
		return fmt.Errorf("write chart %s: %w", curvePath, err)
	}

	dir := filepath.Dir(curvePath)
	for _, ind := range []models.Indicator{models.IndicatorFundingSpread, models.IndicatorReserveBalances} {
		path := filepath.Join(dir, strings.ToLower(string(ind))+".svg")
		svg := report.IndicatorChart(res.Frame, string(ind), chartCfg)
		if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
			return fmt.Errorf("write chart %s: %w", path, err)
		}
	}
	return nil
}

// fetchReleases grabs recent data release headlines for the report
// footer. Failures never block a report.
func fetchReleases(ctx context.Context, limit int) []models.ReleaseEvent {
	feedCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	events, err := datasource.NewReleases().Recent(feedCtx, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  release feeds unavailable: %v\n", err)
		return nil
	}
	return events
}

// --- Fetch Command ---

// fetchSeriesByName maps CLI indicator names onto registry series types.
var fetchSeriesByName = map[string]provider.SeriesType{
	"fedfunds": provider.SeriesFederalFundsRate,
	"curve":    provider.SeriesYieldCurve,
	"tbill3m":  provider.SeriesTreasuryBill3M,
	"reserves": provider.SeriesReserveBalances,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [indicator]",
	Short: "Fetch one indicator and print its observations",
	Long: `Fetch a single indicator and print its raw observations.

Indicators: fedfunds, curve, tbill3m, reserves
Any other argument is fetched as a raw FRED series ID (e.g. SOFR).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		reg, err := buildRegistry()
		if err != nil {
			return err
		}

		start, end := collectRange()
		if s, _ := cmd.Flags().GetString("start"); s != "" {
			start = s
		}
		if e, _ := cmd.Flags().GetString("end"); e != "" {
			end = e
		}
		limit, _ := cmd.Flags().GetInt("limit")

		params := provider.QueryParams{
			provider.ParamStartDate: start,
			provider.ParamEndDate:   end,
		}

		name := strings.ToLower(args[0])
		series, ok := fetchSeriesByName[name]
		if !ok {
			series = provider.SeriesGeneric
			params[provider.ParamSeriesID] = args[0]
		}

		result, err := reg.FetchWithFallback(ctx, series, params)
		if err != nil {
			return err
		}

		fmt.Printf("📡 %s via %s (cached: %v)\n\n", series, result.Provider, result.Cached)
		switch data := result.Data.(type) {
		case *models.TimeSeries:
			printSeries(data, limit)
		case []models.YieldCurvePoint:
			printCurve(data, limit)
		default:
			fmt.Printf("%+v\n", data)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().String("start", "", "start date (YYYY-MM-DD)")
	fetchCmd.Flags().String("end", "", "end date (YYYY-MM-DD)")
	fetchCmd.Flags().Int("limit", 10, "max observations to print (0 = all)")
}

func printSeries(ts *models.TimeSeries, limit int) {
	fmt.Printf("%s (%s): %d observations\n", ts.Indicator, ts.Unit, ts.Len())
	obs := ts.Observations
	if limit > 0 && len(obs) > limit {
		obs = obs[len(obs)-limit:]
		fmt.Printf("(showing last %d)\n", limit)
	}
	for _, o := range obs {
		fmt.Printf("  %s  %s\n", o.Date.Format("2006-01-02"), strconv.FormatFloat(o.Value, 'f', -1, 64))
	}
}

func printCurve(points []models.YieldCurvePoint, limit int) {
	byDate := models.SnapshotsByDate(points)
	if limit > 0 && len(byDate) > limit {
		byDate = byDate[len(byDate)-limit:]
		fmt.Printf("(showing last %d snapshots)\n", limit)
	}
	for _, snap := range byDate {
		fmt.Printf("  %s:", snap.Date.Format("2006-01-02"))
		for _, p := range snap.Points {
			fmt.Printf("  %s=%.2f", p.Maturity, p.Rate)
		}
		fmt.Println()
	}
}

// --- Releases Command ---

var releasesCmd = &cobra.Command{
	Use:   "releases",
	Short: "List upcoming and recent economic data releases",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		limit, _ := cmd.Flags().GetInt("limit")
		calendar, _ := cmd.Flags().GetBool("calendar")
		src := datasource.NewReleases()

		var (
			events []models.ReleaseEvent
			err    error
		)
		if calendar {
			fmt.Println("📅 FRED Release Calendar")
			events, err = src.Calendar(ctx)
			if limit > 0 && len(events) > limit {
				events = events[:limit]
			}
		} else {
			fmt.Println("📰 Recent Data Releases")
			events, err = src.Recent(ctx, limit)
		}
		if err != nil {
			return err
		}
		for _, ev := range events {
			fmt.Printf("  %s  [%s] %s\n", ev.Published.Format("2006-01-02"), ev.Source, ev.Title)
		}
		return nil
	},
}

func init() {
	releasesCmd.Flags().Int("limit", 10, "max events to print")
	releasesCmd.Flags().Bool("calendar", false, "scrape the FRED release calendar instead of news feeds")
}

// --- Serve Command (Dashboard) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	Long: `Serve the liquidity dashboard and JSON API. The server reads the
CSV written by 'report' and pushes updates to connected dashboards
over WebSocket whenever the file changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("🌐 LiquidityLens dashboard on http://%s\n", addr)
		fmt.Printf("   data: %s\n", cfg.CSVPath())

		srv := api.NewServer(cfg)
		if noUI, _ := cmd.Flags().GetBool("no-ui"); noUI {
			srv.SetServeUI(false)
		}
		return srv.Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().Bool("no-ui", false, "serve only the JSON API, not the embedded dashboard")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  LiquidityLens — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:     %s (%s)\n", version, commit)
		fmt.Printf("  Time (UTC):  %s\n", time.Now().UTC().Format("2006-01-02 15:04:05"))
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Lookback:    %d days\n", cfg.Range.LookbackDays)
		fmt.Printf("    CSV:         %s\n", cfg.CSVPath())
		fmt.Printf("    Chart:       %s\n", cfg.ChartPath())
		fmt.Printf("    API Server:  %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-12s %s\n", k.Name+":", status)
		}
		fmt.Println()

		fmt.Println("  Providers:")
		reg, err := buildRegistry()
		if err != nil {
			fmt.Printf("    ⚠️  %v\n", err)
		} else {
			for _, info := range reg.List() {
				p, _ := reg.Get(info.Name)
				status := "✅ reachable"
				if err := p.Ping(ctx); err != nil {
					status = fmt.Sprintf("❌ %v", err)
				}
				fmt.Printf("    %-12s %s\n", info.Name+":", status)
			}
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
