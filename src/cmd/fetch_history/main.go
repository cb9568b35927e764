package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jklein88/finq/src/equity"
	"github.com/jklein88/finq/src/httpcache"
	"github.com/jklein88/finq/src/models"
	"github.com/jklein88/finq/src/providers/polygon"
	"github.com/jklein88/finq/src/utils"
)

type RunArgs struct {
	GoEnv    string
	Symbol   string
	Start    string
	Days     int
	Provider string
	CsvDir   string
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/fetch_history/main.go --symbol AAPL --days 30",
	Short: "Fetch daily OHLCV history for a symbol and render it as a table or CSV",
	Run: func(cmd *cobra.Command, args []string) {
		goEnv, err := cmd.Flags().GetString("go-env")
		if err != nil {
			log.Fatalf("error getting go-env: %v", err)
		}

		symbol, err := cmd.Flags().GetString("symbol")
		if err != nil {
			log.Fatalf("error getting symbol: %v", err)
		}

		start, err := cmd.Flags().GetString("start")
		if err != nil {
			log.Fatalf("error getting start: %v", err)
		}

		days, err := cmd.Flags().GetInt("days")
		if err != nil {
			log.Fatalf("error getting days: %v", err)
		}

		provider, err := cmd.Flags().GetString("provider")
		if err != nil {
			log.Fatalf("error getting provider: %v", err)
		}

		csvDir, err := cmd.Flags().GetString("csv-dir")
		if err != nil {
			log.Fatalf("error getting csv-dir: %v", err)
		}

		if err := Run(RunArgs{
			GoEnv:    goEnv,
			Symbol:   symbol,
			Start:    start,
			Days:     days,
			Provider: provider,
			CsvDir:   csvDir,
		}); err != nil {
			log.Fatalf("Error: %v", err)
		}
	},
}

func Run(args RunArgs) error {
	if err := utils.InitEnvironmentVariables(args.GoEnv); err != nil {
		return fmt.Errorf("Run: failed to load environment variables: %w", err)
	}

	cfg := equity.DefaultConfig()
	if args.Start != "" {
		start, err := time.Parse("2006-01-02", args.Start)
		if err != nil {
			return fmt.Errorf("Run: failed to parse start date: %w", err)
		}
		cfg.HistoryStart = start
	}

	opts := []equity.Option{equity.WithConfig(cfg)}

	if args.Provider == "polygon" {
		apiKey := os.Getenv("POLYGON_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("Run: missing POLYGON_API_KEY environment variable")
		}

		session, err := httpcache.NewSession(httpcache.Config{TTL: cfg.CacheTTL})
		if err != nil {
			return fmt.Errorf("Run: failed to create session: %w", err)
		}
		defer session.Close()

		opts = append(opts, equity.WithSession(session), equity.WithProvider(polygon.NewClient(apiKey, session)))
	}

	eq, err := equity.New(args.Symbol, opts...)
	if err != nil {
		return fmt.Errorf("Run: failed to create equity: %w", err)
	}
	defer eq.Close()

	ctx := context.Background()

	data, err := eq.TradingData(ctx)
	if err != nil {
		return fmt.Errorf("Run: failed to fetch trading data: %w", err)
	}

	bars := data.Bars
	if args.Days > 0 && len(bars) > args.Days {
		bars = bars[len(bars)-args.Days:]
	}

	if args.CsvDir != "" {
		outPath, err := utils.ExportBarsToCsv(args.CsvDir, args.Symbol, bars)
		if err != nil {
			return fmt.Errorf("Run: failed to export csv: %w", err)
		}

		log.Infof("wrote %d bars to %s", len(bars), outPath)
		return nil
	}

	renderBars(bars)

	vol, err := eq.HistVol(ctx, 30, time.Time{})
	if err != nil {
		log.Warnf("failed to compute 30d historical volatility: %v", err)
	} else {
		fmt.Printf("30d historical vol (annualized): %.4f\n", vol)
	}

	vwap, err := eq.VWAP(ctx, 30, time.Time{})
	if err != nil {
		log.Warnf("failed to compute 30d vwap: %v", err)
	} else {
		fmt.Printf("30d vwap: %.2f\n", vwap)
	}

	return nil
}

func renderBars(bars []models.Bar) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Date", "Open", "High", "Low", "Close", "Adj Close", "Volume"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, b := range bars {
		table.Append([]string{
			b.Date.Format("2006-01-02"),
			fmt.Sprintf("%.2f", b.Open),
			fmt.Sprintf("%.2f", b.High),
			fmt.Sprintf("%.2f", b.Low),
			fmt.Sprintf("%.2f", b.Close),
			fmt.Sprintf("%.2f", b.AdjClose),
			fmt.Sprintf("%d", b.Volume),
		})
	}

	table.Render()
}

func main() {
	runCmd.PersistentFlags().String("go-env", "development", "The go environment to run the command in")
	runCmd.PersistentFlags().String("symbol", "", "The stock symbol to fetch")
	runCmd.PersistentFlags().String("start", "", "History start date, YYYY-MM-DD")
	runCmd.PersistentFlags().Int("days", 0, "Show only the trailing N bars")
	runCmd.PersistentFlags().String("provider", "yahoo", "Data provider: yahoo or polygon")
	runCmd.PersistentFlags().String("csv-dir", "", "Export bars as CSV into this directory instead of printing")
	runCmd.MarkPersistentFlagRequired("symbol")

	runCmd.Execute()
}
