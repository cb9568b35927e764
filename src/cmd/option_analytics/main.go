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
	"github.com/jklein88/finq/src/options"
	"github.com/jklein88/finq/src/utils"
)

type RunArgs struct {
	GoEnv  string
	Symbol string
	Strike float64
	Expiry string
	Type   string
	Price  float64
	Vol    float64
	Rate   float64
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/option_analytics/main.go --symbol AAPL --strike 200 --expiry 2026-12-18 --type call",
	Short: "Price an option contract and report its Greeks and implied volatility",
	Run: func(cmd *cobra.Command, args []string) {
		goEnv, err := cmd.Flags().GetString("go-env")
		if err != nil {
			log.Fatalf("error getting go-env: %v", err)
		}

		symbol, err := cmd.Flags().GetString("symbol")
		if err != nil {
			log.Fatalf("error getting symbol: %v", err)
		}

		strike, err := cmd.Flags().GetFloat64("strike")
		if err != nil {
			log.Fatalf("error getting strike: %v", err)
		}

		expiry, err := cmd.Flags().GetString("expiry")
		if err != nil {
			log.Fatalf("error getting expiry: %v", err)
		}

		optionType, err := cmd.Flags().GetString("type")
		if err != nil {
			log.Fatalf("error getting type: %v", err)
		}

		price, err := cmd.Flags().GetFloat64("price")
		if err != nil {
			log.Fatalf("error getting price: %v", err)
		}

		vol, err := cmd.Flags().GetFloat64("vol")
		if err != nil {
			log.Fatalf("error getting vol: %v", err)
		}

		rate, err := cmd.Flags().GetFloat64("rate")
		if err != nil {
			log.Fatalf("error getting rate: %v", err)
		}

		if err := Run(RunArgs{
			GoEnv:  goEnv,
			Symbol: symbol,
			Strike: strike,
			Expiry: expiry,
			Type:   optionType,
			Price:  price,
			Vol:    vol,
			Rate:   rate,
		}); err != nil {
			log.Fatalf("Error: %v", err)
		}
	},
}

func Run(args RunArgs) error {
	if err := utils.InitEnvironmentVariables(args.GoEnv); err != nil {
		return fmt.Errorf("Run: failed to load environment variables: %w", err)
	}

	expiry, err := time.Parse("2006-01-02", args.Expiry)
	if err != nil {
		return fmt.Errorf("Run: failed to parse expiry: %w", err)
	}

	eq, err := equity.New(args.Symbol)
	if err != nil {
		return fmt.Errorf("Run: failed to create equity: %w", err)
	}
	defer eq.Close()

	params := options.Params{
		Strike:     args.Strike,
		Expiration: expiry,
		Type:       args.Type,
	}

	if args.Price > 0 {
		params.Price = &args.Price
	}
	if args.Vol > 0 {
		params.Vol = &args.Vol
	}
	if args.Rate > 0 {
		params.Rate = &args.Rate
	}

	ctx := context.Background()

	opt, err := eq.Option(ctx, params)
	if err != nil {
		return fmt.Errorf("Run: failed to build option: %w", err)
	}

	value, err := opt.Value()
	if err != nil {
		return fmt.Errorf("Run: failed to price option: %w", err)
	}

	delta, _ := opt.Delta()
	gamma, _ := opt.Gamma()
	theta, _ := opt.Theta()
	vega, _ := opt.Vega()
	rho, _ := opt.Rho()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	table.Append([]string{"type", string(opt.Type())})
	table.Append([]string{"days to expiration", fmt.Sprintf("%d", opt.DaysToExpiration())})
	table.Append([]string{"rate", fmt.Sprintf("%.4f", opt.Rate())})
	table.Append([]string{"value", fmt.Sprintf("%.4f", value)})
	table.Append([]string{"delta", fmt.Sprintf("%.4f", delta)})
	table.Append([]string{"gamma", fmt.Sprintf("%.6f", gamma)})
	table.Append([]string{"theta", fmt.Sprintf("%.4f", theta)})
	table.Append([]string{"vega", fmt.Sprintf("%.4f", vega)})
	table.Append([]string{"rho", fmt.Sprintf("%.4f", rho)})

	if args.Price > 0 {
		iv, err := opt.ImpliedVolatility()
		if err != nil {
			log.Warnf("failed to solve implied volatility: %v", err)
		} else {
			table.Append([]string{"implied vol", fmt.Sprintf("%.4f", iv)})
		}
	}

	table.Render()

	return nil
}

func main() {
	runCmd.PersistentFlags().String("go-env", "development", "The go environment to run the command in")
	runCmd.PersistentFlags().String("symbol", "", "The underlying stock symbol")
	runCmd.PersistentFlags().Float64("strike", 0, "The strike price")
	runCmd.PersistentFlags().String("expiry", "", "The expiration date, YYYY-MM-DD")
	runCmd.PersistentFlags().String("type", "call", "The contract type: c, call, p, or put")
	runCmd.PersistentFlags().Float64("price", 0, "Observed market price (enables implied volatility)")
	runCmd.PersistentFlags().Float64("vol", 0, "Volatility assumption as a decimal fraction")
	runCmd.PersistentFlags().Float64("rate", 0, "Risk-free rate as a decimal fraction")
	runCmd.MarkPersistentFlagRequired("symbol")
	runCmd.MarkPersistentFlagRequired("strike")
	runCmd.MarkPersistentFlagRequired("expiry")

	runCmd.Execute()
}
