package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tradeJournal/internal/app"
)

func statsCmd(env func() *Env) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show portfolio statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := env()
			dash, err := e.Service.Dashboard(cmd.Context(), e.UserID)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(dash.Stats)
			}
			return printStats(cmd.OutOrStdout(), dash)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print statistics as JSON")
	return cmd
}

func printStats(out io.Writer, dash *app.Dashboard) error {
	s := dash.Stats
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Trades\t%d (%d closed, %d open, %d cancelled)\n", s.TotalTrades, s.ClosedTrades, s.OpenTrades, s.CancelledTrades)
	fmt.Fprintf(w, "Wins / Losses\t%d / %d (%d breakeven)\n", s.WinningTrades, s.LosingTrades, s.BreakevenTrades)
	fmt.Fprintf(w, "Win rate\t%.1f%%\n", s.WinRate)
	fmt.Fprintf(w, "Net P&L\t%.2f\n", s.NetPnL)
	fmt.Fprintf(w, "Total profit / loss\t%.2f / %.2f\n", s.TotalProfit, s.TotalLoss)
	fmt.Fprintf(w, "Best / worst trade\t%.2f / %.2f\n", s.BestTrade, s.WorstTrade)
	fmt.Fprintf(w, "Profit factor\t%.2f\n", s.ProfitFactor)
	fmt.Fprintf(w, "Average win / loss\t%.2f / %.2f\n", s.AverageWin, s.AverageLoss)
	fmt.Fprintf(w, "Average R:R\t%.2f\n", s.AverageRiskReward)
	fmt.Fprintf(w, "Max drawdown\t%.2f\n", s.MaxDrawdown)
	if dash.UnrealizedPnL != 0 {
		fmt.Fprintf(w, "Unrealized P&L\t%.2f\n", dash.UnrealizedPnL)
	}
	if len(dash.Rejected) > 0 {
		fmt.Fprintf(w, "Skipped records\t%d\n", len(dash.Rejected))
	}

	if months := s.MonthlyReturns(); len(months) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Month\tP&L")
		for _, m := range months {
			fmt.Fprintf(w, "%s\t%.2f\n", m.Month.Format("2006-01"), m.PnL)
		}
	}
	return w.Flush()
}
