package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tradeJournal/internal/domain"
)

func recordCmd(env func() *Env) *cobra.Command {
	var (
		instrument string
		side       string
		status     string
		notes      string
		entry      float64
		exit       float64
		size       float64
		stopLoss   float64
		takeProfit float64
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a trade in the local journal",
		Long: `Record stores a trade through the sqlite journal (TRADE_SOURCE=sqlite).
Prices too large for the price columns are scaled down and tagged in the notes.

Example:
  tradejournal record --instrument BTCUSD --side sell --entry 123456.78 --exit 120000 --size 0.5 --status closed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, ok := domain.ParseDirection(side)
			if !ok {
				return fmt.Errorf("unknown side %q (want buy, sell, long or short)", side)
			}
			st := domain.StatusOpen
			if status != "" {
				if st, ok = domain.ParseStatus(status); !ok {
					return fmt.Errorf("unknown status %q", status)
				}
			}

			trade := domain.Trade{
				Instrument:   instrument,
				Direction:    dir,
				EntryPrice:   entry,
				PositionSize: size,
				Status:       st,
			}
			if cmd.Flags().Changed("exit") {
				trade.ExitPrice = domain.Float(exit)
			}
			if cmd.Flags().Changed("stop-loss") {
				trade.StopLoss = domain.Float(stopLoss)
			}
			if cmd.Flags().Changed("take-profit") {
				trade.TakeProfit = domain.Float(takeProfit)
			}
			if notes != "" {
				trade.Notes = domain.String(notes)
			}

			e := env()
			id, err := e.Service.RecordTrade(cmd.Context(), e.UserID, trade)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&instrument, "instrument", "i", "", "instrument, e.g. EURUSD (required)")
	cmd.Flags().StringVarP(&side, "side", "s", "", "buy/long or sell/short (required)")
	cmd.Flags().Float64Var(&entry, "entry", 0, "entry price (required)")
	cmd.Flags().Float64Var(&size, "size", 0, "position size (required)")
	cmd.Flags().Float64Var(&exit, "exit", 0, "exit price")
	cmd.Flags().Float64Var(&stopLoss, "stop-loss", 0, "stop-loss price")
	cmd.Flags().Float64Var(&takeProfit, "take-profit", 0, "take-profit price")
	cmd.Flags().StringVar(&status, "status", "", "open, closed or cancelled (default open)")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")

	cmd.MarkFlagRequired("instrument")
	cmd.MarkFlagRequired("side")
	cmd.MarkFlagRequired("entry")
	cmd.MarkFlagRequired("size")
	return cmd
}

func deleteCmd(env func() *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trade-id>",
		Short: "Delete a trade from the local journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := env()
			return e.Service.DeleteTrade(cmd.Context(), e.UserID, args[0])
		},
	}
}
