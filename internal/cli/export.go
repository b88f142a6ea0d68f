package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tradeJournal/internal/utils"
)

func exportCmd(env func() *Env) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export trades and the equity curve as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := env()
			dash, err := e.Service.Dashboard(cmd.Context(), e.UserID)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create export dir: %w", err)
			}

			stamp := dash.GeneratedAt.Format("20060102_150405")
			tradesPath := filepath.Join(dir, fmt.Sprintf("trades_%s_%s.csv", e.UserID, stamp))
			equityPath := filepath.Join(dir, fmt.Sprintf("equity_%s_%s.csv", e.UserID, stamp))

			rows := make([]utils.TradeRow, 0, len(dash.Trades))
			for _, v := range dash.Trades {
				rows = append(rows, utils.TradeRow{Trade: v.Trade, Result: v.PnL})
			}
			if err := utils.WriteTradesToCSV(rows, tradesPath); err != nil {
				return fmt.Errorf("write trades: %w", err)
			}
			if err := utils.WriteEquityCurveToCSV(dash.Stats.EquityCurve, equityPath); err != nil {
				return fmt.Errorf("write equity curve: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\nwrote %s\n", tradesPath, equityPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "./exports", "output directory")
	return cmd
}
