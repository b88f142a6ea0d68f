package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tradeJournal/internal/domain"
)

func tradesCmd(env func() *Env) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "trades",
		Short: "List trades with their P&L",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter domain.TradeStatus
			if status != "" {
				parsed, ok := domain.ParseStatus(status)
				if !ok {
					return fmt.Errorf("unknown status %q", status)
				}
				filter = parsed
			}

			e := env()
			dash, err := e.Service.Dashboard(cmd.Context(), e.UserID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tINSTRUMENT\tSIDE\tENTRY\tEXIT\tSIZE\tSTATUS\tP&L\tP&L%\tRESULT")
			for _, v := range dash.Trades {
				if filter != "" && v.Status != filter {
					continue
				}
				exit := "-"
				if v.ExitPrice != nil {
					exit = formatPrice(*v.ExitPrice)
				}
				pnlText := fmt.Sprintf("%.2f", v.PnL.PnL)
				if v.Unrealized != nil {
					pnlText = fmt.Sprintf("(%.2f)", v.Unrealized.PnL)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%.2f\t%s\n",
					v.ID,
					formatDate(v),
					v.Instrument,
					strings.ToUpper(string(v.Direction)),
					formatPrice(v.EntryPrice),
					exit,
					formatPrice(v.PositionSize),
					v.Status,
					pnlText,
					v.PnL.PnLPercent,
					v.PnL.Result,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only show trades with this status (open, closed, cancelled)")
	return cmd
}
