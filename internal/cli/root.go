// Package cli implements the tradejournal command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tradeJournal/internal/app"
)

// Env is what the subcommands run against.
type Env struct {
	Service *app.JournalService
	UserID  string
	Close   func() error
}

// GlobalFlags are the persistent flags shared by every subcommand.
type GlobalFlags struct {
	UserID       string
	Strict       bool
	MarkToMarket bool
}

// EnvFactory builds the environment once flags are parsed.
type EnvFactory func(ctx context.Context, flags GlobalFlags) (*Env, error)

// NewRootCommand assembles the command tree. Subcommands receive the environment built
// by factory; help and completion never build one.
func NewRootCommand(factory EnvFactory) *cobra.Command {
	var (
		flags GlobalFlags
		env   *Env
	)

	getEnv := func() *Env { return env }

	root := &cobra.Command{
		Use:   "tradejournal",
		Short: "Trade accounting and performance statistics for a trading journal",
		Long: `tradejournal reads journal entries from the configured trade source
(TRADE_SOURCE=supabase|rest|sqlite), computes per-trade P&L and aggregates
portfolio statistics.

Example:
  tradejournal stats
  tradejournal trades --status closed
  tradejournal export --dir ./exports
  tradejournal record --instrument BTCUSD --side buy --entry 65000 --size 0.1`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			built, err := factory(cmd.Context(), flags)
			if err != nil {
				return fmt.Errorf("startup failed: %w", err)
			}
			env = built
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if env != nil && env.Close != nil {
				return env.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&flags.UserID, "user", "u", "", "user id (overrides USER_ID)")
	root.PersistentFlags().BoolVar(&flags.Strict, "strict", false, "fail on any malformed trade record")
	root.PersistentFlags().BoolVar(&flags.MarkToMarket, "mark", false, "mark open trades to market")

	root.AddCommand(
		statsCmd(getEnv),
		tradesCmd(getEnv),
		exportCmd(getEnv),
		recordCmd(getEnv),
		deleteCmd(getEnv),
	)
	return root
}

// Execute runs the command line with the production environment.
func Execute(ctx context.Context) error {
	return NewRootCommand(Bootstrap).ExecuteContext(ctx)
}
