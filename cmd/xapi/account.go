package main

import (
	"context"
	"strconv"

	"xapi-connector/src/xapi"

	"github.com/spf13/cobra"
)

var tradesAll bool

func init() {
	tradesCmd.Flags().BoolVar(&tradesAll, "all", false, "include pending orders")
}

var tradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "List open positions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		return withSession(ctx, func(ctx context.Context, c *xapi.Client) error {
			trades, err := c.GetTrades(ctx, !tradesAll)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(trades))
			for _, t := range trades {
				rows = append(rows, []string{
					strconv.FormatInt(t.Order, 10), t.SymbolName(), t.Cmd.String(), num(t.Volume),
					num(t.OpenPrice), msTime(t.OpenTime), num(t.Sl), num(t.Tp), optNum(t.Profit),
				})
			}
			return render(trades, []string{"Order", "Symbol", "Cmd", "Volume", "Open", "Opened", "SL", "TP", "Profit"}, rows)
		})
	},
}

var marginCmd = &cobra.Command{
	Use:   "margin",
	Short: "Show balance and margin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		return withSession(ctx, func(ctx context.Context, c *xapi.Client) error {
			ml, err := c.GetMarginLevel(ctx)
			if err != nil {
				return err
			}
			return renderRecord(ml, [][]string{
				{"Balance", num(ml.Balance) + " " + ml.Currency},
				{"Equity", num(ml.Equity)},
				{"Credit", num(ml.Credit)},
				{"Margin", num(ml.Margin)},
				{"Free margin", num(ml.MarginFree)},
				{"Margin level", num(ml.MarginLevel) + " %"},
			})
		})
	},
}
