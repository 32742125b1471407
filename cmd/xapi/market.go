package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"xapi-connector/src/models"
	"xapi-connector/src/xapi"

	"github.com/spf13/cobra"
)

var (
	symbolsCategory string
	ticksLevel      int
	chartPeriod     string
	chartSince      time.Duration
)

func init() {
	symbolsCmd.Flags().StringVar(&symbolsCategory, "category", "", "only symbols of this category (FX, CRT, IND, STC, ...)")
	ticksCmd.Flags().IntVar(&ticksLevel, "level", 0, "depth level, -1 for all levels")
	chartCmd.Flags().StringVar(&chartPeriod, "period", "H1", "candle period: M1 M5 M15 M30 H1 H4 D1 W1 MN1")
	chartCmd.Flags().DurationVar(&chartSince, "since", 24*time.Hour, "how far back to start")
}

// -----------------------------------------------------------------------------

var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "List tradable symbols",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		return withSession(ctx, func(ctx context.Context, c *xapi.Client) error {
			all, err := c.GetAllSymbols(ctx)
			if err != nil {
				return err
			}

			symbols := make([]models.MSymbol, 0, len(all))
			for _, s := range all {
				if symbolsCategory == "" || strings.EqualFold(s.CategoryName, symbolsCategory) {
					symbols = append(symbols, s)
				}
			}
			sort.Slice(symbols, func(i, j int) bool { return symbols[i].Symbol < symbols[j].Symbol })

			rows := make([][]string, 0, len(symbols))
			for _, s := range symbols {
				rows = append(rows, []string{s.Symbol, s.CategoryName, s.Description, num(s.Bid), num(s.Ask), s.Currency})
			}
			return render(symbols, []string{"Symbol", "Category", "Description", "Bid", "Ask", "Currency"}, rows)
		})
	},
}

var symbolCmd = &cobra.Command{
	Use:   "symbol SYMBOL",
	Short: "Show one symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		return withSession(ctx, func(ctx context.Context, c *xapi.Client) error {
			s, err := c.GetSymbol(ctx, args[0])
			if err != nil {
				return err
			}
			return renderRecord(s, [][]string{
				{"Symbol", s.Symbol},
				{"Description", s.Description},
				{"Category", s.CategoryName},
				{"Group", s.GroupName},
				{"Bid / Ask", num(s.Bid) + " / " + num(s.Ask)},
				{"High / Low", num(s.High) + " / " + num(s.Low)},
				{"Precision", strconv.Itoa(s.Precision)},
				{"Contract size", strconv.FormatInt(s.ContractSize, 10)},
				{"Lots", fmt.Sprintf("%s .. %s step %s", num(s.LotMin), num(s.LotMax), num(s.LotStep))},
				{"Currency", s.Currency},
				{"Quote time", msTime(s.Time)},
			})
		})
	},
}

var serverTimeCmd = &cobra.Command{
	Use:   "server-time",
	Short: "Show the trading server clock",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		return withSession(ctx, func(ctx context.Context, c *xapi.Client) error {
			st, err := c.GetServerTime(ctx)
			if err != nil {
				return err
			}
			skew := time.Since(time.UnixMilli(st.Time)).Round(time.Millisecond)
			return renderRecord(st, [][]string{
				{"Time", msTime(st.Time)},
				{"Server string", st.TimeString},
				{"Local skew", skew.String()},
			})
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the xAPI version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		return withSession(ctx, func(ctx context.Context, c *xapi.Client) error {
			v, err := c.GetVersion(ctx)
			if err != nil {
				return err
			}
			return renderRecord(v, [][]string{{"Version", v.Version}})
		})
	},
}

// -----------------------------------------------------------------------------

var ticksCmd = &cobra.Command{
	Use:   "ticks SYMBOL...",
	Short: "Show current quotes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		return withSession(ctx, func(ctx context.Context, c *xapi.Client) error {
			prices, err := c.GetTickPrices(ctx, ticksLevel, args, 0)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(prices.Quotations))
			for _, t := range prices.Quotations {
				rows = append(rows, []string{t.Symbol, strconv.Itoa(t.Level), num(t.Bid), num(t.Ask), num(t.SpreadTable), msTime(t.Timestamp)})
			}
			return render(prices.Quotations, []string{"Symbol", "Level", "Bid", "Ask", "Spread", "Time"}, rows)
		})
	},
}

var chartCmd = &cobra.Command{
	Use:   "chart SYMBOL",
	Short: "Show recent candles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		period, ok := models.ParsePeriod(chartPeriod)
		if !ok {
			return fmt.Errorf("unknown period %q", chartPeriod)
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		return withSession(ctx, func(ctx context.Context, c *xapi.Client) error {
			start := time.Now().Add(-chartSince).UnixMilli()
			chart, err := c.GetChartLastRequest(ctx, period, start, args[0])
			if err != nil {
				return err
			}
			// Prices are in points: open is scaled by digits, the rest are offsets from open.
			scale := 1.0
			for i := 0; i < chart.Digits; i++ {
				scale *= 10
			}
			rows := make([][]string, 0, len(chart.RateInfos))
			for _, r := range chart.RateInfos {
				open := r.Open / scale
				rows = append(rows, []string{
					msTime(r.Ctm), num(open), num(open + r.High/scale), num(open + r.Low/scale), num(open + r.Close/scale), num(r.Vol),
				})
			}
			return render(chart, []string{"Time", "Open", "High", "Low", "Close", "Volume"}, rows)
		})
	},
}

// -----------------------------------------------------------------------------

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show the economic calendar",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		return withSession(ctx, func(ctx context.Context, c *xapi.Client) error {
			events, err := c.GetCalendar(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(events))
			for _, e := range events {
				rows = append(rows, []string{msTime(e.Time), e.Country, e.Impact, e.Title, e.Forecast, e.Previous, e.Current})
			}
			return render(events, []string{"Time", "Country", "Impact", "Title", "Forecast", "Previous", "Current"}, rows)
		})
	},
}

var tradingHoursCmd = &cobra.Command{
	Use:   "trading-hours SYMBOL...",
	Short: "Show quoting and trading sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		return withSession(ctx, func(ctx context.Context, c *xapi.Client) error {
			hours, err := c.GetTradingHours(ctx, args)
			if err != nil {
				return err
			}
			var rows [][]string
			for _, h := range hours {
				for _, q := range h.Trading {
					rows = append(rows, []string{h.Symbol, "trading", weekday(q.Day), msOfDay(q.FromT), msOfDay(q.ToT)})
				}
				for _, q := range h.Quotes {
					rows = append(rows, []string{h.Symbol, "quotes", weekday(q.Day), msOfDay(q.FromT), msOfDay(q.ToT)})
				}
			}
			return render(hours, []string{"Symbol", "Session", "Day", "From", "To"}, rows)
		})
	},
}

var commissionCmd = &cobra.Command{
	Use:   "commission SYMBOL VOLUME",
	Short: "Calculate the commission of a trade",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		volume, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid volume %q: %w", args[1], err)
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		return withSession(ctx, func(ctx context.Context, c *xapi.Client) error {
			comm, err := c.GetCommissionDef(ctx, args[0], volume)
			if err != nil {
				return err
			}
			return renderRecord(comm, [][]string{
				{"Commission", num(comm.Commission)},
				{"Rate of exchange", num(comm.RateOfExchange)},
			})
		})
	},
}
