package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"xapi-connector/src/models"
	"xapi-connector/src/stream"
	"xapi-connector/src/xapi"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	streamDuration   time.Duration
	streamMinArrival int
)

func init() {
	streamTicksCmd.Flags().DurationVar(&streamDuration, "duration", 0, "stop after this long (default: until interrupted)")
	streamTicksCmd.Flags().IntVar(&streamMinArrival, "min-arrival", 0, "minimum interval between quotes in ms")
}

var streamTicksCmd = &cobra.Command{
	Use:   "stream-ticks SYMBOL...",
	Short: "Print live quotes from the streaming connection",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if streamDuration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, streamDuration)
			defer cancel()
		}

		return withSession(ctx, func(ctx context.Context, c *xapi.Client) error {
			s, err := stream.NewClientFromConfig(c, &conf.Xapi, cliLogger("stream"))
			if err != nil {
				return err
			}
			if err := s.Connect(ctx); err != nil {
				return err
			}
			defer s.Close()

			for _, sym := range args {
				if err := s.SubscribeTickPrices(ctx, sym, streamMinArrival, 0); err != nil {
					return err
				}
			}
			if err := s.SubscribeKeepAlive(ctx); err != nil {
				return err
			}
			pterm.Info.Printfln("streaming %d symbols from %s, Ctrl+C to stop", len(args), c.Address())

			enc := json.NewEncoder(os.Stdout)
			err = s.Listen(ctx, stream.Handlers{
				OnTick: func(t models.MStreamTick) {
					if globalFlags.Output == "json" {
						enc.Encode(t)
						return
					}
					pterm.Printfln("%s  %-10s bid %-12s ask %-12s level %d",
						msTime(t.Timestamp), t.Symbol, num(t.Bid), num(t.Ask), t.Level)
				},
				OnError: func(err error) {
					pterm.Warning.Printfln("skipped message: %v", err)
				},
			})
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		})
	},
}
