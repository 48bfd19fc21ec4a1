package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"datasync/core/provider"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchInterval time.Duration

// watchCmd keeps the collection in sync and logs every event
var watchCmd = &cobra.Command{
	Use:   "watch [endpoint]",
	Short: "Poll the configured endpoint and log collection changes",
	Long: `Fetches the configured endpoint repeatedly and logs every added, changed and
deleted object until interrupted. The interval comes from --interval or
PROVIDER_INTERVAL_MS.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := ""
		if len(args) == 1 {
			endpoint = args[0]
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := openSession(ctx, endpoint)
		if err != nil {
			return err
		}
		defer s.Close()

		interval := watchInterval
		if interval <= 0 {
			interval = s.cfg.Provider.Interval()
		}
		if interval <= 0 {
			return fmt.Errorf("watch needs a positive interval")
		}

		unsubscribe := s.provider.Bus().SubscribeAll(logEvent(s.log, provider.FieldKey(s.cfg.Provider.KeyField)))
		defer unsubscribe()

		s.log.Info("Watching", zap.String("endpoint", s.endpoint), zap.Duration("interval", interval))
		// A failed first pass is reported through the error event and the
		// loop keeps running.
		_, _ = s.provider.Request(ctx, s.endpoint, provider.Request{}, interval)
		<-ctx.Done()
		s.provider.Cancel()
		s.provider.Wait()
		s.log.Info("Stopped watching")
		return nil
	},
}

// logEvent logs provider events: collection changes at info, pass bookkeeping
// at debug and failures at error.
func logEvent(l *zap.Logger, keyOf provider.KeyFunc) func(string, provider.Event) {
	return func(name string, ev provider.Event) {
		short := strings.TrimPrefix(name, "provider:")
		fields := []zap.Field{zap.String("event", short), zap.String("pass_id", ev.PassID)}
		switch name {
		case provider.EventAdded, provider.EventChanged, provider.EventDeleted:
			if key, ok := keyOf(ev.Object); ok {
				fields = append(fields, zap.String("key", key))
			}
			l.Info("Object "+short, append(fields, zap.Any("object", ev.Object))...)
		case provider.EventError:
			l.Error("Pass failed", append(fields, zap.Error(ev.Err))...)
		default:
			l.Debug("Pass "+short, append(fields, zap.String("url", ev.URL), zap.Bool("changed", ev.Changed))...)
		}
	}
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Polling interval (overrides PROVIDER_INTERVAL_MS)")
	RootCmd.AddCommand(watchCmd)
}
