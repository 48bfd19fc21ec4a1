package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"datasync/core/loader"
	"datasync/core/logger"
	"datasync/core/metrics"
	"datasync/core/middleware/auth"
	"datasync/core/middleware/rayid"
	"datasync/core/provider"
	"datasync/feature/collection"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd keeps the collection in sync and serves it over HTTP
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Sync the configured endpoint and serve the collection over HTTP",
	Long: `Starts the repeating fetch described by the provider configuration and
exposes the collection, a manual refresh and Prometheus metrics over HTTP.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := openSession(ctx, "")
		if err != nil {
			return err
		}
		defer s.Close()
		logg := s.log
		cfg := s.cfg

		m := metrics.New("datasync")
		defer m.Observe(cfg.Provider.Name, s.provider)()

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			JSONEncoder:           json.Marshal,
			JSONDecoder:           json.Unmarshal,
		})

		mgr := loader.NewManager(logg)
		feature := collection.NewFeature(s.provider, s.endpoint, logg)
		defer feature.Service().Close()
		mgr.Register(feature)

		// Ray IDs first so every later log line carries one.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Debug("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		var public []string
		if cfg.Server.MetricsEnabled() {
			public = append(public, cfg.Server.MetricsPath)
			app.Get(cfg.Server.MetricsPath, adaptor.HTTPHandler(m.Handler()))
		}

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: public}))

		var router fiber.Router = app
		if prefix := cfg.Server.RoutePrefix(); prefix != "" {
			router = app.Group(prefix)
		}
		if err := mgr.LoadAll(router); err != nil {
			return err
		}

		if _, err := s.provider.Request(ctx, s.endpoint, provider.Request{}, cfg.Provider.Interval()); err != nil {
			logg.Warn("Initial pass failed", zap.Error(err))
		}

		errCh := make(chan error, 1)
		go func() {
			logg.Info("Starting server",
				zap.String("addr", cfg.Server.Addr()),
				zap.String("prefix", cfg.Server.RoutePrefix()),
			)
			errCh <- app.Listen(cfg.Server.Addr())
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logg.Info("Shutting down server...")
		s.provider.Cancel()
		return app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
