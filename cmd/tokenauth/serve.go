package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"golang.org/x/sync/errgroup"

	"github.com/MrEthical07/tokenauth/internal/api"
	otelexport "github.com/MrEthical07/tokenauth/metrics/export/otel"
)

const (
	ServerAddrKey       = "server.addr"
	OtelStdoutPeriodKey = "otel.stdout_interval"
)

func (c *cli) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the token HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := buildRuntime(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := rt.Close(); err != nil {
					log.Warn().Err(err).Msg("closing runtime")
				}
			}()

			logSecurityWarnings(rt.engine.SecurityReport())

			if period := c.v.GetDuration(OtelStdoutPeriodKey); period > 0 {
				shutdown, err := startStdoutMetrics(rt, period)
				if err != nil {
					return err
				}
				defer shutdown()
			}

			var backend api.Pinger
			if rt.store.Redis != nil {
				backend = rt.store.Redis
			}
			srv := api.NewServer(rt.engine, backend, log.Logger)

			return serve(ctx, &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           srv.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}, cfg.Server.ShutdownTimeout)
		},
	}

	cmd.Flags().String("addr", ":8080", "address to listen on")
	_ = c.v.BindPFlag(ServerAddrKey, cmd.Flags().Lookup("addr"))

	cmd.Flags().Duration("otel-stdout-interval", 0, "print OpenTelemetry metrics to stdout at this interval (0 disables)")
	_ = c.v.BindPFlag(OtelStdoutPeriodKey, cmd.Flags().Lookup("otel-stdout-interval"))

	return cmd
}

// serve runs server until ctx is cancelled, then drains it within timeout.
func serve(ctx context.Context, server *http.Server, timeout time.Duration) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", ln.Addr().String()).Msg("starting server")
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server crashed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down server")

		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("server exited")
	return nil
}

func startStdoutMetrics(rt *runtime, period time.Duration) (func(), error) {
	exp, err := stdoutmetric.New()
	if err != nil {
		return nil, fmt.Errorf("stdout metric exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(period))),
	)
	bridge, err := otelexport.New(provider.Meter("github.com/MrEthical07/tokenauth"), rt.engine)
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, err
	}

	return func() {
		if err := bridge.Close(); err != nil {
			log.Warn().Err(err).Msg("closing otel bridge")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("shutting down meter provider")
		}
	}, nil
}
