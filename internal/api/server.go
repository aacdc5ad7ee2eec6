package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/MrEthical07/tokenauth"
	"github.com/MrEthical07/tokenauth/internal/api/middleware"
	authmw "github.com/MrEthical07/tokenauth/middleware"
	"github.com/MrEthical07/tokenauth/metrics/export/prometheus"
)

// Pinger reports backend reachability for the health check.
// *credential.RedisStore satisfies it.
type Pinger interface {
	Ping(ctx context.Context) (time.Duration, error)
}

type Server struct {
	engine    *tokenauth.Engine
	exporter  *prometheus.Exporter
	backend   Pinger
	forecasts *forecastBoard
	logger    zerolog.Logger
}

// NewServer wires the HTTP surface around engine. backend may be nil when the
// identity store has no remote dependency.
func NewServer(engine *tokenauth.Engine, backend Pinger, logger zerolog.Logger) *Server {
	return &Server{
		engine:    engine,
		exporter:  prometheus.New(engine),
		backend:   backend,
		forecasts: newForecastBoard(),
		logger:    logger,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// public routes
	mux.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	mux.Handle("GET "+MetricsRoute, s.exporter.Handler())
	mux.HandleFunc("POST "+TokenRoute, s.handleToken)

	// bearer-protected routes
	protected := http.NewServeMux()
	protected.HandleFunc("GET "+MeRoute, s.handleMe)
	protected.HandleFunc("GET "+ForecastRoute, s.handleForecast)
	protected.HandleFunc("GET "+ForecastAllRoute, s.handleForecastSummaries)
	protected.HandleFunc("POST "+ForecastAddRoute, s.handleForecastAdd)
	protected.HandleFunc("PUT "+ForecastUpdateRoute, s.handleForecastUpdate)
	protected.HandleFunc("DELETE "+ForecastDeleteRoute, s.handleForecastDelete)

	guard := authmw.RequireTokenFunc(s.engine, s.reject)
	mux.Handle(MeRoute, guard(protected))
	mux.Handle(ForecastParent, guard(protected))
	mux.Handle(ForecastParent+"/", guard(protected))

	return middleware.CorrelationIDMiddleware(
		middleware.LoggingMiddleware(s.logger)(
			middleware.RecoverMiddleware(s.logger)(
				middleware.ClientIPMiddleware(
					mux))))
}
