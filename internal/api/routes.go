package api

const (
	HealthCheckRoute = "/healthz"
	MetricsRoute     = "/metrics"

	TokenRoute = "/api/token"
	MeRoute    = "/api/me"

	ForecastParent      = "/weatherforecast"
	ForecastRoute       = ForecastParent
	ForecastAllRoute    = ForecastParent + "/all"
	ForecastAddRoute    = ForecastParent + "/add"
	ForecastUpdateRoute = ForecastParent + "/update/{oldValue}"
	ForecastDeleteRoute = ForecastParent + "/delete/{value}"
)
