package api

import (
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/tokenauth/internal/api/presenter"
)

const (
	forecastDays        = 5
	maxSummaryBytes     = 256
	maxSummaries        = 64
	minForecastCelsius  = -20
	forecastCelsiusSpan = 75
)

// Forecast is the sample protected resource.
type Forecast struct {
	Date         time.Time `json:"date"`
	TemperatureC int       `json:"temperatureC"`
	TemperatureF int       `json:"temperatureF"`
	Summary      string    `json:"summary"`
}

var errSummariesFull = errors.New("summary list is full")

// forecastBoard holds the summary vocabulary, capped at maxSummaries entries.
type forecastBoard struct {
	mu        sync.RWMutex
	summaries []string
}

func newForecastBoard() *forecastBoard {
	return &forecastBoard{summaries: []string{
		"Freezing", "Bracing", "Chilly", "Cool", "Mild", "Warm", "Balmy", "Hot", "Sweltering", "Scorching",
	}}
}

func (b *forecastBoard) list() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string(nil), b.summaries...)
}

func (b *forecastBoard) add(summary string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.summaries) >= maxSummaries {
		return nil, errSummariesFull
	}
	b.summaries = append(b.summaries, summary)
	return append([]string(nil), b.summaries...), nil
}

// update replaces every entry equal to oldValue.
func (b *forecastBoard) update(oldValue, newValue string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, v := range b.summaries {
		if v == oldValue {
			b.summaries[i] = newValue
		}
	}
	return append([]string(nil), b.summaries...)
}

// remove drops every entry containing value as a substring.
func (b *forecastBoard) remove(value string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.summaries[:0]
	for _, v := range b.summaries {
		if !strings.Contains(v, value) {
			kept = append(kept, v)
		}
	}
	clear(b.summaries[len(kept):])
	b.summaries = kept
	return append([]string(nil), b.summaries...)
}

func (b *forecastBoard) forecast(now time.Time, days int) []Forecast {
	summaries := b.list()
	out := make([]Forecast, 0, days)
	for i := 1; i <= days; i++ {
		c := minForecastCelsius + rand.IntN(forecastCelsiusSpan)
		f := Forecast{
			Date:         now.AddDate(0, 0, i),
			TemperatureC: c,
			TemperatureF: 32 + int(float64(c)/0.5556),
		}
		if len(summaries) > 0 {
			f.Summary = summaries[rand.IntN(len(summaries))]
		}
		out = append(out, f)
	}
	return out
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, s.forecasts.forecast(time.Now(), forecastDays), http.StatusOK)
}

func (s *Server) handleForecastSummaries(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, s.forecasts.list(), http.StatusOK)
}

// handleForecastAdd appends one summary given as a JSON string body.
func (s *Server) handleForecastAdd(w http.ResponseWriter, r *http.Request) {
	summary, ok := decodeSummary(w, r)
	if !ok {
		return
	}
	summaries, err := s.forecasts.add(summary)
	if err != nil {
		presenter.Error(w, r, err.Error(), http.StatusConflict)
		return
	}
	presenter.JSON(w, r, summaries, http.StatusOK)
}

func (s *Server) handleForecastUpdate(w http.ResponseWriter, r *http.Request) {
	summary, ok := decodeSummary(w, r)
	if !ok {
		return
	}
	presenter.JSON(w, r, s.forecasts.update(r.PathValue("oldValue"), summary), http.StatusOK)
}

func (s *Server) handleForecastDelete(w http.ResponseWriter, r *http.Request) {
	value := r.PathValue("value")
	if value == "" {
		presenter.Error(w, r, "value must not be empty", http.StatusBadRequest)
		return
	}
	presenter.JSON(w, r, s.forecasts.remove(value), http.StatusOK)
}

func decodeSummary(w http.ResponseWriter, r *http.Request) (string, bool) {
	var summary string
	if err := json.NewDecoder(io.LimitReader(r.Body, maxSummaryBytes)).Decode(&summary); err != nil {
		presenter.Error(w, r, "body must be a JSON string", http.StatusBadRequest)
		return "", false
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		presenter.Error(w, r, "summary must not be empty", http.StatusBadRequest)
		return "", false
	}
	return summary, true
}
