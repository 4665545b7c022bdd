package predictor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	modelTree     = "xgboost"
	modelForecast = "prophet"
)

var (
	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salesd",
			Subsystem: "model",
			Name:      "predictions_total",
			Help:      "Total prediction calls by model and outcome",
		},
		[]string{"model", "outcome"},
	)

	predictionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "salesd",
			Subsystem: "model",
			Name:      "prediction_duration_seconds",
			Help:      "Model evaluation latency in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"model"},
	)
)

func init() {
	prometheus.MustRegister(predictionsTotal, predictionDuration)
}

// observe records one prediction call. err decides the outcome label.
func observe(model string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case IsInvalidInput(err):
		outcome = "invalid_input"
	case IsModelUnavailable(err):
		outcome = "unavailable"
	default:
		outcome = "error"
	}
	predictionsTotal.WithLabelValues(model, outcome).Inc()
	predictionDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())
}
