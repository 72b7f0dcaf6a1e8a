package httpq

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Translated query strings by outcome: "ok" or "invalid".
	TranslationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: `querystr`,
			Name:      `translations_total`,
			Help:      `Total number of translated query strings`,
		},
		[]string{`status`},
	)

	// Time spent translating one query string.
	TranslationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: `querystr`,
			Name:      `translation_duration_seconds`,
			Help:      `Query string translation latency in seconds`,
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
	)
)

const (
	statusOK      = `ok`
	statusInvalid = `invalid`
)
