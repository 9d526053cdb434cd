package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/flowsmith/flowsmith/pkg/builder"
)

// Builder holds the builder-level collectors: validation verdicts and
// store mutations. HTTP transport metrics live in the HTTP adapter, next
// to the router that labels them.
type Builder struct {
	Validations *prometheus.CounterVec
	Saves       prometheus.Counter
	Deletes     prometheus.Counter
	Exports     *prometheus.CounterVec
}

// NewBuilder registers the builder collectors with reg. Pass
// prometheus.DefaultRegisterer outside of tests.
func NewBuilder(reg prometheus.Registerer) *Builder {
	factory := promauto.With(reg)

	return &Builder{
		Validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowsmith_validations_total",
				Help: "Total number of snapshot validations by verdict",
			},
			[]string{"result"},
		),
		Saves: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "flowsmith_flow_saves_total",
				Help: "Total number of flows saved",
			},
		),
		Deletes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "flowsmith_flow_deletes_total",
				Help: "Total number of flows deleted",
			},
		),
		Exports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowsmith_flow_exports_total",
				Help: "Total number of flow exports by format",
			},
			[]string{"format"},
		),
	}
}

// ObserveValidation records one validation verdict.
func (b *Builder) ObserveValidation(valid bool) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	b.Validations.WithLabelValues(result).Inc()
}

// Hooks returns builder hooks that feed these collectors.
func (b *Builder) Hooks() builder.Hooks {
	return builder.Hooks{
		OnValidate: func(_ context.Context, e *builder.ValidateEvent) {
			b.ObserveValidation(e.Verdict.Valid)
		},
		OnSave: func(_ context.Context, _ *builder.SaveEvent) {
			b.Saves.Inc()
		},
		OnDelete: func(_ context.Context, _ *builder.DeleteEvent) {
			b.Deletes.Inc()
		},
		OnExport: func(_ context.Context, e *builder.ExportEvent) {
			b.Exports.WithLabelValues(e.Format).Inc()
		},
	}
}
