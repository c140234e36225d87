package app

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ayusman/mudra/internal/pointer"
)

const instrumentationName = "github.com/ayusman/mudra/internal/app"

// loopMetrics counts frame loop outcomes on the global OTel meter
// (no-op unless a provider is installed).
type loopMetrics struct {
	mode     metric.MeasurementOption
	frames   metric.Int64Counter
	detected metric.Int64Counter
	presses  metric.Int64Counter
	releases metric.Int64Counter
	errors   metric.Int64Counter
}

func newLoopMetrics(mode pointer.Mode) (*loopMetrics, error) {
	m := otel.Meter(instrumentationName)
	lm := &loopMetrics{
		mode: metric.WithAttributes(attribute.String("mode", string(mode))),
	}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&lm.frames, "mudra.frames", "Camera frames read"},
		{&lm.detected, "mudra.frames.detected", "Frames with a detected hand or face"},
		{&lm.presses, "mudra.clicks.pressed", "Mouse button presses issued"},
		{&lm.releases, "mudra.clicks.released", "Mouse button releases issued"},
		{&lm.errors, "mudra.frames.errors", "Frames skipped after a detection or mapping error"},
	}
	for _, c := range counters {
		counter, err := m.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("create %s counter: %w", c.name, err)
		}
		*c.dst = counter
	}
	return lm, nil
}

func (m *loopMetrics) add(counter metric.Int64Counter) {
	counter.Add(context.Background(), 1, m.mode)
}
