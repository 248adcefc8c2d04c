package train

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/oomph-ac/railcart/train"

// metrics holds the instruments of a simulation. Without a meter provider installed every instrument is a
// no-op.
type metrics struct {
	ticks    metric.Int64Counter
	steps    metric.Int64Counter
	splits   metric.Int64Counter
	links    metric.Int64Counter
	unloads  metric.Int64Counter
	failures metric.Int64Counter

	groups      metric.Int64ObservableGauge
	groupsCount atomic.Int64
}

func newMetrics() (*metrics, error) {
	m := otel.Meter(instrumentationName)
	s := &metrics{}

	var err error
	if s.ticks, err = m.Int64Counter("railcart.group.ticks", metric.WithDescription("Train physics passes")); err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}
	if s.steps, err = m.Int64Counter("railcart.group.substeps", metric.WithDescription("Extra steps of split ticks")); err != nil {
		return nil, fmt.Errorf("creating substeps counter: %w", err)
	}
	if s.splits, err = m.Int64Counter("railcart.group.splits", metric.WithDescription("Trains split in two")); err != nil {
		return nil, fmt.Errorf("creating splits counter: %w", err)
	}
	if s.links, err = m.Int64Counter("railcart.group.links", metric.WithDescription("Trains linked together")); err != nil {
		return nil, fmt.Errorf("creating links counter: %w", err)
	}
	if s.unloads, err = m.Int64Counter("railcart.group.unloads", metric.WithDescription("Trains stored offline")); err != nil {
		return nil, fmt.Errorf("creating unloads counter: %w", err)
	}
	if s.failures, err = m.Int64Counter("railcart.group.failures", metric.WithDescription("Recovered train failures")); err != nil {
		return nil, fmt.Errorf("creating failures counter: %w", err)
	}

	s.groups, err = m.Int64ObservableGauge("railcart.groups", metric.WithDescription("Trains in the simulation"))
	if err != nil {
		return nil, fmt.Errorf("creating groups gauge: %w", err)
	}
	_, err = m.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(s.groups, s.groupsCount.Load())
		return nil
	}, s.groups)
	if err != nil {
		return nil, fmt.Errorf("registering groups callback: %w", err)
	}
	return s, nil
}

// nopMetrics returns metrics backed by a no-op meter.
func nopMetrics() *metrics {
	m := noop.NewMeterProvider().Meter(instrumentationName)
	ticks, _ := m.Int64Counter("")
	return &metrics{ticks: ticks, steps: ticks, splits: ticks, links: ticks, unloads: ticks, failures: ticks}
}

func (s *metrics) tick(out StepOutcome) {
	s.ticks.Add(context.Background(), 1, metric.WithAttributes(attribute.String("outcome", out.String())))
}

func (s *metrics) substeps(n int) {
	s.steps.Add(context.Background(), int64(n-1))
}

func (s *metrics) split() {
	s.splits.Add(context.Background(), 1)
}

func (s *metrics) link() {
	s.links.Add(context.Background(), 1)
}

func (s *metrics) unload() {
	s.unloads.Add(context.Background(), 1)
}

func (s *metrics) failure(g *Group) {
	s.failures.Add(context.Background(), 1, metric.WithAttributes(attribute.String("train", g.name)))
}
