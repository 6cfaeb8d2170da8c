package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-votegraph/internal/domain"
	"github.com/ahrav/go-votegraph/internal/ports"
)

// tracer emits spans for pipeline runs.
var tracer = otel.Tracer("votegraph/pipeline")

// Pipeline transforms raw vote records into the weighted directed graph
// between countries. A Pipeline is a pure function of (records, config):
// it holds no mutable state, is safe for concurrent use, and identical
// runs produce identical output.
type Pipeline struct {
	cfg     Config
	logger  *slog.Logger
	metrics ports.MetricsCollector
}

// Option configures optional pipeline collaborators.
type Option func(*Pipeline)

// WithLogger sets the structured logger used for non-fatal diagnostics
// such as ignored selection names. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithMetrics sets the metrics collector for run observability.
// The default is a no-op.
func WithMetrics(mc ports.MetricsCollector) Option {
	return func(p *Pipeline) { p.metrics = mc }
}

// NewPipeline creates a Pipeline for the given configuration.
// It returns a domain.ConfigError when the configuration is invalid.
func NewPipeline(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:     cfg,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: noopMetrics{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the pipeline's configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Run executes the full preprocessing pipeline over the given record
// sets and returns the edge and node lists.
//
// Execution order is fixed: normalize rounds, pre-aggregation filters,
// merge with contestants, participation counting, cultural join,
// min-participation filter, country selection, per-vote weighting, edge
// aggregation. Participation counts reflect the pre-aggregation filters
// but never the selection filter: selection is a downstream view, not a
// recount.
//
// The input RecordSet is treated as read-only. Errors are either
// domain.DataError (malformed records, zero weighting divisors) or
// domain.ConfigError; nothing is retried since the run is deterministic.
func (p *Pipeline) Run(ctx context.Context, records *domain.RecordSet) (*domain.Graph, error) {
	start := time.Now()
	_, span := tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(
			attribute.String("votegraph.weighting", string(p.cfg.Weighting)),
			attribute.Int("votegraph.votes_in", len(records.Votes)),
		))
	defer span.End()

	graph, err := p.run(records)

	labels := map[string]string{"weighting": string(p.cfg.Weighting)}
	p.metrics.RecordLatency("pipeline_run", time.Since(start), labels)
	if err != nil {
		span.RecordError(err)
		p.metrics.RecordCounter("pipeline_runs_total", 1,
			map[string]string{"weighting": string(p.cfg.Weighting), "status": "error"})
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("votegraph.nodes_out", len(graph.Nodes)),
		attribute.Int("votegraph.edges_out", len(graph.Edges)),
	)
	p.metrics.RecordCounter("pipeline_runs_total", 1,
		map[string]string{"weighting": string(p.cfg.Weighting), "status": "ok"})
	p.metrics.RecordGauge("graph_nodes", float64(len(graph.Nodes)), labels)
	p.metrics.RecordGauge("graph_edges", float64(len(graph.Edges)), labels)

	return graph, nil
}

func (p *Pipeline) run(records *domain.RecordSet) (*domain.Graph, error) {
	weigh, err := weighterFor(p.cfg.Weighting)
	if err != nil {
		return nil, err
	}

	votes := normalizeRounds(records.Votes)

	// Pre-aggregation filters run on raw votes so participation counts
	// are re-derived from surviving votes only.
	if p.cfg.Top3Only {
		votes = filterTopN(votes)
	}
	if p.cfg.FinalOnly {
		votes = filterFinalOnly(votes)
	}

	merged := mergeVotes(votes, records.Contestants)

	aggregates := buildAggregates(merged, contestantNames(records.Contestants))
	aggregates = joinCultural(aggregates, records.Cultural)
	merged = attachParticipation(merged, participationByID(aggregates))

	aggregates = filterMinParticipation(aggregates, p.cfg.MinParticipations)
	merged = restrictVotes(merged, memberSet(aggregates))

	if len(p.cfg.SelectedCountries) > 0 {
		selected := resolveSelection(p.cfg.SelectedCountries, aggregates, p.logger)
		aggregates = filterSelection(aggregates, selected)
		merged = restrictVotes(merged, selected)
	}

	edges, err := aggregateEdges(merged, weigh, p.cfg.DropZeroEdges)
	if err != nil {
		return nil, fmt.Errorf("edge aggregation failed: %w", err)
	}

	sortAggregates(aggregates)

	return &domain.Graph{
		Nodes:           aggregates,
		Edges:           edges,
		CulturalColumns: records.CulturalColumns,
	}, nil
}

// noopMetrics is the default MetricsCollector; it discards everything.
type noopMetrics struct{}

func (noopMetrics) RecordLatency(string, time.Duration, map[string]string) {}
func (noopMetrics) RecordCounter(string, float64, map[string]string)       {}
func (noopMetrics) RecordGauge(string, float64, map[string]string)         {}
