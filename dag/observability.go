package dag

import (
	"context"
	"time"

	"github.com/raysim/pipekit/logger"
	"github.com/raysim/pipekit/observability"
)

// Observer receives callbacks around each node execution. Observers
// are attached with WithObservers and run in attachment order.
type Observer interface {
	// BeforeNode runs before a node executes. The returned context is
	// passed to AfterNode and to subsequent observers.
	BeforeNode(ctx context.Context, pipeline, node string) context.Context
	// AfterNode runs after a node finishes, successfully or not.
	AfterNode(ctx context.Context, pipeline, node string, output any, err error, duration time.Duration)
}

// TracingObserver creates an OpenTelemetry span per node execution.
type TracingObserver struct{}

// NewTracingObserver returns an observer emitting one span per node.
func NewTracingObserver() *TracingObserver {
	return &TracingObserver{}
}

func (o *TracingObserver) BeforeNode(ctx context.Context, pipeline, node string) context.Context {
	ctx, _ = observability.StartSpan(ctx, observability.SpanNodeExecute)
	observability.SetSpanAttribute(ctx, observability.AttrPipelineName, pipeline)
	observability.SetSpanAttribute(ctx, observability.AttrNodeName, node)
	return ctx
}

func (o *TracingObserver) AfterNode(ctx context.Context, pipeline, node string, output any, err error, duration time.Duration) {
	if err != nil {
		observability.SetSpanError(ctx, err)
	}
	observability.SetSpanAttribute(ctx, observability.AttrDurationMs, duration.Milliseconds())
	observability.SpanFromContext(ctx).End()
}

// MetricsObserver records node count, duration, and error metrics.
type MetricsObserver struct {
	metrics *observability.Metrics
}

// NewMetricsObserver returns an observer recording node metrics.
func NewMetricsObserver(metrics *observability.Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: metrics}
}

func (o *MetricsObserver) BeforeNode(ctx context.Context, pipeline, node string) context.Context {
	return ctx
}

func (o *MetricsObserver) AfterNode(ctx context.Context, pipeline, node string, output any, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
		o.metrics.RecordError(ctx, "node_failed", pipeline)
	}
	o.metrics.RecordNode(ctx, pipeline, node, status, duration)
}

// LoggingObserver emits a structured log line per node execution.
type LoggingObserver struct {
	log *logger.Logger
}

// NewLoggingObserver returns an observer logging node completions at
// debug level and failures at error level.
func NewLoggingObserver(log *logger.Logger) *LoggingObserver {
	return &LoggingObserver{log: log}
}

func (o *LoggingObserver) BeforeNode(ctx context.Context, pipeline, node string) context.Context {
	return ctx
}

func (o *LoggingObserver) AfterNode(ctx context.Context, pipeline, node string, output any, err error, duration time.Duration) {
	fields := logger.Fields(
		logger.FieldPipeline, pipeline,
		logger.FieldNode, node,
		logger.FieldDuration, duration.Milliseconds(),
	)
	if err != nil {
		fields[logger.FieldError] = err.Error()
		o.log.Error("node failed", fields)
		return
	}
	o.log.Debug("node completed", fields)
}
