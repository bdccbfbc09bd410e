package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrRunName  = "run.name"
	AttrRunAlg   = "run.alg"
	AttrRunFiles = "run.files"
	AttrRunPath  = "run.path"
	AttrJobPath  = "job.path"
	AttrJobKind  = "job.kind"
)

// Span names for runner lifecycle calls.
const (
	SpanConfig  = "run.config"
	SpanInit    = "run.init"
	SpanExec    = "run.exec"
	SpanDone    = "run.done"
	SpanExecute = "run.execute"
	SpanBuild   = "job.build"
)

// Start opens an internal span. A nil tracer yields a no-op span.
func Start(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// End records err on the span, sets its status and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
