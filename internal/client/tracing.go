package client

import (
	"context"

	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/fivetwenty-io/zsubs-client"

// Span attribute keys.
const (
	attrKind     = attribute.Key("zsubs.kind")
	attrRecordID = attribute.Key("zsubs.record_id")
	attrPath     = attribute.Key("zsubs.path")
	attrPages    = attribute.Key("zsubs.pages")
	attrItems    = attribute.Key("zsubs.items")
)

func newTracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return tp.Tracer(tracerName)
}

func (c *Client) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "zsubs."+name, trace.WithAttributes(attrs...))
}

// finishSpan records err on span and ends it.
func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.End()
}

// recordOperation wraps one lifecycle operation of a record in a span and
// counts its outcome.
func (c *Client) recordOperation(ctx context.Context, op string, kind zsubs.Kind, id string, fn func(context.Context) error) error {
	ctx, span := c.startSpan(ctx, "record."+op, attrKind.String(string(kind)), attrRecordID.String(id))

	err := fn(ctx)

	c.metrics.ObserveRecordOperation(kind, op, err)
	finishSpan(span, err)

	return err
}
