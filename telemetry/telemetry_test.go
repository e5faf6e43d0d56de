package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"goa.design/clue/log"
)

func TestNoopImplementationsDoNotPanic(t *testing.T) {
	ctx := context.Background()
	l := NewNoopLogger()
	l.Debug(ctx, "msg", "k", "v")
	l.Info(ctx, "msg")
	l.Warn(ctx, "msg", "k")
	l.Error(ctx, "msg", "k", "v", "extra")

	m := NewNoopMetrics()
	m.IncCounter("c", 1, "tag", "v")
	m.RecordTimer("t", 0)
	m.RecordGauge("g", 1.5)

	tr := NewNoopTracer()
	newCtx, span := tr.Start(ctx, "span")
	assert.Equal(t, ctx, newCtx, "noop tracer must not alter the context")
	span.AddEvent("evt")
	span.SetStatus(codes.Ok, "")
	span.RecordError(nil)
	span.End()

	assert.NotNil(t, tr.Span(ctx))
}

func TestTagsToAttrsPairsSequentialStrings(t *testing.T) {
	attrs := tagsToAttrs([]string{"tenant", "acme", "agent", "billing"})
	assert.Equal(t, []attribute.KeyValue{
		attribute.String("tenant", "acme"),
		attribute.String("agent", "billing"),
	}, attrs)
}

func TestTagsToAttrsOddLengthPadsWithEmptyString(t *testing.T) {
	attrs := tagsToAttrs([]string{"tenant"})
	assert.Equal(t, []attribute.KeyValue{attribute.String("tenant", "")}, attrs)
}

func TestKvSliceToClueSkipsNonStringKeys(t *testing.T) {
	fielders := kvSliceToClue([]any{"k1", "v1", 42, "ignored"})
	require := assert.New(t)
	require.Len(fielders, 1)
	require.Equal(log.KV{K: "k1", V: "v1"}, fielders[0])
}

func TestKvSliceToClueOddLengthPairsWithNil(t *testing.T) {
	fielders := kvSliceToClue([]any{"k1"})
	assert.Equal(t, []log.Fielder{log.KV{K: "k1", V: nil}}, fielders)
}

func TestKvSliceToAttrsConvertsByDynamicType(t *testing.T) {
	attrs := kvSliceToAttrs([]any{
		"s", "text",
		"i", 7,
		"i64", int64(8),
		"f", 1.5,
		"b", true,
	})
	assert.Equal(t, []attribute.KeyValue{
		attribute.String("s", "text"),
		attribute.Int("i", 7),
		attribute.Int64("i64", 8),
		attribute.Float64("f", 1.5),
		attribute.Bool("b", true),
	}, attrs)
}

func TestKvSliceToAttrsFallsBackToEmptyStringForUnknownType(t *testing.T) {
	type custom struct{}
	attrs := kvSliceToAttrs([]any{"k", custom{}})
	assert.Equal(t, []attribute.KeyValue{attribute.String("k", "")}, attrs)
}

func TestMergeContextNilBaseReturnsOriginal(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, MergeContext(ctx, nil))
}

func TestMergeContextCopiesBaggageFromBase(t *testing.T) {
	member, err := baggage.NewMember("tenant", "acme")
	assert.NoError(t, err)
	bag, err := baggage.New(member)
	assert.NoError(t, err)
	base := baggage.ContextWithBaggage(context.Background(), bag)

	merged := MergeContext(context.Background(), base)
	got := baggage.FromContext(merged)
	assert.Equal(t, "acme", got.Member("tenant").Value())
}

func TestMergeContextCopiesValidSpanContext(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	base := trace.ContextWithSpanContext(context.Background(), sc)

	merged := MergeContext(context.Background(), base)
	gotSC := trace.SpanContextFromContext(merged)
	assert.Equal(t, sc, gotSC)
}
