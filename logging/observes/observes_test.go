package observes

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpanRecordsError(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	ctx, span := StartSpan(context.Background(), LayerRepo, "Insert")
	if TraceID(ctx) == "" {
		t.Error("no trace id in span context")
	}
	EndSpan(span, errors.New("boom"))

	ended := rec.Ended()
	if len(ended) != 1 {
		t.Fatalf("ended spans = %d", len(ended))
	}
	if ended[0].Name() != "Repository.Insert" {
		t.Errorf("name = %q", ended[0].Name())
	}
	if len(ended[0].Events()) == 0 {
		t.Error("error event not recorded")
	}
}

func TestNoTracerWithoutEndpoint(t *testing.T) {
	shutdown, err := NewTracer(context.Background(), &TracerOption{})
	if err != nil {
		t.Fatal(err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Error(err)
	}
	if TraceID(context.Background()) != "" {
		t.Error("trace id without span")
	}
}

func TestSentryHookWithoutClient(t *testing.T) {
	if err := NewSentry(&SentryOptions{}); err != nil {
		t.Fatal(err)
	}
	h := NewSentryHook()
	if len(h.Levels()) != 3 {
		t.Errorf("levels = %v", h.Levels())
	}
	if err := h.Fire(logrus.NewEntry(logrus.New())); err != nil {
		t.Error(err)
	}
}
