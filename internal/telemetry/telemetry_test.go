package telemetry

import (
    "context"
    "testing"
)

func TestSetupDisabled(t *testing.T) {
    t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
    if Enabled() { t.Fatalf("expected disabled") }
    shutdown, err := Setup(context.Background(), "othello-test")
    if err != nil { t.Fatalf("Setup: %v", err) }
    if err := shutdown(context.Background()); err != nil { t.Fatalf("shutdown: %v", err) }
}

func TestTracerSpans(t *testing.T) {
    _, span := Tracer("test").Start(context.Background(), "unit")
    span.End()
    _, span = NoopTracer().Start(context.Background(), "noop")
    if span.SpanContext().IsValid() { t.Fatalf("noop span has valid context") }
    span.End()
}
