package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestClassifyDBErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unique", &pgconn.PgError{Code: "23505"}, "unique_violation"},
		{"foreign key", &pgconn.PgError{Code: "23503"}, "foreign_key_violation"},
		{"other pg", &pgconn.PgError{Code: "42P01"}, "pg_42P01"},
		{"timeout", context.DeadlineExceeded, "timeout"},
		{"unknown", errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyDBErr(tt.err); got != tt.want {
				t.Fatalf("classifyDBErr() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestObserveDB_CountsErrors(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	_ = p.ObserveDB("reports.create", func() error { return nil })
	err := p.ObserveDB("reports.create", func() error { return &pgconn.PgError{Code: "23503"} })
	if err == nil {
		t.Fatal("expected the wrapped error to be returned")
	}

	got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("reports.create", "foreign_key_violation"))
	if got != 1 {
		t.Fatalf("expected 1 error, got %v", got)
	}
}

func TestIncAuthFailure(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	p.IncAuthFailure("expired_token")
	p.IncAuthFailure("expired_token")

	if got := testutil.ToFloat64(p.AuthFailuresTotal.WithLabelValues("expired_token")); got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
}

func TestLogger_AddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "production")

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	log.InfoContext(ctx, "hello")
	span.End()

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["trace_id"] != span.SpanContext().TraceID().String() {
		t.Fatalf("missing trace id: %v", rec)
	}
}
