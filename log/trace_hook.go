package log

import (
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// TraceHook adds trace_id and span_id to events whose context carries a
// valid span. Attach the context with Event.Ctx.
type TraceHook struct{}

func (TraceHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}

	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return
	}

	e.Str("trace_id", sc.TraceID().String()).
		Str("span_id", sc.SpanID().String())
}
