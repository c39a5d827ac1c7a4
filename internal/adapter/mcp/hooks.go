package mcp

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/guillermoBallester/asksql/internal/core/port"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type inflightCall struct {
	tool  string
	start time.Time
	span  trace.Span
}

// callRecorder pairs before/after hook invocations by request id.
type callRecorder struct {
	logger *slog.Logger
	tracer trace.Tracer
	inst   port.Instrumentation
	calls  sync.Map // request id -> *inflightCall
}

// ToolCallHooks logs every tool call and, when tracer/inst are set, records a
// span and a duration sample for it.
func ToolCallHooks(logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *server.Hooks {
	rec := &callRecorder{logger: logger, tracer: tracer, inst: inst}

	hooks := &server.Hooks{}
	hooks.AddBeforeCallTool(rec.before)
	hooks.AddAfterCallTool(func(ctx context.Context, id any, _ *mcp.CallToolRequest, result any) {
		r, ok := result.(*mcp.CallToolResult)
		rec.finish(ctx, id, ok && r.IsError, "")
	})
	hooks.AddOnError(func(ctx context.Context, id any, _ mcp.MCPMethod, _ any, err error) {
		rec.finish(ctx, id, true, err.Error())
	})
	return hooks
}

func (r *callRecorder) before(ctx context.Context, id any, req *mcp.CallToolRequest) {
	call := &inflightCall{tool: req.Params.Name, start: time.Now()}
	if r.tracer != nil {
		_, call.span = r.tracer.Start(ctx, "mcp.tool.call",
			trace.WithAttributes(attribute.String("mcp.tool", call.tool)),
		)
	}
	r.calls.Store(id, call)
}

// finish ignores ids it never saw: OnError also fires for non-tool methods.
func (r *callRecorder) finish(ctx context.Context, id any, failed bool, errMsg string) {
	v, ok := r.calls.LoadAndDelete(id)
	if !ok {
		return
	}
	call := v.(*inflightCall)
	duration := time.Since(call.start)

	attrs := []slog.Attr{
		slog.String("rpc.method", "tools/call"),
		slog.String("mcp.tool", call.tool),
		slog.Duration("duration", duration),
		slog.Bool("error", failed),
	}
	level := slog.LevelInfo
	if failed {
		level = slog.LevelError
	}
	if errMsg != "" {
		attrs = append(attrs, slog.String("error.message", errMsg))
	}
	r.logger.LogAttrs(ctx, level, "tool call", attrs...)

	if r.inst != nil {
		r.inst.RecordToolDuration(ctx, float64(duration.Milliseconds()))
	}

	if call.span != nil {
		if failed {
			msg := errMsg
			if msg == "" {
				msg = "tool returned error"
			}
			call.span.SetStatus(codes.Error, msg)
		}
		call.span.End()
	}
}
