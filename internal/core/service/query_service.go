package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/guillermoBallester/asksql/internal/core/domain"
	"github.com/guillermoBallester/asksql/internal/core/port"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type turnInfoKey struct{}

// TurnInfo identifies where a query came from, for audit records.
type TurnInfo struct {
	Session  string
	Surface  string
	Question string
}

// WithTurnInfo returns a context carrying the turn's origin for audit logging.
func WithTurnInfo(ctx context.Context, info TurnInfo) context.Context {
	return context.WithValue(ctx, turnInfoKey{}, info)
}

func turnInfoFromCtx(ctx context.Context) TurnInfo {
	if v, ok := ctx.Value(turnInfoKey{}).(TurnInfo); ok {
		return v
	}
	return TurnInfo{}
}

// QueryService guards execution: relevance validation (domain), execution
// (infrastructure), then sentinel classification of the output.
type QueryService struct {
	validator port.QueryValidator
	executor  port.QueryExecutor
	auditor   port.QueryAuditor
	logger    *slog.Logger
	tracer    trace.Tracer
	inst      port.Instrumentation
}

func NewQueryService(validator port.QueryValidator, executor port.QueryExecutor, auditor port.QueryAuditor, logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *QueryService {
	if auditor == nil {
		auditor = port.NoopAuditor{}
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if inst == nil {
		inst = port.NoopInstrumentation{}
	}
	return &QueryService{
		validator: validator,
		executor:  executor,
		auditor:   auditor,
		logger:    logger,
		tracer:    tracer,
		inst:      inst,
	}
}

// Validate runs the relevance check alone.
func (s *QueryService) Validate(sql string) error {
	return s.validator.Validate(sql)
}

// ExecuteSafely validates sql, runs it and classifies the output. SQL failures
// become a ResultSQLError result instead of an error so the session carries
// on; validation failures and unexpected executor errors are returned.
func (s *QueryService) ExecuteSafely(ctx context.Context, sql, keyword string) (domain.ExecutionResult, error) {
	ctx, span := s.tracer.Start(ctx, "QueryService.ExecuteSafely",
		trace.WithAttributes(
			attribute.String("db.operation.name", "query"),
			attribute.String("db.statement", sql),
			attribute.String("asksql.keyword", keyword),
		),
	)
	defer span.End()

	if err := s.validator.Validate(sql); err != nil {
		s.logger.WarnContext(ctx, "query validation rejected",
			slog.String("db.statement", sql),
			slog.String("error.type", "validation_error"),
			slog.String("error.message", err.Error()),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.ExecutionResult{}, fmt.Errorf("validation: %w", err)
	}

	start := time.Now()
	output, err := s.executor.Execute(ctx, sql)
	durationMS := time.Since(start).Milliseconds()
	s.inst.RecordQueryDuration(ctx, float64(durationMS))

	var result domain.ExecutionResult
	switch {
	case err == nil:
		result = domain.ClassifyOutput(output, keyword)
		s.inst.IncrementQueryCount(ctx)
	case errors.Is(err, domain.ErrDryRun):
		result = domain.ExecutionResult{Kind: domain.ResultDryRun, Keyword: keyword}
	case errors.Is(err, domain.ErrSQL):
		result = domain.ExecutionResult{
			Kind:    domain.ResultSQLError,
			Text:    domain.SQLErrorMessage(sqlErrorDetail(err)),
			Keyword: keyword,
		}
		s.inst.IncrementQueryErrors(ctx)
		s.logger.WarnContext(ctx, "query failed",
			slog.String("db.statement", sql),
			slog.String("error.type", "sql_error"),
			slog.String("error.message", err.Error()),
		)
	default:
		s.inst.IncrementQueryErrors(ctx)
	}

	info := turnInfoFromCtx(ctx)
	s.auditor.Record(ctx, port.AuditEntry{
		Session:    info.Session,
		Surface:    info.Surface,
		Question:   info.Question,
		SQL:        sql,
		Outcome:    string(result.Kind),
		DurationMS: durationMS,
		Err:        err,
	})

	if err != nil && result.Kind == "" {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.ExecutionResult{}, fmt.Errorf("executing query: %w", err)
	}

	span.SetAttributes(attribute.String("asksql.result.kind", string(result.Kind)))
	return result, nil
}

// sqlErrorDetail strips the sentinel prefix so users see the client's message.
func sqlErrorDetail(err error) string {
	msg := err.Error()
	prefix := domain.ErrSQL.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}
