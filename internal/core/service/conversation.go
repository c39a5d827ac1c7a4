package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/guillermoBallester/asksql/internal/core/domain"
	"github.com/guillermoBallester/asksql/internal/core/port"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Outcome is how a turn ended.
type Outcome string

const (
	OutcomeAnswered        Outcome = "answered"
	OutcomeCapabilities    Outcome = "capabilities"
	OutcomeOffTopic        Outcome = "off_topic"
	OutcomeEmptyQuery      Outcome = "empty_query"
	OutcomeNoResults       Outcome = "no_results"
	OutcomeKeywordMismatch Outcome = "keyword_mismatch"
	OutcomeSQLError        Outcome = "sql_error"
	OutcomeDryRun          Outcome = "dry_run"
)

// Reply is everything a surface needs to render one turn.
type Reply struct {
	Question       string  `json:"question"`
	Outcome        Outcome `json:"outcome"`
	SQL            string  `json:"sql,omitempty"`
	Result         string  `json:"result,omitempty"`
	Interpretation string  `json:"interpretation,omitempty"`
	// Message is the final assistant text stored in the transcript.
	Message string `json:"message"`
}

// Conversation runs one question through classify → generate → post-process
// → validate → execute → summarize → render.
type Conversation struct {
	generation *GenerationService
	query      *QueryService
	keywords   port.TopicMatcher
	surface    string
	logger     *slog.Logger
	tracer     trace.Tracer
	inst       port.Instrumentation
}

func NewConversation(generation *GenerationService, query *QueryService, keywords port.TopicMatcher, surface string, logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *Conversation {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if inst == nil {
		inst = port.NoopInstrumentation{}
	}
	return &Conversation{
		generation: generation,
		query:      query,
		keywords:   keywords,
		surface:    surface,
		logger:     logger,
		tracer:     tracer,
		inst:       inst,
	}
}

// Turn answers question and appends the exchange to transcript. A generation
// failure aborts the turn: the error is returned and transcript is untouched.
func (c *Conversation) Turn(ctx context.Context, transcript *domain.Transcript, question string) (Reply, error) {
	ctx, span := c.tracer.Start(ctx, "Conversation.Turn",
		trace.WithAttributes(
			attribute.String("session.id", transcript.ID()),
			attribute.String("asksql.surface", c.surface),
		),
	)
	defer span.End()

	ctx = WithTurnInfo(ctx, TurnInfo{Session: transcript.ID(), Surface: c.surface, Question: question})

	reply, err := c.answer(ctx, question)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.ErrorContext(ctx, "turn aborted",
			slog.String("session.id", transcript.ID()),
			slog.String("error.message", err.Error()),
		)
		return Reply{Question: question}, err
	}

	transcript.Append(domain.RoleUser, question)
	transcript.Append(domain.RoleAssistant, reply.Message)

	c.inst.IncrementTurns(ctx, string(reply.Outcome))
	span.SetAttributes(attribute.String("asksql.outcome", string(reply.Outcome)))
	c.logger.InfoContext(ctx, "turn completed",
		slog.String("session.id", transcript.ID()),
		slog.String("asksql.outcome", string(reply.Outcome)),
		slog.String("db.statement", reply.SQL),
	)
	return reply, nil
}

func (c *Conversation) answer(ctx context.Context, question string) (Reply, error) {
	reply := Reply{Question: question}

	if domain.IsSelfReference(question) {
		reply.Outcome = OutcomeCapabilities
		reply.Message = domain.CapabilitiesMessage
		return reply, nil
	}

	sql, err := c.generation.GenerateSQL(ctx, question)
	if err != nil {
		return reply, err
	}
	reply.SQL = sql

	var keyword string
	if c.keywords != nil {
		keyword, _ = c.keywords.Match(question)
	}

	result, err := c.query.ExecuteSafely(ctx, sql, keyword)
	switch {
	case errors.Is(err, domain.ErrEmptyQuery):
		reply.Outcome = OutcomeEmptyQuery
		reply.Message = domain.EmptyQueryMessage
		return reply, nil
	case errors.Is(err, domain.ErrOffTopic):
		reply.Outcome = OutcomeOffTopic
		reply.Message = domain.OffTopicMessage
		return reply, nil
	case err != nil:
		return reply, err
	}

	switch result.Kind {
	case domain.ResultNoResults:
		reply.Outcome = OutcomeNoResults
		reply.Message = domain.NoResultsMessage
		return reply, nil
	case domain.ResultKeywordMismatch:
		reply.Outcome = OutcomeKeywordMismatch
		reply.Message = domain.KeywordMismatchMessage(result.Keyword)
		return reply, nil
	case domain.ResultSQLError:
		reply.Outcome = OutcomeSQLError
		reply.Result = result.Text
		reply.Message = result.Text
		return reply, nil
	case domain.ResultDryRun:
		reply.Outcome = OutcomeDryRun
		reply.Message = domain.DryRunMessage
		return reply, nil
	case domain.ResultRows:
	default:
		return reply, fmt.Errorf("unexpected result kind %q", result.Kind)
	}

	reply.Result = result.Text
	summary, err := c.generation.Summarize(ctx, question, result.Text)
	if err != nil {
		return reply, err
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		summary = domain.NoSummaryMessage
	}
	reply.Outcome = OutcomeAnswered
	reply.Interpretation = summary
	reply.Message = summary
	return reply, nil
}
