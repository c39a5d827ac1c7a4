package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/guillermoBallester/asksql/internal/core/domain"
	"github.com/guillermoBallester/asksql/internal/core/port"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// GenerationService owns both model calls of a turn: question → SQL and
// result → explanation.
type GenerationService struct {
	generator port.Generator
	model     string
	prompts   domain.PromptBuilder
	steps     []domain.Step
	logger    *slog.Logger
	tracer    trace.Tracer
	inst      port.Instrumentation
}

func NewGenerationService(generator port.Generator, model string, prompts domain.PromptBuilder, logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *GenerationService {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if inst == nil {
		inst = port.NoopInstrumentation{}
	}
	return &GenerationService{
		generator: generator,
		model:     model,
		prompts:   prompts,
		steps:     domain.DefaultSteps,
		logger:    logger,
		tracer:    tracer,
		inst:      inst,
	}
}

// GenerateSQL asks the model for SQL answering question and cleans the reply.
func (s *GenerationService) GenerateSQL(ctx context.Context, question string) (string, error) {
	raw, err := s.generate(ctx, "GenerationService.GenerateSQL", s.prompts.GenerationPrompt(question))
	if err != nil {
		return "", err
	}
	sql := domain.RunSteps(raw, s.steps)
	s.logger.DebugContext(ctx, "sql generated",
		slog.String("gen_ai.request.model", s.model),
		slog.String("gen_ai.response.raw", raw),
		slog.String("db.statement", sql),
	)
	return sql, nil
}

// Summarize asks the model to explain a tabular result.
func (s *GenerationService) Summarize(ctx context.Context, question, result string) (string, error) {
	return s.generate(ctx, "GenerationService.Summarize", s.prompts.SummaryPrompt(question, result))
}

func (s *GenerationService) generate(ctx context.Context, spanName, prompt string) (string, error) {
	ctx, span := s.tracer.Start(ctx, spanName,
		trace.WithAttributes(attribute.String("gen_ai.request.model", s.model)),
	)
	defer span.End()

	start := time.Now()
	text, err := s.generator.Generate(ctx, s.model, prompt)
	s.inst.RecordGenerationDuration(ctx, float64(time.Since(start).Milliseconds()))
	if err != nil {
		if !errors.Is(err, domain.ErrGeneration) {
			err = fmt.Errorf("%w: %w", domain.ErrGeneration, err)
		}
		s.inst.IncrementGenerationErrors(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(ctx, "generation failed",
			slog.String("gen_ai.request.model", s.model),
			slog.String("error.type", "generation_error"),
			slog.String("error.message", err.Error()),
		)
		return "", err
	}
	span.SetAttributes(attribute.Int("gen_ai.response.length", len(text)))
	return text, nil
}
