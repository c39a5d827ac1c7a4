package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/guillermoBallester/asksql/internal/core/domain"
	"github.com/guillermoBallester/asksql/internal/core/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- scripted Generator ---

type scriptedGenerator struct {
	replies []string
	errs    []error
	prompts []string
}

func (g *scriptedGenerator) Generate(_ context.Context, _, prompt string) (string, error) {
	i := len(g.prompts)
	g.prompts = append(g.prompts, prompt)
	var err error
	if i < len(g.errs) {
		err = g.errs[i]
	}
	if i < len(g.replies) {
		return g.replies[i], err
	}
	return "", err
}

func newTestConversation(gen port.Generator, exec port.QueryExecutor) *Conversation {
	prompts := domain.PromptBuilder{Database: domain.DefaultDatabase, Dialect: "SQL Server", Examples: domain.DefaultExamples}
	genSvc := NewGenerationService(gen, domain.DefaultModel, prompts, testLogger(), nil, nil)
	querySvc := NewQueryService(testValidator(), exec, port.NoopAuditor{}, testLogger(), nil, nil)
	return NewConversation(genSvc, querySvc, domain.NewSubstringMatcher(domain.DefaultKeywords), "test", testLogger(), nil, nil)
}

func TestConversation_TotalSalesScenario(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		"SELECT SUM LineTotal AS TotalSales FROM SalesLT.SalesOrderDetail",
		"Las ventas totales fueron 1234.56.",
	}}
	exec := &mockExecutor{output: oneRow}
	conv := newTestConversation(gen, exec)
	tr := domain.NewTranscript()

	reply, err := conv.Turn(context.Background(), tr, "¿Cuánto se vendió en total?")
	require.NoError(t, err)

	want := "SELECT SUM(LineTotal) AS TotalSales FROM SalesLT.SalesOrderDetail"
	assert.Equal(t, OutcomeAnswered, reply.Outcome)
	assert.Equal(t, want, reply.SQL)
	assert.Equal(t, want, exec.lastSQL)
	assert.Equal(t, oneRow, reply.Result)
	assert.Equal(t, "Las ventas totales fueron 1234.56.", reply.Interpretation)

	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[0], "¿Cuánto se vendió en total?")
	assert.Contains(t, gen.prompts[1], "1234.56")

	entries := tr.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, domain.Entry{Role: domain.RoleUser, Text: "¿Cuánto se vendió en total?"}, entries[0])
	assert.Equal(t, domain.Entry{Role: domain.RoleAssistant, Text: "Las ventas totales fueron 1234.56."}, entries[1])
}

func TestConversation_OffTopicScenario(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"SELECT plato FROM menu WHERE tipo = 'almuerzo'"}}
	exec := &mockExecutor{}
	conv := newTestConversation(gen, exec)
	tr := domain.NewTranscript()

	reply, err := conv.Turn(context.Background(), tr, "¿Qué me recomiendas para el almuerzo?")
	require.NoError(t, err)

	assert.Equal(t, OutcomeOffTopic, reply.Outcome)
	assert.Equal(t, domain.OffTopicMessage, reply.Message)
	assert.False(t, exec.executeCalled, "no execution for off-topic queries")
	assert.Len(t, gen.prompts, 1, "summarizer must not run")

	var assistant int
	for _, e := range tr.Entries() {
		if e.Role == domain.RoleAssistant {
			assistant++
		}
	}
	assert.Equal(t, 1, assistant)
}

func TestConversation_KeywordMismatchScenario(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		"SELECT p.Name, SUM(sod.LineTotal) FROM SalesLT.SalesOrderDetail sod JOIN SalesLT.Product p ON sod.ProductID = p.ProductID GROUP BY p.Name",
	}}
	exec := &mockExecutor{output: "Name,Total\n----,-----\nRoad-150 Red,1200\n\n(1 rows affected)\n"}
	conv := newTestConversation(gen, exec)
	tr := domain.NewTranscript()

	reply, err := conv.Turn(context.Background(), tr, "¿cuánto vendimos de gaseosa?")
	require.NoError(t, err)

	assert.True(t, exec.executeCalled)
	assert.Equal(t, OutcomeKeywordMismatch, reply.Outcome)
	assert.Equal(t, domain.KeywordMismatchMessage("gaseosa"), reply.Message)
	assert.Len(t, gen.prompts, 1, "summarizer must not run on a sentinel")
	assert.Equal(t, 2, tr.Len())
}

func TestConversation_SelfReference(t *testing.T) {
	gen := &scriptedGenerator{}
	exec := &mockExecutor{}
	conv := newTestConversation(gen, exec)
	tr := domain.NewTranscript()

	reply, err := conv.Turn(context.Background(), tr, "¿Eres una inteligencia artificial?")
	require.NoError(t, err)

	assert.Equal(t, OutcomeCapabilities, reply.Outcome)
	assert.Equal(t, domain.CapabilitiesMessage, reply.Message)
	assert.Empty(t, gen.prompts)
	assert.False(t, exec.executeCalled)
	assert.Equal(t, 2, tr.Len())
}

func TestConversation_GenerationFailureAbortsTurn(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{errors.New("connection refused")}}
	exec := &mockExecutor{}
	conv := newTestConversation(gen, exec)
	tr := domain.NewTranscript()

	_, err := conv.Turn(context.Background(), tr, "¿Cuánto se vendió?")
	require.ErrorIs(t, err, domain.ErrGeneration)
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, exec.executeCalled)
	assert.Zero(t, tr.Len())
}

func TestConversation_SummaryFailureAbortsTurn(t *testing.T) {
	gen := &scriptedGenerator{
		replies: []string{"SELECT COUNT(*) FROM SalesLT.Customer"},
		errs:    []error{nil, fmt.Errorf("%w: timeout", domain.ErrGeneration)},
	}
	conv := newTestConversation(gen, &mockExecutor{output: oneRow})
	tr := domain.NewTranscript()

	_, err := conv.Turn(context.Background(), tr, "¿Cuántos clientes hay?")
	require.ErrorIs(t, err, domain.ErrGeneration)
	assert.Zero(t, tr.Len())
}

func TestConversation_EmptyGeneration(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"```sql\n```"}}
	exec := &mockExecutor{}
	conv := newTestConversation(gen, exec)

	reply, err := conv.Turn(context.Background(), domain.NewTranscript(), "¿Cuántos pedidos?")
	require.NoError(t, err)
	assert.Equal(t, OutcomeEmptyQuery, reply.Outcome)
	assert.False(t, exec.executeCalled)
}

func TestConversation_SQLErrorInline(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"SELECT Foo FROM SalesLT.Product"}}
	exec := &mockExecutor{err: fmt.Errorf("%w: Invalid column name 'Foo'.", domain.ErrSQL)}
	conv := newTestConversation(gen, exec)
	tr := domain.NewTranscript()

	reply, err := conv.Turn(context.Background(), tr, "¿Qué es Foo?")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSQLError, reply.Outcome)
	assert.True(t, strings.HasPrefix(reply.Message, "⚠️ Error SQL:"))
	assert.Len(t, gen.prompts, 1)
	assert.Equal(t, 2, tr.Len())
}

func TestConversation_NoResults(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"SELECT Name FROM SalesLT.Product WHERE 1 = 0"}}
	conv := newTestConversation(gen, &mockExecutor{output: "Name\n----\n\n(0 rows affected)\n"})

	reply, err := conv.Turn(context.Background(), domain.NewTranscript(), "¿Productos gratis?")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoResults, reply.Outcome)
	assert.Equal(t, domain.NoResultsMessage, reply.Message)
	assert.Len(t, gen.prompts, 1)
}

func TestConversation_EmptySummary(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"SELECT COUNT(*) FROM SalesLT.Customer", "  "}}
	conv := newTestConversation(gen, &mockExecutor{output: oneRow})

	reply, err := conv.Turn(context.Background(), domain.NewTranscript(), "¿Cuántos clientes hay?")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAnswered, reply.Outcome)
	assert.Equal(t, domain.NoSummaryMessage, reply.Interpretation)
}
