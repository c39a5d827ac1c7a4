package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/guillermoBallester/asksql/internal/core/domain"
	"github.com/guillermoBallester/asksql/internal/core/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testValidator() *domain.RelevanceValidator {
	return domain.NewRelevanceValidator(domain.NewSubstringMatcher(domain.DefaultAllowList))
}

// --- mock QueryExecutor ---

type mockExecutor struct {
	executeCalled bool
	lastSQL       string
	output        string
	err           error
}

func (m *mockExecutor) Execute(_ context.Context, sql string) (string, error) {
	m.executeCalled = true
	m.lastSQL = sql
	return m.output, m.err
}

// --- recording auditor ---

type recordingAuditor struct {
	entries []port.AuditEntry
}

func (a *recordingAuditor) Record(_ context.Context, e port.AuditEntry) { a.entries = append(a.entries, e) }
func (a *recordingAuditor) Close() error                               { return nil }

const oneRow = "TotalSales\n----------\n1234.56\n\n(1 rows affected)\n"

// --- tests ---

func TestQueryService_Rows(t *testing.T) {
	exec := &mockExecutor{output: oneRow}
	svc := NewQueryService(testValidator(), exec, port.NoopAuditor{}, testLogger(), nil, nil)

	res, err := svc.ExecuteSafely(context.Background(), "SELECT SUM(LineTotal) FROM SalesLT.SalesOrderDetail", "")
	require.NoError(t, err)
	assert.True(t, exec.executeCalled)
	assert.Equal(t, domain.ResultRows, res.Kind)
	assert.Equal(t, oneRow, res.Text)
}

func TestQueryService_OffTopicNotExecuted(t *testing.T) {
	exec := &mockExecutor{output: oneRow}
	svc := NewQueryService(testValidator(), exec, port.NoopAuditor{}, testLogger(), nil, nil)

	_, err := svc.ExecuteSafely(context.Background(), "SELECT * FROM lunch_menu", "")
	require.ErrorIs(t, err, domain.ErrOffTopic)
	assert.False(t, exec.executeCalled, "executor should not be called for rejected queries")
}

func TestQueryService_EmptyQuery(t *testing.T) {
	exec := &mockExecutor{}
	svc := NewQueryService(testValidator(), exec, port.NoopAuditor{}, testLogger(), nil, nil)

	_, err := svc.ExecuteSafely(context.Background(), "   ", "")
	require.ErrorIs(t, err, domain.ErrEmptyQuery)
	assert.False(t, exec.executeCalled)
}

func TestQueryService_SQLErrorRenderedInline(t *testing.T) {
	exec := &mockExecutor{err: fmt.Errorf("%w: Invalid column name 'Foo'.", domain.ErrSQL)}
	svc := NewQueryService(testValidator(), exec, port.NoopAuditor{}, testLogger(), nil, nil)

	res, err := svc.ExecuteSafely(context.Background(), "SELECT Foo FROM SalesLT.Product", "")
	require.NoError(t, err)
	assert.Equal(t, domain.ResultSQLError, res.Kind)
	assert.Equal(t, "⚠️ Error SQL:\nInvalid column name 'Foo'.", res.Text)
	assert.False(t, res.Usable())
}

func TestQueryService_DryRun(t *testing.T) {
	exec := &mockExecutor{err: domain.ErrDryRun}
	svc := NewQueryService(testValidator(), exec, port.NoopAuditor{}, testLogger(), nil, nil)

	res, err := svc.ExecuteSafely(context.Background(), "SELECT 1 FROM SalesLT.Product", "")
	require.NoError(t, err)
	assert.Equal(t, domain.ResultDryRun, res.Kind)
}

func TestQueryService_UnexpectedExecutorError(t *testing.T) {
	exec := &mockExecutor{err: context.DeadlineExceeded}
	svc := NewQueryService(testValidator(), exec, port.NoopAuditor{}, testLogger(), nil, nil)

	_, err := svc.ExecuteSafely(context.Background(), "SELECT 1 FROM SalesLT.Product", "")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueryService_NoResultsHeaderOnly(t *testing.T) {
	exec := &mockExecutor{output: "Name\n\n(0 rows affected)\n"}
	svc := NewQueryService(testValidator(), exec, port.NoopAuditor{}, testLogger(), nil, nil)

	res, err := svc.ExecuteSafely(context.Background(), "SELECT Name FROM SalesLT.Product WHERE 1=0", "")
	require.NoError(t, err)
	assert.Equal(t, domain.ResultNoResults, res.Kind)
}

func TestQueryService_KeywordFilter(t *testing.T) {
	out := "Name,Total\n----,-----\nPIZZA Margarita,10\nRoad Bike,20\n\n(2 rows affected)\n"
	sql := "SELECT Name, Total FROM SalesLT.Product"

	svc := NewQueryService(testValidator(), &mockExecutor{output: out}, port.NoopAuditor{}, testLogger(), nil, nil)
	res, err := svc.ExecuteSafely(context.Background(), sql, "pizza")
	require.NoError(t, err)
	assert.Equal(t, domain.ResultRows, res.Kind)

	res, err = svc.ExecuteSafely(context.Background(), sql, "gaseosa")
	require.NoError(t, err)
	assert.Equal(t, domain.ResultKeywordMismatch, res.Kind)
	assert.Equal(t, "gaseosa", res.Keyword)
}

func TestQueryService_Audits(t *testing.T) {
	auditor := &recordingAuditor{}
	svc := NewQueryService(testValidator(), &mockExecutor{output: oneRow}, auditor, testLogger(), nil, nil)

	ctx := WithTurnInfo(context.Background(), TurnInfo{Session: "s-1", Surface: "repl", Question: "¿total?"})
	_, err := svc.ExecuteSafely(ctx, "SELECT 1 FROM SalesLT.Product", "")
	require.NoError(t, err)

	require.Len(t, auditor.entries, 1)
	e := auditor.entries[0]
	assert.Equal(t, "s-1", e.Session)
	assert.Equal(t, "repl", e.Surface)
	assert.Equal(t, "¿total?", e.Question)
	assert.Equal(t, "rows", e.Outcome)
	assert.NoError(t, e.Err)
}

func TestQueryService_RejectedQueryNotAudited(t *testing.T) {
	auditor := &recordingAuditor{}
	svc := NewQueryService(testValidator(), &mockExecutor{}, auditor, testLogger(), nil, nil)

	_, err := svc.ExecuteSafely(context.Background(), "SELECT 1", "")
	require.Error(t, err)
	assert.Empty(t, auditor.entries)
}
