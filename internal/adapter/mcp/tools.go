package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/guillermoBallester/asksql/internal/core/domain"
	"github.com/guillermoBallester/asksql/internal/core/service"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const serverName = "asksql"

// SurfaceMCP tags audit records and spans produced through these tools.
const SurfaceMCP = "mcp"

const (
	descAsk = "Answer a business question about the sales database in natural language (Spanish or English). " +
		"Generates SQL, checks it references an allowed table, runs it and returns the SQL, the raw tabular " +
		"result and a short interpretation as JSON. Each call is an independent conversation."

	descAskParam = "The question, e.g. \"¿Cuánto se vendió en total?\""

	descGenerateSQL = "Translate a question into SQL without executing it. Returns the cleaned SQL and " +
		"whether it passes the allowed-table check."

	descRunQuery = "Run a SQL query against the sales database after checking it references an allowed table. " +
		"Returns the result kind (rows, no_results, keyword_mismatch, sql_error, dry_run) and the raw text output. " +
		"SQL errors are reported in the result, not as tool failures."

	descRunQuerySQL     = "SQL query to execute"
	descRunQueryKeyword = "Optional product term that must appear in at least one returned row"
)

// RegisterTools adds each tool whose services are set. generate_sql never
// executes and is always read-only; ask and run_query inherit svc.ReadOnly.
func RegisterTools(s *server.MCPServer, svc Services) {
	if svc.Conversation != nil {
		s.AddTool(
			mcp.NewTool("ask",
				mcp.WithDescription(descAsk),
				mcp.WithTitleAnnotation("Ask the Database"),
				mcp.WithReadOnlyHintAnnotation(svc.ReadOnly),
				mcp.WithDestructiveHintAnnotation(!svc.ReadOnly),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithString("question",
					mcp.Required(),
					mcp.Description(descAskParam),
				),
			),
			askHandler(svc.Conversation),
		)
	}

	if svc.Generation != nil && svc.Query != nil {
		s.AddTool(
			mcp.NewTool("generate_sql",
				mcp.WithDescription(descGenerateSQL),
				mcp.WithTitleAnnotation("Generate SQL"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithString("question",
					mcp.Required(),
					mcp.Description(descAskParam),
				),
			),
			generateSQLHandler(svc.Generation, svc.Query),
		)
	}

	if svc.Query != nil {
		s.AddTool(
			mcp.NewTool("run_query",
				mcp.WithDescription(descRunQuery),
				mcp.WithTitleAnnotation("Run Query"),
				mcp.WithReadOnlyHintAnnotation(svc.ReadOnly),
				mcp.WithDestructiveHintAnnotation(!svc.ReadOnly),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithString("sql",
					mcp.Required(),
					mcp.Description(descRunQuerySQL),
				),
				mcp.WithString("keyword",
					mcp.Description(descRunQueryKeyword),
				),
			),
			runQueryHandler(svc.Query),
		)
	}
}

func stringArg(request mcp.CallToolRequest, name string) string {
	v, _ := request.GetArguments()[name].(string)
	return strings.TrimSpace(v)
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

func askHandler(conv *service.Conversation) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question := stringArg(request, "question")
		if question == "" {
			return mcp.NewToolResultError("question is required"), nil
		}

		reply, err := conv.Turn(ctx, domain.NewTranscript(), question)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
		}
		return jsonResult(reply), nil
	}
}

type generatedSQL struct {
	SQL   string `json:"sql"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func generateSQLHandler(gen *service.GenerationService, query *service.QueryService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question := stringArg(request, "question")
		if question == "" {
			return mcp.NewToolResultError("question is required"), nil
		}

		sql, err := gen.GenerateSQL(ctx, question)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
		}

		out := generatedSQL{SQL: sql, Valid: true}
		if err := query.Validate(sql); err != nil {
			out.Valid = false
			out.Error = err.Error()
		}
		return jsonResult(out), nil
	}
}

type queryResult struct {
	Kind    domain.ResultKind `json:"kind"`
	Text    string            `json:"text,omitempty"`
	Keyword string            `json:"keyword,omitempty"`
}

func runQueryHandler(query *service.QueryService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sql := stringArg(request, "sql")
		if sql == "" {
			return mcp.NewToolResultError("sql is required"), nil
		}
		keyword := stringArg(request, "keyword")

		ctx = service.WithTurnInfo(ctx, service.TurnInfo{Surface: SurfaceMCP})
		result, err := query.ExecuteSafely(ctx, sql, keyword)
		switch {
		case errors.Is(err, domain.ErrOffTopic):
			return mcp.NewToolResultError(domain.OffTopicMessage), nil
		case err != nil:
			return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
		}
		return jsonResult(queryResult{Kind: result.Kind, Text: result.Text, Keyword: result.Keyword}), nil
	}
}
