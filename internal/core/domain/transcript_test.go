package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscript_AppendOnly(t *testing.T) {
	t.Parallel()
	tr := NewTranscript()
	_, err := uuid.Parse(tr.ID())
	require.NoError(t, err)

	tr.Append(RoleUser, "hola")
	tr.Append(RoleAssistant, "¿en qué te ayudo?")

	entries := tr.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, RoleUser, entries[0].Role)
	assert.Equal(t, RoleAssistant, entries[1].Role)

	// Mutating the copy leaves the log intact.
	entries[0].Text = "changed"
	assert.Equal(t, "hola", tr.Entries()[0].Text)
	assert.Equal(t, 2, tr.Len())
}

func TestTranscript_DistinctSessions(t *testing.T) {
	t.Parallel()
	assert.NotEqual(t, NewTranscript().ID(), NewTranscript().ID())
}

func TestPromptBuilder_GenerationPrompt(t *testing.T) {
	t.Parallel()
	b := PromptBuilder{
		Database: "AdventureWorksLT2022",
		Dialect:  "T-SQL",
		Examples: DefaultExamples,
		Tables: []TableNote{
			{Name: "SalesLT.Product", Description: "Catálogo de productos"},
			{Name: "SalesLT.Address"},
		},
	}
	p := b.GenerationPrompt("  ¿Cuánto se vendió en total?  ")

	assert.Contains(t, p, "AdventureWorksLT2022")
	assert.Contains(t, p, "- SalesLT.Product: Catálogo de productos")
	assert.NotContains(t, p, "SalesLT.Address:")
	assert.Contains(t, p, "SELECT SUM(LineTotal) AS TotalSales FROM SalesLT.SalesOrderDetail;")
	assert.Contains(t, p, "a SQL: ¿Cuánto se vendió en total?\n")
}

func TestPromptBuilder_NoExamples(t *testing.T) {
	t.Parallel()
	p := PromptBuilder{Dialect: "PostgreSQL", Database: "shop"}.GenerationPrompt("q")
	assert.NotContains(t, p, "Ejemplos:")
	assert.NotContains(t, p, "Tablas disponibles:")
}
