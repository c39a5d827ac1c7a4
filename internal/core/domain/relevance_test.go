package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstringMatcher_Match(t *testing.T) {
	t.Parallel()
	m := NewSubstringMatcher([]string{"SalesLT.Product", "SalesLT.Customer", " "})

	term, ok := m.Match("select * from saleslt.customer c")
	require.True(t, ok)
	assert.Equal(t, "SalesLT.Customer", term)

	// Allow-list order wins when several terms match.
	term, ok = m.Match("SELECT * FROM SalesLT.Customer JOIN SalesLT.Product")
	require.True(t, ok)
	assert.Equal(t, "SalesLT.Product", term)

	_, ok = m.Match("SELECT * FROM dbo.Menu")
	assert.False(t, ok)

	assert.Equal(t, []string{"SalesLT.Product", "SalesLT.Customer"}, m.Terms())
}

func TestRelevanceValidator(t *testing.T) {
	t.Parallel()
	v := NewRelevanceValidator(NewSubstringMatcher(DefaultAllowList))

	for _, sql := range []string{
		"SELECT SUM(LineTotal) FROM SalesLT.SalesOrderDetail",
		"select * from SALESLT.PRODUCT",
		"SELECT 1 FROM saleslt.address",
	} {
		assert.True(t, v.IsRelevant(sql), sql)
		assert.NoError(t, v.Validate(sql))
	}

	assert.False(t, v.IsRelevant("SELECT * FROM Menu"))
	assert.ErrorIs(t, v.Validate("SELECT * FROM Menu"), ErrOffTopic)
	assert.ErrorIs(t, v.Validate("  \n"), ErrEmptyQuery)
}

func TestRelevanceValidator_StringLiteralFalsePositive(t *testing.T) {
	t.Parallel()
	v := NewRelevanceValidator(NewSubstringMatcher(DefaultAllowList))
	// Heuristic by nature: a table name in a literal still counts.
	assert.True(t, v.IsRelevant("SELECT 'SalesLT.Product' AS x"))
}

func TestIsSelfReference(t *testing.T) {
	t.Parallel()
	yes := []string{
		"¿Eres una IA?",
		"are you an AI?",
		"¿Qué es la inteligencia artificial?",
		"Tell me about artificial intelligence",
		"IA",
		"¿Qué sabe la IA?",
	}
	no := []string{
		"¿Cuánto se vendió en total?",
		"¿Cuántos clientes hay en Taiwan?",
		"Ventas por día",
		"¿Qué me recomiendas para el almuerzo?",
		"¿Cuánto vendió cada compañia?",
		"Ventas de la categoría Bebidas",
		"Pedidos de Díaz",
	}
	for _, q := range yes {
		assert.True(t, IsSelfReference(q), q)
	}
	for _, q := range no {
		assert.False(t, IsSelfReference(q), q)
	}
}
