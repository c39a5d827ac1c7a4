package domain

import (
	"fmt"
	"strings"
)

// Example is a few-shot question → SQL pair embedded in the generation prompt.
type Example struct {
	Question string `yaml:"question" json:"question"`
	SQL      string `yaml:"sql" json:"sql"`
}

// TableNote is an allow-listed table with its optional business description.
type TableNote struct {
	Name        string
	Description string
}

var DefaultExamples = []Example{
	{
		Question: "¿Cuáles son los tres productos más vendidos?",
		SQL: "SELECT TOP 3 p.Name, SUM(sod.LineTotal) AS TotalSales FROM SalesLT.SalesOrderDetail sod " +
			"JOIN SalesLT.Product p ON sod.ProductID = p.ProductID GROUP BY p.Name ORDER BY TotalSales DESC;",
	},
	{
		Question: "¿Cuánto se vendió en total?",
		SQL:      "SELECT SUM(LineTotal) AS TotalSales FROM SalesLT.SalesOrderDetail;",
	},
	{
		Question: "¿Qué producto tuvo más ventas?",
		SQL: "SELECT TOP 1 p.Name, SUM(sod.LineTotal) AS TotalSales FROM SalesLT.SalesOrderDetail sod " +
			"JOIN SalesLT.Product p ON sod.ProductID = p.ProductID GROUP BY p.Name ORDER BY TotalSales DESC;",
	},
}

// PromptBuilder renders the two prompts of a turn.
type PromptBuilder struct {
	Database string
	Dialect  string
	Examples []Example
	Tables   []TableNote
}

// GenerationPrompt asks the model for a single SQL statement answering question.
func (b PromptBuilder) GenerationPrompt(question string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Eres un asistente de análisis de datos que entiende español y trabaja con %s.\n", b.Dialect)
	fmt.Fprintf(&sb, "Convierte la pregunta del usuario en una consulta %s válida para la base %s.\n", b.Dialect, b.Database)
	sb.WriteString("Responde únicamente con el código SQL: sin explicaciones, sin texto extra, " +
		"sin frases como \"La respuesta sería\" o \"Aquí tienes\".\n")

	described := false
	for _, t := range b.Tables {
		if t.Description == "" {
			continue
		}
		if !described {
			sb.WriteString("\nTablas disponibles:\n")
			described = true
		}
		fmt.Fprintf(&sb, "- %s: %s\n", t.Name, t.Description)
	}

	if len(b.Examples) > 0 {
		sb.WriteString("\nEjemplos:\n")
		for _, ex := range b.Examples {
			fmt.Fprintf(&sb, "- %q →\n%s\n", ex.Question, ex.SQL)
		}
	}

	fmt.Fprintf(&sb, "\nAhora convierte la siguiente pregunta a SQL: %s\n", strings.TrimSpace(question))
	return sb.String()
}

// SummaryPrompt asks the model to explain result in the context of question.
func (b PromptBuilder) SummaryPrompt(question, result string) string {
	return fmt.Sprintf(
		"Explica en español, de forma breve y clara, qué muestran estos resultados obtenidos desde %s:\n\n"+
			"Pregunta original:\n%s\n\nResultados:\n%s\n",
		b.Dialect, strings.TrimSpace(question), result,
	)
}
