package domain

import (
	"fmt"
	"regexp"
)

// Short tokens need word boundaries: "ai" is a substring of far too many words.
// \b is ASCII-only, so boundaries are spelled out over Unicode letters.
var selfReferencePattern = regexp.MustCompile(`(?i)((^|[^\p{L}\p{N}_])(ai|ia)([^\p{L}\p{N}_]|$)|inteligencia\s+artificial|artificial\s+intelligence)`)

// IsSelfReference reports whether the question asks about the assistant itself
// rather than about the data.
func IsSelfReference(question string) bool {
	return selfReferencePattern.MatchString(question)
}

const CapabilitiesMessage = "Soy un asistente de consultas: convierto tus preguntas en español a SQL " +
	"con un modelo de lenguaje local, ejecuto la consulta sobre la base de datos y te explico los resultados. " +
	"Puedo responder preguntas sobre ventas, productos, clientes y pedidos."

const (
	OffTopicMessage   = "La pregunta no parece relacionada con la base de datos. Intenta preguntar sobre ventas, productos, clientes o pedidos."
	EmptyQueryMessage = "El modelo no generó ninguna consulta SQL. Intenta reformular la pregunta."
	NoResultsMessage  = "La consulta no devolvió resultados."
	DryRunMessage     = "Modo de prueba: la consulta no se ejecutó."
	NoSummaryMessage  = "(el modelo no devolvió ninguna interpretación)"
)

func KeywordMismatchMessage(keyword string) string {
	return fmt.Sprintf("No se encontraron registros que contengan %q.", keyword)
}

func SQLErrorMessage(detail string) string {
	return "⚠️ Error SQL:\n" + detail
}
