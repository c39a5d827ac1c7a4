package domain

// Compiled-in defaults for the AdventureWorksLT sample database.
const (
	DefaultSQLInstance = `localhost\SQLEXPRESS`
	DefaultDatabase    = "AdventureWorksLT2022"
	DefaultModel       = "llama3-sql"
	DefaultOllamaURL   = "http://localhost:11434/api/generate"
)

// DefaultAllowList is the ordered set of qualified tables a generated query
// must reference to be considered on topic.
var DefaultAllowList = []string{
	"SalesLT.SalesOrderDetail",
	"SalesLT.SalesOrderHeader",
	"SalesLT.Product",
	"SalesLT.ProductCategory",
	"SalesLT.ProductDescription",
	"SalesLT.ProductModel",
	"SalesLT.ProductModelProductDescription",
	"SalesLT.Customer",
	"SalesLT.CustomerAddress",
	"SalesLT.Address",
}

// DefaultKeywords are product terms that, when present in a question, must
// also appear in at least one returned row.
var DefaultKeywords = []string{
	"gaseosa",
	"pizza",
	"helmet",
	"jersey",
	"gloves",
}
