package codegen

import (
	"github.com/go-openapi/inflect"
)

var rules = inflect.NewDefaultRuleset()

// goFieldName turns a column's snake_case/lower name into an exported Go
// identifier ("registered_at" -> "RegisteredAt").
func goFieldName(col string) string {
	return rules.Camelize(col)
}

// fileName derives the generated file's name from the relation
// ("Person" -> "people_accessor.go").
func fileName(relation string) string {
	return rules.Pluralize(rules.Underscore(relation)) + "_accessor.go"
}

// constName builds the exported column-name constant identifier
// ("Person", "registered_at") -> "PersonRegisteredAt".
func constName(relation, col string) string {
	return rules.Camelize(relation) + goFieldName(col)
}
