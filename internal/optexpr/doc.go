/*
Package optexpr parses options expressions, the small declarative language
that describes how a collection is projected into selectable entries:

	item as item.name for item in items track by item.id
	item.name select as item.fullText for item in options
	getLabel(item) for item in dataSource(query) track by item.id
	item in items

Only the clause structure is parsed here. Sub-expressions such as
`item.name` or `dataSource(query)` are kept as opaque source strings and are
resolved later by an evaluator.

Tokenization reuses the HCL expression lexer, so parentheses, brackets,
braces and quoted strings are skipped as a unit and clause keywords (`as`,
`for`, `in`, `select as`, `track by`) are recognized at nesting depth zero
only.
*/
package optexpr
