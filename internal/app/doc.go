// Package app contains the core application logic. It loads option list
// definitions, builds the expression scope from their data and remote
// sources, binds the selected definition to a controller and renders the
// result, decoupled from any specific entrypoint like a CLI.
package app
