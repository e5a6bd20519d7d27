// Package hcl provides the HCL implementation of config.Loader. It parses
// `select`, `data` and `remote` blocks from .hcl files and reads the JSON and
// YAML data files they reference.
package hcl
