package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is used to decode all possible top-level blocks from any file.
// Unknown blocks and attributes are rejected.
type fileRoot struct {
	Selects []*selectBlock `hcl:"select,block"`
	Data    []*dataBlock   `hcl:"data,block"`
	Remotes []*remoteBlock `hcl:"remote,block"`
}

// selectBlock is a `select "name" { ... }` block.
type selectBlock struct {
	Name           string         `hcl:"name,label"`
	Options        string         `hcl:"options"`
	Selected       string         `hcl:"selected,optional"`
	Type           string         `hcl:"type,optional"`
	ExternalFilter bool           `hcl:"external_filter,optional"`
	Disabled       bool           `hcl:"disabled,optional"`
	Config         hcl.Expression `hcl:"config,optional"`
}

// dataBlock is a `data "name" { ... }` block holding either a file reference
// or an inline value.
type dataBlock struct {
	Name  string         `hcl:"name,label"`
	File  string         `hcl:"file,optional"`
	Value hcl.Expression `hcl:"value,optional"`
}

// remoteBlock is a `remote "name" { ... }` block.
type remoteBlock struct {
	Name               string `hcl:"name,label"`
	URL                string `hcl:"url"`
	Namespace          string `hcl:"namespace,optional"`
	Event              string `hcl:"event,optional"`
	Timeout            string `hcl:"timeout,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
}
