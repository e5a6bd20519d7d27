package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/optbind/internal/config"
	"github.com/vk/optbind/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL definition loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load parses every .hcl file found under paths and translates all blocks
// into a single model. Names must be unique per block kind across files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(hclFiles) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	model := config.NewModel()
	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		dir := filepath.Dir(file)
		for _, b := range root.Data {
			if _, dup := model.Data[b.Name]; dup {
				return nil, fmt.Errorf("%s: data %q is defined more than once", file, b.Name)
			}
			d, err := l.translateData(ctx, b, dir)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			model.Data[d.Name] = d
		}
		for _, b := range root.Remotes {
			if _, dup := model.Remotes[b.Name]; dup {
				return nil, fmt.Errorf("%s: remote %q is defined more than once", file, b.Name)
			}
			r, err := l.translateRemote(b)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			model.Remotes[r.Name] = r
		}
		for _, b := range root.Selects {
			if _, dup := model.Selects[b.Name]; dup {
				return nil, fmt.Errorf("%s: select %q is defined more than once", file, b.Name)
			}
			s, err := l.translateSelect(ctx, b)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			model.Selects[s.Name] = s
		}
	}

	logger.Debug("HCL loading complete.", "selects", len(model.Selects), "data", len(model.Data), "remotes", len(model.Remotes))
	return model, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}

		err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && filepath.Ext(p) == ".hcl" {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return allFiles, nil
}
