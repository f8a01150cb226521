package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/fieldgridgo/internal/bggohcl"
	"github.com/specialistvlad/fieldgridgo/internal/config"
	"github.com/specialistvlad/fieldgridgo/internal/ctxlog"
	"github.com/specialistvlad/fieldgridgo/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load parses every .hcl file found under paths. Exactly one `global` block
// must exist across all files; `module` blocks keep their configuration
// order, files being visited in lexical order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, nil, err
	}
	if len(hclFiles) == 0 {
		return nil, nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	var globals hcl.Blocks
	model := &config.Model{}

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		content, diags := hclFile.Body.Content(rootSchema)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		for _, block := range content.Blocks {
			switch block.Type {
			case "global":
				globals = append(globals, block)
			case "module":
				if diags := bggohcl.CheckReferences(block.Body, "global"); diags.HasErrors() {
					return nil, nil, fmt.Errorf("invalid module %q in %s: %w", block.Labels[1], file, diags)
				}
				model.Modules = append(model.Modules, &config.ModuleInstance{
					Type:      block.Labels[0],
					Name:      block.Labels[1],
					Body:      block.Body,
					DeclRange: block.DefRange,
				})
			}
		}
	}

	globalBlk, diags := bggohcl.RequireUniqueBlock(globals, "global")
	if diags.HasErrors() {
		return nil, nil, fmt.Errorf("invalid configuration: %w", diags)
	}

	var raw globalBlock
	if diags := gohcl.DecodeBody(globalBlk.Body, nil, &raw); diags.HasErrors() {
		return nil, nil, fmt.Errorf("failed to decode global block: %w", diags)
	}
	model.Global = translateGlobal(&raw)

	conv, err := NewConverter(model.Global)
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("HCL loading complete.", "modules", len(model.Modules), "run_id", model.Global.RunID)
	return model, conv, nil
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

		if info.IsDir() {
			files, err := fsutil.FindFilesByExtension(path, ".hcl")
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				add(f)
			}
		} else if filepath.Ext(path) == ".hcl" {
			add(path)
		}
	}
	return allFiles, nil
}
