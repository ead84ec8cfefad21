package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deepnoodle-ai/soir"
	"github.com/deepnoodle-ai/soir/attrs"
	"github.com/deepnoodle-ai/soir/errors"
	"github.com/deepnoodle-ai/soir/extspec"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// declFile is the on-disk form of a batch of declarations.
type declFile struct {
	Declarations []declEntry `json:"declarations" yaml:"declarations"`
}

type declEntry struct {
	ID          string   `json:"id" yaml:"id"`
	Parent      string   `json:"parent" yaml:"parent"`
	Kind        string   `json:"kind" yaml:"kind"`
	Annotations []string `json:"annotations" yaml:"annotations"`
}

var itemKinds = map[string]extspec.ItemKind{
	"":         extspec.ItemFn,
	"fn":       extspec.ItemFn,
	"const":    extspec.ItemConst,
	"foreign":  extspec.ItemForeignFn,
	"method":   extspec.ItemMethod,
	"trait_fn": extspec.ItemTraitFn,
	"other":    extspec.ItemOther,
}

// loadDeclarations reads a declaration file. The format follows the
// extension: .json and .hujson accept comments and trailing commas, .yaml
// and .yml are YAML.
func loadDeclarations(path string) ([]soir.Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseDeclarations(path, data)
}

func parseDeclarations(path string, data []byte) ([]soir.Declaration, error) {
	var file declFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", ".hujson":
		std, err := hujson.Standardize(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if err := json.Unmarshal(std, &file); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported file type %q", path, ext)
	}
	return file.declarations(path)
}

// declarations converts the entries, parsing every annotation. Syntax
// errors in a directive are kept on its declaration; malformed annotations
// that belong to other tools are dropped.
func (f *declFile) declarations(path string) ([]soir.Declaration, error) {
	seen := map[string]bool{}
	decls := make([]soir.Declaration, 0, len(f.Declarations))
	for i, e := range f.Declarations {
		if e.ID == "" {
			return nil, fmt.Errorf("%s: declaration %d has no id", path, i)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("%s: duplicate declaration %q", path, e.ID)
		}
		seen[e.ID] = true
		kind, ok := itemKinds[e.Kind]
		if !ok {
			return nil, fmt.Errorf("%s: declaration %q has unknown kind %q", path, e.ID, e.Kind)
		}
		decl := soir.Declaration{ID: e.ID, Parent: e.Parent, Kind: kind}
		for _, src := range e.Annotations {
			raw, err := attrs.ParseRaw(path, src)
			if err != nil {
				if !attrs.IsVerifierSource(src) {
					continue
				}
				if d, ok := errors.AsDiagnostic(err); ok && d.SourceLine == "" {
					d.SourceLine = src
				}
				decl.ParseErr = errors.Append(decl.ParseErr, err)
				continue
			}
			decl.Attrs = append(decl.Attrs, raw)
		}
		if len(decl.Attrs) > 0 {
			decl.Pos = decl.Attrs[0].Pos
		}
		decls = append(decls, decl)
	}
	return decls, nil
}
