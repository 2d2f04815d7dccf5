package codegen

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/errors"
)

// generatedHeader opens every file written by derivekit
const generatedHeader = "// Code generated by derivekit. DO NOT EDIT.\n"

// GeneratedHeader returns the first line of generated files
func GeneratedHeader() string {
	return generatedHeader
}

// Generator expands every catalogue derive requested on a declaration
type Generator struct {
	registry *Registry
}

// NewGenerator creates a generator over a fresh registry
func NewGenerator(opts Options) *Generator {
	return &Generator{registry: NewRegistry(opts)}
}

// Registry returns the catalogue the generator dispatches to
func (g *Generator) Registry() *Registry {
	return g.registry
}

// DeclarationResult is the outcome of expanding one declaration
type DeclarationResult struct {
	Name       string             `json:"name"`
	Loc        ast.SourceLocation `json:"location"`
	Expansions []*Expansion       `json:"expansions"`
	// Errors holds the failures and warnings of this declaration only
	Errors errors.ErrorList `json:"errors,omitempty"`
	// Ignored lists requested derives outside the catalogue
	Ignored []string `json:"ignored,omitempty"`
}

// Failed reports whether any derive of the declaration failed
func (r *DeclarationResult) Failed() bool {
	return r.Errors.HasErrors()
}

// ExpandDeclaration runs every catalogue derive requested on in, in request
// order. A failing derive is recorded and the remaining ones still run; the
// declaration's code is only usable when Failed is false.
func (g *Generator) ExpandDeclaration(in *ast.DeriveInput) *DeclarationResult {
	result := &DeclarationResult{Name: in.Name, Loc: in.Loc}
	seen := make(map[Kind]bool)
	for _, req := range in.Derives {
		entry, ok := g.registry.Lookup(req.Name)
		if !ok {
			result.Ignored = append(result.Ignored, req.Name)
			continue
		}
		if seen[entry.Kind] {
			continue
		}
		seen[entry.Kind] = true

		exp, err := g.expandOne(in, entry)
		if err != nil {
			ce := errors.As(err)
			if ce.Trait == "" {
				ce.WithSubject(entry.Spec.Name, in.Name)
			}
			if ce.Location == (ast.SourceLocation{}) {
				ce.Location = req.Loc
			}
			result.Errors = append(result.Errors, ce)
			continue
		}
		result.Errors = append(result.Errors, exp.Warnings...)
		result.Expansions = append(result.Expansions, exp)
	}
	return result
}

// expandOne runs a single strategy. A panicking strategy is a bug in
// derivekit, reported as GEN001 instead of taking the process down.
func (g *Generator) expandOne(in *ast.DeriveInput, entry Entry) (exp *Expansion, err error) {
	defer func() {
		if r := recover(); r != nil {
			exp = nil
			err = errors.NewCodeGenFailed(in.Loc, fmt.Sprintf("expanding `%s` for `%s` panicked: %v",
				entry.Spec.Name, in.Name, r))
		}
	}()
	exp, err = entry.Strategy.Expand(in, entry.Spec)
	if err == nil && exp == nil {
		err = errors.NewCodeGenFailed(in.Loc, fmt.Sprintf("`%s` produced no expansion for `%s`",
			entry.Spec.Name, in.Name))
	}
	return exp, err
}

// ExpandFile expands every declaration of a parsed file. Declarations fail
// independently of each other.
func (g *Generator) ExpandFile(file *ast.File) []*DeclarationResult {
	results := make([]*DeclarationResult, 0, len(file.Items))
	for _, item := range file.Items {
		if len(item.Derives) == 0 {
			continue
		}
		results = append(results, g.ExpandDeclaration(item))
	}
	return results
}

// Render assembles the generated file from declaration results in source
// order. Failed declarations are left out; their errors are reported by the
// caller.
func Render(source string, results []*DeclarationResult) string {
	var sb strings.Builder
	sb.WriteString(generatedHeader)
	if source != "" {
		fmt.Fprintf(&sb, "// source: %s\n", source)
	}
	for _, r := range results {
		if r.Failed() || len(r.Expansions) == 0 {
			continue
		}
		traits := make([]string, len(r.Expansions))
		for i, exp := range r.Expansions {
			traits[i] = exp.Trait
		}
		fmt.Fprintf(&sb, "\n// %s: %s\n", r.Name, strings.Join(traits, ", "))
		for i, exp := range r.Expansions {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(exp.Code)
		}
	}
	return sb.String()
}
