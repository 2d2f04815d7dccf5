package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/attr"
	"github.com/conduit-lang/derivekit/internal/compiler/codegen"
	"github.com/conduit-lang/derivekit/internal/compiler/parser"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

// NewDebugCommand creates the debug command
func NewDebugCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Inspect how a source file is parsed and resolved",
		Long: `Developer tools for understanding why a derive expands the way it does.

  debug ast    dumps the parsed declarations of a file
  debug state  shows, per declaration and derive, which fields and
               variants are enabled and which helper options applied`,
	}

	cmd.AddCommand(newDebugASTCommand())
	cmd.AddCommand(newDebugStateCommand())

	return cmd
}

func newDebugASTCommand() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "ast <file>",
		Short: "Dump the parsed declarations of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := parseFile(cmd, args[0])
			if err != nil {
				return err
			}

			cfg := spew.ConfigState{
				Indent:                  "  ",
				MaxDepth:                depth,
				DisablePointerAddresses: true,
				DisableCapacities:       true,
				SortKeys:                true,
			}
			cfg.Fdump(cmd.OutOrStdout(), file)
			return nil
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 0, "Maximum nesting depth to print (0 = unlimited)")

	return cmd
}

// stateDump is the printable form of one resolve.State
type stateDump struct {
	Declaration string        `yaml:"declaration" json:"declaration"`
	Derive      string        `yaml:"derive" json:"derive"`
	Error       string        `yaml:"error,omitempty" json:"error,omitempty"`
	Container   *optionsDump  `yaml:"container,omitempty" json:"container,omitempty"`
	Fields      []memberDump  `yaml:"fields,omitempty" json:"fields,omitempty"`
	Variants    []variantDump `yaml:"variants,omitempty" json:"variants,omitempty"`
}

type memberDump struct {
	Name    string       `yaml:"name" json:"name"`
	Enabled bool         `yaml:"enabled" json:"enabled"`
	Forward bool         `yaml:"forward,omitempty" json:"forward,omitempty"`
	Skipped bool         `yaml:"skipped,omitempty" json:"skipped,omitempty"`
	Options *optionsDump `yaml:"options,omitempty" json:"options,omitempty"`
}

type variantDump struct {
	memberDump `yaml:",inline"`
	Accessors  []string     `yaml:"accessors,omitempty" json:"accessors,omitempty"`
	Fields     []memberDump `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// optionsDump lists only the options that were written
type optionsDump struct {
	Flags     []string          `yaml:"flags,omitempty" json:"flags,omitempty"`
	RenameAll string            `yaml:"rename_all,omitempty" json:"rename_all,omitempty"`
	Types     []string          `yaml:"types,omitempty" json:"types,omitempty"`
	Error     *attr.CustomError `yaml:"error,omitempty" json:"error,omitempty"`
	Format    *attr.Format      `yaml:"format,omitempty" json:"format,omitempty"`
}

func newDebugStateCommand() *cobra.Command {
	var (
		derive string
		format string
	)

	cmd := &cobra.Command{
		Use:   "state <file>",
		Short: "Show the resolved field and variant state per derive",
		Example: `  derivekit debug state src/shapes.rs
  derivekit debug state src/shapes.rs --derive Deref --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			file, err := parseFile(cmd, args[0])
			if err != nil {
				return err
			}

			registry := codegen.NewRegistry(codegen.Options{RuntimeCrate: e.cfg.RuntimeCrate})
			dumps := resolveStates(registry, file, derive)

			switch strings.ToLower(format) {
			case "json":
				return writeJSON(cmd.OutOrStdout(), dumps)
			case "yaml", "":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(dumps); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown format %q (want yaml or json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&derive, "derive", "", "Only show this derive")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format (yaml, json)")

	return cmd
}

func parseFile(cmd *cobra.Command, path string) (*ast.File, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	file, parseErrs := parser.ParseSource(string(source))
	for _, pe := range parseErrs {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s:%d:%d: %s\n", path, pe.Location.Line, pe.Location.Column, pe.Message)
	}
	if file == nil {
		return nil, fmt.Errorf("failed to parse %s", path)
	}
	return file, nil
}

// resolveStates resolves every catalogue derive requested in file.
// Requests outside the catalogue are left out.
func resolveStates(registry *codegen.Registry, file *ast.File, only string) []stateDump {
	dumps := make([]stateDump, 0)
	for _, item := range file.Items {
		for _, req := range item.Derives {
			if only != "" && req.Name != only {
				continue
			}
			entry, ok := registry.Lookup(req.Name)
			if !ok {
				continue
			}

			dump := stateDump{Declaration: item.Name, Derive: req.Name}
			state, err := resolve.New(item, entry.Spec)
			if err != nil {
				dump.Error = err.Error()
				dumps = append(dumps, dump)
				continue
			}

			dump.Container = dumpOptions(state.Container())
			fields := fieldList(item.Fields)
			for i, info := range state.Fields() {
				dump.Fields = append(dump.Fields, dumpMember(fields[i].Member(), info.Enabled, info.Forward, info.Skipped, info.Options))
			}
			for i, info := range state.Variants() {
				variant := item.Variants[i]
				vd := variantDump{
					memberDump: dumpMember(variant.Ident, info.Enabled, info.Forward, info.Skipped, info.Options),
					Accessors:  accessorNames(info.Accessors),
				}
				vfields := fieldList(variant.Fields)
				for j, fi := range info.Fields {
					vd.Fields = append(vd.Fields, dumpMember(vfields[j].Member(), fi.Enabled, fi.Forward, fi.Skipped, fi.Options))
				}
				dump.Variants = append(dump.Variants, vd)
			}
			dumps = append(dumps, dump)
		}
	}
	return dumps
}

func fieldList(f *ast.Fields) []*ast.Field {
	if f == nil {
		return nil
	}
	return f.List
}

func dumpMember(name string, enabled, forward, skipped bool, opts attr.Options) memberDump {
	return memberDump{
		Name:    name,
		Enabled: enabled,
		Forward: forward,
		Skipped: skipped,
		Options: dumpOptions(opts),
	}
}

func dumpOptions(o attr.Options) *optionsDump {
	if !o.Present {
		return nil
	}

	d := &optionsDump{
		RenameAll: string(o.RenameAll),
		Types:     o.Types,
		Error:     o.Error,
		Format:    o.Format,
	}
	flag := func(set bool, name string) {
		if set {
			d.Flags = append(d.Flags, name)
		}
	}
	flag(o.Bare, "bare")
	flag(o.Ignore, "ignore")
	flag(o.Forward, "forward")
	flag(o.Owned, "owned")
	flag(o.Ref, "ref")
	flag(o.RefMut, "ref_mut")
	flag(o.Source == attr.On, "source")
	flag(o.Source == attr.Off, "not(source)")
	flag(o.Backtrace == attr.On, "backtrace")
	flag(o.Backtrace == attr.Off, "not(backtrace)")
	return d
}

func accessorNames(a resolve.AccessorSet) []string {
	var names []string
	if a.Owned {
		names = append(names, "owned")
	}
	if a.Ref {
		names = append(names, "ref")
	}
	if a.RefMut {
		names = append(names, "ref_mut")
	}
	return names
}
