package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/derivekit/internal/cli/ui"
	"github.com/conduit-lang/derivekit/internal/compiler/codegen"
	utilstrings "github.com/conduit-lang/derivekit/internal/util/strings"
)

// deriveInfo describes one derive of the catalogue
type deriveInfo struct {
	Name       string     `yaml:"name" json:"name"`
	Trait      string     `yaml:"trait,omitempty" json:"trait,omitempty"`
	Method     string     `yaml:"method,omitempty" json:"method,omitempty"`
	Family     string     `yaml:"family" json:"family"`
	Attributes []string   `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	Keys       *keyLevels `yaml:"keys,omitempty" json:"keys,omitempty"`
}

// keyLevels lists the helper attribute keys accepted at each level
type keyLevels struct {
	Struct  []string `yaml:"struct,omitempty" json:"struct,omitempty"`
	Enum    []string `yaml:"enum,omitempty" json:"enum,omitempty"`
	Variant []string `yaml:"variant,omitempty" json:"variant,omitempty"`
	Field   []string `yaml:"field,omitempty" json:"field,omitempty"`
}

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list [derive]",
		Short: "List the supported derives and their attributes",
		Long: `List every derive derivekit can expand, with the trait it implements
and the helper attribute keys it accepts at each level.

Pass a derive name to show only that entry.`,
		Example: `  derivekit list
  derivekit list Deref
  derivekit list --format yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, yaml, json)")

	return cmd
}

func runList(cmd *cobra.Command, args []string, format string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	registry := codegen.NewRegistry(codegen.Options{RuntimeCrate: e.cfg.RuntimeCrate})

	var infos []deriveInfo
	if len(args) == 1 {
		entry, ok := registry.Lookup(args[0])
		if !ok {
			var names []string
			for _, entry := range registry.Entries() {
				names = append(names, entry.Spec.Name)
			}
			suggestions := utilstrings.FindSimilar(args[0], names, nil)
			fmt.Fprint(cmd.ErrOrStderr(), ui.UnknownDeriveError(args[0], suggestions, e.noColor))
			return fmt.Errorf("unknown derive %q", args[0])
		}
		infos = append(infos, describe(entry))
	} else {
		for _, entry := range registry.Entries() {
			infos = append(infos, describe(entry))
		}
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "json":
		return writeJSON(out, infos)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(infos); err != nil {
			return fmt.Errorf("failed to encode catalogue: %w", err)
		}
		return enc.Close()
	case "table", "":
		table := ui.NewTable(out, []string{"Derive", "Trait", "Family", "Attribute keys"}, &ui.TableOptions{NoColor: e.noColor})
		for _, info := range infos {
			trait := info.Trait
			if trait == "" {
				trait = "(inherent)"
			}
			table.AddRow(info.Name, trait, info.Family, info.Keys.summary())
		}
		table.Render()
		return nil
	default:
		return fmt.Errorf("unknown format %q (want table, yaml or json)", format)
	}
}

func describe(entry codegen.Entry) deriveInfo {
	info := deriveInfo{
		Name:       entry.Spec.Name,
		Trait:      entry.Spec.Path,
		Method:     entry.Spec.Method,
		Family:     string(entry.Kind.Family()),
		Attributes: entry.Spec.AttrNames,
	}
	p := entry.Spec.Params
	if len(p.Struct)+len(p.Enum)+len(p.Variant)+len(p.Field) > 0 {
		info.Keys = &keyLevels{Struct: p.Struct, Enum: p.Enum, Variant: p.Variant, Field: p.Field}
	}
	return info
}

// summary renders the keys as e.g. "struct: forward; field: ignore"
func (k *keyLevels) summary() string {
	if k == nil {
		return "-"
	}
	var parts []string
	add := func(level string, keys []string) {
		if len(keys) > 0 {
			parts = append(parts, level+": "+strings.Join(keys, ", "))
		}
	}
	add("struct", k.Struct)
	add("enum", k.Enum)
	add("variant", k.Variant)
	add("field", k.Field)
	return strings.Join(parts, "; ")
}
