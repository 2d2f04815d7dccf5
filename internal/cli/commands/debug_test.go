package commands

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/derivekit/internal/compiler/attr"
	"github.com/conduit-lang/derivekit/internal/compiler/resolve"
)

const skipSource = `#[derive(Add)]
struct Meters {
    value: f64,
    #[add(skip)]
    unit: u8,
}

#[derive(Deref)]
union Raw {
    a: u8,
}
`

func TestDebugAST(t *testing.T) {
	dir, cfg := writeProject(t, map[string]string{"shapes.rs": pointSource})

	stdout, _, err := execute(t, "debug", "ast", filepath.Join(dir, "shapes.rs"), "--config", cfg)
	require.NoError(t, err)

	assert.Contains(t, stdout, `Name: (string) (len=7) "Point2D"`)
	assert.NotContains(t, stdout, "0xc0", "pointer addresses are hidden")
}

func TestDebugASTMissingFile(t *testing.T) {
	_, _, err := execute(t, "debug", "ast", filepath.Join(t.TempDir(), "missing.rs"))
	assert.Error(t, err)
}

func TestDebugState(t *testing.T) {
	dir, cfg := writeProject(t, map[string]string{"meters.rs": skipSource})

	stdout, _, err := execute(t, "debug", "state", filepath.Join(dir, "meters.rs"), "--config", cfg)
	require.NoError(t, err)

	var dumps []stateDump
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &dumps))
	require.Len(t, dumps, 2)

	meters := dumps[0]
	assert.Equal(t, "Meters", meters.Declaration)
	assert.Equal(t, "Add", meters.Derive)
	assert.Nil(t, meters.Container)
	require.Len(t, meters.Fields, 2)
	assert.Equal(t, "value", meters.Fields[0].Name)
	assert.True(t, meters.Fields[0].Enabled)
	assert.Nil(t, meters.Fields[0].Options)
	assert.Equal(t, "unit", meters.Fields[1].Name)
	assert.False(t, meters.Fields[1].Enabled)
	assert.True(t, meters.Fields[1].Skipped)
	require.NotNil(t, meters.Fields[1].Options)

	raw := dumps[1]
	assert.Equal(t, "Raw", raw.Declaration)
	assert.NotEmpty(t, raw.Error, "unions cannot be resolved")
}

func TestDebugStateFilterJSON(t *testing.T) {
	dir, cfg := writeProject(t, map[string]string{"meters.rs": skipSource})

	stdout, _, err := execute(t, "debug", "state", filepath.Join(dir, "meters.rs"), "--derive", "Deref", "-f", "json", "--config", cfg)
	require.NoError(t, err)

	var dumps []stateDump
	require.NoError(t, json.Unmarshal([]byte(stdout), &dumps))
	require.Len(t, dumps, 1)
	assert.Equal(t, "Raw", dumps[0].Declaration)
}

func TestDumpOptions(t *testing.T) {
	assert.Nil(t, dumpOptions(attr.Options{}))

	d := dumpOptions(attr.Options{
		Present:   true,
		Forward:   true,
		Source:    attr.Off,
		Backtrace: attr.On,
		RenameAll: attr.CaseSnake,
		Types:     []string{"i32"},
	})
	require.NotNil(t, d)
	assert.Equal(t, []string{"forward", "not(source)", "backtrace"}, d.Flags)
	assert.Equal(t, "snake_case", d.RenameAll)
	assert.Equal(t, []string{"i32"}, d.Types)
}

func TestAccessorNames(t *testing.T) {
	assert.Nil(t, accessorNames(resolve.AccessorSet{}))
	assert.Equal(t, []string{"owned", "ref_mut"}, accessorNames(resolve.AccessorSet{Owned: true, RefMut: true}))
}
