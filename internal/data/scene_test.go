package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockbots/server/internal/world"
)

const sampleScenes = `
scenes:
  - name: tiny
    workspace: { width: 14, height: 8 }
    robots: 2
    blocks: 4
    colors: [Red, " GREEN "]
    containers:
      - { color: red, position: 0, orientation: RIGHT }
      - { color: green, position: 0.6 }
`

func TestParseScenes(t *testing.T) {
	tbl, err := ParseScenes([]byte(sampleScenes))
	require.NoError(t, err)
	assert.Equal(t, []string{"tiny"}, tbl.Names())

	s, ok := tbl.Get("tiny")
	require.True(t, ok)
	assert.Equal(t, []world.Color{world.Red, world.Green}, s.Colors)
	assert.Equal(t, 1.0, s.SpeedMultiplier, "defaulted")
	assert.Equal(t, world.Workspace{Width: 14, Height: 8}, s.Workspace())

	p, ok := s.Placement(world.Green)
	require.True(t, ok)
	assert.Equal(t, world.Direction(0), p.Orientation, "unset orientation left to the scene")
	p, _ = s.Placement(world.Red)
	assert.Equal(t, world.Right, p.Orientation)
}

func TestParseScenesSchemaErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"not a list":    "scenes: 3",
		"bad robots":    "scenes: [{name: x, workspace: {width: 12}, robots: many, blocks: 1, colors: [red], containers: []}]",
		"missing width": "scenes: [{name: x, workspace: {}, robots: 1, blocks: 1, colors: [red], containers: []}]",
		"extra field":   "scenes: [{name: x, workspace: {width: 12}, robots: 1, blocks: 1, colors: [red], containers: [], pets: 2}]",
		"empty":         "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScenes([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseScenesRejectsUnknownNames(t *testing.T) {
	_, err := ParseScenes([]byte("scenes: [{name: x, workspace: {width: 12}, robots: 1, blocks: 1, colors: [purple], containers: []}]"))
	assert.ErrorContains(t, err, "unknown color")

	_, err = ParseScenes([]byte("scenes: [{name: x, workspace: {width: 12}, robots: 1, blocks: 1, colors: [red], containers: [{color: red, position: 0, orientation: up}]}]"))
	assert.ErrorContains(t, err, "unknown orientation")
}

func TestParseScenesRejectsDuplicates(t *testing.T) {
	one := "{name: x, workspace: {width: 12}, robots: 1, blocks: 1, colors: [red], containers: []}"
	_, err := ParseScenes([]byte("scenes: [" + one + ", " + one + "]"))
	assert.ErrorContains(t, err, "duplicate")
}

func TestParseScenesKeepsZeroCounts(t *testing.T) {
	tbl, err := ParseScenes([]byte("scenes: [{name: empty, workspace: {width: 12}, robots: 0, blocks: 0, colors: [], containers: []}]"))
	require.NoError(t, err, "value rules belong to the scene manager")
	s, _ := tbl.Get("empty")
	assert.Empty(t, s.Colors)
}

func TestLoadShippedScenes(t *testing.T) {
	tbl, err := LoadScenes("../../data/yaml/scenes.yaml")
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Count())

	s, ok := tbl.Get("default")
	require.True(t, ok)
	assert.Equal(t, DefaultScene(), s)
}

func TestParseColorAndDirection(t *testing.T) {
	c, err := ParseColor("  MaGeNtA")
	require.NoError(t, err)
	assert.Equal(t, world.Magenta, c)

	_, err = ParseColor("")
	assert.Error(t, err)

	d, err := ParseDirection("Left")
	require.NoError(t, err)
	assert.Equal(t, world.Left, d)
}
