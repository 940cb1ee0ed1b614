package data

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/blockbots/server/internal/world"
)

//go:embed scene.schema.json
var sceneSchemaJSON string

var sceneSchema = jsonschema.MustCompileString("scene.schema.json", sceneSchemaJSON)

// ContainerPlacement positions the container of one color.
type ContainerPlacement struct {
	Color       world.Color
	Position    float64 // fraction of the inset width, 0.0-1.0
	Orientation world.Direction
}

// Scene is one scene descriptor. Descriptors are only parsed here; the
// scene manager decides whether one is acceptable.
type Scene struct {
	Name            string
	Width           float64
	Height          float64 // 0 = Width * world.DefaultAspect
	Robots          int
	Blocks          int
	SpeedMultiplier float64
	Colors          []world.Color
	Containers      []ContainerPlacement
}

// Workspace returns the scene rectangle.
func (s Scene) Workspace() world.Workspace {
	h := s.Height
	if h <= 0 {
		h = s.Width * world.DefaultAspect
	}
	return world.Workspace{Width: s.Width, Height: h}
}

// Placement returns the container placement for a color.
func (s Scene) Placement(c world.Color) (ContainerPlacement, bool) {
	for _, p := range s.Containers {
		if p.Color == c {
			return p, true
		}
	}
	return ContainerPlacement{}, false
}

// DefaultScene is the main-menu default mode: a 12 unit workspace, one
// robot, ten red and blue blocks, red container on the left wall and blue
// container on the right wall.
func DefaultScene() Scene {
	return Scene{
		Name:            "default",
		Width:           12,
		Robots:          1,
		Blocks:          10,
		SpeedMultiplier: 1,
		Colors:          []world.Color{world.Red, world.Blue},
		Containers: []ContainerPlacement{
			{Color: world.Red, Position: 0, Orientation: world.Right},
			{Color: world.Blue, Position: 1, Orientation: world.Left},
		},
	}
}

type containerEntry struct {
	Color       string  `yaml:"color"`
	Position    float64 `yaml:"position"`
	Orientation string  `yaml:"orientation"`
}

type workspaceEntry struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type sceneEntry struct {
	Name            string           `yaml:"name"`
	Workspace       workspaceEntry   `yaml:"workspace"`
	Robots          int              `yaml:"robots"`
	Blocks          int              `yaml:"blocks"`
	SpeedMultiplier float64          `yaml:"speed_multiplier"`
	Colors          []string         `yaml:"colors"`
	Containers      []containerEntry `yaml:"containers"`
}

type sceneListFile struct {
	Scenes []sceneEntry `yaml:"scenes"`
}

// SceneTable holds scene descriptors indexed by name.
type SceneTable struct {
	scenes map[string]Scene
	order  []string
}

// Get returns the named scene.
func (t *SceneTable) Get(name string) (Scene, bool) {
	s, ok := t.scenes[name]
	return s, ok
}

// Names lists scene names in file order.
func (t *SceneTable) Names() []string {
	return append([]string(nil), t.order...)
}

// Count returns the number of scenes.
func (t *SceneTable) Count() int {
	return len(t.scenes)
}

// LoadScenes loads scene descriptors from a YAML file.
func LoadScenes(path string) (*SceneTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenes: %w", err)
	}
	t, err := ParseScenes(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseScenes validates raw YAML against the scene schema and decodes it.
func ParseScenes(raw []byte) (*SceneTable, error) {
	if err := validateSchema(raw); err != nil {
		return nil, err
	}
	var f sceneListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse scenes: %w", err)
	}

	t := &SceneTable{scenes: make(map[string]Scene, len(f.Scenes))}
	for i, e := range f.Scenes {
		s, err := e.toScene()
		if err != nil {
			return nil, fmt.Errorf("scene %d (%s): %w", i, e.Name, err)
		}
		if _, dup := t.scenes[s.Name]; dup {
			return nil, fmt.Errorf("scene %d: duplicate name %q", i, s.Name)
		}
		t.scenes[s.Name] = s
		t.order = append(t.order, s.Name)
	}
	return t, nil
}

// validateSchema checks document shape. The schema library wants JSON
// values, so the YAML tree goes through a JSON round trip first.
func validateSchema(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse scenes: %w", err)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("scenes to json: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("scenes to json: %w", err)
	}
	if err := sceneSchema.Validate(v); err != nil {
		return fmt.Errorf("scene schema: %w", err)
	}
	return nil
}

func (e sceneEntry) toScene() (Scene, error) {
	s := Scene{
		Name:            e.Name,
		Width:           e.Workspace.Width,
		Height:          e.Workspace.Height,
		Robots:          e.Robots,
		Blocks:          e.Blocks,
		SpeedMultiplier: e.SpeedMultiplier,
	}
	if s.SpeedMultiplier == 0 {
		s.SpeedMultiplier = 1
	}
	for _, name := range e.Colors {
		c, err := ParseColor(name)
		if err != nil {
			return Scene{}, err
		}
		s.Colors = append(s.Colors, c)
	}
	for _, ce := range e.Containers {
		c, err := ParseColor(ce.Color)
		if err != nil {
			return Scene{}, fmt.Errorf("container: %w", err)
		}
		dir, err := ParseDirection(ce.Orientation)
		if err != nil {
			return Scene{}, fmt.Errorf("container %s: %w", c, err)
		}
		s.Containers = append(s.Containers, ContainerPlacement{
			Color:       c,
			Position:    ce.Position,
			Orientation: dir,
		})
	}
	return s, nil
}
