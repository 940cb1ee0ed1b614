package data

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/blockbots/server/internal/world"
)

var folder = cases.Fold()

// ParseColor resolves a palette name, ignoring case and surrounding space.
func ParseColor(s string) (world.Color, error) {
	name := folder.String(strings.TrimSpace(s))
	for _, c := range world.Palette {
		if folder.String(c.String()) == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown color %q", s)
}

// ParseDirection resolves "left" or "right". An empty string yields the
// zero Direction so callers can apply their own default.
func ParseDirection(s string) (world.Direction, error) {
	switch folder.String(strings.TrimSpace(s)) {
	case "":
		return 0, nil
	case "left":
		return world.Left, nil
	case "right":
		return world.Right, nil
	}
	return 0, fmt.Errorf("unknown orientation %q", s)
}
