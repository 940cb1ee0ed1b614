// scenecheck validates a scene descriptor file and prints each scene.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/blockbots/server/internal/data"
	"github.com/blockbots/server/internal/scene"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: scenecheck <scenes.yaml> [scene...]")
		os.Exit(1)
	}

	table, err := data.LoadScenes(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	names := os.Args[2:]
	if len(names) == 0 {
		names = table.Names()
	}

	bad := 0
	for _, name := range names {
		sc, ok := table.Get(name)
		if !ok {
			fmt.Printf("%-12s MISSING\n", name)
			bad++
			continue
		}
		if err := scene.Validate(sc); err != nil {
			if errors.Is(err, scene.ErrInvalidScene) {
				fmt.Printf("%-12s INVALID  %v\n", name, err)
			} else {
				fmt.Printf("%-12s ERROR    %v\n", name, err)
			}
			bad++
			continue
		}
		ws := sc.Workspace()
		colors := make([]string, len(sc.Colors))
		for i, c := range sc.Colors {
			colors[i] = c.Title()
		}
		fmt.Printf("%-12s OK       %.0fx%.2f  robots=%d blocks=%d speed=%.2f colors=%s\n",
			name, ws.Width, ws.Height, sc.Robots, sc.Blocks, sc.SpeedMultiplier, strings.Join(colors, ","))
	}

	fmt.Printf("Checked %d scenes, %d failed\n", len(names), bad)
	if bad > 0 {
		os.Exit(1)
	}
}
