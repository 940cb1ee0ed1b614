package system

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/blockbots/server/internal/audio"
	"github.com/blockbots/server/internal/core/event"
	"github.com/blockbots/server/internal/scripting"
	"github.com/blockbots/server/internal/world"
)

// Deps is everything the simulation systems share. It is built once in
// main and handed to each constructor.
type Deps struct {
	World   *world.State
	Bus     *event.Bus
	Audio   audio.Player
	Rand    *rand.Rand
	Log     *zap.Logger
	Scripts *scripting.Engine // optional
}

func (d *Deps) play(key string) {
	if d.Audio != nil {
		d.Audio.Play(key)
	}
}
