// Package audio names the sound cues the simulation fires and the sink
// they go to. Playback itself lives outside the simulation.
package audio

import (
	"sync"

	"go.uber.org/zap"
)

// Cue keys.
const (
	RobotBlip01 = "RobotBlip.01" // block picked up
	RobotBlip02 = "RobotBlip.02" // block dropped off
	ScannerBeep = "ScannerBeep"  // container finished a block
	TinyButton  = "TinyButton"
)

// AddressBase formats a cue key into an asset address.
const AddressBase = "Sounds.%s"

// Preload lists the cues loaded before a scene starts.
var Preload = []string{RobotBlip01, RobotBlip02, TinyButton, ScannerBeep}

// Player is a fire-and-forget cue sink. Implementations must not block the
// tick and must swallow their own failures.
type Player interface {
	Play(key string)
}

// Nop discards every cue.
type Nop struct{}

func (Nop) Play(string) {}

// LogPlayer records cues to the debug log. It stands in for a real mixer on
// the headless server.
type LogPlayer struct {
	log    *zap.Logger
	loaded map[string]bool
}

func NewLogPlayer(log *zap.Logger) *LogPlayer {
	return &LogPlayer{log: log, loaded: make(map[string]bool)}
}

// PreloadList marks cues as resident.
func (p *LogPlayer) PreloadList(keys ...string) {
	for _, k := range keys {
		p.loaded[k] = true
	}
	p.log.Debug("preloaded cues", zap.Strings("cues", keys))
}

func (p *LogPlayer) Play(key string) {
	if !p.loaded[key] {
		p.log.Debug("cue not preloaded", zap.String("cue", key))
	}
	p.log.Debug("play cue", zap.String("cue", key))
}

// Recorder keeps every cue in order. Safe for concurrent use so tests can
// read it from any goroutine.
type Recorder struct {
	mu   sync.Mutex
	cues []string
}

func (r *Recorder) Play(key string) {
	r.mu.Lock()
	r.cues = append(r.cues, key)
	r.mu.Unlock()
}

// Cues returns a copy of the recorded cues.
func (r *Recorder) Cues() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.cues...)
}

// Count returns how many times key was played.
func (r *Recorder) Count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.cues {
		if c == key {
			n++
		}
	}
	return n
}
