package world

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Color is the fixed block palette.
type Color uint8

const (
	Blue Color = iota
	Red
	Green
	Magenta
	Orange
)

// Palette lists every color in declaration order.
var Palette = []Color{Blue, Red, Green, Magenta, Orange}

var colorNames = [...]string{"blue", "red", "green", "magenta", "orange"}

// colorRGB is the display tint of each color, 0-255 per channel.
var colorRGB = [...][3]uint8{
	{74, 179, 255}, // blue
	{255, 0, 0},    // red
	{5, 194, 18},   // green
	{194, 0, 194},  // magenta
	{255, 128, 0},  // orange
}

var titleCaser = cases.Title(language.English)

func (c Color) Valid() bool { return int(c) < len(colorNames) }

func (c Color) String() string {
	if !c.Valid() {
		return "unknown"
	}
	return colorNames[c]
}

// Title is the display name used in logs and reports ("Magenta").
func (c Color) Title() string { return titleCaser.String(c.String()) }

// RGB returns the display tint; white for an unknown color.
func (c Color) RGB() (r, g, b uint8) {
	if !c.Valid() {
		return 255, 255, 255
	}
	v := colorRGB[c]
	return v[0], v[1], v[2]
}

// Direction is a horizontal heading. Robots face one; containers accept
// blocks from one.
type Direction int8

const (
	Left  Direction = -1
	Right Direction = 1
)

func (d Direction) Opposite() Direction { return -d }

// Sign returns the direction as a float multiplier.
func (d Direction) Sign() float64 { return float64(d) }

func (d Direction) Valid() bool { return d == Left || d == Right }

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "none"
}
