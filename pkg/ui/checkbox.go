package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const boxSize = 14

// clickEdge turns a held mouse button into one click per press.
type clickEdge struct {
	held bool
}

// fire reports whether this frame starts a press over the widget.
func (e *clickEdge) fire(over, pressed bool) bool {
	if !over || !pressed {
		e.held = false
		return false
	}
	if e.held {
		return false
	}
	e.held = true
	return true
}

func cursorIn(x, y, w, h float64) bool {
	mx, my := ebiten.CursorPosition()
	return float64(mx) >= x && float64(mx) <= x+w && float64(my) >= y && float64(my) <= y+h
}

// Checkbox is an on/off switch drawn as a box followed by its label. The
// whole row is clickable.
type Checkbox struct {
	Label    string
	On       bool
	X, Y     float64
	W        float64
	OnChange func(on bool)

	edge clickEdge
}

// NewCheckbox creates a checkbox row w pixels wide.
func NewCheckbox(x, y, w float64, label string, on bool) *Checkbox {
	return &Checkbox{Label: label, On: on, X: x, Y: y, W: w}
}

// Toggle flips the switch and notifies OnChange.
func (c *Checkbox) Toggle() {
	c.On = !c.On
	if c.OnChange != nil {
		c.OnChange(c.On)
	}
}

func (c *Checkbox) Update() {
	if c.edge.fire(cursorIn(c.X, c.Y, c.W, boxSize), ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)) {
		c.Toggle()
	}
}

func (c *Checkbox) Draw(screen *ebiten.Image) {
	border := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	if cursorIn(c.X, c.Y, c.W, boxSize) {
		border = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	vector.StrokeRect(screen, float32(c.X), float32(c.Y), boxSize, boxSize, 2, border, true)
	if c.On {
		vector.FillRect(screen, float32(c.X+3), float32(c.Y+3), boxSize-6, boxSize-6,
			color.RGBA{R: 100, G: 200, B: 100, A: 255}, true)
	}
	ebitenutil.DebugPrintAt(screen, c.Label, int(c.X+boxSize+8), int(c.Y))
}
