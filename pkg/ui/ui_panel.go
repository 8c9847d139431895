package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	padding      = 10.0
	titleHeight  = 24.0
	headingRow   = 22.0
	sliderRow    = 34.0 // label line and bar
	checkboxRow  = 22.0
	buttonHeight = 20.0
	buttonRow    = buttonHeight + 10
)

// widget is anything the panel stacks.
type widget interface {
	Update()
	Draw(screen *ebiten.Image)
}

// heading is a group title drawn across the panel.
type heading struct {
	text string
	y    float64
}

// Panel is the tuning sidebar: a titled column of widgets laid out top to
// bottom as they are added. It grows to fit its content.
type Panel struct {
	Title string
	X, Y  float64
	Width float64

	widgets  []widget
	sliders  []*Slider
	headings []heading
	next     float64 // y of the next row, relative to Y

	BGColor      color.RGBA
	BorderColor  color.RGBA
	HeadingColor color.RGBA
}

// NewPanel creates an empty panel at (x, y).
func NewPanel(title string, x, y, width float64) *Panel {
	return &Panel{
		Title:        title,
		X:            x,
		Y:            y,
		Width:        width,
		next:         titleHeight,
		BGColor:      color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor:  color.RGBA{R: 100, G: 100, B: 110, A: 255},
		HeadingColor: color.RGBA{R: 60, G: 60, B: 70, A: 255},
	}
}

// Height is the panel height once every row is laid out.
func (p *Panel) Height() float64 {
	return p.next + padding
}

func (p *Panel) row(h float64) (x, y, w float64) {
	x, y, w = p.X+padding, p.Y+p.next, p.Width-2*padding
	p.next += h
	return x, y, w
}

// AddHeading starts a group of widgets.
func (p *Panel) AddHeading(text string) {
	_, y, _ := p.row(headingRow)
	p.headings = append(p.headings, heading{text: text, y: y})
}

// AddSlider adds a labelled slider showing its current value.
func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	x, y, w := p.row(sliderRow)
	s := NewSlider(x, y+16, w, label, min, max, value)
	p.widgets = append(p.widgets, s)
	p.sliders = append(p.sliders, s)
	return s
}

// AddCheckbox adds an on/off row.
func (p *Panel) AddCheckbox(label string, on bool) *Checkbox {
	x, y, w := p.row(checkboxRow)
	c := NewCheckbox(x, y, w, label, on)
	p.widgets = append(p.widgets, c)
	return c
}

// AddButton adds a full width push button.
func (p *Panel) AddButton(label string, onClick func()) *Button {
	x, y, w := p.row(buttonRow)
	b := NewButton(x, y, w, buttonHeight, label, onClick)
	p.widgets = append(p.widgets, b)
	return b
}

// Update handles input for every widget.
func (p *Panel) Update() {
	for _, w := range p.widgets {
		w.Update()
	}
}

// Draw renders the panel and its widgets.
func (p *Panel) Draw(screen *ebiten.Image) {
	h := float32(p.Height())
	vector.FillRect(screen, float32(p.X), float32(p.Y), float32(p.Width), h, p.BGColor, true)
	vector.StrokeRect(screen, float32(p.X), float32(p.Y), float32(p.Width), h, 2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+padding), int(p.Y+5))

	for _, hd := range p.headings {
		vector.FillRect(screen, float32(p.X+5), float32(hd.y), float32(p.Width-10), headingRow-4, p.HeadingColor, true)
		ebitenutil.DebugPrintAt(screen, hd.text, int(p.X+padding), int(hd.y+2))
	}
	for _, s := range p.sliders {
		ebitenutil.DebugPrintAt(screen, sliderCaption(s), int(s.X), int(s.Y-16))
	}
	for _, w := range p.widgets {
		w.Draw(screen)
	}
}

// sliderCaption is the label line above a slider bar.
func sliderCaption(s *Slider) string {
	if s.Max-s.Min <= 1 {
		return fmt.Sprintf("%s: %.2f", s.Label, s.Value)
	}
	return fmt.Sprintf("%s: %.0f", s.Label, s.Value)
}
