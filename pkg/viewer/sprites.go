package viewer

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Pre-rendered sprites for fast batched drawing
var (
	whiteImage = ebiten.NewImage(3, 3)
	carSprites []*ebiten.Image
)

// Legend:
// . = Transparent
// B = Body (team color)
// C = Cockpit
// T = Tyre
// W = Headlight
var carDesign = []string{
	"..TTT....TTT..",
	"..TTT....TTT..",
	"BBBBBBBBBBBBW.",
	"BBBBBCCCBBBBBW",
	"BBBBBCCCBBBBBW",
	"BBBBBBBBBBBBW.",
	"..TTT....TTT..",
	"..TTT....TTT..",
}

// teamColors is one livery per grid slot.
var teamColors = []color.RGBA{
	{R: 220, G: 30, B: 30, A: 255},
	{R: 30, G: 90, B: 230, A: 255},
	{R: 250, G: 150, B: 0, A: 255},
	{R: 0, G: 170, B: 120, A: 255},
	{R: 240, G: 240, B: 240, A: 255},
	{R: 150, G: 60, B: 200, A: 255},
	{R: 0, G: 200, B: 230, A: 255},
	{R: 240, G: 90, B: 170, A: 255},
	{R: 120, G: 200, B: 40, A: 255},
	{R: 140, G: 100, B: 60, A: 255},
	{R: 250, G: 220, B: 40, A: 255},
}

func init() {
	whiteImage.Fill(color.White)

	for _, body := range teamColors {
		palette := map[rune]color.RGBA{
			'B': body,
			'C': {R: 40, G: 40, B: 60, A: 255},
			'T': {R: 20, G: 20, B: 20, A: 255},
			'W': {R: 255, G: 255, B: 180, A: 255},
		}
		carSprites = append(carSprites, generateSprite(carDesign, palette))
	}
}

func generateSprite(design []string, palette map[rune]color.RGBA) *ebiten.Image {
	h := len(design)
	w := len(design[0])
	img := ebiten.NewImage(w, h)

	for y, row := range design {
		for x, char := range row {
			if col, ok := palette[char]; ok {
				img.Set(x, y, col)
			}
		}
	}
	return img
}
