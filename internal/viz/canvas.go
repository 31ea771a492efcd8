package viz

import (
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the sub-pixel (x, y). The canvas is (Width*2) x (Height*4)
// sub-pixels with y growing downward.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// View is the world-space window a canvas shows: x in [MinX, MaxX] across
// and y in [0, MaxY] up, with the ground on the bottom row.
type View struct {
	MinX, MaxX float32
	MaxY       float32
}

// PlotBuffer draws every particle of a render buffer at its (x, y)
// position and returns how many landed inside the view.
func (c *Canvas) PlotBuffer(buf []float32, v View, stride int) int {
	pw, ph := float32(c.Width*2), float32(c.Height*4)
	spanX := v.MaxX - v.MinX
	if spanX <= 0 || v.MaxY <= 0 {
		return 0
	}
	visible := 0
	for i := 0; i+1 < len(buf); i += stride {
		x, y := buf[i], buf[i+1]
		if x < v.MinX || x > v.MaxX || y < 0 || y > v.MaxY {
			continue
		}
		px := int((x - v.MinX) / spanX * (pw - 1))
		py := int((1 - y/v.MaxY) * (ph - 1))
		c.Set(px, py)
		visible++
	}
	return visible
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}
