package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/partsim/internal/particle"
)

// BufferToSVG draws a side view (x right, y up) of a render buffer, one
// circle per particle in its own colour. The ground plane y=0 is drawn
// whenever it falls inside the view.
func BufferToSVG(buf []float32, width, height int, radius float64) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	n := len(buf) / particle.FloatsPerParticle
	if n == 0 {
		sb.WriteString("</svg>")
		return sb.String()
	}

	minX, maxX, minY, maxY := bounds(buf)

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	toX := func(x float64) float64 { return (x - minX) / rangeX * float64(width) }
	toY := func(y float64) float64 { return float64(height) - (y-minY)/rangeY*float64(height) }

	if minY <= 0 && maxY >= 0 {
		gy := toY(0)
		sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#333344" stroke-width="1"/>
`, gy, width, gy))
	}

	sb.WriteString("<g>\n")
	for i := 0; i < n; i++ {
		p := buf[i*particle.FloatsPerParticle : (i+1)*particle.FloatsPerParticle]
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="%.2f"/>
`, toX(float64(p[0])), toY(float64(p[1])), radius, hexColour(p[4], p[5], p[6]), clamp01(p[7])))
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func bounds(buf []float32) (minX, maxX, minY, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for i := 0; i+1 < len(buf); i += particle.FloatsPerParticle {
		x, y := float64(buf[i]), float64(buf[i+1])
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}
	return
}

func hexColour(r, g, b float32) string {
	return fmt.Sprintf("#%02x%02x%02x", channel(r), channel(g), channel(b))
}

func channel(c float32) uint8 {
	return uint8(math.Round(float64(clamp01(c)) * 255))
}

func clamp01(c float32) float32 {
	return float32(math.Max(0, math.Min(1, float64(c))))
}
