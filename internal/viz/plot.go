package viz

import "github.com/guptarohit/asciigraph"

// PlotAlive charts an alive-count series. Series longer than width are
// downsampled by taking the maximum of each bucket so spikes stay visible.
func PlotAlive(series []int, width, height int, caption string) string {
	if len(series) == 0 {
		return ""
	}
	data := downsample(series, width)
	if len(data) == 1 {
		data = append(data, data[0])
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

func downsample(series []int, width int) []float64 {
	if width <= 0 || len(series) <= width {
		out := make([]float64, len(series))
		for i, v := range series {
			out[i] = float64(v)
		}
		return out
	}
	out := make([]float64, width)
	for b := 0; b < width; b++ {
		lo := b * len(series) / width
		hi := (b + 1) * len(series) / width
		peak := series[lo]
		for _, v := range series[lo:hi] {
			peak = max(peak, v)
		}
		out[b] = float64(peak)
	}
	return out
}
