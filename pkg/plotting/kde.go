package plotting

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot/plotter"

	"github.com/KaramelBytes/edakit/pkg/table"
)

// ScottBandwidth is std * n^(-1/5).
func ScottBandwidth(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil) * math.Pow(float64(len(xs)), -0.2)
}

// Density evaluates a Gaussian kernel density estimate of xs on points evenly
// spaced values covering the data plus three bandwidths on each side.
func Density(xs []float64, points int) (plotter.XYs, error) {
	h := ScottBandwidth(xs)
	if h <= 0 || math.IsNaN(h) {
		return nil, fmt.Errorf("density needs at least 2 distinct values: %w", table.ErrInsufficientData)
	}
	if points < 2 {
		points = 2
	}
	lo := floats.Min(xs) - 3*h
	hi := floats.Max(xs) + 3*h
	step := (hi - lo) / float64(points-1)
	norm := 1 / (float64(len(xs)) * h * math.Sqrt(2*math.Pi))
	out := make(plotter.XYs, points)
	for i := range out {
		x := lo + float64(i)*step
		var sum float64
		for _, v := range xs {
			u := (x - v) / h
			sum += math.Exp(-0.5 * u * u)
		}
		out[i].X = x
		out[i].Y = sum * norm
	}
	return out, nil
}
