package stats

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// TrendShape classifies a fitted curve.
type TrendShape string

const (
	TrendAscending  TrendShape = "ascending"
	TrendDescending TrendShape = "descending"
	TrendUShaped    TrendShape = "u-shaped"
	TrendFlat       TrendShape = "flat"
)

// LinearFit is a least-squares line over (x, y) samples.
type LinearFit struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
	R2        float64 `json:"r2"`
}

// FitLine fits y = a + b*x. Fewer than two samples yield a flat fit.
func FitLine(xs, ys []float64) LinearFit {
	if len(xs) < 2 || len(xs) != len(ys) {
		return LinearFit{}
	}
	a, b := stat.LinearRegression(xs, ys, nil, false)
	r2 := stat.RSquared(xs, ys, nil, a, b)
	return LinearFit{Intercept: a, Slope: b, R2: r2}
}

// QuadraticFit is a least-squares parabola over (x, y) samples.
type QuadraticFit struct {
	C0 float64 `json:"c0"`
	C1 float64 `json:"c1"`
	C2 float64 `json:"c2"`
}

// FitQuadratic fits y = c0 + c1*x + c2*x^2 by solving the normal equations.
// Fewer than three samples yield the zero fit.
func FitQuadratic(xs, ys []float64) QuadraticFit {
	n := len(xs)
	if n < 3 || n != len(ys) {
		return QuadraticFit{}
	}

	a := mat.NewDense(n, 3, nil)
	b := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		a.Set(i, 0, 1)
		a.Set(i, 1, xs[i])
		a.Set(i, 2, xs[i]*xs[i])
		b.SetVec(i, ys[i])
	}

	var qr mat.QR
	qr.Factorize(a)
	var coef mat.VecDense
	if err := qr.SolveVecTo(&coef, false, b); err != nil {
		return QuadraticFit{}
	}
	return QuadraticFit{C0: coef.AtVec(0), C1: coef.AtVec(1), C2: coef.AtVec(2)}
}

// ClassifyTrend labels a value curve as ascending, descending, u-shaped or
// flat using a linear fit backed by a quadratic check for curvature.
// flatSlope bounds the |slope| still considered flat.
func ClassifyTrend(values []float64, flatSlope float64) TrendShape {
	if len(values) < 2 {
		return TrendFlat
	}
	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}

	line := FitLine(xs, values)

	// A strong parabola with ends above the middle reads as u-shaped even
	// when the linear slope washes out.
	if len(values) >= 3 {
		quad := FitQuadratic(xs, values)
		span := Describe(values)
		if quad.C2 > 0 && span.StdDev > 0 {
			mid := len(values) / 2
			edgeMean := (values[0] + values[len(values)-1]) / 2
			if edgeMean-values[mid] > span.StdDev/2 {
				return TrendUShaped
			}
		}
	}

	switch {
	case line.Slope > flatSlope:
		return TrendAscending
	case line.Slope < -flatSlope:
		return TrendDescending
	default:
		return TrendFlat
	}
}
