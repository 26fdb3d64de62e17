package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrInsufficientData indicates a sample too small for the test.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrZeroVariance indicates constant data for which the statistic is undefined.
	ErrZeroVariance = errors.New("zero variance")
)

// Test names a hypothesis test.
type Test string

const (
	TestPearson      Test = "Pearson"
	TestMannWhitneyU Test = "Mann-Whitney U"
	TestANOVA        Test = "ANOVA"
)

// Result is the outcome of a hypothesis test.
type Result struct {
	Test      Test
	Statistic float64 // r for Pearson, U for Mann–Whitney, F for ANOVA
	PValue    float64
	N         int // total observations used
	DF1       float64
	DF2       float64
	Exact     bool // Mann–Whitney only: exact null distribution used
}

// Pearson computes the correlation of x and y and its two-sided p-value.
func Pearson(x, y []float64) (*Result, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("pearson: length mismatch %d != %d", len(x), len(y))
	}
	n := len(x)
	if n < 3 {
		return nil, fmt.Errorf("pearson: need at least 3 pairs, got %d: %w", n, ErrInsufficientData)
	}
	if isConstant(x) || isConstant(y) {
		return nil, fmt.Errorf("pearson: constant input: %w", ErrZeroVariance)
	}
	r := stat.Correlation(x, y, nil)
	// Snap rounding noise so exact linear relations report |r| = 1 and p = 0.
	if math.Abs(r) > 1-1e-12 {
		r = math.Copysign(1, r)
	}
	df := float64(n - 2)
	var p float64
	if math.Abs(r) < 1 {
		t := r * math.Sqrt(df/((1-r)*(1+r)))
		p = 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Survival(math.Abs(t))
	}
	return &Result{Test: TestPearson, Statistic: r, PValue: clampP(p), N: n, DF1: df}, nil
}

// exactLimit is the largest size of the smaller sample for which the exact Mann–Whitney
// distribution is used.
const exactLimit = 8

// MannWhitneyU runs the two-sided Mann–Whitney U test. Statistic is U for the first sample.
func MannWhitneyU(a, b []float64) (*Result, error) {
	n1, n2 := len(a), len(b)
	if n1 == 0 || n2 == 0 {
		return nil, fmt.Errorf("mann-whitney: empty sample (%d, %d): %w", n1, n2, ErrInsufficientData)
	}
	combined := make([]float64, 0, n1+n2)
	combined = append(combined, a...)
	combined = append(combined, b...)
	ranks, tieTerm := rankWithTies(combined)

	r1 := floats.Sum(ranks[:n1])
	u1 := r1 - float64(n1*(n1+1))/2
	u2 := float64(n1*n2) - u1
	u := math.Max(u1, u2)
	n := float64(n1 + n2)

	res := &Result{Test: TestMannWhitneyU, Statistic: u1, N: n1 + n2}
	if (n1 <= exactLimit || n2 <= exactLimit) && tieTerm == 0 {
		res.Exact = true
		res.PValue = clampP(2 * exactUSurvival(int(math.Round(u)), n1, n2))
		return res, nil
	}

	sigma := math.Sqrt(float64(n1*n2) / 12 * ((n + 1) - tieTerm/(n*(n-1))))
	if sigma == 0 || math.IsNaN(sigma) {
		return nil, fmt.Errorf("mann-whitney: all values tied: %w", ErrZeroVariance)
	}
	mu := float64(n1*n2) / 2
	z := (u - mu - 0.5) / sigma
	res.PValue = clampP(2 * distuv.UnitNormal.Survival(z))
	return res, nil
}

// exactUSurvival returns P(U >= u) under the null for sample sizes n1, n2 without ties.
// The counts of U are the coefficients of the Gaussian binomial [n1+n2 choose m]_q with
// m = min(n1, n2), built one factor (1-q^(n+i))/(1-q^i) at a time.
func exactUSurvival(u, n1, n2 int) float64 {
	m, n := n1, n2
	if m > n {
		m, n = n, m
	}
	maxU := m * n
	if u <= 0 {
		return 1
	}
	if u > maxU {
		return 0
	}
	dist := make([]float64, maxU+1)
	dist[0] = 1
	for i := 1; i <= m; i++ {
		for k := maxU; k >= n+i; k-- {
			dist[k] -= dist[k-n-i]
		}
		for k := i; k <= maxU; k++ {
			dist[k] += dist[k-i]
		}
	}
	total := floats.Sum(dist)
	tail := 0.0
	for k := u; k <= maxU; k++ {
		tail += dist[k]
	}
	return tail / total
}

// OneWayANOVA runs the one-way analysis of variance F test across groups.
// Constant groups with different means give F = +Inf and p = 0.
func OneWayANOVA(groups ...[]float64) (*Result, error) {
	k := len(groups)
	if k < 2 {
		return nil, fmt.Errorf("anova: need at least 2 groups, got %d: %w", k, ErrInsufficientData)
	}
	var all []float64
	for i, g := range groups {
		if len(g) == 0 {
			return nil, fmt.Errorf("anova: group %d is empty: %w", i, ErrInsufficientData)
		}
		all = append(all, g...)
	}
	n := len(all)
	if n <= k {
		return nil, fmt.Errorf("anova: %d observations for %d groups: %w", n, k, ErrInsufficientData)
	}
	grand := stat.Mean(all, nil)
	var ssb, ssw float64
	for _, g := range groups {
		m := stat.Mean(g, nil)
		ssb += float64(len(g)) * (m - grand) * (m - grand)
		for _, v := range g {
			ssw += (v - m) * (v - m)
		}
	}
	dfb := float64(k - 1)
	dfw := float64(n - k)
	if ssw == 0 {
		if ssb == 0 {
			return nil, fmt.Errorf("anova: all values equal: %w", ErrZeroVariance)
		}
		// Constant groups with different means separate perfectly.
		return &Result{Test: TestANOVA, Statistic: math.Inf(1), PValue: 0, N: n, DF1: dfb, DF2: dfw}, nil
	}
	f := (ssb / dfb) / (ssw / dfw)
	p := distuv.F{D1: dfb, D2: dfw}.Survival(f)
	return &Result{Test: TestANOVA, Statistic: f, PValue: clampP(p), N: n, DF1: dfb, DF2: dfw}, nil
}

// rankWithTies assigns average ranks (1-based) and returns sum(t^3 - t) over tie groups.
func rankWithTies(x []float64) ([]float64, float64) {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })
	ranks := make([]float64, len(x))
	var tieTerm float64
	for i := 0; i < len(idx); {
		j := i + 1
		for j < len(idx) && x[idx[j]] == x[idx[i]] {
			j++
		}
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		if t := float64(j - i); t > 1 {
			tieTerm += t*t*t - t
		}
		i = j
	}
	return ranks, tieTerm
}

func isConstant(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return false
		}
	}
	return true
}

func clampP(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return 1
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
