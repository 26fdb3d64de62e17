// Package stats provides the hypothesis tests used to score candidate features
// against a continuous regression target.
//
// # Correlation
//
// Pearson's r with a two-sided p-value from Student's t distribution:
//
//	res, err := stats.Pearson(income, clv)
//	fmt.Printf("r=%.3f p=%.3g\n", res.Statistic, res.PValue)
//
// # Two groups
//
// Mann–Whitney U, two-sided. Untied data where either sample has at most 8
// values uses the exact null distribution; otherwise the normal approximation
// with tie and continuity correction is used:
//
//	res, err := stats.MannWhitneyU(female, male)
//
// # Three or more groups
//
// One-way ANOVA F test:
//
//	res, err := stats.OneWayANOVA(ca, ny, tx)
//
// All tests return ErrInsufficientData when a sample is too small and
// ErrZeroVariance when the statistic is undefined because the data are constant.
package stats
