// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package forecast

// linearFit is a least-squares line over evenly spaced samples.
type linearFit struct {
	Slope     float64
	Intercept float64

	// R2 is the coefficient of determination in [0,1]; a perfectly flat
	// series fits with R2 = 1.
	R2 float64
}

// fitLine computes the least-squares fit of values against their indices.
// Requires at least two values.
func fitLine(values []float64) linearFit {
	n := float64(len(values))

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return linearFit{Intercept: sumY / n, R2: 1}
	}

	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	mean := sumY / n
	var ssTot, ssRes float64
	for i, y := range values {
		predicted := intercept + slope*float64(i)
		ssTot += (y - mean) * (y - mean)
		ssRes += (y - predicted) * (y - predicted)
	}

	r2 := 1.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}
	if r2 < 0 {
		r2 = 0
	}
	return linearFit{Slope: slope, Intercept: intercept, R2: r2}
}

// meanVariance returns the mean and population variance of values.
func meanVariance(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return mean, variance / float64(len(values))
}

// clamp01 bounds v to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
