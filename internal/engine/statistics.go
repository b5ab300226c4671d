package engine

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"tolninja/domain/stackup"
	"tolninja/internal/errors"
)

// Cpk returns the one-sided-minimum process capability index:
// min((usl-mean)/3s, (mean-lsl)/3s). An exactly zero standard deviation
// marks a degenerate, essentially deterministic process and is reported as
// +Inf when the mean lies strictly within the limits, -Inf otherwise.
func Cpk(lsl, usl, mean, std float64) float64 {
	if std == 0 {
		if mean > lsl && mean < usl {
			return math.Inf(1)
		}
		return math.Inf(-1)
	}
	return math.Min((usl-mean)/(3*std), (mean-lsl)/(3*std))
}

// SummaryStatistics derives the summary record for an aggregated length
// distribution. Passing nil lengths summarizes the cached aggregate. For a
// radial stack the statistics run on magnitudes, the effective lower spec
// limit is forced to 0 and percent-below-lower is 0 by construction. The
// optional custom limit pair is evaluated independently against the same
// samples; a nil or partially defined pair means "custom limits not
// supplied" and leaves the custom fields unset.
func (m *StackManager) SummaryStatistics(lengths *Lengths, custom *stackup.Limits) (*stackup.SummaryData, error) {
	if lengths == nil {
		var err error
		lengths, err = m.Aggregate()
		if err != nil {
			return nil, err
		}
	}

	values := lengths.Magnitudes()
	if len(values) == 0 {
		return nil, errors.New(errors.CodeComputationFailed, "no samples to summarize")
	}
	radial := lengths.Orientation.IsRadial()

	target := stackup.Limits{Lower: m.lowerSpec, Upper: m.upperSpec}
	if radial {
		// A radial tolerance is a distance from the origin; a negative
		// lower bound has no meaning.
		zero := 0.0
		target.Lower = &zero
	}

	// Empty input is excluded above; montanaflynn errors only on that.
	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	minV, _ := stats.Min(values)
	maxV, _ := stats.Max(values)
	std, _ := stats.StandardDeviationPopulation(values)

	summary := &stackup.SummaryData{
		TargetLimits: target,
		Mean:         mean,
		Median:       median,
		Min:          minV,
		Max:          maxV,
		Std:          std,
		Samples:      len(values),
	}

	if target.Defined() {
		below, above := percentOutside(values, target, radial)
		ok := 100 - below - above
		nok := below + above
		summary.PercentBelowLSL = &below
		summary.PercentAboveUSL = &above
		summary.PercentOK = &ok
		summary.PercentNOK = &nok

		cpk := stackup.Capability(Cpk(*target.Lower, *target.Upper, mean, std))
		summary.Cpk = &cpk

		est := estimatedPercentOutside(mean, std, target, radial)
		summary.EstimatedPercentNOK = &est
	}

	if custom != nil && custom.Defined() {
		below, above := percentOutside(values, *custom, radial)
		ok := 100 - below - above
		nok := below + above
		summary.CustomLimits = custom
		summary.PercentBelowCustLSL = &below
		summary.PercentAboveCustUSL = &above
		summary.PercentCustOK = &ok
		summary.PercentCustNOK = &nok

		cpk := stackup.Capability(Cpk(*custom.Lower, *custom.Upper, mean, std))
		summary.CustCpk = &cpk
	}

	return summary, nil
}

// percentOutside counts samples outside each limit independently. For a
// radial stack the below-lower side is 0 by definition: magnitudes cannot
// fall below the zero bound.
func percentOutside(values []float64, limits stackup.Limits, radial bool) (below, above float64) {
	n := float64(len(values))
	if !radial {
		count := 0
		for _, v := range values {
			if v < *limits.Lower {
				count++
			}
		}
		below = 100 * float64(count) / n
	}
	count := 0
	for _, v := range values {
		if v > *limits.Upper {
			count++
		}
	}
	above = 100 * float64(count) / n
	return below, above
}

// estimatedPercentOutside fits a normal to the sample moments and returns
// the predicted percent outside the limits, the way capability reports
// quote expected fallout rather than observed-in-sample fallout. For a
// radial stack only the upper tail applies; the normal fit over
// magnitudes is a first-order estimate.
func estimatedPercentOutside(mean, std float64, limits stackup.Limits, radial bool) float64 {
	if std == 0 {
		if mean < *limits.Lower || mean > *limits.Upper {
			return 100
		}
		return 0
	}
	dist := distuv.Normal{Mu: mean, Sigma: std}
	out := 1 - dist.CDF(*limits.Upper)
	if !radial {
		out += dist.CDF(*limits.Lower)
	}
	return 100 * out
}

// CoverageSide selects which side of the distribution a coverage range is
// measured from.
type CoverageSide string

const (
	CoverageLeft      CoverageSide = "left"
	CoverageRight     CoverageSide = "right"
	CoverageBiLateral CoverageSide = "bi-lateral"
)

// RangeForPercentage returns the value range holding the given percentage
// of the distribution from the chosen side. Left coverage spans from the
// sample minimum, right coverage ends at the sample maximum, and
// bi-lateral coverage is symmetric about zero.
func RangeForPercentage(values []float64, percentage float64, side CoverageSide) (lower, upper float64, err error) {
	if len(values) == 0 {
		return 0, 0, errors.New(errors.CodeComputationFailed, "no samples for coverage range")
	}
	if percentage <= 0 || percentage > 100 {
		return 0, 0, errors.Newf(errors.CodeInvalidDefinition, "percentage %g outside (0, 100]", percentage)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)

	idx := int(math.Ceil(percentage * float64(len(sorted)) / 100))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	switch side {
	case CoverageLeft:
		sort.Float64s(sorted)
		return sorted[0], sorted[idx], nil
	case CoverageRight:
		sort.Float64s(sorted)
		return sorted[len(sorted)-1-idx], sorted[len(sorted)-1], nil
	case CoverageBiLateral:
		for i, v := range sorted {
			sorted[i] = math.Abs(v)
		}
		sort.Float64s(sorted)
		return -sorted[idx], sorted[idx], nil
	default:
		return 0, 0, errors.Newf(errors.CodeInvalidDefinition, "unknown coverage side %q", side)
	}
}

// Histogram buckets values into count equal-width bins for display. The
// engine hands bins to the rendering collaborator as plain data.
func Histogram(values []float64, bins int) []stackup.HistogramBin {
	if len(values) == 0 || bins <= 0 {
		return nil
	}
	minV, maxV := values[0], values[0]
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	out := make([]stackup.HistogramBin, bins)
	width := (maxV - minV) / float64(bins)
	if width == 0 {
		// Degenerate distribution: one bin holds everything.
		out = out[:1]
		out[0] = stackup.HistogramBin{Lower: minV, Upper: maxV, Count: len(values)}
		return out
	}
	for i := range out {
		out[i].Lower = minV + float64(i)*width
		out[i].Upper = minV + float64(i+1)*width
	}
	for _, v := range values {
		i := int((v - minV) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}
