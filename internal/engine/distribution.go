package engine

import (
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"tolninja/internal/errors"
)

const (
	// DefaultSamples is the number of draws per evaluation when a
	// distribution does not specify its own count.
	DefaultSamples = 50000

	// DefaultMaxRounds bounds the rejection-sampling loop for cutoff
	// distributions. A window that cannot accumulate enough in-range
	// samples within this many full redraws is a configuration error.
	DefaultMaxRounds = 100
)

var seedSequence atomic.Int64

// newRand returns an independently seeded source. Every distribution and
// step owns its own source so per-step calculation can run in parallel.
func newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano() ^ seedSequence.Add(1)<<17))
}

// Params carries the options shared by the distribution constructors.
// The zero value is usable: default sample count, no cutoffs, default
// round budget, time-seeded randomness.
type Params struct {
	// NumSamples is the draw count per Calculate; 0 uses DefaultSamples.
	NumSamples int
	// LowerLim / UpperLim are optional cutoffs. Samples outside the set
	// bounds are rejected and redrawn.
	LowerLim *float64
	UpperLim *float64
	// MaxRounds overrides the rejection-loop budget; 0 uses
	// DefaultMaxRounds.
	MaxRounds int
	// Rand pins the random source for deterministic runs.
	Rand *rand.Rand
}

// Distribution produces a fixed-size sample array from a parameterized
// random process. The variant set is closed: Normal, Uniform and
// SkewedNormal, sealed by an unexported method.
type Distribution interface {
	// Calculate returns exactly NumSamples independent draws, each within
	// the configured cutoffs when both are set.
	Calculate() ([]float64, error)
	NumSamples() int
	SetNumSamples(n int)
	// NominalValue is the representative central value used for display
	// and absolute-range bookkeeping.
	NominalValue() float64
	// AbsMin and AbsMax are the hard bounds of the support, nil where
	// unbounded (e.g. a normal without a cutoff).
	AbsMin() *float64
	AbsMax() *float64

	// clampNonNegative raises the effective lower bound to zero before
	// radial sampling; magnitudes cannot be negative. Unexported so the
	// variant set stays closed.
	clampNonNegative()
}

// sampler holds the cutoff machinery shared by Normal and SkewedNormal.
type sampler struct {
	numSamples int
	lowerLim   *float64
	upperLim   *float64
	maxRounds  int
	rng        *rand.Rand
}

func newSampler(p Params) sampler {
	s := sampler{
		numSamples: p.NumSamples,
		lowerLim:   p.LowerLim,
		upperLim:   p.UpperLim,
		maxRounds:  p.MaxRounds,
		rng:        p.Rand,
	}
	if s.numSamples <= 0 {
		s.numSamples = DefaultSamples
	}
	if s.maxRounds <= 0 {
		s.maxRounds = DefaultMaxRounds
	}
	if s.rng == nil {
		s.rng = newRand()
	}
	return s
}

func (s *sampler) NumSamples() int { return s.numSamples }

func (s *sampler) SetNumSamples(n int) {
	if n > 0 {
		s.numSamples = n
	}
}

func (s *sampler) AbsMin() *float64 { return s.lowerLim }
func (s *sampler) AbsMax() *float64 { return s.upperLim }

func (s *sampler) clampNonNegative() {
	if s.lowerLim == nil || *s.lowerLim < 0 {
		zero := 0.0
		s.lowerLim = &zero
	}
}

// sampleTruncated draws full batches via draw until the in-range pool
// holds NumSamples values, then truncates to exactly that count. Rejected
// samples are discarded per batch; accepted samples accumulate across
// rounds, so partial progress is never thrown away.
func (s *sampler) sampleTruncated(draw func(dst []float64)) ([]float64, error) {
	batch := make([]float64, s.numSamples)
	draw(batch)
	if s.lowerLim == nil && s.upperLim == nil {
		return batch, nil
	}

	pool := s.appendInRange(make([]float64, 0, s.numSamples), batch)
	for rounds := 0; len(pool) < s.numSamples; rounds++ {
		if rounds >= s.maxRounds {
			return nil, errors.Newf(errors.CodeTruncationBudget,
				"cutoff rejection exhausted %d rounds with %d of %d samples in range",
				s.maxRounds, len(pool), s.numSamples)
		}
		draw(batch)
		pool = s.appendInRange(pool, batch)
	}
	return pool[:s.numSamples:s.numSamples], nil
}

func (s *sampler) appendInRange(pool, batch []float64) []float64 {
	for _, v := range batch {
		if s.lowerLim != nil && v < *s.lowerLim {
			continue
		}
		if s.upperLim != nil && v > *s.upperLim {
			continue
		}
		pool = append(pool, v)
	}
	return pool
}

// Normal draws from a Gaussian with the given mean and standard deviation.
type Normal struct {
	Mean float64
	Std  float64
	sampler
}

func NewNormal(mean, std float64, p Params) *Normal {
	return &Normal{Mean: mean, Std: std, sampler: newSampler(p)}
}

func (n *Normal) NominalValue() float64 { return n.Mean }

func (n *Normal) Calculate() ([]float64, error) {
	return n.sampleTruncated(func(dst []float64) {
		for i := range dst {
			dst[i] = n.rng.NormFloat64()*n.Std + n.Mean
		}
	})
}

// SkewedNormal draws from the skew-normal family. Skew 0 degenerates to
// Normal; negative skew weights the left tail, positive the right. Mean
// and Std are the location and scale of the unskewed normal, not the
// moments of the skewed result.
type SkewedNormal struct {
	Skew float64
	Mean float64
	Std  float64
	sampler
}

func NewSkewedNormal(skew, mean, std float64, p Params) *SkewedNormal {
	return &SkewedNormal{Skew: skew, Mean: mean, Std: std, sampler: newSampler(p)}
}

func (s *SkewedNormal) NominalValue() float64 { return s.Mean }

func (s *SkewedNormal) Calculate() ([]float64, error) {
	// Azzalini's construction: X = delta*|U0| + sqrt(1-delta^2)*U1 with
	// U0, U1 independent standard normals.
	delta := s.Skew / math.Sqrt(1+s.Skew*s.Skew)
	coef := math.Sqrt(1 - delta*delta)
	return s.sampleTruncated(func(dst []float64) {
		for i := range dst {
			u0 := s.rng.NormFloat64()
			u1 := s.rng.NormFloat64()
			dst[i] = s.Mean + s.Std*(delta*math.Abs(u0)+coef*u1)
		}
	})
}

// Uniform draws uniformly from [nominal-tolerance, nominal+tolerance].
// The bounds are the support itself, so there is no cutoff semantics and
// no rejection loop.
type Uniform struct {
	Nominal   float64
	Tolerance float64

	numSamples int
	lower      float64
	upper      float64
	rng        *rand.Rand
}

func NewUniform(nominal, tolerance float64, p Params) *Uniform {
	u := &Uniform{
		Nominal:    nominal,
		Tolerance:  tolerance,
		numSamples: p.NumSamples,
		lower:      nominal - tolerance,
		upper:      nominal + tolerance,
		rng:        p.Rand,
	}
	if u.numSamples <= 0 {
		u.numSamples = DefaultSamples
	}
	if u.rng == nil {
		u.rng = newRand()
	}
	return u
}

func (u *Uniform) NumSamples() int { return u.numSamples }

func (u *Uniform) SetNumSamples(n int) {
	if n > 0 {
		u.numSamples = n
	}
}

func (u *Uniform) NominalValue() float64 { return u.Nominal }

func (u *Uniform) AbsMin() *float64 {
	v := u.lower
	return &v
}

func (u *Uniform) AbsMax() *float64 {
	v := u.upper
	return &v
}

func (u *Uniform) clampNonNegative() {
	if u.lower < 0 {
		u.lower = 0
	}
}

func (u *Uniform) Calculate() ([]float64, error) {
	if u.upper < u.lower {
		return nil, errors.Newf(errors.CodeInvalidDefinition,
			"uniform support [%g, %g] is empty", u.lower, u.upper)
	}
	span := u.upper - u.lower
	out := make([]float64, u.numSamples)
	for i := range out {
		out[i] = u.lower + u.rng.Float64()*span
	}
	return out, nil
}
