package engine

import (
	"math"
	"math/rand"

	"tolninja/domain/stackup"
	"tolninja/internal/errors"
)

// Lengths holds a step's (or the aggregate's) sampled length contributions.
// Orientation is an explicit field; radial lengths carry one array per axis
// and a linear stack carries a single array. Nothing infers orientation
// from array shape.
type Lengths struct {
	Orientation stackup.Orientation
	Values      []float64 // linear contributions
	X, Y        []float64 // radial axis contributions
}

// Len returns the sample count.
func (l *Lengths) Len() int {
	if l == nil {
		return 0
	}
	if l.Orientation.IsRadial() {
		return len(l.X)
	}
	return len(l.Values)
}

// Magnitudes collapses the lengths to a scalar distribution: the values
// themselves for a linear stack, sqrt(x^2+y^2) per sample for a radial
// one. Spec-limit comparison for radial stacks always runs on magnitudes.
func (l *Lengths) Magnitudes() []float64 {
	if !l.Orientation.IsRadial() {
		return l.Values
	}
	out := make([]float64, len(l.X))
	for i := range l.X {
		out[i] = math.Hypot(l.X[i], l.Y[i])
	}
	return out
}

// StepConfig carries the part metadata for a stackup step.
type StepConfig struct {
	PartName    string
	Description string
	// IsInterface marks a mating condition between two parts rather than
	// a dimensioned part. Interface steps aggregate identically.
	IsInterface bool
	// Orientation of the step; the empty value means linear.
	Orientation stackup.Orientation
	// Rand pins the angle source used in radial mode.
	Rand *rand.Rand
}

// StackupStep binds one distribution to part metadata and converts its raw
// samples into length contributions. The step takes exclusive ownership of
// its distribution.
type StackupStep struct {
	PartName    string
	Description string
	IsInterface bool

	dist        Distribution
	orientation stackup.Orientation
	lengths     *Lengths
	rng         *rand.Rand
}

// NewStackupStep creates the step and runs its first calculation.
func NewStackupStep(dist Distribution, cfg StepConfig) (*StackupStep, error) {
	s := &StackupStep{
		PartName:    cfg.PartName,
		Description: cfg.Description,
		IsInterface: cfg.IsInterface,
		dist:        dist,
		orientation: cfg.Orientation,
		rng:         cfg.Rand,
	}
	if s.orientation == "" {
		s.orientation = stackup.OrientationLinear
	}
	if s.rng == nil {
		s.rng = newRand()
	}
	if err := s.Calculate(0, false); err != nil {
		return nil, err
	}
	return s, nil
}

// Distribution returns the step's distribution.
func (s *StackupStep) Distribution() Distribution { return s.dist }

// Lengths returns the step's current length contributions, nil before the
// first successful calculation.
func (s *StackupStep) Lengths() *Lengths { return s.lengths }

// Orientation returns the step's current orientation.
func (s *StackupStep) Orientation() stackup.Orientation { return s.orientation }

// MidLength is the representative central length of the step.
func (s *StackupStep) MidLength() float64 { return s.dist.NominalValue() }

// AbsMin and AbsMax are the step's absolute bounds, inherited from the
// distribution's cutoffs; nil where the distribution is unbounded.
func (s *StackupStep) AbsMin() *float64 { return s.dist.AbsMin() }
func (s *StackupStep) AbsMax() *float64 { return s.dist.AbsMax() }

// SetNumSamples forwards the shared sample count to the distribution.
func (s *StackupStep) SetNumSamples(n int) { s.dist.SetNumSamples(n) }

// Calculate resamples the distribution and rebuilds the step's lengths.
// numSamples <= 0 keeps the current count. forceRadial flips the step into
// radial mode regardless of prior orientation; a linear pass never flips a
// radial step back.
func (s *StackupStep) Calculate(numSamples int, forceRadial bool) error {
	if forceRadial {
		s.orientation = stackup.OrientationRadial
	}
	if numSamples > 0 {
		s.dist.SetNumSamples(numSamples)
	}

	if s.orientation.IsRadial() {
		// Radial magnitudes cannot be negative.
		s.dist.clampNonNegative()
		magnitudes, err := s.dist.Calculate()
		if err != nil {
			return errors.Wrapf(err, "step %q failed to calculate lengths", s.PartName)
		}
		x := make([]float64, len(magnitudes))
		y := make([]float64, len(magnitudes))
		for i, m := range magnitudes {
			theta := s.rng.Float64() * 2 * math.Pi
			x[i] = m * math.Cos(theta)
			y[i] = m * math.Sin(theta)
		}
		s.lengths = &Lengths{Orientation: stackup.OrientationRadial, X: x, Y: y}
	} else {
		values, err := s.dist.Calculate()
		if err != nil {
			return errors.Wrapf(err, "step %q failed to calculate lengths", s.PartName)
		}
		s.lengths = &Lengths{Orientation: stackup.OrientationLinear, Values: values}
	}

	if s.lengths.Len() == 0 {
		return errors.Newf(errors.CodeComputationFailed,
			"step %q produced no length samples", s.PartName)
	}
	return nil
}
