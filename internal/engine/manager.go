package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"tolninja/domain/stackup"
	"tolninja/internal/errors"
)

// StackConfig carries the global settings of a stackup.
type StackConfig struct {
	Name           string
	Description    string
	Revision       string
	Orientation    stackup.Orientation
	LowerSpecLimit *float64
	UpperSpecLimit *float64
	// NumSamples is the shared per-step sample count; 0 uses
	// DefaultSamples.
	NumSamples int
}

// StackManager owns the ordered list of stackup steps, composes their
// length contributions into the overall assembly distribution and derives
// summary statistics against the specification limits.
type StackManager struct {
	Name        string
	Description string
	Revision    string

	orientation stackup.Orientation
	lowerSpec   *float64
	upperSpec   *float64
	numSamples  int

	steps   []*StackupStep
	overall *Lengths // cached aggregate, nil when invalidated
}

// NewStackManager creates an empty stack from the given settings.
func NewStackManager(cfg StackConfig) *StackManager {
	m := &StackManager{
		Name:        cfg.Name,
		Description: cfg.Description,
		Revision:    cfg.Revision,
		orientation: cfg.Orientation,
		lowerSpec:   cfg.LowerSpecLimit,
		upperSpec:   cfg.UpperSpecLimit,
		numSamples:  cfg.NumSamples,
	}
	if m.Name == "" {
		m.Name = "Tolerance Stackup Report"
	}
	if m.Revision == "" {
		m.Revision = "01"
	}
	if m.orientation == "" {
		m.orientation = stackup.OrientationLinear
	}
	if m.numSamples <= 0 {
		m.numSamples = DefaultSamples
	}
	return m
}

// AddStep appends a step to the chain, forcing it onto the stack-wide
// sample count. The cached aggregate is invalidated.
func (m *StackManager) AddStep(step *StackupStep) {
	step.SetNumSamples(m.numSamples)
	m.steps = append(m.steps, step)
	m.overall = nil
}

// Steps returns the ordered step chain.
func (m *StackManager) Steps() []*StackupStep { return m.steps }

// Orientation returns the global orientation flag.
func (m *StackManager) Orientation() stackup.Orientation { return m.orientation }

// NumSamples returns the shared sample count.
func (m *StackManager) NumSamples() int { return m.numSamples }

// SetNumSamples changes the shared sample count and invalidates the
// aggregate; the next CalculateStack or Aggregate recalculates every step
// with it.
func (m *StackManager) SetNumSamples(n int) {
	if n > 0 {
		m.numSamples = n
		m.overall = nil
	}
}

// SpecLimits returns the overall specification limits.
func (m *StackManager) SpecLimits() stackup.Limits {
	return stackup.Limits{Lower: m.lowerSpec, Upper: m.upperSpec}
}

// CalculateStack resamples every step in the chain. Steps are independent
// samplers with no shared state, so they run in parallel; aggregation
// happens separately once all steps complete. Any step failure aborts the
// whole pass — a partial sum is not statistically meaningful.
func (m *StackManager) CalculateStack(ctx context.Context, radial bool) error {
	if radial {
		m.orientation = stackup.OrientationRadial
	}
	m.overall = nil

	g, _ := errgroup.WithContext(ctx)
	forceRadial := m.orientation.IsRadial()
	for _, step := range m.steps {
		step := step
		g.Go(func() error {
			if err := step.Calculate(m.numSamples, forceRadial); err != nil {
				return err
			}
			if step.Lengths() == nil {
				return errors.Newf(errors.CodeComputationFailed,
					"step %q failed to calculate lengths", step.PartName)
			}
			return nil
		})
	}
	return g.Wait()
}

// Aggregate element-wise sums every step's lengths into the overall
// assembly distribution (per axis for a radial stack) and caches it. The
// sum allocates a single new array per axis; step arrays are never
// mutated.
func (m *StackManager) Aggregate() (*Lengths, error) {
	if m.overall != nil {
		return m.overall, nil
	}
	if len(m.steps) == 0 {
		return nil, errors.New(errors.CodeComputationFailed, "stackup has no steps to aggregate")
	}

	// Changing the shared sample count forces recalculation of every step
	// before summing; a step sampled under a stale count is refreshed here.
	forceRadial := m.orientation.IsRadial()
	for _, step := range m.steps {
		if l := step.Lengths(); l == nil || l.Len() != m.numSamples {
			if err := step.Calculate(m.numSamples, forceRadial); err != nil {
				return nil, err
			}
		}
	}

	n := m.numSamples

	if m.orientation.IsRadial() {
		x := make([]float64, n)
		y := make([]float64, n)
		for _, step := range m.steps {
			l := step.Lengths()
			if l == nil || !l.Orientation.IsRadial() {
				return nil, errors.Newf(errors.CodeComputationFailed,
					"step %q is not calculated as radial", step.PartName)
			}
			for i := range l.X {
				x[i] += l.X[i]
				y[i] += l.Y[i]
			}
		}
		m.overall = &Lengths{Orientation: stackup.OrientationRadial, X: x, Y: y}
		return m.overall, nil
	}

	sum := make([]float64, n)
	for _, step := range m.steps {
		l := step.Lengths()
		if l == nil || l.Orientation.IsRadial() {
			return nil, errors.Newf(errors.CodeComputationFailed,
				"step %q is not calculated as linear", step.PartName)
		}
		for i, v := range l.Values {
			sum[i] += v
		}
	}
	m.overall = &Lengths{Orientation: stackup.OrientationLinear, Values: sum}
	return m.overall, nil
}

// AbsoluteLimits sums every step's absolute bounds into the worst-case
// envelope of the assembly, distinct from the statistical distribution.
// Returns nil unless every step is bounded on both sides.
func (m *StackManager) AbsoluteLimits() *stackup.Limits {
	if len(m.steps) == 0 {
		return nil
	}
	var lo, hi float64
	for _, step := range m.steps {
		min, max := step.AbsMin(), step.AbsMax()
		if min == nil || max == nil {
			return nil
		}
		lo += *min
		hi += *max
	}
	return &stackup.Limits{Lower: &lo, Upper: &hi}
}
