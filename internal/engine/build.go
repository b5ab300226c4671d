package engine

import (
	"math/rand"

	"tolninja/domain/stackup"
	"tolninja/internal/errors"
)

// BuildOptions tunes how a stack is constructed from a plain definition.
type BuildOptions struct {
	// Seed pins every distribution and angle stream for a reproducible
	// run when non-zero. Each step derives its own independent source so
	// per-step calculation can still run in parallel.
	Seed int64
	// MaxRounds overrides the rejection-loop budget for cutoff
	// distributions; 0 uses DefaultMaxRounds.
	MaxRounds int
	// NumSamples overrides the definition's sample count when the
	// definition leaves it unset.
	NumSamples int
}

// FromDefinition builds a fully calculated StackManager from a plain
// stackup definition. Dispatch over the distribution kind happens here,
// once, at the boundary; past this point behavior is structural.
func FromDefinition(def stackup.StackupDefinition, opts BuildOptions) (*StackManager, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	numSamples := def.NumSamples
	if numSamples <= 0 {
		numSamples = opts.NumSamples
	}
	mgr := NewStackManager(StackConfig{
		Name:           def.Name,
		Description:    def.Description,
		Revision:       def.Revision,
		Orientation:    def.Orientation,
		LowerSpecLimit: def.LowerSpecLimit,
		UpperSpecLimit: def.UpperSpecLimit,
		NumSamples:     numSamples,
	})

	for i, stepDef := range def.Steps {
		var distRand, angleRand *rand.Rand
		if opts.Seed != 0 {
			distRand = rand.New(rand.NewSource(stepSeed(opts.Seed, i, 0)))
			angleRand = rand.New(rand.NewSource(stepSeed(opts.Seed, i, 1)))
		}

		dist, err := distributionFromSpec(stepDef.Distribution, Params{
			NumSamples: mgr.NumSamples(),
			MaxRounds:  opts.MaxRounds,
			Rand:       distRand,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "step %q", stepDef.PartName)
		}

		step, err := NewStackupStep(dist, StepConfig{
			PartName:    stepDef.PartName,
			Description: stepDef.Description,
			IsInterface: stepDef.IsInterface,
			Orientation: def.Orientation,
			Rand:        angleRand,
		})
		if err != nil {
			return nil, err
		}
		mgr.AddStep(step)
	}
	return mgr, nil
}

// stepSeed derives an independent seed per step and stream.
func stepSeed(base int64, step, stream int) int64 {
	return base + int64(step)*1_000_003 + int64(stream)*7_368_787
}

func distributionFromSpec(spec stackup.DistributionSpec, p Params) (Distribution, error) {
	if spec.NumSamples > 0 {
		p.NumSamples = spec.NumSamples
	}
	p.LowerLim = spec.LowerLim
	p.UpperLim = spec.UpperLim

	switch spec.Kind {
	case stackup.KindNormal:
		return NewNormal(spec.Mean, spec.Std, p), nil
	case stackup.KindSkewedNormal:
		return NewSkewedNormal(spec.Skew, spec.Mean, spec.Std, p), nil
	case stackup.KindUniform:
		// A uniform's bounds are its support; validation already rejects
		// explicit cutoffs.
		p.LowerLim = nil
		p.UpperLim = nil
		return NewUniform(spec.Nominal, spec.Tolerance, p), nil
	default:
		return nil, errors.Newf(errors.CodeInvalidDefinition, "unknown distribution kind %q", spec.Kind)
	}
}
