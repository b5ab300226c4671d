package stackup

import (
	"fmt"

	"tolninja/internal/errors"
)

// DistributionKind names one of the three built-in distribution families.
type DistributionKind string

const (
	KindNormal       DistributionKind = "norm"
	KindUniform      DistributionKind = "uniform"
	KindSkewedNormal DistributionKind = "skew-norm"
)

// Kinds lists the supported distribution families.
func Kinds() []DistributionKind {
	return []DistributionKind{KindNormal, KindSkewedNormal, KindUniform}
}

// DistributionSpec is the plain-data description of one distribution:
// a kind plus the parameters that kind reads. Normal and skew-normal use
// Mean/Std (and Skew); uniform uses Nominal/Tolerance. Cutoffs apply to
// normal and skew-normal only; a uniform's bounds are its support.
type DistributionSpec struct {
	Kind DistributionKind `json:"kind"`

	Mean float64 `json:"mean,omitempty"`
	Std  float64 `json:"std,omitempty"`
	Skew float64 `json:"skew,omitempty"`

	Nominal   float64 `json:"nominal,omitempty"`
	Tolerance float64 `json:"tolerance,omitempty"`

	LowerLim *float64 `json:"lower_lim,omitempty"`
	UpperLim *float64 `json:"upper_lim,omitempty"`

	// NumSamples overrides the stack-wide sample count when positive.
	NumSamples int `json:"num_samples,omitempty"`
}

// Validate checks the spec against its kind's parameter constraints.
func (s DistributionSpec) Validate() error {
	switch s.Kind {
	case KindNormal, KindSkewedNormal:
		if s.Std < 0 {
			return errors.InvalidDefinition("std must be non-negative")
		}
	case KindUniform:
		if s.Tolerance < 0 {
			return errors.InvalidDefinition("tolerance must be non-negative")
		}
		if s.LowerLim != nil || s.UpperLim != nil {
			return errors.InvalidDefinition("uniform distributions do not take cutoffs; the bounds are the support")
		}
	default:
		return errors.Newf(errors.CodeInvalidDefinition, "unknown distribution kind %q", s.Kind)
	}
	if s.LowerLim != nil && s.UpperLim != nil && *s.LowerLim > *s.UpperLim {
		return errors.InvalidDefinition("lower cutoff exceeds upper cutoff")
	}
	if s.NumSamples < 0 {
		return errors.InvalidDefinition("num_samples must be positive when set")
	}
	return nil
}

// StepDefinition binds a distribution spec to part metadata. Interface
// steps represent a mating condition between two parts rather than a
// dimensioned part; they aggregate identically and are only distinguished
// in presentation.
type StepDefinition struct {
	PartName     string           `json:"part_name"`
	Description  string           `json:"description,omitempty"`
	IsInterface  bool             `json:"is_interface,omitempty"`
	Distribution DistributionSpec `json:"distribution"`
}

// StackupDefinition is the serializable description of a whole stackup:
// global settings plus the ordered chain of steps. Order is the physical
// chain order; the aggregate itself is order-independent.
type StackupDefinition struct {
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	Revision    string      `json:"revision,omitempty"`
	Orientation Orientation `json:"orientation,omitempty"`

	LowerSpecLimit *float64 `json:"lower_spec_limit,omitempty"`
	UpperSpecLimit *float64 `json:"upper_spec_limit,omitempty"`

	// NumSamples is the shared per-step sample count; 0 uses the engine
	// default.
	NumSamples int `json:"num_samples,omitempty"`

	Steps []StepDefinition `json:"steps"`
}

// Validate checks the definition and every step in it.
func (d StackupDefinition) Validate() error {
	if !d.Orientation.Valid() {
		return errors.Newf(errors.CodeInvalidDefinition, "unknown orientation %q", d.Orientation)
	}
	if d.NumSamples < 0 {
		return errors.InvalidDefinition("num_samples must be positive when set")
	}
	if len(d.Steps) == 0 {
		return errors.InvalidDefinition("stackup has no steps")
	}
	if d.LowerSpecLimit != nil && d.UpperSpecLimit != nil && *d.LowerSpecLimit > *d.UpperSpecLimit {
		return errors.InvalidDefinition("lower spec limit exceeds upper spec limit")
	}
	for i, step := range d.Steps {
		if err := step.Distribution.Validate(); err != nil {
			name := step.PartName
			if name == "" {
				name = fmt.Sprintf("step %d", i+1)
			}
			return errors.Wrapf(err, "%s", name)
		}
	}
	return nil
}

// SpecLimits returns the overall specification limits as a pair.
func (d StackupDefinition) SpecLimits() Limits {
	return Limits{Lower: d.LowerSpecLimit, Upper: d.UpperSpecLimit}
}
