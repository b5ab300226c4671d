package stackup

import (
	"encoding/json"
	"math"

	"tolninja/internal/errors"
)

// Orientation distinguishes a linear (1-D) stack from a radial (2-D
// positional) stack. It is always carried explicitly; nothing downstream
// infers it from array shapes.
type Orientation string

const (
	OrientationLinear Orientation = "linear"
	OrientationRadial Orientation = "radial"
)

// Valid reports whether the orientation is one of the known values. The
// empty string is accepted and means linear.
func (o Orientation) Valid() bool {
	return o == "" || o == OrientationLinear || o == OrientationRadial
}

// IsRadial treats the empty orientation as linear.
func (o Orientation) IsRadial() bool {
	return o == OrientationRadial
}

// Limits is an optional lower/upper bound pair. A nil side means the bound
// is not set.
type Limits struct {
	Lower *float64 `json:"lower,omitempty"`
	Upper *float64 `json:"upper,omitempty"`
}

// Defined reports whether both bounds are present. Statistics against a
// limit pair are only computed when the pair is fully defined; anything
// else is treated as "limits not supplied".
func (l Limits) Defined() bool {
	return l.Lower != nil && l.Upper != nil
}

// Capability carries a Cpk value through JSON. A process with exactly zero
// standard deviation is reported as +Inf (mean strictly within the limits)
// or -Inf (mean on or outside a limit); the standard JSON encoder rejects
// infinities, so they are written as the strings "+Inf" / "-Inf".
type Capability float64

func (c Capability) MarshalJSON() ([]byte, error) {
	f := float64(c)
	if math.IsInf(f, 1) {
		return []byte(`"+Inf"`), nil
	}
	if math.IsInf(f, -1) {
		return []byte(`"-Inf"`), nil
	}
	return json.Marshal(f)
}

func (c *Capability) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"+Inf"`, `"Inf"`:
		*c = Capability(math.Inf(1))
		return nil
	case `"-Inf"`:
		*c = Capability(math.Inf(-1))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return errors.Wrap(err, "capability must be a number or +Inf/-Inf")
	}
	*c = Capability(f)
	return nil
}

// SummaryData summarizes an aggregated length distribution against the
// stack's specification limits and, optionally, a second custom limit pair.
// Pointer fields are nil when the corresponding limits were not supplied.
type SummaryData struct {
	TargetLimits Limits  `json:"target_limits"`
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Std          float64 `json:"std"`
	Samples      int     `json:"samples"`

	PercentBelowLSL *float64 `json:"percent_below_lsl,omitempty"`
	PercentAboveUSL *float64 `json:"percent_above_usl,omitempty"`
	PercentOK       *float64 `json:"percent_ok,omitempty"`
	PercentNOK      *float64 `json:"percent_nok,omitempty"`
	// EstimatedPercentNOK is the normal-fit prediction of percent outside
	// the target limits, as opposed to the observed-in-sample PercentNOK.
	EstimatedPercentNOK *float64    `json:"estimated_percent_nok,omitempty"`
	Cpk                 *Capability `json:"cpk,omitempty"`

	CustomLimits        *Limits     `json:"custom_limits,omitempty"`
	PercentBelowCustLSL *float64    `json:"percent_below_cust_lsl,omitempty"`
	PercentAboveCustUSL *float64    `json:"percent_above_cust_usl,omitempty"`
	PercentCustOK       *float64    `json:"percent_cust_ok,omitempty"`
	PercentCustNOK      *float64    `json:"percent_cust_nok,omitempty"`
	CustCpk             *Capability `json:"cust_cpk,omitempty"`
}

// HistogramBin is one fixed-width bucket of a sampled distribution, the
// plain-data feed for histogram rendering.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// StepResult is the per-step slice of an analysis: part metadata plus the
// sample moments of the step's own length contribution.
type StepResult struct {
	PartName    string   `json:"part_name"`
	Description string   `json:"description,omitempty"`
	IsInterface bool     `json:"is_interface"`
	Nominal     float64  `json:"nominal"`
	AbsMin      *float64 `json:"abs_min,omitempty"`
	AbsMax      *float64 `json:"abs_max,omitempty"`
	Mean        float64  `json:"mean"`
	Std         float64  `json:"std"`
	Samples     int      `json:"samples"`
}

// AnalysisResult is the full output of one stack analysis pass.
type AnalysisResult struct {
	Name           string         `json:"name"`
	Revision       string         `json:"revision"`
	Orientation    Orientation    `json:"orientation"`
	Summary        *SummaryData   `json:"summary"`
	AbsoluteLimits *Limits        `json:"absolute_limits,omitempty"`
	Steps          []StepResult   `json:"steps"`
	Histogram      []HistogramBin `json:"histogram,omitempty"`
	ElapsedMS      int64          `json:"elapsed_ms"`
}
