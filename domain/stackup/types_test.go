package stackup

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func fp(v float64) *float64 { return &v }

func TestOrientationValid(t *testing.T) {
	for _, o := range []Orientation{"", OrientationLinear, OrientationRadial} {
		if !o.Valid() {
			t.Errorf("orientation %q should be valid", o)
		}
	}
	if Orientation("diagonal").Valid() {
		t.Error("unknown orientation accepted")
	}
	if Orientation("").IsRadial() || OrientationLinear.IsRadial() {
		t.Error("linear orientation reported radial")
	}
	if !OrientationRadial.IsRadial() {
		t.Error("radial orientation not reported radial")
	}
}

func TestLimitsDefined(t *testing.T) {
	if (Limits{}).Defined() {
		t.Error("empty limits reported defined")
	}
	if (Limits{Lower: fp(1)}).Defined() {
		t.Error("lower-only limits reported defined")
	}
	if (Limits{Upper: fp(2)}).Defined() {
		t.Error("upper-only limits reported defined")
	}
	if !(Limits{Lower: fp(1), Upper: fp(2)}).Defined() {
		t.Error("full limit pair not reported defined")
	}
}

func TestCapabilityJSONRoundtrip(t *testing.T) {
	cases := []struct {
		in   Capability
		want string
	}{
		{Capability(1.33), "1.33"},
		{Capability(math.Inf(1)), `"+Inf"`},
		{Capability(math.Inf(-1)), `"-Inf"`},
	}
	for _, tc := range cases {
		data, err := json.Marshal(tc.in)
		if err != nil {
			t.Fatalf("marshal %v: %v", float64(tc.in), err)
		}
		if string(data) != tc.want {
			t.Errorf("marshal %v = %s, want %s", float64(tc.in), data, tc.want)
		}
		var back Capability
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if float64(back) != float64(tc.in) {
			t.Errorf("roundtrip %v came back %v", float64(tc.in), float64(back))
		}
	}

	var c Capability
	if err := json.Unmarshal([]byte(`"huge"`), &c); err == nil {
		t.Error("expected error for non-numeric capability")
	}
}

func TestDistributionSpecValidate(t *testing.T) {
	ok := []DistributionSpec{
		{Kind: KindNormal, Mean: 10, Std: 0.1},
		{Kind: KindSkewedNormal, Mean: 0, Std: 1, Skew: 4},
		{Kind: KindNormal, Mean: 10, Std: 0.1, LowerLim: fp(9.8), UpperLim: fp(10.2)},
		{Kind: KindUniform, Nominal: 5, Tolerance: 0.05},
	}
	for i, spec := range ok {
		if err := spec.Validate(); err != nil {
			t.Errorf("case %d: unexpected error %v", i, err)
		}
	}

	bad := []DistributionSpec{
		{Kind: "triangular"},
		{Kind: KindNormal, Std: -0.1},
		{Kind: KindNormal, Std: 0.1, LowerLim: fp(2), UpperLim: fp(1)},
		{Kind: KindUniform, Tolerance: -1},
		{Kind: KindUniform, Nominal: 5, Tolerance: 0.1, LowerLim: fp(4.9)},
		{Kind: KindNormal, Std: 0.1, NumSamples: -1},
	}
	for i, spec := range bad {
		if err := spec.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestStackupDefinitionValidate(t *testing.T) {
	valid := StackupDefinition{
		Name:           "stack",
		LowerSpecLimit: fp(9),
		UpperSpecLimit: fp(11),
		Steps: []StepDefinition{
			{PartName: "a", Distribution: DistributionSpec{Kind: KindNormal, Mean: 10, Std: 0.1}},
		},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid definition rejected: %v", err)
	}

	noSteps := valid
	noSteps.Steps = nil
	if err := noSteps.Validate(); err == nil {
		t.Error("definition without steps accepted")
	}

	inverted := valid
	inverted.LowerSpecLimit = fp(12)
	if err := inverted.Validate(); err == nil {
		t.Error("inverted spec limits accepted")
	}

	badOrientation := valid
	badOrientation.Orientation = "diagonal"
	if err := badOrientation.Validate(); err == nil {
		t.Error("unknown orientation accepted")
	}

	badStep := valid
	badStep.Steps = []StepDefinition{
		{PartName: "widget", Distribution: DistributionSpec{Kind: "bogus"}},
	}
	err := badStep.Validate()
	if err == nil {
		t.Fatal("bad step accepted")
	}
	if !strings.Contains(err.Error(), "widget") {
		t.Errorf("step error should name the part, got %v", err)
	}
}

func TestSpecLimits(t *testing.T) {
	def := StackupDefinition{LowerSpecLimit: fp(1), UpperSpecLimit: fp(2)}
	limits := def.SpecLimits()
	if !limits.Defined() || *limits.Lower != 1 || *limits.Upper != 2 {
		t.Errorf("unexpected spec limits %+v", limits)
	}
	if (StackupDefinition{}).SpecLimits().Defined() {
		t.Error("empty definition produced defined limits")
	}
}
