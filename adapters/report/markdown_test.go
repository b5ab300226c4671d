package report

import (
	"math"
	"strings"
	"testing"

	"tolninja/domain/stackup"
)

func fp(v float64) *float64 { return &v }

func cp(v float64) *stackup.Capability {
	c := stackup.Capability(v)
	return &c
}

func sampleResult() *stackup.AnalysisResult {
	return &stackup.AnalysisResult{
		Name:        "Bracket Stack",
		Revision:    "03",
		Orientation: stackup.OrientationLinear,
		Summary: &stackup.SummaryData{
			TargetLimits: stackup.Limits{Lower: fp(14.5), Upper: fp(15.5)},
			Mean:         15.001,
			Median:       15.0,
			Min:          14.7,
			Max:          15.3,
			Std:          0.05,
			Samples:      50000,
			PercentOK:    fp(99.98),
			PercentNOK:   fp(0.02),
			Cpk:          cp(1.41),
		},
		AbsoluteLimits: &stackup.Limits{Lower: fp(14.6), Upper: fp(15.4)},
		Steps: []stackup.StepResult{
			{PartName: "Plate", Description: "Thickness", Nominal: 10, Mean: 10.0004, Std: 0.03},
			{PartName: "Gasket", IsInterface: true, Nominal: 5, Mean: 5.0006, Std: 0.04},
		},
	}
}

func TestBuildMarkdown(t *testing.T) {
	md := BuildMarkdown(sampleResult())

	for _, want := range []string{
		"# Bracket Stack",
		"Revision 03",
		"| Samples | 50000 |",
		"| Cpk | 1.4100 |",
		"| Plate | Thickness |",
		"| Gasket |",
		"Worst-case envelope: [14.600000, 15.400000]",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(md, "Custom limits") {
		t.Error("custom limit section rendered without custom limits")
	}
}

func TestBuildMarkdownCustomLimits(t *testing.T) {
	result := sampleResult()
	result.Summary.CustomLimits = &stackup.Limits{Lower: fp(14.8), Upper: fp(15.2)}
	result.Summary.PercentCustOK = fp(95.5)
	result.Summary.PercentCustNOK = fp(4.5)
	result.Summary.CustCpk = cp(1.1)

	md := BuildMarkdown(result)
	for _, want := range []string{
		"## Custom limits",
		"| Custom lower limit | 14.800000 |",
		"| % out of custom limits | 4.5000% |",
		"| Custom Cpk | 1.1000 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestBuildMarkdownMissingLimits(t *testing.T) {
	result := sampleResult()
	result.Summary.TargetLimits = stackup.Limits{}
	result.Summary.PercentOK = nil
	result.Summary.PercentNOK = nil
	result.Summary.Cpk = nil
	result.AbsoluteLimits = nil

	md := BuildMarkdown(result)
	if !strings.Contains(md, "| Lower spec limit | - |") {
		t.Error("missing lower limit should render as a dash")
	}
	if !strings.Contains(md, "| Cpk | - |") {
		t.Error("missing Cpk should render as a dash")
	}
	if strings.Contains(md, "Worst-case envelope") {
		t.Error("envelope rendered without absolute limits")
	}
}

func TestInfiniteCpkRendering(t *testing.T) {
	result := sampleResult()
	result.Summary.Cpk = cp(math.Inf(1))

	md := BuildMarkdown(result)
	if !strings.Contains(md, "| Cpk | +Inf |") {
		t.Error("infinite Cpk should render as +Inf")
	}
}

func TestToHTMLRendersTables(t *testing.T) {
	out := string(ToHTML(BuildMarkdown(sampleResult())))

	if !strings.Contains(out, "<table>") {
		t.Error("expected an HTML table")
	}
	if !strings.Contains(out, "Bracket Stack") {
		t.Error("expected the stack name in the HTML output")
	}
}
