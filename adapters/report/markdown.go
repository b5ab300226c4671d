package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"tolninja/domain/stackup"
)

// BuildMarkdown renders an analysis result as a markdown report with a
// summary table and a per-step table.
func BuildMarkdown(result *stackup.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", result.Name)
	fmt.Fprintf(&b, "Revision %s — %s stackup\n\n", result.Revision, result.Orientation)

	s := result.Summary
	b.WriteString("## Summary\n\n")
	b.WriteString("| Statistic | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Samples | %d |\n", s.Samples)
	fmt.Fprintf(&b, "| Mean | %.6f |\n", s.Mean)
	fmt.Fprintf(&b, "| Median | %.6f |\n", s.Median)
	fmt.Fprintf(&b, "| Min | %.6f |\n", s.Min)
	fmt.Fprintf(&b, "| Max | %.6f |\n", s.Max)
	fmt.Fprintf(&b, "| Std | %.6f |\n", s.Std)
	fmt.Fprintf(&b, "| Lower spec limit | %s |\n", fmtLimit(s.TargetLimits.Lower))
	fmt.Fprintf(&b, "| Upper spec limit | %s |\n", fmtLimit(s.TargetLimits.Upper))
	fmt.Fprintf(&b, "| %% in spec | %s |\n", fmtPercent(s.PercentOK))
	fmt.Fprintf(&b, "| %% out of spec | %s |\n", fmtPercent(s.PercentNOK))
	fmt.Fprintf(&b, "| Estimated %% out of spec | %s |\n", fmtPercent(s.EstimatedPercentNOK))
	fmt.Fprintf(&b, "| Cpk | %s |\n", fmtCpk(s.Cpk))

	if s.CustomLimits != nil {
		b.WriteString("\n## Custom limits\n\n")
		b.WriteString("| Statistic | Value |\n|---|---|\n")
		fmt.Fprintf(&b, "| Custom lower limit | %s |\n", fmtLimit(s.CustomLimits.Lower))
		fmt.Fprintf(&b, "| Custom upper limit | %s |\n", fmtLimit(s.CustomLimits.Upper))
		fmt.Fprintf(&b, "| %% in custom limits | %s |\n", fmtPercent(s.PercentCustOK))
		fmt.Fprintf(&b, "| %% out of custom limits | %s |\n", fmtPercent(s.PercentCustNOK))
		fmt.Fprintf(&b, "| Custom Cpk | %s |\n", fmtCpk(s.CustCpk))
	}

	if result.AbsoluteLimits != nil {
		fmt.Fprintf(&b, "\nWorst-case envelope: [%.6f, %.6f]\n",
			*result.AbsoluteLimits.Lower, *result.AbsoluteLimits.Upper)
	}

	b.WriteString("\n## Steps\n\n")
	b.WriteString("| Part | Description | Interface | Nominal | Mean | Std |\n|---|---|---|---|---|---|\n")
	for _, step := range result.Steps {
		iface := ""
		if step.IsInterface {
			iface = "yes"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %.4f | %.6f | %.6f |\n",
			step.PartName, step.Description, iface, step.Nominal, step.Mean, step.Std)
	}

	return b.String()
}

// ToHTML converts a markdown report into an HTML fragment.
func ToHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}

func fmtLimit(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.6f", *v)
}

func fmtPercent(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f%%", *v)
}

func fmtCpk(c *stackup.Capability) string {
	if c == nil {
		return "-"
	}
	f := float64(*c)
	if math.IsInf(f, 1) {
		return "+Inf"
	}
	if math.IsInf(f, -1) {
		return "-Inf"
	}
	return fmt.Sprintf("%.4f", f)
}
