package main

import (
	"encoding/json"
	"fmt"
	"os"

	"tolninja/adapters/excel"
	"tolninja/adapters/report"
	"tolninja/app"
	"tolninja/domain/stackup"
	"tolninja/internal"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tolninja-cli",
		Short: "Monte Carlo tolerance stackup analysis",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newExampleCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var samples int
	var radial bool
	var seed int64
	var customLSL, customUSL float64
	var xlsxPath, htmlPath string

	cmd := &cobra.Command{
		Use:   "analyze [definition.json]",
		Short: "Run a Monte Carlo stackup analysis from a JSON definition",
		Long: `Run a Monte Carlo stackup analysis from a JSON definition file.

The summary is printed as JSON on stdout. Use --xlsx or --html to also
write a report file.

Example: tolninja-cli analyze stack.json --samples 100000 --seed 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read definition: %w", err)
			}
			var def stackup.StackupDefinition
			if err := json.Unmarshal(data, &def); err != nil {
				return fmt.Errorf("parse definition: %w", err)
			}

			if samples > 0 {
				def.NumSamples = samples
			}
			if radial {
				def.Orientation = stackup.OrientationRadial
			}

			var custom *stackup.Limits
			if cmd.Flags().Changed("custom-lsl") || cmd.Flags().Changed("custom-usl") {
				custom = &stackup.Limits{}
				if cmd.Flags().Changed("custom-lsl") {
					lsl := customLSL
					custom.Lower = &lsl
				}
				if cmd.Flags().Changed("custom-usl") {
					usl := customUSL
					custom.Upper = &usl
				}
			}

			service := app.NewStackupService(nil, excel.NewReportWriter(), ".", app.EngineSettings{}, internal.NewDefaultLogger())
			result, err := service.Analyze(cmd.Context(), app.AnalyzeRequest{
				Definition:   def,
				CustomLimits: custom,
				Seed:         seed,
			})
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(result.Summary, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if xlsxPath != "" {
				if err := excel.NewReportWriter().Write(cmd.Context(), result, xlsxPath); err != nil {
					return fmt.Errorf("write xlsx report: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", xlsxPath)
			}
			if htmlPath != "" {
				html := report.ToHTML(report.BuildMarkdown(result))
				if err := os.WriteFile(htmlPath, html, 0o644); err != nil {
					return fmt.Errorf("write html report: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", htmlPath)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&samples, "samples", 0, "Override the per-step sample count")
	cmd.Flags().BoolVar(&radial, "radial", false, "Force a radial stackup regardless of the definition")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for reproducible runs (0 = random)")
	cmd.Flags().Float64Var(&customLSL, "custom-lsl", 0, "Custom lower spec limit for a second capability pass")
	cmd.Flags().Float64Var(&customUSL, "custom-usl", 0, "Custom upper spec limit for a second capability pass")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write an Excel report to this path")
	cmd.Flags().StringVar(&htmlPath, "html", "", "Write an HTML report to this path")

	return cmd
}

func newExampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example",
		Short: "Print an example stackup definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := json.MarshalIndent(exampleDefinition(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

// exampleDefinition is the ready-to-run stackup printed by the example
// command, a starting point for hand-edited definition files.
func exampleDefinition() stackup.StackupDefinition {
	lsl, usl := 14.85, 15.15
	return stackup.StackupDefinition{
		Name:           "Shaft Assembly",
		Revision:       "01",
		Orientation:    stackup.OrientationLinear,
		LowerSpecLimit: &lsl,
		UpperSpecLimit: &usl,
		NumSamples:     50000,
		Steps: []stackup.StepDefinition{
			{
				PartName:    "Housing",
				Description: "Bore depth",
				Distribution: stackup.DistributionSpec{
					Kind: stackup.KindNormal,
					Mean: 10.0,
					Std:  0.03,
				},
			},
			{
				PartName:    "Spacer",
				Description: "Thickness",
				Distribution: stackup.DistributionSpec{
					Kind:      stackup.KindUniform,
					Nominal:   5.0,
					Tolerance: 0.05,
				},
			},
		},
	}
}
