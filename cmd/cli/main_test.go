package main

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"tolninja/domain/stackup"
	"tolninja/internal/engine"
)

func TestExampleDefinitionValidatesAndAnalyzes(t *testing.T) {
	def := exampleDefinition()
	if err := def.Validate(); err != nil {
		t.Fatalf("example definition does not validate: %v", err)
	}

	def.NumSamples = 2000
	mgr, err := engine.FromDefinition(def, engine.BuildOptions{Seed: 1})
	if err != nil {
		t.Fatalf("example definition does not build: %v", err)
	}
	summary, err := mgr.SummaryStatistics(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(summary.Mean-15) > 0.05 {
		t.Errorf("example stack mean %f, want ~15", summary.Mean)
	}
	if summary.PercentOK == nil || *summary.PercentOK < 99 {
		t.Errorf("example stack should sit comfortably inside its limits, got %+v", summary.PercentOK)
	}
}

func TestExampleCommandOutputRoundtrips(t *testing.T) {
	cmd := newExampleCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	var def stackup.StackupDefinition
	if err := json.Unmarshal(out.Bytes(), &def); err != nil {
		t.Fatalf("example output is not a definition: %v", err)
	}
	if err := def.Validate(); err != nil {
		t.Fatalf("printed example does not validate: %v", err)
	}
	if len(def.Steps) != 2 {
		t.Errorf("printed example has %d steps, want 2", len(def.Steps))
	}
}

func TestAnalyzeCommandRunsDefinitionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stack.json")
	data, err := json.Marshal(exampleDefinition())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newAnalyzeCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{path, "--samples", "1000", "--seed", "3"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	var summary stackup.SummaryData
	if err := json.Unmarshal(out.Bytes(), &summary); err != nil {
		t.Fatalf("analyze output is not a summary: %v", err)
	}
	if summary.Samples != 1000 {
		t.Errorf("--samples not honored: got %d samples", summary.Samples)
	}
	if math.Abs(summary.Mean-15) > 0.1 {
		t.Errorf("summary mean %f, want ~15", summary.Mean)
	}
	if summary.Cpk == nil {
		t.Error("summary missing Cpk against the example's limits")
	}
}

func TestAnalyzeCommandCustomLimits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stack.json")
	data, err := json.Marshal(exampleDefinition())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newAnalyzeCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path, "--samples", "1000", "--seed", "4",
		"--custom-lsl", "14.9", "--custom-usl", "15.1"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	var summary stackup.SummaryData
	if err := json.Unmarshal(out.Bytes(), &summary); err != nil {
		t.Fatalf("analyze output is not a summary: %v", err)
	}
	if summary.CustomLimits == nil || summary.CustCpk == nil {
		t.Error("custom limit flags did not produce custom statistics")
	}
}

func TestAnalyzeCommandRejectsMissingFile(t *testing.T) {
	cmd := newAnalyzeCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "absent.json")})
	if err := cmd.Execute(); err == nil {
		t.Error("expected an error for a missing definition file")
	}
}
