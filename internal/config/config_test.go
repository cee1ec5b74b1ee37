package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	path := writeConfig(t, `
assumptions:
  annualReturnRate: 0.05
  annualInflationRate: 0.025
  horizonYears: 25
scoring:
  coldThreshold: 10
  warmThreshold: 50
  hotThreshold: 100
tracking:
  submitEndpoint: https://collector.example.com/api/leads
  apiToken: test-token
  submissionCooldown: 45s
  minimumScore: 15
collector:
  address: ":9090"
  databasePath: /tmp/leads.db
logging:
  level: debug
  format: console
output:
  format: csv
`)

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if conf.Assumptions.AnnualReturnRate != 0.05 {
		t.Errorf("AnnualReturnRate = %v, expected 0.05", conf.Assumptions.AnnualReturnRate)
	}
	if conf.Assumptions.HorizonYears != 25 {
		t.Errorf("HorizonYears = %d, expected 25", conf.Assumptions.HorizonYears)
	}
	if conf.Scoring.WarmThreshold != 50 {
		t.Errorf("WarmThreshold = %d, expected 50", conf.Scoring.WarmThreshold)
	}
	if conf.Tracking.SubmitEndpoint != "https://collector.example.com/api/leads" {
		t.Errorf("SubmitEndpoint = %q", conf.Tracking.SubmitEndpoint)
	}
	if conf.Tracking.SubmissionCooldown != 45*time.Second {
		t.Errorf("SubmissionCooldown = %v, expected 45s", conf.Tracking.SubmissionCooldown)
	}
	if conf.Collector.Address != ":9090" {
		t.Errorf("Collector.Address = %q, expected :9090", conf.Collector.Address)
	}
	if conf.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, expected debug", conf.Logging.Level)
	}
	if conf.Output.Format != "csv" {
		t.Errorf("Output.Format = %q, expected csv", conf.Output.Format)
	}

	if err := conf.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: info\n")

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if conf.Assumptions.AnnualReturnRate != 0.06 {
		t.Errorf("default AnnualReturnRate = %v, expected 0.06", conf.Assumptions.AnnualReturnRate)
	}
	if conf.Assumptions.HorizonYears != 30 {
		t.Errorf("default HorizonYears = %d, expected 30", conf.Assumptions.HorizonYears)
	}
	if conf.Scoring.HotThreshold != 120 {
		t.Errorf("default HotThreshold = %d, expected 120", conf.Scoring.HotThreshold)
	}
	if conf.Tracking.SubmissionCooldown != 30*time.Second {
		t.Errorf("default SubmissionCooldown = %v, expected 30s", conf.Tracking.SubmissionCooldown)
	}
	if conf.Tracking.MinimumScore != 20 {
		t.Errorf("default MinimumScore = %d, expected 20", conf.Tracking.MinimumScore)
	}
	if conf.Collector.Address != ":8080" {
		t.Errorf("default Collector.Address = %q, expected :8080", conf.Collector.Address)
	}
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	conf, err := LoadConfiguration(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfiguration() on missing file error = %v, expected defaults", err)
	}
	if conf.Assumptions.HorizonYears != 30 {
		t.Errorf("missing file should produce defaults, HorizonYears = %d", conf.Assumptions.HorizonYears)
	}
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	conf := DefaultConfiguration()
	conf.Scoring.ColdThreshold = 100
	conf.Scoring.WarmThreshold = 50

	err := conf.Validate()
	if err == nil {
		t.Fatal("Validate() accepted unordered thresholds")
	}
	if !strings.Contains(err.Error(), "thresholds") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestValidateRejectsBadHorizon(t *testing.T) {
	conf := DefaultConfiguration()
	conf.Assumptions.HorizonYears = 500

	if err := conf.Validate(); err == nil {
		t.Error("Validate() accepted a 500-year horizon")
	}
}

func TestValidateConfigurationWarnings(t *testing.T) {
	conf := DefaultConfiguration()
	conf.Assumptions.AnnualReturnRate = 0.20
	conf.Tracking.SubmitEndpoint = ""

	warnings := conf.ValidateConfiguration()
	if len(warnings) < 2 {
		t.Fatalf("expected at least 2 warnings, got %d: %v", len(warnings), warnings)
	}

	var sawReturn, sawEndpoint bool
	for _, w := range warnings {
		if strings.Contains(w, "return rate") {
			sawReturn = true
		}
		if strings.Contains(w, "endpoint") {
			sawEndpoint = true
		}
	}
	if !sawReturn || !sawEndpoint {
		t.Errorf("missing expected warnings in %v", warnings)
	}
}
