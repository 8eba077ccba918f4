package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shayshab/workload-compliance/internal/engine"
	"github.com/shayshab/workload-compliance/internal/models"
	"github.com/shayshab/workload-compliance/internal/output"
	"github.com/shayshab/workload-compliance/internal/policy"
	"github.com/shayshab/workload-compliance/internal/rulepacks/baseline"
	"github.com/shayshab/workload-compliance/internal/rules"
	awssource "github.com/shayshab/workload-compliance/internal/sources/aws"
	"github.com/shayshab/workload-compliance/internal/sources/scan"
	"github.com/shayshab/workload-compliance/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wcc",
		Short:         "Workload compliance checker: evaluate workloads against security rules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newEvaluateCmd())
	root.AddCommand(newKubernetesCmd())
	root.AddCommand(newAWSCmd())
	root.AddCommand(newScanCmd())
	root.AddCommand(newPolicyCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// evalFlags are the flags shared by every command that runs an evaluation.
type evalFlags struct {
	policyFile string
	threshold  float64
	scanFile   string
	infraFile  string
	reportFmt  string
	outputFile string
	colored    bool
}

// registerEvalFlags wires the shared evaluation flags onto cmd.
func registerEvalFlags(cmd *cobra.Command, f *evalFlags) {
	cmd.Flags().StringVar(&f.policyFile, "policy", "", "Policy file adjusting threshold, trusted registries, and rule toggles")
	cmd.Flags().Float64Var(&f.threshold, "threshold", engine.DefaultThreshold, "Minimum passing ratio in [0,1]; overrides the policy file")
	cmd.Flags().StringVar(&f.scanFile, "scan", "", "SARIF file merged into the descriptor as the security_scan section")
	cmd.Flags().StringVar(&f.infraFile, "infra", "", "Infrastructure state file (wcc aws infra output) merged as storage/network sections")
	cmd.Flags().StringVar(&f.reportFmt, "report", "table", "Output format: json or table")
	cmd.Flags().StringVar(&f.outputFile, "output", "", "Write the full JSON report to this file path (in addition to stdout output)")
	cmd.Flags().BoolVar(&f.colored, "color", false, "Colorize PASS/FAIL verdicts (off by default for CI logs)")
}

func newEvaluateCmd() *cobra.Command {
	var (
		inputFile string
		flags     evalFlags
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a workload descriptor against the baseline rules",
		Long: "Evaluate reads a workload descriptor (JSON), optionally merges scanner and\n" +
			"infrastructure fragments into it, runs every registered rule, and prints the\n" +
			"compliance report. The exit status is nonzero when the verdict is FAIL, so the\n" +
			"command gates CI pipelines directly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(cmd, &flags)
			if err != nil {
				return err
			}

			descriptor, err := loadDescriptor(inputFile)
			if err != nil {
				return err
			}
			descriptor, err = applyFragments(descriptor, &flags)
			if err != nil {
				return err
			}

			report := eng.Evaluate(descriptor)
			if err := emitReport(report, &flags, ""); err != nil {
				return err
			}
			return verdictErr(report)
		},
	}

	cmd.Flags().StringVar(&inputFile, "input", "", "Workload descriptor JSON file (required)")
	_ = cmd.MarkFlagRequired("input")
	registerEvalFlags(cmd, &flags)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Info())
		},
	}
}

// buildEngine assembles the rule registry and engine from the policy file
// and flags. An explicit --threshold flag wins over the policy file, which
// wins over the engine default.
func buildEngine(cmd *cobra.Command, flags *evalFlags) (*engine.Engine, error) {
	var cfg *policy.Config
	if flags.policyFile != "" {
		loaded, err := policy.Load(flags.policyFile)
		if err != nil {
			return nil, err
		}
		if errs := policy.Validate(loaded, baseline.Names()); len(errs) > 0 {
			return nil, fmt.Errorf("invalid policy file %s: %v", flags.policyFile, errs[0])
		}
		cfg = loaded
	}

	var trusted []string
	if cfg != nil {
		trusted = cfg.TrustedRegistries
	}

	registry := rules.NewRegistry()
	for _, rule := range baseline.New(trusted) {
		if !policy.RuleEnabled(cfg, rule.Name()) {
			continue
		}
		if err := registry.Register(rule); err != nil {
			return nil, err
		}
	}

	threshold := policy.EffectiveThreshold(cfg, engine.DefaultThreshold)
	if cmd.Flags().Changed("threshold") {
		threshold = flags.threshold
	}
	return engine.NewEngine(registry, threshold)
}

// loadDescriptor reads a workload descriptor JSON file.
func loadDescriptor(path string) (*models.WorkloadDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}
	var d models.WorkloadDescriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse descriptor %s: %w", path, err)
	}
	return &d, nil
}

// applyFragments merges the --scan and --infra fragments into d.
func applyFragments(d *models.WorkloadDescriptor, flags *evalFlags) (*models.WorkloadDescriptor, error) {
	if flags.scanFile != "" {
		result, err := scan.LoadSARIF(flags.scanFile)
		if err != nil {
			return nil, err
		}
		d = models.Merge(d, &models.WorkloadDescriptor{SecurityScan: result})
	}
	if flags.infraFile != "" {
		state, err := loadInfraState(flags.infraFile)
		if err != nil {
			return nil, err
		}
		d = models.Merge(d, state.Fragment())
	}
	return d, nil
}

// loadInfraState reads an InfrastructureState JSON file as written by
// wcc aws infra.
func loadInfraState(path string) (*awssource.InfrastructureState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read infrastructure state: %w", err)
	}
	var state awssource.InfrastructureState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse infrastructure state %s: %w", path, err)
	}
	return &state, nil
}

// emitReport renders the report per flags: optional file copy, then JSON or
// table on stdout. subject labels the workload in table output.
func emitReport(report *models.ComplianceReport, flags *evalFlags, subject string) error {
	if flags.outputFile != "" {
		if err := writeJSONFile(flags.outputFile, report); err != nil {
			return err
		}
	}
	if flags.reportFmt == "json" {
		return printJSON(os.Stdout, report)
	}
	output.RenderReport(os.Stdout, report, output.TableOptions{
		Colored: flags.colored,
		Subject: subject,
	})
	return nil
}

// verdictErr translates a failing verdict into the command error that makes
// the process exit nonzero, so pipelines can gate on it.
func verdictErr(report *models.ComplianceReport) error {
	if report.Passed {
		return nil
	}
	return fmt.Errorf("compliance check failed: %d/%d rules passed, threshold %.0f%%",
		report.Score, report.Total, report.Threshold*100)
}

// printJSON writes v as indented JSON to w.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeJSONFile writes v as indented JSON to path.
func writeJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := printJSON(f, v); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
