package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shayshab/workload-compliance/internal/engine"
	"github.com/shayshab/workload-compliance/internal/models"
	"github.com/shayshab/workload-compliance/internal/output"
	kube "github.com/shayshab/workload-compliance/internal/sources/kubernetes"
)

func newKubernetesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "kubernetes",
		Aliases: []string{"k8s"},
		Short:   "Evaluate Kubernetes workloads",
	}
	cmd.AddCommand(newKubernetesAuditCmd())
	cmd.AddCommand(newKubernetesManifestCmd())
	return cmd
}

func newKubernetesAuditCmd() *cobra.Command {
	var (
		contextName string
		namespace   string
		flags       evalFlags
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Evaluate every container in a live cluster",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(cmd, &flags)
			if err != nil {
				return err
			}

			provider := kube.NewDefaultClientProvider()
			clientset, info, err := provider.ClientsetForContext(contextName)
			if err != nil {
				return fmt.Errorf("connect to cluster: %w", err)
			}

			workloads, err := kube.CollectWorkloads(cmd.Context(), clientset, namespace)
			if err != nil {
				return fmt.Errorf("collect workloads from context %q: %w", info.ContextName, err)
			}
			if len(workloads) == 0 {
				return fmt.Errorf("no workloads found in context %q", info.ContextName)
			}

			return evaluateWorkloads(eng, workloads, &flags)
		},
	}

	cmd.Flags().StringVar(&contextName, "context", "", "Kubeconfig context (default: current context)")
	cmd.Flags().StringVar(&namespace, "namespace", "", "Namespace to audit (default: all namespaces)")
	registerEvalFlags(cmd, &flags)
	return cmd
}

func newKubernetesManifestCmd() *cobra.Command {
	var (
		file  string
		flags evalFlags
	)

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Evaluate workloads declared in a manifest file",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(cmd, &flags)
			if err != nil {
				return err
			}
			workloads, err := kube.LoadManifest(file)
			if err != nil {
				return err
			}
			return evaluateWorkloads(eng, workloads, &flags)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Manifest YAML file with Pod, Deployment, and NetworkPolicy documents (required)")
	_ = cmd.MarkFlagRequired("file")
	registerEvalFlags(cmd, &flags)
	return cmd
}

// workloadReport pairs a workload's identity with its compliance report for
// JSON output.
type workloadReport struct {
	Workload string                   `json:"workload"`
	Report   *models.ComplianceReport `json:"report"`
}

// evaluateWorkloads runs the engine over every workload, applying the
// shared scan/infra fragments to each, and renders the per-workload
// reports. The returned error is non-nil when any workload fails, so the
// process exit gates on full fleet compliance.
func evaluateWorkloads(eng *engine.Engine, workloads []kube.Workload, flags *evalFlags) error {
	var reports []workloadReport
	failed := 0
	for _, w := range workloads {
		descriptor, err := applyFragments(w.Descriptor, flags)
		if err != nil {
			return err
		}
		report := eng.Evaluate(descriptor)
		if !report.Passed {
			failed++
		}
		reports = append(reports, workloadReport{Workload: w.Subject(), Report: report})
	}

	if flags.outputFile != "" {
		if err := writeJSONFile(flags.outputFile, reports); err != nil {
			return err
		}
	}
	if flags.reportFmt == "json" {
		if err := printJSON(os.Stdout, reports); err != nil {
			return err
		}
	} else {
		for i, wr := range reports {
			if i > 0 {
				fmt.Println()
			}
			output.RenderReport(os.Stdout, wr.Report, output.TableOptions{
				Colored: flags.colored,
				Subject: wr.Workload,
			})
		}
		fmt.Printf("\n%d/%d workloads compliant\n", len(reports)-failed, len(reports))
	}

	if failed > 0 {
		return fmt.Errorf("compliance check failed: %d of %d workloads below threshold", failed, len(reports))
	}
	return nil
}
