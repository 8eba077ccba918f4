package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shayshab/workload-compliance/internal/policy"
	"github.com/shayshab/workload-compliance/internal/rulepacks/baseline"
	awssource "github.com/shayshab/workload-compliance/internal/sources/aws"
	kube "github.com/shayshab/workload-compliance/internal/sources/kubernetes"
)

// DoctorResult is the structured output of wcc doctor. It can be serialised
// to JSON via --format=json or rendered as human-readable lines (default).
type DoctorResult struct {
	Kubernetes struct {
		KubeconfigOK bool   `json:"kubeconfig_ok"`
		Context      string `json:"context,omitempty"`
		APIReachable bool   `json:"api_reachable"`
		Error        string `json:"error,omitempty"`
	} `json:"kubernetes"`

	AWS struct {
		CredentialsOK bool   `json:"credentials_ok"`
		AccountID     string `json:"account_id,omitempty"`
		Error         string `json:"error,omitempty"`
	} `json:"aws"`

	Policy struct {
		Present bool     `json:"present"`
		Valid   bool     `json:"valid"`
		Errors  []string `json:"errors,omitempty"`
	} `json:"policy"`

	OverallHealthy bool `json:"overall_healthy"`
}

func newDoctorCmd() *cobra.Command {
	var (
		contextName string
		profile     string
		policyFile  string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that cluster access, AWS credentials, and the policy file are usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result DoctorResult

			// Kubernetes: kubeconfig must load; the API check is a cheap
			// server version probe.
			clientset, info, err := kube.NewDefaultClientProvider().ClientsetForContext(contextName)
			if err != nil {
				result.Kubernetes.Error = err.Error()
			} else {
				result.Kubernetes.KubeconfigOK = true
				result.Kubernetes.Context = info.ContextName
				if _, err := clientset.Discovery().ServerVersion(); err != nil {
					result.Kubernetes.Error = err.Error()
				} else {
					result.Kubernetes.APIReachable = true
				}
			}

			// AWS: credentials must resolve to an account via STS.
			accountID, err := awssource.ResolveAccount(cmd.Context(), profile)
			if err != nil {
				result.AWS.Error = err.Error()
			} else {
				result.AWS.CredentialsOK = true
				result.AWS.AccountID = accountID
			}

			// Policy file is optional; when present it must be valid.
			result.Policy.Valid = true
			if policyFile != "" {
				result.Policy.Present = true
				cfg, err := policy.Load(policyFile)
				if err != nil {
					result.Policy.Valid = false
					result.Policy.Errors = append(result.Policy.Errors, err.Error())
				} else if errs := policy.Validate(cfg, baseline.Names()); len(errs) > 0 {
					result.Policy.Valid = false
					for _, e := range errs {
						result.Policy.Errors = append(result.Policy.Errors, e.Error())
					}
				}
			}

			result.OverallHealthy = result.Kubernetes.APIReachable &&
				result.AWS.CredentialsOK &&
				result.Policy.Valid

			if format == "json" {
				if err := printJSON(os.Stdout, result); err != nil {
					return err
				}
			} else {
				printDoctorResult(&result)
			}
			if !result.OverallHealthy {
				return fmt.Errorf("environment not fully healthy")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&contextName, "context", "", "Kubeconfig context to check (default: current context)")
	cmd.Flags().StringVar(&profile, "profile", "", "AWS profile to check (default: default profile)")
	cmd.Flags().StringVar(&policyFile, "policy", "", "Policy file to validate (optional)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: json or table")
	return cmd
}

// printDoctorResult renders the human-readable doctor summary.
func printDoctorResult(r *DoctorResult) {
	status := func(ok bool) string {
		if ok {
			return "ok"
		}
		return "FAILED"
	}

	fmt.Printf("kubernetes: kubeconfig %s", status(r.Kubernetes.KubeconfigOK))
	if r.Kubernetes.Context != "" {
		fmt.Printf(" (context %q)", r.Kubernetes.Context)
	}
	fmt.Printf(", api %s\n", status(r.Kubernetes.APIReachable))
	if r.Kubernetes.Error != "" {
		fmt.Printf("  error: %s\n", r.Kubernetes.Error)
	}

	fmt.Printf("aws: credentials %s", status(r.AWS.CredentialsOK))
	if r.AWS.AccountID != "" {
		fmt.Printf(" (account %s)", r.AWS.AccountID)
	}
	fmt.Println()
	if r.AWS.Error != "" {
		fmt.Printf("  error: %s\n", r.AWS.Error)
	}

	if r.Policy.Present {
		fmt.Printf("policy: %s\n", status(r.Policy.Valid))
		for _, e := range r.Policy.Errors {
			fmt.Printf("  error: %s\n", e)
		}
	} else {
		fmt.Println("policy: not configured (defaults in effect)")
	}
}
