package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shayshab/workload-compliance/internal/policy"
	"github.com/shayshab/workload-compliance/internal/rulepacks/baseline"
)

func newPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Work with policy files",
	}
	cmd.AddCommand(newPolicyValidateCmd())
	return cmd
}

func newPolicyValidateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a policy file against the known rule set",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := policy.Load(file)
			if err != nil {
				return err
			}

			errs := policy.Validate(cfg, baseline.Names())
			if len(errs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: OK\n", file)
				return nil
			}

			for _, e := range errs {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %v\n", e)
			}
			return fmt.Errorf("policy file %s has %d validation error(s)", file, len(errs))
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Policy YAML file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
