package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	awssource "github.com/shayshab/workload-compliance/internal/sources/aws"
)

func newAWSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aws",
		Short: "Collect AWS infrastructure state for compliance evaluation",
	}
	cmd.AddCommand(newAWSInfraCmd())
	return cmd
}

func newAWSInfraCmd() *cobra.Command {
	var (
		profile    string
		region     string
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "infra",
		Short: "Attest storage encryption and TLS posture of an AWS account",
		Long: "Infra inspects S3 bucket default encryption, EBS volume encryption, RDS\n" +
			"storage encryption, and ELBv2 listener protocols, and emits the\n" +
			"infrastructure state consumed by the --infra flag of evaluate commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			collector := awssource.NewDefaultCollector()
			state, err := collector.Collect(cmd.Context(), profile, region)
			if err != nil {
				return fmt.Errorf("collect infrastructure state: %w", err)
			}

			if outputFile != "" {
				if err := writeJSONFile(outputFile, state); err != nil {
					return err
				}
			}
			return printJSON(os.Stdout, state)
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "AWS profile name (default: uses environment / default profile)")
	cmd.Flags().StringVar(&region, "region", "", "AWS region to inspect (default: the profile's home region)")
	cmd.Flags().StringVar(&outputFile, "output", "", "Also write the state to this file path")
	return cmd
}
