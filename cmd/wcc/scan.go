package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/shayshab/workload-compliance/internal/sources/scan"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Import external scanner results",
	}
	cmd.AddCommand(newScanImportCmd())
	return cmd
}

func newScanImportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Reduce a SARIF file to the security_scan descriptor section",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := scan.LoadSARIF(file)
			if err != nil {
				return err
			}
			return printJSON(os.Stdout, result)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "SARIF 2.1.0 result file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
