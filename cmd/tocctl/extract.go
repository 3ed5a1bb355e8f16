package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"doctoc-backend/internal/bootstrap"
	"doctoc-backend/internal/shared/config"
)

func newExtractCmd() *cobra.Command {
	var (
		pretty  bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "extract <file.pdf>",
		Short: "Run the remote extraction for a local PDF",
		Long: `Extract uploads the PDF to the extraction service configured through
PDF_SERVICES_* environment variables, waits for the job and prints the headings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read pdf: %w", err)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			client := bootstrap.NewExtractor(config.Load().PDFServices)
			headings, err := client.ExtractHeadings(ctx, data)
			if err != nil {
				return fmt.Errorf("extraction failed: %w", err)
			}
			return writeTOC(cmd.OutOrStdout(), headings, pretty)
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent JSON output")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Overall deadline for the extraction (0 = none)")
	return cmd
}
