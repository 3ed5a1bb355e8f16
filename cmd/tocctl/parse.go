package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"doctoc-backend/internal/toc"
)

func newParseCmd() *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "parse <result.zip>",
		Short: "Parse a downloaded extraction archive offline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read archive: %w", err)
			}
			headings, err := toc.ParseHeadings(archive)
			if err != nil {
				return err
			}
			return writeTOC(cmd.OutOrStdout(), headings, pretty)
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent JSON output")
	return cmd
}
