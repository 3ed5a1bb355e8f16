package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"doctoc-backend/internal/toc"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tocctl",
		Short: "tocctl builds tables of contents from PDFs",
		Long: `tocctl runs the remote PDF extraction for a local file, or parses an
already downloaded extraction archive, and prints the headings as JSON.`,
		SilenceUsage: true,
	}
	root.AddCommand(newExtractCmd(), newParseCmd())
	return root
}

func writeTOC(w io.Writer, headings []toc.Heading, pretty bool) error {
	if headings == nil {
		headings = []toc.Heading{}
	}
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(map[string]any{"toc": headings})
}
