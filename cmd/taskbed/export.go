package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full state",
	Long: `Export the full snapshot to stdout or a file.

Formats:
  json   one pretty-printed document (default)
  jsonl  one task per line, for piping into jq or grep
  yaml   one YAML document`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		out := os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer func() { _ = f.Close() }()
			out = f
		}

		snap := store.Current()
		switch format {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		case "jsonl":
			enc := json.NewEncoder(out)
			for _, t := range snap.Tasks {
				if err := enc.Encode(t); err != nil {
					return err
				}
			}
			return nil
		case "yaml":
			enc := yaml.NewEncoder(out)
			defer func() { _ = enc.Close() }()
			return enc.Encode(snap)
		default:
			return fmt.Errorf("unknown format %q (want json, jsonl, or yaml)", format)
		}
	},
}

func init() {
	exportCmd.Flags().String("format", "json", "Output format: json, jsonl, yaml")
	exportCmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
