package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowsmith/flowsmith/internal/presentation/export"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <flow-id|file>",
	Short: "Export a flow as JSON, YAML, Mermaid, DOT or SVG",
	Long:  `Loads a flow from the store (or a flow document from disk) and renders it in the requested format.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")

		f, err := loadFlowArg(cmd, args[0])
		if err != nil {
			fmt.Printf("Error loading flow: %v\n", err)
			os.Exit(1)
		}

		data, _, err := export.Render(f, format)
		if err != nil {
			fmt.Printf("Error rendering flow: %v\n", err)
			os.Exit(1)
		}

		if outPath != "" {
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				fmt.Printf("Error writing %s: %v\n", outPath, err)
				os.Exit(1)
			}
			fmt.Printf("Wrote %s (%s)\n", outPath, format)
			return
		}

		fmt.Print(string(data))
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("format", "f", export.FormatJSON, "Output format: json, yaml, mermaid, dot or svg")
	exportCmd.Flags().StringP("out", "o", "", "Write output to a file instead of stdout")
}
