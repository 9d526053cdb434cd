package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowsmith/flowsmith/pkg/adapters/memory"
	"github.com/flowsmith/flowsmith/pkg/builder"
	"github.com/flowsmith/flowsmith/pkg/flow"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a flow document for consistency",
	Long:  `Reads a flow document (JSON or YAML) and reports whether the graph would be accepted: one starting node, no disconnected nodes, well-formed endpoints.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		jsonMode, _ := cmd.Flags().GetBool("json")
		if err := runValidate(cmd, args[0], jsonMode); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("json", false, "Print the verdict as JSON")
}

func runValidate(cmd *cobra.Command, path string, jsonMode bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	snap, err := flow.DecodeSnapshot(data, flow.FormatForPath(path))
	if err != nil {
		return err
	}

	svc := builder.New(memory.NewStore())
	verdict, err := svc.Validate(cmd.Context(), snap)
	if err != nil {
		return err
	}

	if jsonMode {
		out, err := json.MarshalIndent(verdict, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		if !verdict.Valid {
			os.Exit(1)
		}
		return nil
	}

	if !verdict.Valid {
		fmt.Printf("Flow is invalid: %s\n", verdict.Reason)
		os.Exit(1)
	}

	fmt.Println("Flow is valid! ✅")
	return nil
}
