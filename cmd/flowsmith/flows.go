package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flowsCmd = &cobra.Command{
	Use:   "flows",
	Short: "Manage saved flows",
	Long:  `List, inspect, and remove flows saved in the configured store.`,
}

var flowsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all saved flows",
	Run: func(cmd *cobra.Command, args []string) {
		svc, closeStore, err := openBuilder(cmd)
		if err != nil {
			fmt.Printf("Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer closeStore()

		flows, err := svc.List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing flows: %v\n", err)
			os.Exit(1)
		}

		if len(flows) == 0 {
			fmt.Println("No saved flows found.")
			return
		}

		fmt.Println("Saved flows:")
		for _, f := range flows {
			if f.Name != "" {
				fmt.Printf("- %s  (%s)\n", f.ID, f.Name)
			} else {
				fmt.Println("- " + f.ID)
			}
		}
	},
}

var flowsGetCmd = &cobra.Command{
	Use:   "get <flow-id>",
	Short: "Print a saved flow document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flowID := args[0]
		svc, closeStore, err := openBuilder(cmd)
		if err != nil {
			fmt.Printf("Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer closeStore()

		f, err := svc.Get(cmd.Context(), flowID)
		if err != nil {
			fmt.Printf("Error loading flow '%s': %v\n", flowID, err)
			os.Exit(1)
		}

		// Pretty print JSON
		data, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling flow: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(string(data))
	},
}

var flowsRmCmd = &cobra.Command{
	Use:   "rm <flow-id>...",
	Short: "Remove one or more saved flows",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, closeStore, err := openBuilder(cmd)
		if err != nil {
			fmt.Printf("Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer closeStore()

		hasError := false
		for _, flowID := range args {
			if err := svc.Delete(cmd.Context(), flowID); err != nil {
				fmt.Printf("Error removing '%s': %v\n", flowID, err)
				hasError = true
			} else {
				fmt.Printf("Removed flow '%s'\n", flowID)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(flowsCmd)
	flowsCmd.AddCommand(flowsLsCmd)
	flowsCmd.AddCommand(flowsGetCmd)
	flowsCmd.AddCommand(flowsRmCmd)
}
