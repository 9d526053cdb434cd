package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flowsmith",
	Short: "Flowsmith is a chatbot flow builder backend",
	Long:  `Flowsmith validates, stores and serves chatbot flows built from message nodes and edges.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the flowsmith config file")
	rootCmd.PersistentFlags().String("store", "", "Flow store backend: memory, file, redis or mongo (overrides config)")
}
