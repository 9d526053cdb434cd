package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowsmith/flowsmith/internal/config"
	"github.com/flowsmith/flowsmith/pkg/builder"
	"github.com/flowsmith/flowsmith/pkg/flow"
)

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if backend, _ := cmd.Flags().GetString("store"); backend != "" {
		cfg.Store.Backend = backend
	}
	return cfg, nil
}

// openBuilder opens the configured store and wraps it in a builder
// service. The returned close func releases the store.
func openBuilder(cmd *cobra.Command, opts ...builder.Option) (*builder.Service, func() error, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	store, closeStore, err := config.OpenStore(cmd.Context(), cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	return builder.New(store, opts...), closeStore, nil
}

// loadFlowArg resolves a command argument that is either a path to a
// flow document on disk or the id of a saved flow.
func loadFlowArg(cmd *cobra.Command, arg string) (flow.Flow, error) {
	if data, err := os.ReadFile(arg); err == nil {
		return flow.DecodeFlow(data, flow.FormatForPath(arg))
	}

	svc, closeStore, err := openBuilder(cmd)
	if err != nil {
		return flow.Flow{}, err
	}
	defer closeStore()

	f, err := svc.Get(cmd.Context(), arg)
	if err != nil {
		return flow.Flow{}, fmt.Errorf("no file or saved flow named %q: %w", arg, err)
	}
	return *f, nil
}
