package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jpfeil/hubsampler/pkg/config"
	"github.com/jpfeil/hubsampler/pkg/core"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available sampler plugins",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		registry := core.NewSamplerRegistry()
		cfg.RegisterSamplers(registry)

		names := registry.Names()
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var configPath string

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML sampler configuration")
	rootCmd.AddCommand(listCmd)
}
