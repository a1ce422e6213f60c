package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ridebase/catalog-cli/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		const path = "config.yaml"

		if !initForce {
			if _, err := os.Stat(path); err == nil {
				return eris.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}

		starter := config.Config{
			Store:     config.StoreConfig{Path: "catalog.db"},
			Catalogue: config.CatalogueConfig{Dir: "catalogue_extractions"},
			Database:  config.DatabaseConfig{Driver: "sqlite", DSN: "store.db"},
			Documents: config.DocumentsConfig{Dir: "documents"},
			Batch:     config.BatchConfig{MaxConcurrentSKUs: 4},
			Anthropic: config.AnthropicConfig{Model: "claude-sonnet-4-5-20250929", MaxTokens: 1024},
			Server:    config.ServerConfig{Port: 8080},
			Log:       config.LogConfig{Level: "info", Format: "json"},
		}

		data, err := yaml.Marshal(&starter)
		if err != nil {
			return eris.Wrap(err, "marshal starter config")
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return eris.Wrap(err, "write starter config")
		}

		zap.L().Info("starter config written", zap.String("path", path))
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config.yaml")
	rootCmd.AddCommand(initCmd)
}
