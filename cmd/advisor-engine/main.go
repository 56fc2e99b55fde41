// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the advisor-engine CLI.
// Implements: prd001-ooda, prd002-personas, prd003-evidence,
//             prd004-completion, prd005-http-api (CLI surface).
// See docs/ARCHITECTURE § Command Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/advisor-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger backs the serve command and verbose diagnostics; commands that
// print directly to the terminal leave it untouched.
var logger *zap.Logger

var verbose bool

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the advisor-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "advisor-engine",
	Short: "OODA-loop advisor for technical questions",
	Long: `advisor-engine answers technical questions through an Observe-Orient-
Decide-Act loop. Orient decomposes the question along expert aspects, Decide
consults a persona per aspect against retrieved evidence, and Act synthesizes
the surviving insights into a cited, confidence-scored answer.

Run one-shot analyses with analyze, expose the engine over HTTP with serve,
and inspect the knowledge base and persona roster with kb and personas.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}

		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./advisor-engine.yaml or ~/.config/advisor-engine/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("advisor-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "advisor-engine"))
		}
	}

	viper.SetEnvPrefix("ADVISOR_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
