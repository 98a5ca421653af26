// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the template-uploader CLI. It turns a
// folder of Word documents into template records and posts them, one by one,
// to a templates API.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/template-uploader/internal/config"
	"github.com/pdiddy/template-uploader/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	exitOK          = 0
	exitFailures    = 1
	exitConfigError = 2
)

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// configErr holds a problem found while reading .env or an explicit config
// file. cobra.OnInitialize hooks cannot fail, so it is surfaced by
// PersistentPreRunE.
var configErr error

// rootCmd is the base command for the template-uploader CLI.
var rootCmd = &cobra.Command{
	Use:   "template-uploader",
	Short: "Upload Word documents as templates to a templates API",
	Long: `template-uploader reads every .docx file in a folder, extracts its text and
the {{...}} / <<...>> placeholders it contains, and submits one template record
per document to a templates API with a bearer token.

Settings come from template-uploader.yaml, a .env file, TEMPLATE_UPLOADER_*
environment variables and flags, in increasing order of precedence. The API
token may also live in .secrets/api-token.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErr
		}
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
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./template-uploader.yaml or ~/.config/template-uploader/template-uploader.yaml)")
}

func initConfig() {
	if err := config.LoadDotEnv(".env"); err != nil {
		configErr = fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("template-uploader")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "template-uploader"))
		}
	}

	config.SetDefaults(viper.GetViper())
	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		configErr = fmt.Errorf("%w: reading config %s: %v", config.ErrInvalidConfig, cfgFile, err)
	}
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, config.ErrInvalidConfig):
		return exitConfigError
	default:
		return exitFailures
	}
}

func main() {
	os.Exit(exitCode(rootCmd.Execute()))
}
