// Copyright © 2024 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luthersystems/drl/lint"
)

var (
	cfgFile   string
	colorFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "drl",
	Short: "Tools for the Drools rule language",
	Long: `drl parses and validates Drools rule language (DRL) files. It provides a
checker for the command line and CI, an AST dump, a file watcher and a
language server for editors.

Getting started:
  drl check rules.drl          Validate a file
  drl check ./...              Validate every .drl file under the current directory
  drl watch rules/             Re-validate files as they change
  drl parse rules.drl          Print the syntax tree as YAML
  drl doc no-loop              Show documentation for an attribute or check
  drl lsp                      Start the language server on stdio

Validation runs in four phases: syntax, semantic, best-practice and
multiline-pattern. Phases can be turned off with flags or in the config file:

  validation:
    enableSyntaxValidation: true
    enableSemanticValidation: true
    enableBestPracticeWarnings: false
    maxDiagnostics: 100

Every key may also be set from the environment, e.g.
DRL_VALIDATION_MAXDIAGNOSTICS=20.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.drl.yaml)")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto",
		`Control colored output: "auto", "always", or "never".`)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setConfigDefaults(viper.GetViper())
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			// Search config in home directory with name ".drl" (without extension).
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".drl")
	}

	viper.SetEnvPrefix("drl")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "drl: reading config: %v\n", err)
		}
	}
}

// setConfigDefaults registers the default validation settings so that
// environment variables are honored for keys missing from the config file.
func setConfigDefaults(v *viper.Viper) {
	d := lint.DefaultSettings()
	v.SetDefault("validation.enableSyntaxValidation", d.EnableSyntaxValidation)
	v.SetDefault("validation.enableSemanticValidation", d.EnableSemanticValidation)
	v.SetDefault("validation.enableBestPracticeWarnings", d.EnableBestPracticeWarnings)
	v.SetDefault("validation.maxDiagnostics", d.MaxDiagnostics)
	v.SetDefault("validation.builtins", []string{})
	v.SetDefault("lsp.debounce", "300ms")
}

// loadSettings returns the validation settings from the configuration.
// Keys are read one by one so that environment variables override nested
// values from the config file.
func loadSettings(v *viper.Viper) lint.Settings {
	return lint.Settings{
		EnableSyntaxValidation:     v.GetBool("validation.enableSyntaxValidation"),
		EnableSemanticValidation:   v.GetBool("validation.enableSemanticValidation"),
		EnableBestPracticeWarnings: v.GetBool("validation.enableBestPracticeWarnings"),
		MaxDiagnostics:             v.GetUint("validation.maxDiagnostics"),
	}
}
