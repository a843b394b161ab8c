// Copyright © 2024 The ELPS authors

package cmd

import (
	"github.com/spf13/viper"

	"github.com/luthersystems/drl/analysis"
	"github.com/luthersystems/drl/lint"
)

// Option configures an exported command factory (CheckCommand,
// WatchCommand, LSPCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	analyzers []*lint.Analyzer
	builtins  []string
	viper     *viper.Viper
}

// WithAnalyzers replaces the default set of checks.  Embedders use it to
// add their own analyzers next to lint.DefaultAnalyzers.
func WithAnalyzers(analyzers []*lint.Analyzer) Option {
	return func(c *cmdConfig) { c.analyzers = analyzers }
}

// WithBuiltins declares extra context variables available in rule actions,
// such as variables injected by the embedding application.
func WithBuiltins(names ...string) Option {
	return func(c *cmdConfig) { c.builtins = append(c.builtins, names...) }
}

// WithViper reads configuration from v instead of the global viper
// instance.
func WithViper(v *viper.Viper) Option {
	return func(c *cmdConfig) { c.viper = v }
}

func newCmdConfig(opts []Option) *cmdConfig {
	cfg := &cmdConfig{}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// config returns the viper instance commands read settings from.
func (c *cmdConfig) config() *viper.Viper {
	if c.viper != nil {
		return c.viper
	}
	return viper.GetViper()
}

// resolveAnalyzers returns the configured analyzers, defaulting to the
// built-in checks.
func (c *cmdConfig) resolveAnalyzers() []*lint.Analyzer {
	if c.analyzers != nil {
		return c.analyzers
	}
	return lint.DefaultAnalyzers()
}

// analysisConfig merges builtins from the options and the config file.
func (c *cmdConfig) analysisConfig() *analysis.Config {
	builtins := append([]string(nil), c.builtins...)
	builtins = append(builtins, c.config().GetStringSlice("validation.builtins")...)
	return &analysis.Config{Builtins: builtins}
}
