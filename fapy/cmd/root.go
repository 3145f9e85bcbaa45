// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cmd holds the fapy subcommands.
package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is the fapy release.
const Version = "0.9"

var errMissingFlag = errors.New("missing required flag")

// Config holds the settings of all subcommands. Values come from flags,
// FAPY_ prefixed environment variables and the config file, in that
// order of precedence.
type Config struct {
	// tsv2markdown
	TSV    string `mapstructure:"tsv"`
	CSV    string `mapstructure:"csv"`
	Header string `mapstructure:"header"`

	// genbank and fasta handling
	GBK       string `mapstructure:"gbk"`
	Fasta     string `mapstructure:"fasta"`
	BED       string `mapstructure:"bed"`
	Outdir    string `mapstructure:"outdir"`
	Out       string `mapstructure:"out"`
	FOFN      string `mapstructure:"fofn"`
	Type      string `mapstructure:"type"`
	Extension int    `mapstructure:"extension"`

	// blasts
	Query        string  `mapstructure:"query"`
	Subject      string  `mapstructure:"subject"`
	Task         string  `mapstructure:"task"`
	MinID        float64 `mapstructure:"minid"`
	MinCov       float64 `mapstructure:"mincov"`
	CullingLimit int     `mapstructure:"culling-limit"`
	Threads      int     `mapstructure:"threads"`
	TwoWay       bool    `mapstructure:"2way"`

	// pipeline summaries
	Input  string `mapstructure:"input"`
	Output string `mapstructure:"output"`
}

// NewRootCmd returns the fapy command tree bound to v.
func NewRootCmd(v *viper.Viper) *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:   "fapy",
		Short: "Utilities for genome annotation files and pipeline results",
		Long: `fapy gathers small utilities used around bacterial genome annotation:
converting GenBank, FASTA and tabular files, running filtered BLAST searches
and summarising MpGAP and bacannot results.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return readConfig(v, cfgFile)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fapy.yaml)")

	v.SetEnvPrefix("FAPY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root.AddCommand(
		newTSV2MarkdownCmd(v),
		newSplitGBKCmd(v),
		newGBK2FastaCmd(v),
		newBlastsCmd(v),
		newAlign2SubsetGBKCmd(v),
		newReplaceFastaSeqCmd(v),
		newMpGAP2CSVCmd(v),
		newBacannot2JSONCmd(v),
		newLicenseCmd(),
		newVersionCmd(),
	)
	return root
}

// readConfig reads the named config file, or $HOME/.fapy.yaml if it
// exists.
func readConfig(v *viper.Viper, name string) error {
	if name != "" {
		v.SetConfigFile(name)
		return v.ReadInConfig()
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	name = filepath.Join(home, ".fapy.yaml")
	if _, err = os.Stat(name); err != nil {
		return nil
	}
	v.SetConfigFile(name)
	return v.ReadInConfig()
}

// load binds the flags of cmd to v and returns the resulting settings.
func load(v *viper.Viper, cmd *cobra.Command) (*Config, error) {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to decode settings: %w", err)
	}
	return &c, nil
}

// requireFlags returns an error naming the first empty value of flags, given
// as name, value pairs.
func requireFlags(flags ...string) error {
	for i := 0; i+1 < len(flags); i += 2 {
		if flags[i+1] == "" {
			return fmt.Errorf("%w: --%s", errMissingFlag, flags[i])
		}
	}
	return nil
}

// Execute runs the fapy command tree.
func Execute() {
	if err := NewRootCmd(viper.New()).Execute(); err != nil {
		log.Fatalf("fapy: %v", err)
	}
}
