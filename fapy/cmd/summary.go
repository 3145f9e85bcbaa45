// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/biogo/annotools/bacannot"
	"github.com/biogo/annotools/mpgap"
)

func newMpGAP2CSVCmd(v *viper.Viper) *cobra.Command {
	c := &cobra.Command{
		Use:   "mpgap2csv",
		Short: "Summarise MpGAP QUAST and BUSCO statistics as CSV",
		Long: `Collect the QUAST and BUSCO statistics held in the MultiQC reports of an
MpGAP output directory into one CSV row per assembly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(v, cmd)
			if err != nil {
				return err
			}
			if err = requireFlags("input", cfg.Input); err != nil {
				return err
			}
			rows, err := mpgap.Collect(cfg.Input)
			if err != nil {
				return err
			}
			f, err := os.Create(cfg.Output)
			if err != nil {
				return err
			}
			if err = mpgap.WriteCSV(f, rows); err != nil {
				f.Close()
				return err
			}
			if err = f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d assemblies to %s\n", len(rows), cfg.Output)
			return nil
		},
	}
	c.Flags().String("input", "", "path to the MpGAP output directory")
	c.Flags().String("output", "MpGAP_summary.csv", "CSV output file")
	return c
}

func newBacannot2JSONCmd(v *viper.Viper) *cobra.Command {
	c := &cobra.Command{
		Use:   "bacannot2json",
		Short: "Summarise bacannot annotation results as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(v, cmd)
			if err != nil {
				return err
			}
			if err = requireFlags("input", cfg.Input); err != nil {
				return err
			}
			sum, err := bacannot.Summarize(cfg.Input)
			if err != nil {
				return err
			}
			f, err := os.Create(cfg.Output)
			if err != nil {
				return err
			}
			if err = sum.Write(f); err != nil {
				f.Close()
				return err
			}
			if err = f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d samples to %s\n", len(sum), cfg.Output)
			return nil
		},
	}
	c.Flags().StringP("input", "i", "", "path to the bacannot results directory")
	c.Flags().StringP("output", "o", "bacannot_summary.json", "JSON summary output file")
	return c
}

const license = `Copyright ©2022 The bíogo Authors. All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions are met:
    * Redistributions of source code must retain the above copyright
      notice, this list of conditions and the following disclaimer.
    * Redistributions in binary form must reproduce the above copyright
      notice, this list of conditions and the following disclaimer in the
      documentation and/or other materials provided with the distribution.
    * Neither the name of the bíogo project nor the names of its authors and
      contributors may be used to endorse or promote products derived from this
      software without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE LIABLE
FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL
DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER
CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY,
OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
`

func newLicenseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "license",
		Short: "Print the license",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), license)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the fapy version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
