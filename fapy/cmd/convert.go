// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/biogo/annotools/fastaedit"
	"github.com/biogo/annotools/genbank"
	"github.com/biogo/annotools/tabular"
)

func newTSV2MarkdownCmd(v *viper.Viper) *cobra.Command {
	c := &cobra.Command{
		Use:   "tsv2markdown",
		Short: "Print a tsv or csv file as a markdown table",
		Example: `  fapy tsv2markdown --tsv table.tsv
  fapy tsv2markdown --csv planets.csv --header "Planet,R (km),mass (x 10^29 kg)"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(v, cmd)
			if err != nil {
				return err
			}
			name, sep := cfg.TSV, "\t"
			if name == "" {
				name, sep = cfg.CSV, ","
			}
			if err = requireFlags("tsv or --csv", name); err != nil {
				return err
			}
			f, err := os.Open(name)
			if err != nil {
				return err
			}
			defer f.Close()

			var header []string
			if cfg.Header != "" {
				header = strings.Split(cfg.Header, ",")
			}
			t, err := tabular.ReadDelimited(f, sep, header == nil)
			if err != nil {
				return err
			}
			return tabular.Markdown(cmd.OutOrStdout(), t, header)
		},
	}
	c.Flags().String("tsv", "", "input tsv file to print as a markdown table")
	c.Flags().String("csv", "", "input csv file to print as a markdown table")
	c.Flags().String("header", "", `custom comma separated header for files without one, e.g. "Planet,R (km)"`)
	return c
}

func newSplitGBKCmd(v *viper.Viper) *cobra.Command {
	c := &cobra.Command{
		Use:   "splitgbk",
		Short: "Split a multi-sequence GenBank file into one file per record",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(v, cmd)
			if err != nil {
				return err
			}
			if err = requireFlags("gbk", cfg.GBK); err != nil {
				return err
			}
			recs, err := genbank.ReadFile(cfg.GBK)
			if err != nil {
				return err
			}
			if _, err = genbank.SplitFile(recs, cfg.Outdir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Done!\nIndividual files have been written at: %s\n", cfg.Outdir)
			return nil
		},
	}
	c.Flags().StringP("gbk", "g", "", "input GenBank file to split")
	c.Flags().StringP("outdir", "o", ".", "directory to write the split files")
	return c
}

// readList returns the non-empty trimmed lines of the named file as a set.
func readList(name string) (map[string]bool, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	set := make(map[string]bool)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" {
			set[l] = true
		}
	}
	return set, sc.Err()
}

// output returns the named file created for writing, or stdout of cmd
// when name is empty or "-".
func output(cmd *cobra.Command, name string) (io.WriteCloser, error) {
	if name == "" || name == "-" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	return os.Create(name)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func newGBK2FastaCmd(v *viper.Viper) *cobra.Command {
	c := &cobra.Command{
		Use:   "gbk2fasta",
		Short: "Write the CDS features of a GenBank file as FASTA",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(v, cmd)
			if err != nil {
				return err
			}
			if err = requireFlags("gbk", cfg.GBK); err != nil {
				return err
			}
			var typ genbank.SeqType
			switch cfg.Type {
			case "prot":
				typ = genbank.Protein
			case "nucl":
				typ = genbank.Nucleotide
			default:
				return fmt.Errorf("invalid sequence type %q: select nucl or prot", cfg.Type)
			}
			var allowed map[string]bool
			if cfg.FOFN != "" {
				if allowed, err = readList(cfg.FOFN); err != nil {
					return err
				}
			}
			recs, err := genbank.ReadFile(cfg.GBK)
			if err != nil {
				return err
			}
			out, err := output(cmd, cfg.Out)
			if err != nil {
				return err
			}
			bw := bufio.NewWriter(out)
			if _, err = genbank.CDSFasta(bw, recs, typ, allowed); err != nil {
				out.Close()
				return err
			}
			if err = bw.Flush(); err != nil {
				out.Close()
				return err
			}
			return out.Close()
		},
	}
	c.Flags().StringP("gbk", "g", "", "GenBank file to convert")
	c.Flags().StringP("out", "o", "", "output FASTA file (default stdout)")
	c.Flags().StringP("fofn", "f", "", "file listing the locus_tag of the genes to extract, one per line")
	c.Flags().StringP("type", "t", "prot", "type of sequence to output: nucl or prot")
	return c
}

func newReplaceFastaSeqCmd(v *viper.Viper) *cobra.Command {
	c := &cobra.Command{
		Use:   "replace_fasta_seq",
		Short: "Replace regions of FASTA sequences using a BED file",
		Long: `Replace regions of FASTA sequences with the sequences given in a 4 column
BED file of contig, 0-based start, end and replacement sequence.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(v, cmd)
			if err != nil {
				return err
			}
			if err = requireFlags("fasta", cfg.Fasta, "bed", cfg.BED); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Processing file: %s!\n", cfg.Fasta)

			f, err := os.Open(cfg.Fasta)
			if err != nil {
				return err
			}
			seqs, err := fastaedit.ReadFasta(f)
			f.Close()
			if err != nil {
				return err
			}
			b, err := os.Open(cfg.BED)
			if err != nil {
				return err
			}
			edits, err := fastaedit.ReadEdits(b)
			b.Close()
			if err != nil {
				return err
			}
			if err = fastaedit.Apply(seqs, edits); err != nil {
				return err
			}

			out, err := output(cmd, cfg.Out)
			if err != nil {
				return err
			}
			bw := bufio.NewWriter(out)
			if err = fastaedit.WriteFasta(bw, seqs); err != nil {
				out.Close()
				return err
			}
			if err = bw.Flush(); err != nil {
				out.Close()
				return err
			}
			if err = out.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Done!")
			return nil
		},
	}
	c.Flags().StringP("fasta", "f", "", "FASTA file to replace sequences in")
	c.Flags().StringP("bed", "b", "", "BED file with replacement definitions")
	c.Flags().StringP("out", "o", "out.fasta", "output FASTA file")
	return c
}
