// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/biogo/annotools/blast"
	"github.com/biogo/annotools/genbank"
)

func addAlignFlags(c *cobra.Command) {
	c.Flags().Float64("minid", 80, "minimum percent identity of accepted alignments")
	c.Flags().Float64("mincov", 80, "minimum percent coverage of accepted alignments")
	c.Flags().Int("culling-limit", 1, "BLAST culling_limit, 1 keeps the best hit only")
}

func newBlastsCmd(v *viper.Viper) *cobra.Command {
	c := &cobra.Command{
		Use:   "blasts",
		Short: "Run a filtered BLAST search of a query against a subject FASTA",
		Long: `Run a BLAST search of a query FASTA against a subject FASTA, keep the
alignments passing the identity and coverage thresholds, write them to
--out and print a summary of the accepted alignments.

With --2way an alignment must cover --mincov of both the query and the
subject, otherwise only of the query. This suits gene to gene comparisons.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(v, cmd)
			if err != nil {
				return err
			}
			if err = requireFlags("query", cfg.Query, "subject", cfg.Subject); err != nil {
				return err
			}
			task := strings.ToLower(cfg.Task)
			if _, err = blast.DBType(task); err != nil {
				return err
			}
			hits, err := blast.Pairwise{
				Task:         task,
				Query:        cfg.Query,
				Subject:      cfg.Subject,
				Filter:       blast.Filter{MinIdentity: cfg.MinID, MinCoverage: cfg.MinCov, TwoWay: cfg.TwoWay},
				CullingLimit: cfg.CullingLimit,
				Threads:      cfg.Threads,
				Stderr:       cmd.ErrOrStderr(),
			}.Run(cmd.Context())
			if err != nil {
				return err
			}
			if err = writeHits(cfg.Out, hits); err != nil {
				return err
			}
			if err = blast.Describe(hits).Write(cmd.ErrOrStderr()); err != nil {
				return err
			}
			return blast.WriteSummary(cmd.OutOrStdout(), hits)
		},
	}
	c.Flags().String("query", "", "query FASTA file")
	c.Flags().String("subject", "", "subject FASTA file")
	c.Flags().String("task", "blastn", "search task: blastn, blastp, tblastn or blastx")
	c.Flags().String("out", "out.blast", "file for the accepted alignments")
	c.Flags().Int("threads", 1, "number of search threads")
	c.Flags().Bool("2way", false, "require coverage of both query and subject")
	addAlignFlags(c)
	return c
}

func writeHits(name string, hits []*blast.Hit) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err = blast.WriteTable(f, blast.Columns, hits); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// hitRegions returns the subject intervals of hits extended by ext bases
// on each side.
func hitRegions(hits []*blast.Hit, ext int) []genbank.Region {
	regions := make([]genbank.Region, len(hits))
	for i, h := range hits {
		lo, hi := h.SStart, h.SEnd
		if lo > hi {
			lo, hi = hi, lo
		}
		regions[i] = genbank.Region{Name: h.SSeqID, Start: lo - ext, End: hi + ext}
	}
	return regions
}

func newAlign2SubsetGBKCmd(v *viper.Viper) *cobra.Command {
	c := &cobra.Command{
		Use:   "align2subsetgbk",
		Short: "Subset a GenBank file to the features hit by a query FASTA",
		Long: `Align a query nucleotide FASTA against the sequences of a GenBank file and
write the records holding the features that start within an accepted
alignment, extended by --extension bases on both flanks.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(v, cmd)
			if err != nil {
				return err
			}
			if err = requireFlags("gbk", cfg.GBK, "fasta", cfg.Fasta); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Processing file: %s!\n", cfg.GBK)

			recs, err := genbank.ReadFile(cfg.GBK)
			if err != nil {
				return err
			}
			dir, err := os.MkdirTemp("", "align2subsetgbk-")
			if err != nil {
				return err
			}
			defer os.RemoveAll(dir)
			subject := filepath.Join(dir, "gbk.fa")
			f, err := os.Create(subject)
			if err != nil {
				return err
			}
			if err = genbank.RecordsFasta(f, recs); err != nil {
				f.Close()
				return err
			}
			if err = f.Close(); err != nil {
				return err
			}

			hits, err := blast.Pairwise{
				Task:         "blastn",
				Query:        cfg.Fasta,
				Subject:      subject,
				Filter:       blast.Filter{MinIdentity: cfg.MinID, MinCoverage: cfg.MinCov},
				CullingLimit: cfg.CullingLimit,
				Threads:      1,
				Stderr:       cmd.ErrOrStderr(),
			}.Run(cmd.Context())
			if err != nil {
				return err
			}
			sub := genbank.SubsetByRegions(recs, hitRegions(hits, cfg.Extension))
			return genbank.WriteFile(cfg.Out, sub)
		},
	}
	c.Flags().StringP("gbk", "g", "", "GenBank file to subset")
	c.Flags().StringP("fasta", "f", "", "query FASTA file")
	c.Flags().StringP("out", "o", "out.gbk", "output GenBank file")
	c.Flags().Int("extension", 0, "bases added to both flanks of each alignment")
	addAlignFlags(c)
	return c
}
