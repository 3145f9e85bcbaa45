// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tabular

import "strings"

// CardColumns are the columns reported by CardMetadata.
var CardColumns = []string{
	"seqname",
	"Prokka_product",
	"ARO Accession",
	"Protein Accession",
	"Drug Class",
	"Resistance Mechanism",
	"AMR Gene Family",
}

// CardMetadata annotates resistance features with CARD metadata. The
// aro_index table, without its ARO Name column and sorted by accession, is
// joined to aroCategories on Protein Accession and the result joined to
// features on ARO Accession. A feature ARO_Accession column is renamed and
// upper cased before the join. When columns are duplicated by a join the
// first is used.
func CardMetadata(features, aroIndex, aroCategories *Table) (*Table, error) {
	idx := aroIndex.Clone()
	if idx.Index("ARO Name") >= 0 {
		if err := idx.Drop("ARO Name"); err != nil {
			return nil, err
		}
	}
	if err := idx.SortBy("ARO Accession"); err != nil {
		return nil, err
	}
	meta, err := Join(idx, aroCategories, "Protein Accession", "Protein Accession")
	if err != nil {
		return nil, err
	}

	feats := features.Clone()
	if feats.Index("ARO_Accession") >= 0 {
		feats.Rename("ARO_Accession", "ARO Accession")
	}
	i := feats.Index("ARO Accession")
	if i >= 0 {
		for _, r := range feats.Rows {
			if i < len(r) {
				r[i] = strings.ToUpper(r[i])
			}
		}
	}
	all, err := Join(meta, feats, "ARO Accession", "ARO Accession")
	if err != nil {
		return nil, err
	}
	return all.Select(CardColumns...)
}
