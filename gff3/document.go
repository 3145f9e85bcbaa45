// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gff3

import (
	"encoding/json"
	"io"
)

// Document is the JSON representation of a feature used when loading
// annotations into a document store.
type Document struct {
	CDS        string            `json:"CDS" bson:"CDS"`
	SeqID      string            `json:"seqid" bson:"seqid"`
	Source     string            `json:"source" bson:"source"`
	Type       string            `json:"type" bson:"type"`
	Start      int               `json:"start" bson:"start"`
	End        int               `json:"end" bson:"end"`
	Score      string            `json:"score" bson:"score"`
	Strand     string            `json:"strand" bson:"strand"`
	Phase      string            `json:"phase" bson:"phase"`
	Attributes map[string]string `json:"attributes" bson:"attributes"`
}

// Document returns the document form of f. The CDS field holds the
// feature ID.
func (f *Feature) Document() Document {
	attr := make(map[string]string, len(f.Attributes))
	for _, kv := range f.Attributes {
		if _, ok := attr[kv.Key]; ok {
			continue
		}
		attr[kv.Key] = kv.Value
	}
	return Document{
		CDS:        f.ID(),
		SeqID:      f.SeqID,
		Source:     f.Source,
		Type:       f.Type,
		Start:      f.Start,
		End:        f.End,
		Score:      f.scoreString(),
		Strand:     f.strandString(),
		Phase:      f.phaseString(),
		Attributes: attr,
	}
}

// WriteJSON writes the features as an indented JSON array of documents.
func WriteJSON(w io.Writer, fs []*Feature) error {
	docs := make([]Document, len(fs))
	for i, f := range fs {
		docs[i] = f.Document()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(docs)
}
