// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package annodb stores and queries annotation documents in MongoDB.
package annodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/biogo/external"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultURI    = "mongodb://localhost:27017"
	DefaultDB     = "Annotation"
	DefaultDBPath = "/data/db"
)

var (
	ErrMissingRequired = errors.New("annodb: missing required argument")
	ErrNoDocuments     = errors.New("annodb: no documents")
)

// Mongod is a mongod daemon command builder.
//
//  mongod --dbpath <path> --syslog --fork
type Mongod struct {
	Cmd    string `buildarg:"{{if .}}{{.}}{{else}}mongod{{end}}"`
	DBPath string `buildarg:"{{if .}}--dbpath{{split}}{{.}}{{end}}"`
	Syslog bool   `buildarg:"{{if .}}--syslog{{end}}"`
	Fork   bool   `buildarg:"{{if .}}--fork{{end}}"`
}

// BuildCommand returns an exec.Cmd built from the parameters in m.
func (m Mongod) BuildCommand() (*exec.Cmd, error) {
	if m.DBPath == "" {
		return nil, ErrMissingRequired
	}
	cl := external.Must(external.Build(m))
	return exec.Command(cl[0], cl[1:]...), nil
}

// StartDaemon forks a mongod serving dbpath. mongod fails when a daemon
// already holds the path, so callers usually ignore the error.
func StartDaemon(ctx context.Context, dbpath string) error {
	cmd, err := Mongod{DBPath: dbpath, Syslog: true, Fork: true}.BuildCommand()
	if err != nil {
		return err
	}
	return exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...).Run()
}

// Open connects to the MongoDB server at uri, or DefaultURI when uri is
// empty.
func Open(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		uri = DefaultURI
	}
	return mongo.Connect(ctx, options.Client().ApplyURI(uri))
}

// ListDatabases returns the database names held by the server.
func ListDatabases(ctx context.Context, c *mongo.Client) ([]string, error) {
	return c.ListDatabaseNames(ctx, bson.D{})
}

// ListCollections returns the collection names of db.
func ListCollections(ctx context.Context, db *mongo.Database) ([]string, error) {
	return db.ListCollectionNames(ctx, bson.D{})
}

// Summary is an overview of a collection.
type Summary struct {
	Count int64
	// Keys is the union of top level document keys
	// in order of first appearance.
	Keys []string
	// Example is a randomly sampled document.
	Example bson.D
}

// Keys returns the union of the top level keys of docs in order of first
// appearance.
func Keys(docs []bson.D) []string {
	var k keySet
	for _, d := range docs {
		k.add(d)
	}
	return k.keys
}

type keySet struct {
	seen map[string]bool
	keys []string
}

func (k *keySet) add(d bson.D) {
	if k.seen == nil {
		k.seen = make(map[string]bool)
	}
	for _, e := range d {
		if !k.seen[e.Key] {
			k.seen[e.Key] = true
			k.keys = append(k.keys, e.Key)
		}
	}
}

// CursorKeys returns the union of the top level keys of the documents
// remaining in cur in order of first appearance. Documents are decoded
// one at a time and cur is closed on return.
func CursorKeys(ctx context.Context, cur *mongo.Cursor) ([]string, error) {
	defer cur.Close(ctx)
	var k keySet
	for cur.Next(ctx) {
		var doc bson.D
		if err := cur.Decode(&doc); err != nil {
			return k.keys, err
		}
		k.add(doc)
	}
	return k.keys, cur.Err()
}

// Overview returns a summary of coll.
func Overview(ctx context.Context, coll *mongo.Collection) (*Summary, error) {
	n, err := coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	o := &Summary{Count: n}
	if n == 0 {
		return o, nil
	}

	cur, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	if o.Keys, err = CursorKeys(ctx, cur); err != nil {
		return nil, err
	}

	cur, err = coll.Aggregate(ctx, mongo.Pipeline{{{Key: "$sample", Value: bson.D{{Key: "size", Value: 1}}}}})
	if err != nil {
		return nil, err
	}
	var sample []bson.D
	if err = cur.All(ctx, &sample); err != nil {
		return nil, err
	}
	if len(sample) != 0 {
		o.Example = sample[0]
	}
	return o, nil
}

// Filter returns the query filter matching documents whose key holds val.
// An _id key is matched as an ObjectID. When subfield is not empty the key
// is looked up in that nested document.
func Filter(subfield, key, val string) (bson.D, error) {
	if key == "" {
		return nil, ErrMissingRequired
	}
	if key == "_id" {
		id, err := primitive.ObjectIDFromHex(val)
		if err != nil {
			return nil, fmt.Errorf("annodb: _id %q: %w", val, err)
		}
		return bson.D{{Key: key, Value: id}}, nil
	}
	if subfield != "" {
		key = subfield + "." + key
	}
	return bson.D{{Key: key, Value: val}}, nil
}

// Find returns the documents of coll matching Filter(subfield, key, val).
func Find(ctx context.Context, coll *mongo.Collection, subfield, key, val string) ([]bson.D, error) {
	f, err := Filter(subfield, key, val)
	if err != nil {
		return nil, err
	}
	cur, err := coll.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	var docs []bson.D
	return docs, cur.All(ctx, &docs)
}

// DecodeDocuments reads a JSON array of documents from r. Each element
// may use MongoDB extended JSON.
func DecodeDocuments(r io.Reader) ([]interface{}, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("annodb: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrNoDocuments
	}
	docs := make([]interface{}, len(raw))
	for i, m := range raw {
		var d bson.D
		if err := bson.UnmarshalExtJSON(m, false, &d); err != nil {
			return nil, fmt.Errorf("annodb: document %d: %w", i, err)
		}
		docs[i] = d
	}
	return docs, nil
}

// InsertJSON inserts the JSON array of documents read from r into the
// named collection of db, or of DefaultDB when db is empty. It returns
// the number of documents inserted.
func InsertJSON(ctx context.Context, c *mongo.Client, db, coll string, r io.Reader) (int, error) {
	if coll == "" {
		return 0, ErrMissingRequired
	}
	if db == "" {
		db = DefaultDB
	}
	docs, err := DecodeDocuments(r)
	if err != nil {
		return 0, err
	}
	res, err := c.Database(db).Collection(coll).InsertMany(ctx, docs)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

// Format renders doc as indented relaxed extended JSON.
func Format(doc bson.D) (string, error) {
	b, err := bson.MarshalExtJSONIndent(doc, false, false, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
