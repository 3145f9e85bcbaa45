// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// askmongo interrogates the MongoDB databases of the local machine. It
// lists databases and collections, gives an overview of a collection and
// finds the documents matching a key and value.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/biogo/annotools/annodb"
)

var (
	dbpath    = flag.String("dbpath", annodb.DefaultDBPath, "data directory of the mongo databases.")
	uri       = flag.String("uri", annodb.DefaultURI, "MongoDB connection URI.")
	listDBs   = flag.Bool("list-dbs", false, "list the available databases.")
	db        = flag.String("db", "", "database to query.")
	listColls = flag.Bool("list-collections", false, "list the collections of -db.")
	coll      = flag.String("collection", "", "collection of -db to query.")
	overview  = flag.Bool("overview", false, "summarise the documents of -collection.")
	subfield  = flag.String("subfield", "", "nested document holding -key.")
	key       = flag.String("key", "", "document key to match.")
	val       = flag.String("val", "", "value of -key to match.")
	noDaemon  = flag.Bool("no-daemon", false, "do not attempt to start mongod.")
	help      = flag.Bool("help", false, "help prints this message.")
)

var (
	title = color.New(color.FgCyan, color.Bold)
	name  = color.New(color.FgGreen)
)

func main() {
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}

	ctx := context.Background()
	if !*noDaemon {
		// mongod exits non-zero when a server already holds dbpath.
		annodb.StartDaemon(ctx, *dbpath)
	}

	c, err := annodb.Open(ctx, *uri)
	if err != nil {
		log.Fatalf("failed to connect to %q: %v", *uri, err)
	}
	defer c.Disconnect(ctx)

	out := color.Output
	switch {
	case *listDBs:
		dbs, err := annodb.ListDatabases(ctx, c)
		if err != nil {
			log.Fatalf("failed to list databases: %v", err)
		}
		title.Fprintln(out, "The available mongo dbs found in your system are:")
		list(out, dbs)

	case *listColls && *db != "":
		colls, err := annodb.ListCollections(ctx, c.Database(*db))
		if err != nil {
			log.Fatalf("failed to list collections of %q: %v", *db, err)
		}
		title.Fprintf(out, "All the available collections found in the %s database are:\n", *db)
		list(out, colls)

	case *coll != "" && *db != "" && *overview:
		sum, err := annodb.Overview(ctx, c.Database(*db).Collection(*coll))
		if err != nil {
			log.Fatalf("failed to summarise %s.%s: %v", *db, *coll, err)
		}
		title.Fprintf(out, "Collection %s of database %s holds %d documents.\n", *coll, *db, sum.Count)
		fmt.Fprintf(out, "Searchable keys: %s\n", name.Sprint(strings.Join(sum.Keys, ", ")))
		if sum.Example != nil {
			title.Fprintln(out, "Example document:")
			printDocs(out, []bson.D{sum.Example})
		}

	case *coll != "" && *db != "" && *key != "" && *val != "":
		docs, err := annodb.Find(ctx, c.Database(*db).Collection(*coll), *subfield, *key, *val)
		if err != nil {
			log.Fatalf("failed to query %s.%s: %v", *db, *coll, err)
		}
		printDocs(out, docs)
		fmt.Fprintf(os.Stderr, "Found %d documents.\n", len(docs))

	default:
		fmt.Fprintln(os.Stderr, "Missing argument!")
		flag.Usage()
		os.Exit(1)
	}
}

func list(w io.Writer, names []string) {
	for _, n := range names {
		fmt.Fprintf(w, "\t%s\n", name.Sprint(n))
	}
}

func printDocs(w io.Writer, docs []bson.D) {
	for _, d := range docs {
		s, err := annodb.Format(d)
		if err != nil {
			log.Fatalf("failed to format document: %v", err)
		}
		fmt.Fprintln(w, s)
	}
}
