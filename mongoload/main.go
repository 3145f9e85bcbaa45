// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// mongoload inserts the documents of a JSON array, such as the output of
// gff2json, into a collection of the Annotation database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/biogo/annotools/annodb"
)

var (
	inf  = flag.String("input", "", "JSON file holding an array of documents (required).")
	coll = flag.String("name", "", "collection receiving the documents (required).")
	db   = flag.String("db", annodb.DefaultDB, "database receiving the documents.")
	uri  = flag.String("uri", annodb.DefaultURI, "MongoDB connection URI.")
	help = flag.Bool("help", false, "help prints this message.")
)

func main() {
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if *inf == "" || *coll == "" {
		flag.Usage()
		os.Exit(1)
	}

	f, err := os.Open(*inf)
	if err != nil {
		log.Fatalf("failed to open %q: %v", *inf, err)
	}
	defer f.Close()

	ctx := context.Background()
	c, err := annodb.Open(ctx, *uri)
	if err != nil {
		log.Fatalf("failed to connect to %q: %v", *uri, err)
	}
	defer c.Disconnect(ctx)

	n, err := annodb.InsertJSON(ctx, c, *db, *coll, f)
	if err != nil {
		log.Fatalf("failed to insert %q: %v", *inf, err)
	}
	fmt.Fprintf(os.Stderr, "File %s added into MongoDB database (%s) under collection %s: %d documents.\n", *inf, *db, *coll, n)
}
