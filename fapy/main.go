// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// fapy converts annotation files and summarises annotation pipeline
// results.
package main

import "github.com/biogo/annotools/fapy/cmd"

func main() {
	cmd.Execute()
}
