// Copyright ©2022 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runner runs independent external jobs with a bounded level of
// concurrency, collating the diagnostic output of each job.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
)

// Job is a unit of work. If Out is not empty and names an existing file
// the job is skipped.
type Job struct {
	Name string
	Out  string

	// Run performs the job, writing diagnostics to stderr.
	Run func(ctx context.Context, stderr io.Writer) error
}

// RunCmd runs cmd bound to ctx with its stderr directed to stderr.
func RunCmd(ctx context.Context, cmd *exec.Cmd, stderr io.Writer) error {
	bound := exec.CommandContext(ctx, cmd.Path, cmd.Args[1:]...)
	bound.Dir = cmd.Dir
	bound.Env = cmd.Env
	bound.Stdin = cmd.Stdin
	bound.Stdout = cmd.Stdout
	bound.Stderr = cmd.Stderr
	if bound.Stderr == nil {
		bound.Stderr = stderr
	}
	return bound.Run()
}

// Runner holds the concurrency limit and log destination for a set of jobs.
type Runner struct {
	// Threads is the maximum number of concurrent jobs.
	// Values less than one are treated as one.
	Threads int

	// Log receives progress messages and job diagnostics.
	// If nil, os.Stderr is used.
	Log io.Writer

	limit chan struct{}
	wg    sync.WaitGroup
	mu    sync.Mutex
	n     int32
}

func (r *Runner) acquire() {
	r.wg.Add(1)
	r.limit <- struct{}{}
}

func (r *Runner) release(b *bytes.Buffer) {
	<-r.limit
	r.mu.Lock()
	io.Copy(r.Log, b)
	r.mu.Unlock()
	r.wg.Done()
}

func (r *Runner) done() int32 {
	return atomic.AddInt32(&r.n, 1)
}

// Run runs jobs and waits for them to complete. It returns the first error
// encountered. Jobs not yet started when the context is cancelled are not
// run.
func (r *Runner) Run(ctx context.Context, jobs []Job) error {
	threads := r.Threads
	if threads < 1 {
		threads = 1
	}
	if r.Log == nil {
		r.Log = os.Stderr
	}
	r.limit = make(chan struct{}, threads)
	atomic.StoreInt32(&r.n, 0)

	var (
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() { firstErr = err })
	}

	t := len(jobs)
	for _, j := range jobs {
		if ctx.Err() != nil {
			fail(ctx.Err())
			break
		}
		r.acquire()
		go func(j Job) {
			b := &bytes.Buffer{}
			defer r.release(b)

			if j.Out != "" {
				if _, err := os.Stat(j.Out); err == nil {
					fmt.Fprintf(b, "file %q exists, skipping %d...\n", j.Out, r.done())
					return
				}
			}
			err := j.Run(ctx, b)
			if err != nil {
				fmt.Fprintf(b, "problem with %s: %v\n", j.Name, err)
				fail(fmt.Errorf("runner: %s: %w", j.Name, err))
				return
			}
			b.Reset()
			fmt.Fprintf(b, "done %s, %d of %d\n", j.Name, r.done(), t)
		}(j)
	}
	r.wg.Wait()
	return firstErr
}
