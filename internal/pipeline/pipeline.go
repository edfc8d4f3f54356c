// Package pipeline wires a line's stages together and runs them, whether
// that's a single command or several joined by "|". Each junction between
// stages is a real OS pipe; external stages are plain child processes
// bound to the pipe's file descriptors, and builtins run in a goroutine
// holding the same descriptors directly, since Go has no portable fork.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/tanishpoddar/shellcraft/internal/builtin"
	"github.com/tanishpoddar/shellcraft/internal/redirect"
)

// Resolver locates an external command's executable path.
type Resolver interface {
	Resolve(name string) (path string, ok bool)
}

// Boundary is the outer I/O a pipeline is run against: the stdin feeding
// its first stage and the stdout/stderr its last stage writes to absent
// any redirection. Every stage's stderr defaults to Boundary.Stderr
// unless redirected.
type Boundary struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
}

// Executor runs pipelines of one or more stages.
type Executor struct {
	Resolver Resolver
	Builtins builtin.Registry
	State    builtin.State
}

// New builds an Executor.
func New(resolver Resolver, builtins builtin.Registry, state builtin.State) *Executor {
	return &Executor{Resolver: resolver, Builtins: builtins, State: state}
}

// Run executes stages as a single pipeline, in five phases: validate,
// resolve externals, open redirections, launch and plumb, then reap.
// Resolution failures and redirection-file open failures are written to
// b.Stderr and abort the whole pipeline before anything runs, matching
// the shell this was distilled from. A stage that fails to start is
// reported to b.Stderr and skipped while the other stages still run, and
// once stages are running, a single stage's runtime failure does not
// stop its neighbors.
//
// Builtins executed as part of a multi-stage pipeline run in-process
// (via goroutine, not a forked child), so unlike the original this was
// distilled from, a pipelined "cd" or similar state-mutating builtin
// does affect the shell afterward. See DESIGN.md for why that fork
// isolation quirk isn't preserved.
func (e *Executor) Run(ctx context.Context, stages []redirect.Stage, b Boundary) error {
	if len(stages) == 0 {
		return nil
	}
	for _, s := range stages {
		if len(s.Args) == 0 {
			return nil
		}
	}

	paths := make([]string, len(stages))
	for i, s := range stages {
		name := s.Args[0]
		if _, isBuiltin := e.Builtins[name]; isBuiltin {
			continue
		}
		path, ok := e.Resolver.Resolve(name)
		if !ok {
			fmt.Fprintf(b.Stderr, "%s: command not found\n", name)
			return nil
		}
		paths[i] = path
	}

	var cleanups []func()
	defer func() {
		for _, c := range cleanups {
			c()
		}
	}()

	stdoutFiles := make([]*os.File, len(stages))
	stderrFiles := make([]*os.File, len(stages))
	for i, s := range stages {
		out, errF, cleanup, err := redirect.Open(redirect.DefaultFileOpener{}, s)
		if err != nil {
			fmt.Fprintln(b.Stderr, err)
			return nil
		}
		cleanups = append(cleanups, cleanup)
		stdoutFiles[i] = out
		stderrFiles[i] = errF
	}

	n := len(stages)
	readEnds := make([]*os.File, n)  // readEnds[i]: stdin for stage i, i > 0
	writeEnds := make([]*os.File, n) // writeEnds[i]: stdout for stage i, i < n-1

	for i := 0; i < n-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			fmt.Fprintln(b.Stderr, err)
			return nil
		}
		writeEnds[i] = w
		readEnds[i+1] = r
	}

	var wg sync.WaitGroup
	for i, s := range stages {
		stdin := b.Stdin
		if readEnds[i] != nil {
			stdin = readEnds[i]
		}

		stdout := b.Stdout
		switch {
		case stdoutFiles[i] != nil:
			stdout = stdoutFiles[i]
		case writeEnds[i] != nil:
			stdout = writeEnds[i]
		}

		stderr := b.Stderr
		if stderrFiles[i] != nil {
			stderr = stderrFiles[i]
		}

		closeOwnedEnds := func(i int) {
			if readEnds[i] != nil {
				readEnds[i].Close()
			}
			if writeEnds[i] != nil {
				writeEnds[i].Close()
			}
		}

		name := s.Args[0]
		args := s.Args[1:]

		if fn, isBuiltin := e.Builtins[name]; isBuiltin {
			wg.Add(1)
			go func(i int, fn builtin.Func, args []string, stdin, stdout, stderr *os.File) {
				defer wg.Done()
				fn(args, builtin.IO{Stdin: stdin, Stdout: stdout, Stderr: stderr}, e.State)
				closeOwnedEnds(i)
			}(i, fn, args, stdin, stdout, stderr)
			continue
		}

		cmd := exec.CommandContext(ctx, paths[i], args...)
		cmd.Args = append([]string{name}, args...)
		cmd.Stdin = stdin
		cmd.Stdout = stdout
		cmd.Stderr = stderr

		if err := cmd.Start(); err != nil {
			fmt.Fprintf(b.Stderr, "Error starting command %s: %v\n", name, err)
			closeOwnedEnds(i)
			continue
		}
		closeOwnedEnds(i)

		wg.Add(1)
		go func(cmd *exec.Cmd) {
			defer wg.Done()
			cmd.Wait()
		}(cmd)
	}

	wg.Wait()
	return nil
}
