// Package shell wires the tokenizer, redirection splitter, completion
// engine, builtin dispatcher, pipeline executor and history store into
// the interactive REPL: print "$ ", read a line, run it, repeat.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tanishpoddar/shellcraft/internal/builtin"
	"github.com/tanishpoddar/shellcraft/internal/completion"
	"github.com/tanishpoddar/shellcraft/internal/config"
	"github.com/tanishpoddar/shellcraft/internal/history"
	"github.com/tanishpoddar/shellcraft/internal/lexer"
	"github.com/tanishpoddar/shellcraft/internal/pathcache"
	"github.com/tanishpoddar/shellcraft/internal/pipeline"
	"github.com/tanishpoddar/shellcraft/internal/redirect"
	"github.com/tanishpoddar/shellcraft/internal/shlog"
	"github.com/tanishpoddar/shellcraft/internal/terminal"
)

// Shell owns every component and drives the REPL.
type Shell struct {
	cache    *pathcache.Cache
	builtins builtin.Registry
	log      *history.Log
	executor *pipeline.Executor
	term     *terminal.Terminal
	histFile string
}

// New builds a Shell using cfg for its tunable knobs. PATH and HISTFILE
// are captured once, from the environment at construction time; later
// changes to either do not affect a running Shell.
func New(cfg config.Config) (*Shell, error) {
	cache := pathcache.New(pathcache.SplitPath(os.Getenv("PATH")))
	cache.SetTTL(cfg.PathCacheTTL)

	builtins := builtin.New()
	log := history.New()

	s := &Shell{
		cache:    cache,
		builtins: builtins,
		log:      log,
		histFile: os.Getenv("HISTFILE"),
	}

	s.executor = pipeline.New(cache, builtins, s)

	if s.histFile != "" {
		if err := log.ReadFile(s.histFile); err != nil {
			shlog.Logger().WithError(err).Debug("could not load HISTFILE at startup")
		}
	}

	engine := completion.New(builtins.Names(), cache)
	term, err := terminal.New(s.histFile, cfg.HistoryLimit, engine)
	if err != nil {
		return nil, fmt.Errorf("shellcraft: initializing terminal: %w", err)
	}
	s.term = term

	return s, nil
}

// Resolve implements builtin.State.
func (s *Shell) Resolve(name string) (string, bool) {
	return s.cache.Resolve(name)
}

// BuiltinNames implements builtin.State.
func (s *Shell) BuiltinNames() []string {
	return s.builtins.Names()
}

// History implements builtin.State.
func (s *Shell) History() *history.Log {
	return s.log
}

// ReloadHistory implements builtin.State.
func (s *Shell) ReloadHistory(path string) error {
	return s.term.Reload(path)
}

// Run starts the REPL. It returns nil on a clean exit (EOF, an interrupt,
// or the exit builtin), and a non-nil error only for an unrecoverable
// terminal failure.
func (s *Shell) Run() error {
	defer s.term.Close()
	defer s.saveHistoryOnExit()

	for {
		line, err := s.term.ReadLine()
		if err != nil {
			if errors.Is(err, terminal.ErrInterrupt) {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		s.log.Push(line)

		if s.runLine(line) {
			return nil
		}
	}
}

// runLine tokenizes and executes one non-empty line. It reports whether
// the shell should exit after this line.
func (s *Shell) runLine(line string) (exit bool) {
	tokens := lexer.Tokenize(line)
	stageArgs := lexer.SplitPipeline(tokens)

	stages := make([]redirect.Stage, 0, len(stageArgs))
	for _, argv := range stageArgs {
		stages = append(stages, redirect.Split(argv))
	}

	if isSoloExit(stages) {
		return true
	}

	ctx := context.Background()
	boundary := pipeline.Boundary{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
	if err := s.executor.Run(ctx, stages, boundary); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return false
}

// isSoloExit reports whether stages is a single, unpiped "exit" command.
// exit is handled here, rather than by running it through the pipeline
// executor, so the REPL loop itself can stop; a pipelined "exit" (e.g.
// "exit | cat") still runs as an ordinary builtin and only terminates its
// own goroutine.
func isSoloExit(stages []redirect.Stage) bool {
	return len(stages) == 1 && len(stages[0].Args) > 0 && stages[0].Args[0] == "exit"
}

func (s *Shell) saveHistoryOnExit() {
	if s.histFile == "" {
		return
	}
	if err := s.log.WriteFile(s.histFile); err != nil {
		shlog.Logger().WithError(err).Warn("could not persist HISTFILE on exit")
	}
}
