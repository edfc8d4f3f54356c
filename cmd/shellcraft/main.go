// Command shellcraft is an interactive POSIX-flavored shell.
//
// It provides a REPL for executing built-in and external commands, with
// quoting, I/O redirection, pipelines, PATH-based command lookup, tab
// completion and persistent history.
//
// Built-in commands:
//   - echo:    print arguments to stdout
//   - exit:    terminate the shell
//   - type:    report whether a name is a builtin or an external command
//   - pwd:     print the working directory
//   - cd:      change directory, with ~ expansion
//   - history: list, load, save or append command history
//
// The shell reads PATH for command resolution, HOME for ~ expansion, and
// HISTFILE for persistent history. An optional shellcraft.yaml (searched in
// the working directory, $HOME and /etc/shellcraft) can override the PATH
// cache TTL and history limit; see internal/config.
package main

import (
	"fmt"
	"os"

	"github.com/tanishpoddar/shellcraft/internal/config"
	"github.com/tanishpoddar/shellcraft/internal/shell"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "shellcraft: loading config:", err)
		os.Exit(1)
	}

	s, err := shell.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "shellcraft:", err)
		os.Exit(1)
	}

	if err := s.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "shellcraft:", err)
		os.Exit(1)
	}
}
