// Package builtin implements the shell's built-in commands: echo, exit,
// type, pwd, cd and history. Builtins never spawn a process; they run
// directly against the I/O streams and working state the executor hands
// them.
package builtin

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/tanishpoddar/shellcraft/internal/history"
)

// ErrExit is returned by the exit builtin to signal the REPL should stop.
var ErrExit = errors.New("exit")

// IO is the set of streams a builtin writes to and reads from.
type IO struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
}

// State is the capability surface a builtin needs from the shell that
// hosts it: the command resolver (for type), the set of registered
// builtin names (for type and completion), and the command history (for
// the history builtin). Defining this as an interface, rather than
// depending on the shell package directly, keeps internal/shell free to
// import internal/builtin without a cycle.
type State interface {
	Resolve(name string) (path string, ok bool)
	BuiltinNames() []string
	History() *history.Log
	// ReloadHistory resynchronizes the line editor's own history view
	// with the file at path, for use by `history -r`.
	ReloadHistory(path string) error
}

// Func is the signature every builtin implements.
type Func func(args []string, io IO, s State) error

// Registry maps builtin names to their implementations.
type Registry map[string]Func

// New returns the registry of all standard builtins.
func New() Registry {
	return Registry{
		"echo":    echoBuiltin,
		"exit":    exitBuiltin,
		"type":    typeBuiltin,
		"pwd":     pwdBuiltin,
		"cd":      cdBuiltin,
		"history": historyBuiltin,
	}
}

// Names returns the registry's builtin names, for use as a State's
// BuiltinNames implementation.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	return names
}

func echoBuiltin(args []string, io IO, _ State) error {
	fmt.Fprintln(io.Stdout, strings.Join(args, " "))
	return nil
}

func exitBuiltin(_ []string, _ IO, _ State) error {
	return ErrExit
}

func typeBuiltin(args []string, io IO, s State) error {
	if len(args) == 0 {
		return nil
	}

	name := args[0]
	for _, b := range s.BuiltinNames() {
		if b == name {
			fmt.Fprintln(io.Stdout, name, "is a shell builtin")
			return nil
		}
	}

	if path, ok := s.Resolve(name); ok {
		fmt.Fprintln(io.Stdout, name, "is", path)
		return nil
	}

	fmt.Fprintln(io.Stdout, name+": not found")
	return nil
}

func pwdBuiltin(_ []string, io IO, _ State) error {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(io.Stderr, "error finding directory:", err)
		return nil
	}
	fmt.Fprintln(io.Stdout, dir)
	return nil
}

func cdBuiltin(args []string, io IO, _ State) error {
	if len(args) == 0 {
		return nil
	}
	target := args[0]

	if target == "~" {
		home := os.Getenv("HOME")
		if home == "" {
			fmt.Fprintln(io.Stderr, "cd: HOME not set")
			return nil
		}
		target = home
	} else if strings.HasPrefix(target, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			fmt.Fprintln(io.Stderr, "cd: HOME not set")
			return nil
		}
		target = filepath.Join(home, target[2:])
	}

	if err := os.Chdir(target); err != nil {
		switch {
		case os.IsNotExist(err):
			fmt.Fprintf(io.Stderr, "cd: %s: No such file or directory\n", target)
		case os.IsPermission(err):
			fmt.Fprintf(io.Stderr, "cd: %s: Permission denied\n", target)
		default:
			fmt.Fprintf(io.Stderr, "cd: %s: %v\n", target, err)
		}
	}
	return nil
}

func historyBuiltin(args []string, io IO, s State) error {
	log := s.History()

	if len(args) > 1 && args[0] == "-r" {
		if err := log.ReadFile(args[1]); err != nil {
			fmt.Fprintf(io.Stderr, "history -r: Cannot read %s: %v\n", args[1], err)
			return nil
		}
		if err := s.ReloadHistory(args[1]); err != nil {
			fmt.Fprintf(io.Stderr, "history -r: Cannot resync line editor: %v\n", err)
		}
		return nil
	}

	if len(args) > 1 && args[0] == "-w" {
		if err := log.WriteFile(args[1]); err != nil {
			fmt.Fprintf(io.Stderr, "history -w: Cannot write %s: %v\n", args[1], err)
		}
		return nil
	}

	if len(args) > 1 && args[0] == "-a" {
		if err := log.AppendNewFile(args[1]); err != nil {
			fmt.Fprintf(io.Stderr, "history -a: Cannot append %s: %v\n", args[1], err)
		}
		return nil
	}

	var n int
	if len(args) > 0 {
		if parsed, err := strconv.Atoi(args[0]); err == nil {
			n = parsed
		}
	}

	entries, start := log.LastN(n)
	idx := start
	for _, entry := range entries {
		fmt.Fprintf(io.Stdout, "    %d  %s\n", idx, entry)
		idx++
	}
	return nil
}
