// Package terminal wraps chzyer/readline as the shell's line editor: it
// renders the "$ " prompt, reads a line at a time, and feeds the
// completion engine's candidate list to readline's AutoCompleter.
package terminal

import (
	"github.com/chzyer/readline"

	"github.com/tanishpoddar/shellcraft/internal/completion"
)

// Prompt is the shell's fixed prompt string.
const Prompt = "$ "

// ErrInterrupt is returned by Readline when the user presses Ctrl-C on a
// non-empty line; the shell then saves its history and exits.
var ErrInterrupt = readline.ErrInterrupt

// Terminal is a readline-backed line editor.
type Terminal struct {
	cfg      *readline.Config
	instance *readline.Instance
}

// New builds a Terminal. historyFile, if non-empty, is passed straight to
// readline so Up/Down recall persists across sessions independently of
// the shell's own history log (which backs the `history` builtin).
// historyLimit caps how many lines readline keeps for that recall.
func New(historyFile string, historyLimit int, engine *completion.Engine) (*Terminal, error) {
	cfg := &readline.Config{
		Prompt:          Prompt,
		HistoryFile:     historyFile,
		HistoryLimit:    historyLimit,
		AutoComplete:    &completerAdapter{engine: engine},
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	}

	instance, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}
	return &Terminal{cfg: cfg, instance: instance}, nil
}

// Reload resynchronizes the line editor's own Up/Down history with path,
// for use after the `history -r` builtin loads a file into the shell's
// history log. readline has no incremental "add these lines" call in its
// confirmed API surface, so this closes and reopens the instance against
// path as its HistoryFile, which makes readline re-read it from scratch.
func (t *Terminal) Reload(path string) error {
	cfg := *t.cfg
	cfg.HistoryFile = path

	instance, err := readline.NewEx(&cfg)
	if err != nil {
		return err
	}

	t.instance.Close()
	t.cfg = &cfg
	t.instance = instance
	return nil
}

// ReadLine reads one line of input, blocking until the user presses
// Enter, sends EOF (io.EOF), or interrupts an in-progress line
// (ErrInterrupt).
func (t *Terminal) ReadLine() (string, error) {
	return t.instance.Readline()
}

// Close releases the underlying terminal.
func (t *Terminal) Close() error {
	return t.instance.Close()
}

// completerAdapter bridges completion.Engine to readline's AutoCompleter
// interface, which wants every candidate for the current word in one
// call; it uses Engine.Candidates rather than stepping through the
// (prefix, state) protocol.
type completerAdapter struct {
	engine *completion.Engine
}

// Do implements readline.AutoCompleter. It finds the start of the word
// under the cursor (readline handles multi-word lines itself by always
// calling with the full line; we only complete the trailing word, since
// the shell does not support mid-line completion of earlier arguments)
// and returns every candidate for that word as a suffix to splice in.
func (c *completerAdapter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	if c.engine == nil {
		return nil, 0
	}

	start := wordStart(line, pos)
	prefix := string(line[start:pos])

	matches := c.engine.Candidates(prefix)
	if len(matches) == 0 {
		return nil, 0
	}

	// A single match commits the completion, so it gets a trailing space
	// the way a shell completion normally does; multiple matches are left
	// bare since the line isn't finished yet.
	suffix := func(m string) string {
		if len(matches) == 1 {
			return m[len(prefix):] + " "
		}
		return m[len(prefix):]
	}

	newLine = make([][]rune, 0, len(matches))
	for _, m := range matches {
		if len(m) < len(prefix) {
			continue
		}
		newLine = append(newLine, []rune(suffix(m)))
	}
	return newLine, len(prefix)
}

// wordStart finds the start of the whitespace-delimited word ending at
// pos in line.
func wordStart(line []rune, pos int) int {
	i := pos
	for i > 0 && line[i-1] != ' ' && line[i-1] != '\t' {
		i--
	}
	return i
}
