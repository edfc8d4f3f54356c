// Package redirect separates a pipeline stage's token vector into a clean
// argv and its stdout/stderr redirection specs, and applies those specs by
// opening the target files.
package redirect

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Stream identifies which standard stream a Spec redirects.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

// Spec is a single stream's redirection target.
type Spec struct {
	Path   string
	Append bool
}

// Stage is a pipeline stage's argv with its (at most one each) stdout and
// stderr redirection specs. Later redirections on the same stream
// overwrite earlier ones, per spec.
type Stage struct {
	Args   []string
	Stdout *Spec
	Stderr *Spec
}

type operator struct {
	prefix string
	stream Stream
	append bool
}

// ops is ordered longest-prefix-first so that attached-token matching (e.g.
// "1>>file") never mistakes a long operator for a short one ("1>" matching
// inside "1>>file" before "1>>" gets a chance).
var ops = []operator{
	{"1>>", Stdout, true},
	{"2>>", Stderr, true},
	{">>", Stdout, true},
	{"1>", Stdout, false},
	{"2>", Stderr, false},
	{">", Stdout, false},
}

// Split walks one stage's tokens and extracts redirection operators,
// recognized either as a standalone token (operator, then a following
// token as the target) or as a token with the path attached directly
// after the operator prefix (e.g. "2>>errors.log"). A standalone operator
// with no following token is silently dropped, per spec.
func Split(tokens []string) Stage {
	var stage Stage

	i := 0
	for i < len(tokens) {
		tok := tokens[i]

		op, attachedPath, matched := matchOperator(tok)
		if !matched {
			stage.Args = append(stage.Args, tok)
			i++
			continue
		}

		var path string
		if attachedPath != "" {
			path = attachedPath
			i++
		} else {
			if i+1 >= len(tokens) {
				// No target follows: discard the operator entirely.
				i++
				continue
			}
			path = tokens[i+1]
			i += 2
		}

		spec := &Spec{Path: path, Append: op.append}
		switch op.stream {
		case Stdout:
			stage.Stdout = spec
		case Stderr:
			stage.Stderr = spec
		}
	}

	return stage
}

// matchOperator reports whether tok is (or begins with) a redirection
// operator. attachedPath is non-empty only for the attached-token shape.
func matchOperator(tok string) (op operator, attachedPath string, matched bool) {
	for _, o := range ops {
		if tok == o.prefix {
			return o, "", true
		}
		if strings.HasPrefix(tok, o.prefix) && len(tok) > len(o.prefix) {
			return o, tok[len(o.prefix):], true
		}
	}
	return operator{}, "", false
}

// FileOpener abstracts the filesystem so redirection application can be
// tested without touching real files.
type FileOpener interface {
	OpenWrite(name string, flag int, perm os.FileMode) (*os.File, error)
}

// DefaultFileOpener opens real files via os.OpenFile.
type DefaultFileOpener struct{}

func (DefaultFileOpener) OpenWrite(name string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(name, flag, perm)
}

// Open opens the files named by a stage's stdout/stderr specs, returning
// the opened *os.File (nil if the stage has no spec for that stream) and a
// cleanup function that closes whichever files were opened. On error,
// any file already opened for this stage is closed before returning.
func Open(opener FileOpener, stage Stage) (stdout, stderr *os.File, cleanup func(), err error) {
	var opened []*os.File
	cleanup = func() {
		for _, f := range opened {
			f.Close()
		}
	}

	open := func(spec *Spec) (*os.File, error) {
		if spec == nil {
			return nil, nil
		}
		flag := os.O_CREATE | os.O_WRONLY
		if spec.Append {
			flag |= os.O_APPEND
		} else {
			flag |= os.O_TRUNC
		}
		f, err := opener.OpenWrite(spec.Path, flag, 0644)
		if err != nil {
			return nil, errors.Wrapf(err, "Error preparing %s", spec.Path)
		}
		opened = append(opened, f)
		return f, nil
	}

	stdout, err = open(stage.Stdout)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	stderr, err = open(stage.Stderr)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	return stdout, stderr, cleanup, nil
}
