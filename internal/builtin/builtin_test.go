package builtin

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanishpoddar/shellcraft/internal/history"
)

type fakeState struct {
	resolved     map[string]string
	builtins     []string
	log          *history.Log
	reloadedPath string
	reloadErr    error
}

func newFakeState() *fakeState {
	return &fakeState{
		resolved: map[string]string{},
		builtins: New().Names(),
		log:      history.New(),
	}
}

func (f *fakeState) Resolve(name string) (string, bool) {
	path, ok := f.resolved[name]
	return path, ok
}

func (f *fakeState) BuiltinNames() []string { return f.builtins }
func (f *fakeState) History() *history.Log  { return f.log }

func (f *fakeState) ReloadHistory(path string) error {
	f.reloadedPath = path
	return f.reloadErr
}

func TestEchoJoinsArgsWithSpaces(t *testing.T) {
	var out bytes.Buffer
	r, w, err := os.Pipe()
	require.NoError(t, err)
	go func() {
		io2 := IO{Stdout: w}
		echoBuiltin([]string{"hello", "world"}, io2, nil)
		w.Close()
	}()
	_, err = out.ReadFrom(r)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", out.String())
}

func TestExitReturnsErrExit(t *testing.T) {
	err := exitBuiltin(nil, IO{}, nil)
	assert.ErrorIs(t, err, ErrExit)
}

func TestTypeReportsBuiltin(t *testing.T) {
	var out bytes.Buffer
	r, w, err := os.Pipe()
	require.NoError(t, err)
	s := newFakeState()
	go func() {
		typeBuiltin([]string{"echo"}, IO{Stdout: w}, s)
		w.Close()
	}()
	out.ReadFrom(r)
	assert.Equal(t, "echo is a shell builtin\n", out.String())
}

func TestTypeReportsExternalPath(t *testing.T) {
	var out bytes.Buffer
	r, w, err := os.Pipe()
	require.NoError(t, err)
	s := newFakeState()
	s.resolved["ls"] = "/bin/ls"
	go func() {
		typeBuiltin([]string{"ls"}, IO{Stdout: w}, s)
		w.Close()
	}()
	out.ReadFrom(r)
	assert.Equal(t, "ls is /bin/ls\n", out.String())
}

func TestTypeReportsNotFound(t *testing.T) {
	var out bytes.Buffer
	r, w, err := os.Pipe()
	require.NoError(t, err)
	s := newFakeState()
	go func() {
		typeBuiltin([]string{"ghost"}, IO{Stdout: w}, s)
		w.Close()
	}()
	out.ReadFrom(r)
	assert.Equal(t, "ghost: not found\n", out.String())
}

func TestPwdPrintsWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	var out bytes.Buffer
	r, w, err := os.Pipe()
	require.NoError(t, err)
	go func() {
		pwdBuiltin(nil, IO{Stdout: w}, nil)
		w.Close()
	}()
	out.ReadFrom(r)

	resolvedDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, resolvedDir+"\n", out.String())
}

func TestTypeNoArgsIsSilentNoOp(t *testing.T) {
	var out bytes.Buffer
	r, w, err := os.Pipe()
	require.NoError(t, err)
	s := newFakeState()
	go func() {
		typeBuiltin(nil, IO{Stdout: w}, s)
		w.Close()
	}()
	out.ReadFrom(r)
	assert.Empty(t, out.String())
}

func TestCdNoArgsIsNoOp(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", t.TempDir())
	defer os.Setenv("HOME", oldHome)

	require.NoError(t, cdBuiltin(nil, IO{}, nil))

	got, err := os.Getwd()
	require.NoError(t, err)
	resolvedDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, resolvedDir, got, "cd with no args must not change directory")
}

func TestCdChangesDirectory(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(cwd)

	require.NoError(t, cdBuiltin([]string{dir}, IO{}, nil))
	got, err := os.Getwd()
	require.NoError(t, err)
	resolvedDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, resolvedDir, got)
}

func TestCdNoSuchDirectoryWritesError(t *testing.T) {
	var errBuf bytes.Buffer
	r, w, err := os.Pipe()
	require.NoError(t, err)
	go func() {
		cdBuiltin([]string{filepath.Join(t.TempDir(), "nope")}, IO{Stderr: w}, nil)
		w.Close()
	}()
	errBuf.ReadFrom(r)
	assert.Contains(t, errBuf.String(), "No such file or directory")
}

func TestCdTildeExpandsHome(t *testing.T) {
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", home)
	defer os.Setenv("HOME", oldHome)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(cwd)

	require.NoError(t, cdBuiltin([]string{"~"}, IO{}, nil))
	got, err := os.Getwd()
	require.NoError(t, err)
	resolvedHome, err := filepath.EvalSymlinks(home)
	require.NoError(t, err)
	assert.Equal(t, resolvedHome, got)
}

func TestHistoryPrintsAllEntriesWithIndex(t *testing.T) {
	s := newFakeState()
	s.log.Push("echo a")
	s.log.Push("echo b")

	var out bytes.Buffer
	r, w, err := os.Pipe()
	require.NoError(t, err)
	go func() {
		historyBuiltin(nil, IO{Stdout: w}, s)
		w.Close()
	}()
	out.ReadFrom(r)
	assert.Equal(t, "    1  echo a\n    2  echo b\n", out.String())
}

func TestHistoryWithCountLimitsToLastN(t *testing.T) {
	s := newFakeState()
	s.log.Push("a")
	s.log.Push("b")
	s.log.Push("c")

	var out bytes.Buffer
	r, w, err := os.Pipe()
	require.NoError(t, err)
	go func() {
		historyBuiltin([]string{"1"}, IO{Stdout: w}, s)
		w.Close()
	}()
	out.ReadFrom(r)
	assert.Equal(t, "    3  c\n", out.String())
}

func TestHistoryDashWReadsAndWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hist")

	s := newFakeState()
	s.log.Push("echo persisted")
	require.NoError(t, historyBuiltin([]string{"-w", path}, IO{}, s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "echo persisted\n", string(data))

	s2 := newFakeState()
	require.NoError(t, historyBuiltin([]string{"-r", path}, IO{}, s2))
	assert.Equal(t, []string{"echo persisted"}, s2.log.Entries())
	assert.Equal(t, path, s2.reloadedPath, "history -r should resync the line editor's view")
}

func TestHistoryDashAAppendsOnlyNewEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hist")

	s := newFakeState()
	s.log.Push("first")
	require.NoError(t, historyBuiltin([]string{"-a", path}, IO{}, s))

	s.log.Push("second")
	require.NoError(t, historyBuiltin([]string{"-a", path}, IO{}, s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}
