package terminal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanishpoddar/shellcraft/internal/completion"
	"github.com/tanishpoddar/shellcraft/internal/pathcache"
)

func TestWordStartFindsTrailingWordBoundary(t *testing.T) {
	line := []rune("echo hel")
	assert.Equal(t, 5, wordStart(line, len(line)))
}

func TestWordStartAtLineStart(t *testing.T) {
	line := []rune("echo")
	assert.Equal(t, 0, wordStart(line, len(line)))
}

func TestWordStartMidLine(t *testing.T) {
	line := []rune("ls -la /tmp")
	assert.Equal(t, 7, wordStart(line, len(line)))
}

func TestCompleterAdapterDoReturnsSuffixesAndPrefixLength(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gringotts"), []byte("#!/bin/sh\n"), 0755))

	cache := pathcache.New([]string{dir})
	engine := completion.New(nil, cache)
	adapter := &completerAdapter{engine: engine}

	line := []rune("gri")
	newLine, length := adapter.Do(line, len(line))

	require.Len(t, newLine, 1)
	assert.Equal(t, "ngotts ", string(newLine[0]), "a single match commits with a trailing space")
	assert.Equal(t, 3, length)
}

func TestCompleterAdapterDoWithNoMatchesReturnsEmpty(t *testing.T) {
	engine := completion.New(nil, pathcache.New([]string{t.TempDir()}))
	adapter := &completerAdapter{engine: engine}

	newLine, length := adapter.Do([]rune("zzz"), 3)
	assert.Nil(t, newLine)
	assert.Equal(t, 0, length)
}

func TestCompleterAdapterDoOnlyCompletesTrailingWord(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alpha"), []byte("#!/bin/sh\n"), 0755))

	cache := pathcache.New([]string{dir})
	engine := completion.New(nil, cache)
	adapter := &completerAdapter{engine: engine}

	line := []rune("echo al")
	newLine, length := adapter.Do(line, len(line))
	require.Len(t, newLine, 1)
	assert.Equal(t, "pha ", string(newLine[0]), "a single match commits with a trailing space")
	assert.Equal(t, 2, length)
}

func TestCompleterAdapterDoWithNilEngineReturnsEmpty(t *testing.T) {
	adapter := &completerAdapter{}
	newLine, length := adapter.Do([]rune("anything"), 8)
	assert.Nil(t, newLine)
	assert.Equal(t, 0, length)
}
