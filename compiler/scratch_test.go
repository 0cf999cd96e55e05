package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScratchCreatesFixedNamedDir(t *testing.T) {
	dir := t.TempDir()
	s, err := NewScratch(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".complua-scratch"), s.Dir)

	info, err := os.Stat(s.Dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestScratchArtifactPaths(t *testing.T) {
	s := &Scratch{Dir: "/tmp/.complua-scratch"}
	assert.Equal(t, "/tmp/.complua-scratch/.eval", s.EvalFile())
	assert.Equal(t, "/tmp/.complua-scratch/.eval.temp", s.EvalByteDump())
	assert.Equal(t, "/tmp/.complua-scratch/.eval.temp.expr", s.EvalSerialized())
	assert.Equal(t, "/tmp/.complua-scratch/.load", s.LoadFile())
}

func TestScratchCloseRemovesDir(t *testing.T) {
	dir := t.TempDir()
	s, err := NewScratch(dir)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	_, err = os.Stat(s.Dir)
	assert.True(t, os.IsNotExist(err))
}

func TestNewScratchIsIdempotentAcrossRepeatedCompiles(t *testing.T) {
	dir := t.TempDir()
	s1, err := NewScratch(dir)
	require.NoError(t, err)
	require.NoError(t, s1.Close())
	s2, err := NewScratch(dir)
	require.NoError(t, err)
	assert.Equal(t, s1.Dir, s2.Dir)
}
