package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	SomeMap   map[string]string
	SomeArray []string
	SomeField int
}

func TestWriteReadJson(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "testconfig.json")

	written := &testConfig{
		SomeMap:   map[string]string{"key1": "value1", "key2": "value2"},
		SomeArray: []string{"value1", "value2"},
		SomeField: 99,
	}
	require.NoError(t, WriteJson(path, written))

	read := &testConfig{}
	require.NoError(t, ReadJson(path, read))
	require.Equal(t, written, read)
}

func TestWriteJson_OverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	require.NoError(t, WriteJson(path, &testConfig{SomeField: 1}))
	require.NoError(t, WriteJson(path, &testConfig{SomeField: 2}))

	read := &testConfig{}
	require.NoError(t, ReadJson(path, read))
	require.Equal(t, 2, read.SomeField)
}

func TestReadJson_MissingFile(t *testing.T) {
	err := ReadJson(filepath.Join(t.TempDir(), "absent.json"), &testConfig{})
	require.True(t, os.IsNotExist(err))
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.db")
	dst := filepath.Join(dir, "dst.db")

	require.NoError(t, os.WriteFile(src, []byte("payload"), 0640))
	require.NoError(t, CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))

	srcInfo, err := os.Stat(src)
	require.NoError(t, err)
	dstInfo, err := os.Stat(dst)
	require.NoError(t, err)
	require.Equal(t, srcInfo.Mode(), dstInfo.Mode())
}
