package snapshot_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RowanDark/strintern"
	"github.com/RowanDark/strintern/snapshot"
)

func sample() *strintern.StringInterner[uint32] {
	return strintern.FromStrings[uint32]([]string{"foo", "bar", "baz", "foo", "rofl", "", "mao"})
}

func TestOptionsForPath(t *testing.T) {
	t.Parallel()

	cases := map[string]snapshot.Options{
		"table.json":         {Format: snapshot.FormatJSON},
		"dir/table.YAML":     {Format: snapshot.FormatYAML},
		"table.yml.lz4":      {Format: snapshot.FormatYAML, Compress: true},
		"/tmp/t.msgpack.lz4": {Format: snapshot.FormatMsgpack, Compress: true},
		"relative/x.mp":      {Format: snapshot.FormatMsgpack},
	}
	for path, want := range cases {
		got, err := snapshot.OptionsForPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := snapshot.OptionsForPath("table.csv")
	require.ErrorIs(t, err, snapshot.ErrUnknownFormat)
	_, err = snapshot.OptionsForPath("table")
	require.ErrorIs(t, err, snapshot.ErrUnknownFormat)
}

func TestEncodeDecodeAllFormats(t *testing.T) {
	t.Parallel()

	in := sample()
	for _, format := range []snapshot.Format{snapshot.FormatJSON, snapshot.FormatYAML, snapshot.FormatMsgpack} {
		for _, compress := range []bool{false, true} {
			var buf bytes.Buffer
			require.NoError(t, snapshot.Encode(&buf, in, snapshot.Options{Format: format, Compress: compress}))

			out, err := snapshot.Decode[uint32](&buf, format)
			require.NoError(t, err, "%s compress=%v", format, compress)
			assert.True(t, in.Equal(out), "%s compress=%v", format, compress)
		}
	}
}

func TestDecodeUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := snapshot.Decode[uint32](bytes.NewReader([]byte("[]")), "toml")
	require.ErrorIs(t, err, snapshot.ErrUnknownFormat)

	err = snapshot.Encode(&bytes.Buffer{}, sample(), snapshot.Options{Format: "toml"})
	require.ErrorIs(t, err, snapshot.ErrUnknownFormat)
}

func TestDecodeDuplicateEntries(t *testing.T) {
	t.Parallel()

	_, err := snapshot.Decode[uint32](bytes.NewReader([]byte(`["a","a"]`)), snapshot.FormatJSON)
	require.ErrorIs(t, err, strintern.ErrDuplicateEntry)
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := sample()

	for _, name := range []string{"nested/table.json", "table.yaml.lz4", "table.msgpack"} {
		path := filepath.Join(dir, name)
		require.NoError(t, snapshot.Save(path, in))

		out, err := snapshot.Load[uint32](path)
		require.NoError(t, err)
		assert.True(t, in.Equal(out), name)

		sym, ok := out.Get("rofl")
		require.True(t, ok)
		assert.Equal(t, uint32(3), sym)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp")
	}

	_, err = snapshot.Load[uint32](filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
