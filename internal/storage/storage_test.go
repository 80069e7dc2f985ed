package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testRecord struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestLoadAbsentDocument(t *testing.T) {
	st, err := NewJSONStore(t.TempDir())
	require.NoError(t, err)

	var got []testRecord
	require.NoError(t, st.Load(context.Background(), "missing.json", &got))
	require.Empty(t, got)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	st, err := NewJSONStore(t.TempDir())
	require.NoError(t, err)

	want := []testRecord{{ID: 1, Name: "first"}, {ID: 2, Name: "second"}}
	require.NoError(t, st.Save(context.Background(), "records.json", want))

	var got []testRecord
	require.NoError(t, st.Load(context.Background(), "records.json", &got))
	require.Equal(t, want, got)
}

func TestSaveOverwritesWholeDocument(t *testing.T) {
	st, err := NewJSONStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, st.Save(context.Background(), "records.json", []testRecord{{ID: 1, Name: "old"}}))
	require.NoError(t, st.Save(context.Background(), "records.json", []testRecord{{ID: 2, Name: "new"}}))

	var got []testRecord
	require.NoError(t, st.Load(context.Background(), "records.json", &got))
	require.Len(t, got, 1)
	require.Equal(t, int64(2), got[0].ID)
}

func TestLoadMalformedDocument(t *testing.T) {
	dir := t.TempDir()
	st, err := NewJSONStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))

	var got []testRecord
	err = st.Load(context.Background(), "broken.json", &got)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestNewJSONStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	_, err := NewJSONStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
