package lse

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *NbtStore {
	t.Helper()
	root := t.TempDir()
	return NewNbtStore(filepath.Join(root, "structures"), filepath.Join(root, "backups"), 0, logrus.NewEntry(logrus.New()))
}

func TestResolveRejectsPathTraversal(t *testing.T) {
	_, err := Resolve("../../etc/passwd")
	require.Error(t, err)
	var lerr *Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, KindPathTraversal, lerr.Kind)
}

func TestResolveStripsNamespaceAndAddsExtension(t *testing.T) {
	resolved, err := Resolve("modpack:castle/tower")
	require.NoError(t, err)
	assert.Equal(t, "castle/tower.nbt", resolved)
}

func TestNbtStoreWriteRead(t *testing.T) {
	store := newTestStore(t)
	sf := sampleStructureFile()

	require.NoError(t, store.Write("castle", sf, true))
	got, err := store.Read("castle")
	require.NoError(t, err)
	assert.Equal(t, sf.DataVersion, got.DataVersion)
	assert.Equal(t, sf.SizeX, got.SizeX)
}

func TestNbtStoreReadMissingIsNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Read("nope")
	require.Error(t, err)
	var lerr *Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, KindNotFound, lerr.Kind)
}

func TestNbtStoreWriteRotatesBackups(t *testing.T) {
	store := newTestStore(t)
	sf := sampleStructureFile()

	require.NoError(t, store.Write("castle", sf, true))
	for i := 0; i < BackupHistory+2; i++ {
		require.NoError(t, store.Write("castle", sf, false))
	}
	backups, err := store.ListBackups("castle")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(backups), BackupHistory)
}

func TestNbtStoreRemove(t *testing.T) {
	store := newTestStore(t)
	sf := sampleStructureFile()
	require.NoError(t, store.Write("castle", sf, true))

	removed, err := store.Remove("castle")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Remove("castle")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestNbtStoreList(t *testing.T) {
	store := newTestStore(t)
	sf := sampleStructureFile()
	require.NoError(t, store.Write("a/one", sf, true))
	require.NoError(t, store.Write("a/two", sf, true))
	require.NoError(t, store.Write("b/three", sf, true))

	names, err := store.List("a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/one", "a/two"}, names)
}

func TestNbtStoreRestore(t *testing.T) {
	store := newTestStore(t)
	original := sampleStructureFile()
	original.DataVersion = 1
	require.NoError(t, store.Write("castle", original, true))

	modified := original
	modified.DataVersion = 2
	require.NoError(t, store.Write("castle", modified, false))

	require.NoError(t, store.Restore("castle", "", ""))
	restored, err := store.Read("castle")
	require.NoError(t, err)
	assert.Equal(t, int32(1), restored.DataVersion)
}
