package items

import (
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-vision/argus-go/errors"
)

func setupFiles(t *testing.T) *billy.FS {
	t.Helper()

	fsys := billy.NewInMemoryFS()
	require.NoError(t, fsys.MkdirAll("/data/sub", 0o755))
	require.NoError(t, fsys.WriteFile("/data/one.png", []byte("1"), 0o644))
	require.NoError(t, fsys.WriteFile("/data/two.jpg", []byte("2"), 0o644))
	require.NoError(t, fsys.WriteFile("/data/sub/three.mp4", []byte("3"), 0o644))
	return fsys
}

func TestBuildSingleSlotItems(t *testing.T) {
	fsys := setupFiles(t)
	files := []string{"/data/one.png", "/data/two.jpg", "/data/sub/three.mp4"}

	built, err := Build(fsys, files, "/data", "/project", Flags{})
	require.NoError(t, err)
	require.Len(t, built, 3)

	assert.Equal(t, "one.png", built[0].Name)
	assert.Equal(t, "two.jpg", built[1].Name)
	assert.Equal(t, "three.mp4", built[2].Name)

	for _, item := range built {
		assert.Equal(t, "/project", item.Path)
		require.Len(t, item.Slots, 1)
		assert.Equal(t, item.Name, item.Slots[0].FileName)
		assert.False(t, item.Slots[0].AsFrames)
	}
	// Slot names are the zero-based batch index.
	assert.Equal(t, "0", built[0].Slots[0].SlotName)
	assert.Equal(t, "1", built[1].Slots[0].SlotName)
	assert.Equal(t, "2", built[2].Slots[0].SlotName)
}

func TestBuildPreserveFolders(t *testing.T) {
	fsys := setupFiles(t)
	files := []string{"/data/one.png", "/data/sub/three.mp4"}

	built, err := Build(fsys, files, "/data", "/project", Flags{PreserveFolders: true})
	require.NoError(t, err)
	require.Len(t, built, 2)

	assert.Equal(t, "/project", built[0].Path)
	assert.Equal(t, "/project/sub", built[1].Path)
}

func TestBuildMediaFlags(t *testing.T) {
	fsys := setupFiles(t)

	built, err := Build(fsys, []string{"/data/sub/three.mp4"}, "/data", "/", Flags{
		AsFrames:     true,
		FPS:          24,
		ExtractViews: true,
	})
	require.NoError(t, err)
	require.Len(t, built, 1)

	slot := built[0].Slots[0]
	assert.True(t, slot.AsFrames)
	assert.Equal(t, 24, slot.FPS)
	assert.True(t, slot.ExtractViews)
}

func TestBuildFailsFast(t *testing.T) {
	fsys := setupFiles(t)

	tests := []struct {
		name     string
		files    []string
		rootPath string
		imposed  string
	}{
		{
			name:     "one missing file fails the batch",
			files:    []string{"/data/one.png", "/data/absent.png"},
			rootPath: "/data",
			imposed:  "/",
		},
		{
			name:     "relative file fails the batch",
			files:    []string{"data/one.png"},
			rootPath: "/data",
			imposed:  "/",
		},
		{
			name:     "directory in the batch fails",
			files:    []string{"/data/sub"},
			rootPath: "/data",
			imposed:  "/",
		},
		{
			name:     "missing root fails",
			files:    []string{"/data/one.png"},
			rootPath: "/absent",
			imposed:  "/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			built, err := Build(fsys, tt.files, tt.rootPath, tt.imposed, Flags{})
			require.Error(t, err)
			assert.True(t, errors.IsPrecondition(err))
			assert.Nil(t, built)
		})
	}
}

func TestBuildInvalidImposedPath(t *testing.T) {
	fsys := setupFiles(t)

	built, err := Build(fsys, []string{"/data/one.png"}, "/data", "bad\x00path", Flags{})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidPath(err))
	assert.Nil(t, built)
}

func TestBuildEmptyBatch(t *testing.T) {
	fsys := setupFiles(t)

	built, err := Build(fsys, nil, "/data", "/", Flags{})
	require.NoError(t, err)
	assert.Empty(t, built)
}
