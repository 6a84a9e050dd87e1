package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lavabyrd/ipodyssey/internal/errors"
	"github.com/lavabyrd/ipodyssey/pkg/itunesdb"
)

func TestDevicePath(t *testing.T) {
	root := filepath.FromSlash("/media/ipod")

	got, err := DevicePath(root, ":iPod_Control:Music:F00:ABCD.mp3")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "iPod_Control", "Music", "F00", "ABCD.mp3"), got)

	got, err = DevicePath(root, "iPod_Control:Music:F01:EFGH.m4a")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "iPod_Control", "Music", "F01", "EFGH.m4a"), got)
}

func TestDevicePath_Invalid(t *testing.T) {
	tests := []struct {
		name string
		root string
		path string
	}{
		{"no root", "", ":iPod_Control:Music:F00:A.mp3"},
		{"empty path", "/media/ipod", ""},
		{"only colon", "/media/ipod", ":"},
		{"parent element", "/media/ipod", ":iPod_Control:..:..:etc:passwd"},
		{"empty element", "/media/ipod", ":iPod_Control::A.mp3"},
		{"slash in element", "/media/ipod", ":iPod_Control:Music/../x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DevicePath(tt.root, tt.path)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestMissingFiles(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "iPod_Control", "Music", "F00")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "HERE.mp3"), nil, 0o600))

	lib := &itunesdb.Library{Tracks: map[uint32]itunesdb.Track{
		1: {ID: 1, Path: ":iPod_Control:Music:F00:HERE.mp3"},
		2: {ID: 2, Path: ":iPod_Control:Music:F00:GONE.mp3"},
		3: {ID: 3},
	}}

	missing, checked := missingFiles(lib, root)
	assert.Equal(t, 1, missing)
	assert.Equal(t, 2, checked)
}
