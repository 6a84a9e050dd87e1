package library

import (
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/lavabyrd/ipodyssey/internal/errors"
	"github.com/lavabyrd/ipodyssey/pkg/itunesdb"
)

// DevicePath maps a track path as stored on the device, such as
// ":iPod_Control:Music:F00:ABCD.mp3", to a file under root, the device's
// mount point on this host.
func DevicePath(root, ipodPath string) (string, error) {
	if root == "" {
		return "", apperrors.Validation("device root is not set")
	}

	parts := strings.Split(strings.TrimPrefix(ipodPath, ":"), ":")
	if len(parts) == 1 && parts[0] == "" {
		return "", apperrors.Validation("track has no device path")
	}
	for _, p := range parts {
		if p == "" || p == "." || p == ".." || strings.ContainsAny(p, `/\`) {
			return "", apperrors.Validation("invalid device path " + ipodPath)
		}
	}

	return filepath.Join(append([]string{root}, parts...)...), nil
}

// missingFiles checks which tracks with a device path have no file under
// root. Tracks without a path are not checked.
func missingFiles(lib *itunesdb.Library, root string) (missing, checked int) {
	for _, t := range lib.Tracks {
		if t.Path == "" {
			continue
		}
		checked++
		p, err := DevicePath(root, t.Path)
		if err != nil {
			missing++
			continue
		}
		if _, err := os.Stat(p); err != nil {
			missing++
		}
	}
	return missing, checked
}
