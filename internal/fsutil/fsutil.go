// Package fsutil holds small filesystem and size helpers shared by the
// scanner and cleaner.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// WalkSize sums regular-file sizes under path with Lstat semantics:
// symlinks are never followed, entries on a different filesystem than the
// root are skipped, and unreadable subtrees contribute zero. The returned
// flag marks such a partial measurement.
func WalkSize(path string) (int64, bool) {
	rootDev, devOK := DeviceOf(path)

	var total int64
	partial := false

	filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			partial = true
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != path && devOK {
				if dev, ok := DeviceOf(p); ok && dev != rootDev {
					return fs.SkipDir
				}
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			partial = true
			return nil
		}
		if info.Mode().IsRegular() {
			total += info.Size()
		}
		return nil
	})

	return total, partial
}

// DeviceOf returns the filesystem device ID for a path.
func DeviceOf(path string) (uint64, bool) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return 0, false
	}
	return uint64(st.Dev), true
}

// ParseToolSize parses docker-style humanized sizes ("1.5GB", "230MB",
// "0B").
func ParseToolSize(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	units := []struct {
		suffix string
		mult   float64
	}{
		{"TB", 1 << 40},
		{"GB", 1 << 30},
		{"MB", 1 << 20},
		{"kB", 1 << 10},
		{"B", 1},
	}
	for _, u := range units {
		if strings.HasSuffix(s, u.suffix) {
			val := strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return 0, false
			}
			return int64(f * u.mult), true
		}
	}
	return 0, false
}

// SumToolSizes adds up humanized sizes, one per line, each optionally
// followed by a parenthesized percentage as docker prints them.
func SumToolSizes(out string) int64 {
	var total int64
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if i := strings.IndexByte(line, '('); i >= 0 {
			line = line[:i]
		}
		if n, ok := ParseToolSize(line); ok {
			total += n
		}
	}
	return total
}
