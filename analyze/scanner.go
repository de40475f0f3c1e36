package analyze

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arjunmahishi/tsls/cst"
	"github.com/arjunmahishi/tsls/types"
)

// skippedDirs are never descended into. Hidden directories are skipped as
// well.
var skippedDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"testdata":     true,
	"coverage":     true,
}

// finder lists the source files of one language below a root.
type finder struct {
	language cst.Language
	maxBytes int64
}

// find returns the matching files under root sorted by display path. The
// display path is relative to root with forward slashes. A root that is a
// file yields that file alone.
func (f finder) find(root string) ([]types.FileJob, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	var jobs []types.FileJob
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != absRoot && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !cst.HandlesPath(f.language, path) || f.tooLarge(d) {
			return nil
		}

		display := filepath.Base(path)
		if path != absRoot {
			if rel, err := filepath.Rel(absRoot, path); err == nil {
				display = filepath.ToSlash(rel)
			}
		}
		jobs = append(jobs, types.FileJob{AbsPath: path, DisplayPath: display})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].DisplayPath < jobs[j].DisplayPath })
	return jobs, nil
}

// single returns path as a job regardless of extension or size.
func (f finder) single(path string) (types.FileJob, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return types.FileJob{}, fmt.Errorf("resolve path: %w", err)
	}
	return types.FileJob{AbsPath: absPath, DisplayPath: filepath.Base(absPath)}, nil
}

func (f finder) tooLarge(d fs.DirEntry) bool {
	if f.maxBytes <= 0 {
		return false
	}
	info, err := d.Info()
	if err != nil {
		// unreadable entries are skipped too
		return true
	}
	return info.Size() > f.maxBytes
}

func skipDir(name string) bool {
	return skippedDirs[name] || (strings.HasPrefix(name, ".") && name != ".")
}
