// Package paths maps work items to their on-disk locations under the
// output root. Every stage goes through the resolver so the layout is
// defined in exactly one place.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"aircheck/internal/content"
)

// Resolver computes file locations for scripts, audio, verdicts, and
// run state beneath a single output root. All methods are pure; nothing
// touches the filesystem except the Versions helpers.
type Resolver struct {
	root string
}

func NewResolver(root string) *Resolver {
	return &Resolver{root: filepath.Clean(root)}
}

func (r *Resolver) Root() string {
	return r.root
}

// ScriptDir returns the directory holding every script version for one item.
func (r *Resolver) ScriptDir(item content.WorkItem) string {
	return filepath.Join(r.root, "scripts", string(item.Type), item.DJ, item.Folder())
}

// ScriptPath returns the path for one script version, starting at 0.
func (r *Resolver) ScriptPath(item content.WorkItem, version int) string {
	return filepath.Join(r.ScriptDir(item), fmt.Sprintf("%s_%d.txt", item.DJ, version))
}

// AudioDir returns the directory holding rendered audio for one item.
func (r *Resolver) AudioDir(item content.WorkItem) string {
	return filepath.Join(r.root, "audio", string(item.Type), item.DJ, item.Folder())
}

// AudioPath returns the path for one rendered audio version.
func (r *Resolver) AudioPath(item content.WorkItem, version int) string {
	return filepath.Join(r.AudioDir(item), fmt.Sprintf("%s_%d.wav", item.DJ, version))
}

// AuditPath returns the verdict file for one script version. Verdicts
// are filed under passed/ or failed/ and are never overwritten, so the
// full audit history of an item stays on disk.
func (r *Resolver) AuditPath(item content.WorkItem, version int, passed bool) string {
	bucket := "failed"
	if passed {
		bucket = "passed"
	}
	name := fmt.Sprintf("%s_%s_v%d.json", item.Folder(), item.DJ, version)
	return filepath.Join(r.root, "audits", string(item.Type), bucket, name)
}

// SummaryPath returns the location of the aggregated audit summary.
func (r *Resolver) SummaryPath() string {
	return filepath.Join(r.root, "audits", "summary.json")
}

// StateDir returns the directory holding run state such as the
// checkpoint file and the run lock.
func (r *Resolver) StateDir() string {
	return filepath.Join(r.root, "state")
}

func (r *Resolver) CheckpointPath() string {
	return filepath.Join(r.StateDir(), "checkpoint.json")
}

func (r *Resolver) LockPath() string {
	return filepath.Join(r.StateDir(), "aircheck.lock")
}

// ScriptVersions lists the version numbers present on disk for an item,
// sorted ascending. A missing directory yields an empty slice.
func (r *Resolver) ScriptVersions(item content.WorkItem) ([]int, error) {
	return scanVersions(r.ScriptDir(item), item.DJ, ".txt")
}

// AudioVersions lists the rendered audio versions present for an item.
func (r *Resolver) AudioVersions(item content.WorkItem) ([]int, error) {
	return scanVersions(r.AudioDir(item), item.DJ, ".wav")
}

// LatestScriptVersion returns the highest script version on disk, or -1
// when no script exists yet.
func (r *Resolver) LatestScriptVersion(item content.WorkItem) (int, error) {
	versions, err := r.ScriptVersions(item)
	if err != nil {
		return -1, err
	}
	if len(versions) == 0 {
		return -1, nil
	}
	return versions[len(versions)-1], nil
}

func scanVersions(dir, dj, ext string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	prefix := dj + "_"
	var versions []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		num := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext)
		version, err := strconv.Atoi(num)
		if err != nil || version < 0 {
			continue
		}
		versions = append(versions, version)
	}
	sort.Ints(versions)
	return versions, nil
}
